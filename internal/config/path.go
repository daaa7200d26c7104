// Package config reads the almanac's wiki and Google Sheets settings from
// viper and resolves the file locations they name.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading ~ and any $VAR references in a configured
// location such as the database, servant catalog or sheets token file. When
// the home directory is unknown the ~ is left in place.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
