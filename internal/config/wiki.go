package config

import (
	"fmt"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/wiki"
	"github.com/spf13/viper"
)

// LoadWikiConfig reads the `wiki.*` keys over the client defaults.
func LoadWikiConfig() (wiki.Config, error) {
	config := wiki.DefaultConfig()

	if v := viper.GetString("wiki.api_url"); v != "" {
		config.APIURL = v
	}
	if v := viper.GetString("wiki.user_agent"); v != "" {
		config.UserAgent = v
	}
	if v := viper.GetString("wiki.token"); v != "" {
		config.Token = v
	}
	if v := viper.GetString("wiki.snapshot_dir"); v != "" {
		config.SnapshotDir = ExpandPath(v)
	}
	if viper.IsSet("wiki.timeout") {
		config.Timeout = viper.GetDuration("wiki.timeout")
	}
	if viper.IsSet("wiki.retry_delay") {
		config.RetryDelay = viper.GetDuration("wiki.retry_delay")
	}
	if viper.IsSet("wiki.retry_attempts") {
		config.RetryAttempts = viper.GetInt("wiki.retry_attempts")
	}
	if viper.IsSet("wiki.concurrency") {
		config.Concurrency = viper.GetInt("wiki.concurrency")
	}

	if err := config.Validate(); err != nil {
		return wiki.Config{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return config, nil
}
