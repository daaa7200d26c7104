// Package wiki talks to the MediaWiki action API that hosts the banner pages,
// and provides file-backed and caching page sources around it.
package wiki

import (
	"errors"
	"net/url"
	"time"
)

// DefaultAPIURL is the public game wiki.
const DefaultAPIURL = "https://fategrandorder.fandom.com/api.php"

// Config holds the wiki client configuration.
type Config struct {
	APIURL        string
	UserAgent     string
	Token         string
	SnapshotDir   string
	Timeout       time.Duration
	RetryDelay    time.Duration
	RetryAttempts int
	Concurrency   int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:        DefaultAPIURL,
		UserAgent:     "summon-almanac/1.0 (banner harvester)",
		Timeout:       30 * time.Second,
		RetryDelay:    time.Second,
		RetryAttempts: 3,
		Concurrency:   4,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("wiki API URL is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("wiki API URL must be absolute")
	}
	if c.RetryAttempts < 1 {
		return errors.New("retry attempts must be at least 1")
	}
	if c.RetryDelay < 0 {
		return errors.New("retry delay cannot be negative")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	return nil
}
