package internal

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	APIURL         string        `env:"CHAT_API_URL,default=http://localhost:8080"`
	APITimeout     time.Duration `env:"CHAT_API_TIMEOUT,default=10s"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,default=./data/session"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("CHAT_API_URL is not a valid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CHAT_API_URL must be an absolute http(s) url, got %q", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("CHAT_API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.BadgerFilepath == "" {
		return fmt.Errorf("BADGER_FILEPATH is required")
	}
	return nil
}
