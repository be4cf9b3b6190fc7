package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// API_BASE_URL points at a running chat API; the suite is skipped when empty
	APIBaseURL string `envconfig:"API_BASE_URL"`
	// E2E_DEBUG_HTTP dumps request and response bodies of every call
	DebugHTTP bool `envconfig:"E2E_DEBUG_HTTP" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
