package config

import "time"

// Config holds runtime settings for the userdesk CLI.
//
// Units: durations are time.Duration; the -t flag takes whole seconds.
type Config struct {
	BaseURL              string        `env:"BASE_URL"`
	APIKey               string        `env:"API_KEY"`
	DatabasePath         string        `env:"DATABASE_PATH"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT"`
	NotificationDuration time.Duration `env:"NOTIFICATION_DURATION"`
	RedirectDelay        time.Duration `env:"REDIRECT_DELAY"`
	LogLevel             string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "https://reqres.in"
	c.APIKey = ""
	c.DatabasePath = "userdesk.db"
	c.RequestTimeout = 10 * time.Second
	c.NotificationDuration = 3 * time.Second
	c.RedirectDelay = 2 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
