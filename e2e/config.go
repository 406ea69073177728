package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// PAD_ADDR targets an already-running pad server (host:port).
	// Left empty, the suite starts an in-process server instead.
	PadAddr string `envconfig:"PAD_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
