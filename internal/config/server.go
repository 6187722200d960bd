package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
	StaticDir      string        `env:"STATIC_DIR"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
