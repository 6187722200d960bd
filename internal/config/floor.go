package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type FloorConfig struct {
	Timezone         string        `env:"TIMEZONE" envDefault:"Local"`
	DayStartHour     int           `env:"GAMING_DAY_START_HOUR" envDefault:"12"`
	DayEndHour       int           `env:"GAMING_DAY_END_HOUR" envDefault:"4"`
	PlayDuration     time.Duration `env:"PLAY_DURATION" envDefault:"3h"`
	BreakDuration    time.Duration `env:"BREAK_DURATION" envDefault:"15m"`
	WarningThreshold time.Duration `env:"WARNING_THRESHOLD" envDefault:"14m"`
	TrialBlock       time.Duration `env:"TRIAL_BLOCK" envDefault:"20m"`
	LayoutFile       string        `env:"LAYOUT_FILE"`
}

func LoadFloor() (FloorConfig, error) {
	var cfg FloorConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if cfg.DayStartHour < 0 || cfg.DayStartHour > 23 || cfg.DayEndHour < 0 || cfg.DayEndHour > 23 {
		return cfg, fmt.Errorf("gaming day hours out of range: start=%d end=%d", cfg.DayStartHour, cfg.DayEndHour)
	}
	return cfg, nil
}

func (c FloorConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
