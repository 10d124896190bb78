package scheduler

import (
	"errors"
	"time"
)

// Config defines the rolling window and cadence of automatic regeneration.
type Config struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Interval time.Duration `json:"interval" yaml:"interval"`
	// LeadDays is the number of days between today and the first rostered
	// day. Zero rosters from today.
	LeadDays    int    `json:"lead_days" yaml:"lead_days"`
	HorizonDays int    `json:"horizon_days" yaml:"horizon_days"`
	Rules       string `json:"rules_version" yaml:"rules_version"`
	Strategy    string `json:"strategy" yaml:"strategy"`
}

func (c *Config) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = 6 * time.Hour
	}
	if c.LeadDays == 0 {
		c.LeadDays = 1
	}
	if c.HorizonDays == 0 {
		c.HorizonDays = 7
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval < time.Minute {
		return errors.New("interval must be at least one minute")
	}
	if c.LeadDays < 0 {
		return errors.New("lead_days must not be negative")
	}
	if c.HorizonDays <= 0 {
		return errors.New("horizon_days must be positive")
	}
	return nil
}
