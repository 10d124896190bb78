package config

import "fmt"

// APIConfig configures the read-only HTTP API served next to /metrics.
type APIConfig struct {
	Enabled bool `json:"enabled"`
	// Token guards the journal endpoint when set.
	Token          string  `json:"token"`
	DutyLimitHours float64 `json:"duty_limit_hours"`
}

func (c *APIConfig) SetDefaults() {
	if c.DutyLimitHours == 0 {
		c.DutyLimitHours = 10
	}
}

func (c APIConfig) Validate() error {
	if c.DutyLimitHours < 0 {
		return fmt.Errorf("negative duty limit %v", c.DutyLimitHours)
	}
	return nil
}
