package rules

import (
	"fmt"
	"time"
)

// DefaultVersion is the rules version used when callers do not name one.
const DefaultVersion = "v1"

// Config holds the thresholds of one named constraints version. Optional
// ceilings are disabled when zero.
type Config struct {
	Version string `json:"version" yaml:"version"`

	MaxDutyHoursPerDay    float64 `json:"max_duty_hours_per_day" yaml:"max_duty_hours_per_day"`
	MinRestHoursAfterDuty float64 `json:"min_rest_hours_after_duty" yaml:"min_rest_hours_after_duty"`
	MaxFDPHours           float64 `json:"max_fdp_hours" yaml:"max_fdp_hours"`

	MaxDutyHoursPerWeek        float64 `json:"max_duty_hours_per_week" yaml:"max_duty_hours_per_week"`
	MaxDutyHoursPerMonth       float64 `json:"max_duty_hours_per_month" yaml:"max_duty_hours_per_month"`
	MaxConsecutiveDutyDays     int     `json:"max_consecutive_duty_days" yaml:"max_consecutive_duty_days"`
	MinRestHoursBetweenDuties  float64 `json:"min_rest_hours_between_duties" yaml:"min_rest_hours_between_duties"`
	MaxNightDutiesPerWeek      int     `json:"max_night_duties_per_week" yaml:"max_night_duties_per_week"`
	MinRestHoursAfterNightDuty float64 `json:"min_rest_hours_after_night_duty" yaml:"min_rest_hours_after_night_duty"`
	MaxExtendedFDPHours        float64 `json:"max_extended_fdp_hours" yaml:"max_extended_fdp_hours"`
	MaxFlightHoursPerDay       float64 `json:"max_flight_hours_per_day" yaml:"max_flight_hours_per_day"`
	MaxFlightHoursPerWeek      float64 `json:"max_flight_hours_per_week" yaml:"max_flight_hours_per_week"`
	MaxFlightHoursPerMonth     float64 `json:"max_flight_hours_per_month" yaml:"max_flight_hours_per_month"`

	Soft SoftConfig `json:"soft" yaml:"soft"`
}

// SoftConfig holds the preferred limits and penalty rates of soft rules.
type SoftConfig struct {
	PreferredMaxDutyHoursPerDay float64 `json:"preferred_max_duty_hours_per_day" yaml:"preferred_max_duty_hours_per_day"`
	PreferredMaxConsecutiveDays int     `json:"preferred_max_consecutive_days" yaml:"preferred_max_consecutive_days"`
	PreferredRestHoursAfterDuty float64 `json:"preferred_rest_hours_after_duty" yaml:"preferred_rest_hours_after_duty"`
	PreferredNightDutiesPerWeek int     `json:"preferred_night_duties_per_week" yaml:"preferred_night_duties_per_week"`
	FairnessWeight              float64 `json:"fairness_weight" yaml:"fairness_weight"`
	// DutyExcessRate is the penalty per hour beyond the preferred duty length.
	DutyExcessRate float64 `json:"duty_excess_rate" yaml:"duty_excess_rate"`
	// ConsecutiveExcessRate is the penalty per day beyond the preferred streak.
	ConsecutiveExcessRate float64 `json:"consecutive_excess_rate" yaml:"consecutive_excess_rate"`
	NightExcessPenalty    float64 `json:"night_excess_penalty" yaml:"night_excess_penalty"`
}

// Defaults returns the built-in thresholds used when no version is stored.
func Defaults() Config {
	return Config{
		Version:               DefaultVersion,
		MaxDutyHoursPerDay:    10,
		MinRestHoursAfterDuty: 12,
		MaxFDPHours:           13,
		Soft:                  SoftDefaults(),
	}
}

// SoftDefaults returns the built-in soft rule settings.
func SoftDefaults() SoftConfig {
	return SoftConfig{
		PreferredMaxDutyHoursPerDay: 8,
		PreferredMaxConsecutiveDays: 4,
		PreferredRestHoursAfterDuty: 14,
		PreferredNightDutiesPerWeek: 2,
		FairnessWeight:              1,
		DutyExcessRate:              0.5,
		ConsecutiveExcessRate:       1,
		NightExcessPenalty:          2,
	}
}

// Normalize replaces missing mandatory thresholds with defaults and clears
// negative optional ones.
func (c Config) Normalize() Config {
	def := Defaults()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.MaxDutyHoursPerDay <= 0 {
		c.MaxDutyHoursPerDay = def.MaxDutyHoursPerDay
	}
	if c.MinRestHoursAfterDuty <= 0 {
		c.MinRestHoursAfterDuty = def.MinRestHoursAfterDuty
	}
	if c.MaxFDPHours <= 0 {
		c.MaxFDPHours = def.MaxFDPHours
	}
	for _, f := range []*float64{
		&c.MaxDutyHoursPerWeek, &c.MaxDutyHoursPerMonth, &c.MinRestHoursBetweenDuties,
		&c.MinRestHoursAfterNightDuty, &c.MaxExtendedFDPHours, &c.MaxFlightHoursPerDay,
		&c.MaxFlightHoursPerWeek, &c.MaxFlightHoursPerMonth,
	} {
		if *f < 0 {
			*f = 0
		}
	}
	if c.MaxConsecutiveDutyDays < 0 {
		c.MaxConsecutiveDutyDays = 0
	}
	if c.MaxNightDutiesPerWeek < 0 {
		c.MaxNightDutiesPerWeek = 0
	}
	c.Soft = c.Soft.normalize()
	return c
}

func (s SoftConfig) normalize() SoftConfig {
	def := SoftDefaults()
	if s.PreferredMaxDutyHoursPerDay <= 0 {
		s.PreferredMaxDutyHoursPerDay = def.PreferredMaxDutyHoursPerDay
	}
	if s.PreferredMaxConsecutiveDays <= 0 {
		s.PreferredMaxConsecutiveDays = def.PreferredMaxConsecutiveDays
	}
	if s.PreferredRestHoursAfterDuty <= 0 {
		s.PreferredRestHoursAfterDuty = def.PreferredRestHoursAfterDuty
	}
	if s.PreferredNightDutiesPerWeek <= 0 {
		s.PreferredNightDutiesPerWeek = def.PreferredNightDutiesPerWeek
	}
	if s.FairnessWeight <= 0 {
		s.FairnessWeight = def.FairnessWeight
	}
	if s.DutyExcessRate <= 0 {
		s.DutyExcessRate = def.DutyExcessRate
	}
	if s.ConsecutiveExcessRate <= 0 {
		s.ConsecutiveExcessRate = def.ConsecutiveExcessRate
	}
	if s.NightExcessPenalty <= 0 {
		s.NightExcessPenalty = def.NightExcessPenalty
	}
	return s
}

// Validate rejects configurations that cannot be normalized meaningfully.
func (c Config) Validate() error {
	if c.MaxFDPHours > 0 && c.MaxExtendedFDPHours > 0 && c.MaxExtendedFDPHours < c.MaxFDPHours {
		return fmt.Errorf("rules %s: extended fdp %.1fh below fdp %.1fh", c.Version, c.MaxExtendedFDPHours, c.MaxFDPHours)
	}
	if c.MaxDutyHoursPerDay > 24 {
		return fmt.Errorf("rules %s: max duty per day %.1fh exceeds a day", c.Version, c.MaxDutyHoursPerDay)
	}
	return nil
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
