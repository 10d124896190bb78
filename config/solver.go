package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/crewroster/core/roster"
)

// SolverConfig tunes roster generation.
type SolverConfig struct {
	// Timeout bounds one LP solve before falling back to greedy.
	Timeout time.Duration `json:"timeout"`
	// Strategy is used when a request names none.
	Strategy string `json:"strategy"`
}

func (c *SolverConfig) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = roster.DefaultSolverTimeout
	}
	if c.Strategy == "" {
		c.Strategy = string(roster.StrategyGreedy)
	}
}

func (c SolverConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	_, err := roster.ParseStrategy(c.Strategy)
	return err
}

// RulesConfig selects the constraint set applied when a request names no
// version.
type RulesConfig struct {
	DefaultVersion string `json:"default_version"`
	// VersionsFile is a YAML document of named versions consulted when the
	// database has no row for a version.
	VersionsFile string `json:"versions_file"`
}
