package config

import "fmt"

// DatabaseConfig locates the roster database.
type DatabaseConfig struct {
	// Driver is "sqlite" or "memory". The memory store is for demos and
	// loses everything on exit.
	Driver string `json:"driver"`
	Path   string `json:"path"`
	// Seed is an optional JSON dataset imported on open.
	Seed string `json:"seed"`
}

func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.Driver == "sqlite" && c.Path == "" {
		c.Path = "crewroster.db"
	}
}

func (c DatabaseConfig) Validate() error {
	switch c.Driver {
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown driver %s", c.Driver)
	}
	return nil
}
