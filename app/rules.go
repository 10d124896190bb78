package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/crewroster/core/rules"
)

// rules resolves a constraints version: the stored row first, then the
// versions file, then the built-in defaults. An empty version selects the
// configured default.
func (s *Service) rules(ctx context.Context, version string) (*rules.Engine, string, error) {
	if version == "" {
		version = s.defaultVersion
	}
	if version == "" {
		version = rules.DefaultVersion
	}
	cfg, ok, err := s.store.ConstraintsConfig(ctx, version)
	if err != nil {
		return nil, "", fmt.Errorf("load rules %s: %w", version, err)
	}
	if ok {
		verr := cfg.Validate()
		if verr == nil {
			return rules.New(cfg), version, nil
		}
		s.log.Warnf("stored rules %s rejected: %v", version, verr)
	}
	cfg, ok = s.versions.Lookup(version)
	if !ok {
		s.log.Debugf("rules %s not configured, using defaults", version)
	}
	return rules.New(cfg), version, nil
}

// Rules returns the effective configuration of version and the rule
// classification.
func (s *Service) Rules(ctx context.Context, version string) (rules.Config, rules.Categories, error) {
	e, _, err := s.rules(ctx, version)
	if err != nil {
		return rules.Config{}, rules.Categories{}, err
	}
	return e.Config(), e.Categories(), nil
}
