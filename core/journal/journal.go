// Package journal keeps an append-only log of roster runs, conflict scans
// and handled disruptions.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a journal record.
type Kind string

const (
	KindRoster     Kind = "roster"
	KindConflicts  Kind = "conflicts"
	KindDisruption Kind = "disruption"
)

// Record captures one service invocation and its outcome.
type Record struct {
	RunID        string             `json:"run_id"`
	Kind         Kind               `json:"kind"`
	Timestamp    time.Time          `json:"timestamp"`
	PeriodStart  time.Time          `json:"period_start,omitempty"`
	PeriodEnd    time.Time          `json:"period_end,omitempty"`
	RulesVersion string             `json:"rules_version,omitempty"`
	Strategy     string             `json:"strategy,omitempty"`
	FellBack     bool               `json:"fell_back,omitempty"`
	Reason       string             `json:"reason,omitempty"`
	Subject      string             `json:"subject,omitempty"`
	Summary      string             `json:"summary,omitempty"`
	KPIs         map[string]float64 `json:"kpis,omitempty"`
	Unassigned   []string           `json:"unassigned,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start time.Time
	End   time.Time
	Kind  Kind
	RunID string
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	return q.RunID == "" || r.RunID == q.RunID
}

// Store persists Records and supports querying. Query returns records in
// timestamp order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }

// Config selects and tunes the journal backend.
type Config struct {
	// Backend is "jsonl", "sqlite" or empty to disable the journal.
	Backend    string `json:"backend" yaml:"backend"`
	Path       string `json:"path" yaml:"path"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

// Validate checks that an enabled backend is known and has a path.
func (c Config) Validate() error {
	switch c.Backend {
	case "":
		return nil
	case "jsonl", "sqlite":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Open returns the Store selected by cfg.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "":
		return NopStore{}, nil
	case "jsonl":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}
