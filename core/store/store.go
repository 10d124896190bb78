// Package store defines the persistence collaborator of the rostering engine.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

// ErrNotFound is returned when a keyed lookup has no match.
var ErrNotFound = errors.New("not found")

// Reader exposes the reference data and committed rosters.
type Reader interface {
	Crew(ctx context.Context) ([]model.Crew, error)
	ActiveCrew(ctx context.Context) ([]model.Crew, error)
	CrewByID(ctx context.Context, id int64) (model.Crew, error)
	// FlightsBetween returns flights whose date lies in [from, to], compared
	// by calendar day, ordered by scheduled departure.
	FlightsBetween(ctx context.Context, from, to time.Time) ([]model.Flight, error)
	// FlightsByNumber returns every dated instance of flightNo, latest date
	// first.
	FlightsByNumber(ctx context.Context, flightNo string) ([]model.Flight, error)
	Qualifications(ctx context.Context) ([]model.Qualification, error)
	Preferences(ctx context.Context) ([]model.Preference, error)
	Availability(ctx context.Context) ([]model.Availability, error)
	// DutiesBetween returns committed duties with from <= start < to, the
	// scope ReplaceDuties overwrites, joined with their flight and crew
	// member.
	DutiesBetween(ctx context.Context, from, to time.Time) ([]model.RosterEntry, error)
	Disruptions(ctx context.Context, f model.DisruptionFilter) ([]model.DisruptionRecord, error)
	// ConstraintsConfig returns the stored rules version. ok is false when
	// the version does not exist.
	ConstraintsConfig(ctx context.Context, version string) (cfg rules.Config, ok bool, err error)
}

// Store is the full persistence contract.
type Store interface {
	Reader
	// ReplaceDuties removes the duties starting in [from, to) and writes
	// duties in their place as one atomic change. Duty identifiers are
	// allocated by the store.
	ReplaceDuties(ctx context.Context, from, to time.Time, duties []model.DutyAssignment) error
	// AppendDisruption persists r and returns it with its allocated
	// identifier and recording time.
	AppendDisruption(ctx context.Context, r model.DisruptionRecord) (model.DisruptionRecord, error)
	Close() error
}

// Writer loads reference data. Records with an existing key are replaced.
type Writer interface {
	PutCrew(ctx context.Context, c model.Crew) error
	PutFlight(ctx context.Context, f model.Flight) error
	PutQualification(ctx context.Context, q model.Qualification) error
	PutPreference(ctx context.Context, p model.Preference) error
	PutAvailability(ctx context.Context, a model.Availability) error
	PutConstraintsConfig(ctx context.Context, cfg rules.Config) error
}
