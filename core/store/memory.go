package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

type memDuty struct {
	period   model.DutyPeriod
	flightID int64
}

// Memory keeps every record in memory. It is safe for concurrent use and is
// meant for tests and dry runs.
type Memory struct {
	mu          sync.RWMutex
	crew        map[int64]model.Crew
	flights     map[int64]model.Flight
	quals       []model.Qualification
	prefs       []model.Preference
	avail       []model.Availability
	duties      []memDuty
	disruptions []model.DisruptionRecord
	configs     map[string]rules.Config
	nextDuty    int64
	nextDisr    int64
	now         func() time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		crew:    map[int64]model.Crew{},
		flights: map[int64]model.Flight{},
		configs: map[string]rules.Config{},
		now:     time.Now,
	}
}

func (m *Memory) Crew(ctx context.Context) ([]model.Crew, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Crew, 0, len(m.crew))
	for _, c := range m.crew {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, ctx.Err()
}

func (m *Memory) ActiveCrew(ctx context.Context) ([]model.Crew, error) {
	all, err := m.Crew(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) CrewByID(_ context.Context, id int64) (model.Crew, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.crew[id]
	if !ok {
		return model.Crew{}, fmt.Errorf("crew %d: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *Memory) FlightsBetween(ctx context.Context, from, to time.Time) ([]model.Flight, error) {
	from, to = model.Day(from), model.Day(to)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Flight
	for _, f := range m.flights {
		d := model.Day(f.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, f)
	}
	sortByDeparture(out)
	return out, ctx.Err()
}

func (m *Memory) FlightsByNumber(ctx context.Context, flightNo string) ([]model.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Flight
	for _, f := range m.flights {
		if f.FlightNo == flightNo {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, ctx.Err()
}

func (m *Memory) Qualifications(ctx context.Context) ([]model.Qualification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Qualification(nil), m.quals...), ctx.Err()
}

func (m *Memory) Preferences(ctx context.Context) ([]model.Preference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Preference(nil), m.prefs...), ctx.Err()
}

func (m *Memory) Availability(ctx context.Context) ([]model.Availability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Availability(nil), m.avail...), ctx.Err()
}

func (m *Memory) DutiesBetween(ctx context.Context, from, to time.Time) ([]model.RosterEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.RosterEntry
	for _, d := range m.duties {
		if d.period.Start.Before(from) || !d.period.Start.Before(to) {
			continue
		}
		f, okF := m.flights[d.flightID]
		c, okC := m.crew[d.period.CrewID]
		if !okF || !okC {
			continue
		}
		out = append(out, model.RosterEntry{Duty: d.period, Flight: f, Crew: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Duty.Start.Equal(out[j].Duty.Start) {
			return out[i].Duty.Start.Before(out[j].Duty.Start)
		}
		return out[i].Duty.ID < out[j].Duty.ID
	})
	return out, ctx.Err()
}

func (m *Memory) ReplaceDuties(ctx context.Context, from, to time.Time, duties []model.DutyAssignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range duties {
		if _, ok := m.flights[d.FlightID]; !ok {
			return fmt.Errorf("duty for flight %d: %w", d.FlightID, ErrNotFound)
		}
		if _, ok := m.crew[d.CrewID]; !ok {
			return fmt.Errorf("duty for crew %d: %w", d.CrewID, ErrNotFound)
		}
	}
	kept := m.duties[:0:0]
	for _, d := range m.duties {
		if !d.period.Start.Before(from) && d.period.Start.Before(to) {
			continue
		}
		kept = append(kept, d)
	}
	for _, d := range duties {
		m.nextDuty++
		kept = append(kept, memDuty{
			period:   model.DutyPeriod{ID: m.nextDuty, CrewID: d.CrewID, Start: d.Start, End: d.End, BaseIATA: d.BaseIATA},
			flightID: d.FlightID,
		})
	}
	m.duties = kept
	return nil
}

func (m *Memory) AppendDisruption(ctx context.Context, r model.DisruptionRecord) (model.DisruptionRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.DisruptionRecord{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDisr++
	r.ID = m.nextDisr
	if r.RecordedAt.IsZero() {
		r.RecordedAt = m.now().UTC()
	}
	m.disruptions = append(m.disruptions, r)
	return r, nil
}

func (m *Memory) Disruptions(ctx context.Context, f model.DisruptionFilter) ([]model.DisruptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.DisruptionRecord
	for i := len(m.disruptions) - 1; i >= 0; i-- {
		if f.Match(m.disruptions[i]) {
			out = append(out, m.disruptions[i])
		}
	}
	return out, ctx.Err()
}

func (m *Memory) ConstraintsConfig(_ context.Context, version string) (rules.Config, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[version]
	return cfg, ok, nil
}

func (m *Memory) PutCrew(_ context.Context, c model.Crew) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.crew[c.ID] = c
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutFlight(_ context.Context, f model.Flight) error {
	if err := f.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.flights[f.ID] = f
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutQualification(_ context.Context, q model.Qualification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.quals {
		if cur.CrewID == q.CrewID && cur.AircraftCode == q.AircraftCode && cur.QualifiedOn.Equal(q.QualifiedOn) {
			m.quals[i] = q
			return nil
		}
	}
	m.quals = append(m.quals, q)
	return nil
}

func (m *Memory) PutPreference(_ context.Context, p model.Preference) error {
	m.mu.Lock()
	m.prefs = append(m.prefs, p)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutAvailability(_ context.Context, a model.Availability) error {
	m.mu.Lock()
	m.avail = append(m.avail, a)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutConstraintsConfig(_ context.Context, cfg rules.Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("constraints config without version")
	}
	m.mu.Lock()
	m.configs[cfg.Version] = cfg
	m.mu.Unlock()
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func sortByDeparture(fs []model.Flight) {
	sort.Slice(fs, func(i, j int) bool {
		if !fs[i].SchedDep.Equal(fs[j].SchedDep) {
			return fs[i].SchedDep.Before(fs[j].SchedDep)
		}
		return fs[i].ID < fs[j].ID
	})
}
