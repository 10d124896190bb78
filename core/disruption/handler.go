// Package disruption proposes roster patches for delays, cancellations and
// crew unavailability, and keeps the disruption history.
package disruption

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/roster"
	"github.com/kilianp07/crewroster/core/rules"
	"github.com/kilianp07/crewroster/core/store"
)

// DefaultHistoryDays is the look-back of History when none is given.
const DefaultHistoryDays = 30

// Store is the persistence the handlers need.
type Store interface {
	CrewByID(ctx context.Context, id int64) (model.Crew, error)
	ActiveCrew(ctx context.Context) ([]model.Crew, error)
	FlightsBetween(ctx context.Context, from, to time.Time) ([]model.Flight, error)
	FlightsByNumber(ctx context.Context, flightNo string) ([]model.Flight, error)
	Qualifications(ctx context.Context) ([]model.Qualification, error)
	Preferences(ctx context.Context) ([]model.Preference, error)
	Availability(ctx context.Context) ([]model.Availability, error)
	AppendDisruption(ctx context.Context, r model.DisruptionRecord) (model.DisruptionRecord, error)
	Disruptions(ctx context.Context, f model.DisruptionFilter) ([]model.DisruptionRecord, error)
}

// Handler runs the disruption handlers against one rules configuration.
//
// Candidate crew are derived from qualification records rather than from
// committed duties: the crew released by a cancellation are all active crew
// qualified for the aircraft type, and the flights of an unavailable crew
// member are all flights of a type they are qualified for.
type Handler struct {
	store Store
	rules *rules.Engine
	now   func() time.Time
}

// NewHandler returns a Handler.
func NewHandler(st Store, e *rules.Engine) *Handler {
	return &Handler{store: st, rules: e, now: time.Now}
}

// latestFlight returns the instance of flightNo with the latest date.
func (h *Handler) latestFlight(ctx context.Context, flightNo string) (model.Flight, bool, error) {
	fs, err := h.store.FlightsByNumber(ctx, flightNo)
	if err != nil {
		return model.Flight{}, false, err
	}
	if len(fs) == 0 {
		return model.Flight{}, false, nil
	}
	return fs[0], true, nil
}

func (h *Handler) record(ctx context.Context, r model.DisruptionRecord) (int64, error) {
	rec, err := h.store.AppendDisruption(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("record %s disruption: %w", r.Type, err)
	}
	return rec.ID, nil
}

// Delay shifts the flight schedule by minutes and checks the shifted duty
// length.
func (h *Handler) Delay(ctx context.Context, flightNo string, minutes int) (Patch, error) {
	p := Patch{Type: model.DisruptionDelay, FlightNo: flightNo, KPIs: map[string]int{KPIChangedFlights: 0}}
	f, ok, err := h.latestFlight(ctx, flightNo)
	if err != nil {
		return Patch{}, err
	}
	if !ok {
		p.Error = ErrCodeFlightNotFound
		return p, nil
	}
	shift := time.Duration(minutes) * time.Minute
	dep, arr := f.SchedDep.Add(shift), f.SchedArr.Add(shift)
	feasible := h.rules.DutyDurationOK(dep, arr)
	p.FlightID = f.ID
	p.NewSchedDep, p.NewSchedArr, p.Feasible = &dep, &arr, &feasible
	p.Status = StatusDelayProposed
	p.Message = fmt.Sprintf("Flight delayed by %d minutes.", minutes)

	no := f.FlightNo
	impact := minutes
	resolution := "schedule shift feasible"
	if !feasible {
		resolution = "schedule shift exceeds duty limits"
	}
	if p.DisruptionID, err = h.record(ctx, model.DisruptionRecord{
		FlightNo:      &no,
		Type:          model.DisruptionDelay,
		Date:          f.Date,
		ImpactMinutes: &impact,
		Reason:        "Flight delayed",
		Resolution:    resolution,
	}); err != nil {
		return Patch{}, err
	}
	p.KPIs[KPIChangedFlights] = 1
	return p, nil
}

// Cancellation releases the crew qualified for the cancelled flight and
// proposes at most one of them for each other flight of the same day and
// aircraft type. A proposal requires a valid qualification, no approved
// unavailability and a positive preference score.
func (h *Handler) Cancellation(ctx context.Context, flightNo string) (Patch, error) {
	p := Patch{Type: model.DisruptionCancellation, FlightNo: flightNo, KPIs: map[string]int{KPIHandledCancellations: 0}}
	f, ok, err := h.latestFlight(ctx, flightNo)
	if err != nil {
		return Patch{}, err
	}
	if !ok {
		p.Error = ErrCodeFlightNotFound
		return p, nil
	}
	snap, err := h.snapshot(ctx)
	if err != nil {
		return Patch{}, err
	}
	active, err := h.store.ActiveCrew(ctx)
	if err != nil {
		return Patch{}, err
	}
	var released []model.Crew
	for _, c := range active {
		if _, ok := snap.Qualifications.Lookup(c.ID, f.AircraftCode); ok {
			released = append(released, c)
		}
	}
	sameDay, err := h.store.FlightsBetween(ctx, f.Date, f.Date)
	if err != nil {
		return Patch{}, err
	}

	for _, other := range sameDay {
		if other.ID == f.ID || other.AircraftCode != f.AircraftCode {
			continue
		}
		for _, c := range released {
			if !snap.Eligible(c.ID, other) {
				continue
			}
			score := roster.PreferenceScore(snap.Preferences.ActiveOn(c.ID, other.Date), other)
			if score <= 0 {
				continue
			}
			p.Reassignments = append(p.Reassignments, Reassignment{
				FromFlight:      f.FlightNo,
				FlightID:        other.ID,
				FlightNo:        other.FlightNo,
				FlightDate:      other.Date,
				CrewID:          c.ID,
				CrewName:        c.Name,
				PreferenceScore: score,
			})
			break
		}
	}

	p.FlightID = f.ID
	p.Count = len(p.Reassignments)
	p.Status = StatusCancellationHandled
	p.Message = fmt.Sprintf("Crew released from cancelled flight. Found %d potential reassignments.", p.Count)
	no := f.FlightNo
	if p.DisruptionID, err = h.record(ctx, model.DisruptionRecord{
		FlightNo:   &no,
		Type:       model.DisruptionCancellation,
		Date:       f.Date,
		Reason:     "Flight cancelled",
		Resolution: fmt.Sprintf("%d reassignments proposed", p.Count),
	}); err != nil {
		return Patch{}, err
	}
	p.KPIs[KPIHandledCancellations] = 1
	return p, nil
}

// CrewUnavailability finds the flights in [from, to] of an aircraft type the
// crew member is qualified for, and proposes for each the first other active
// crew member who is qualified and available.
func (h *Handler) CrewUnavailability(ctx context.Context, crewID int64, from, to time.Time) (Patch, error) {
	from, to = model.Day(from), model.Day(to)
	p := Patch{
		Type:            model.DisruptionCrewUnavailability,
		CrewID:          crewID,
		UnavailableFrom: &from,
		UnavailableTo:   &to,
		KPIs:            map[string]int{KPIHandledUnavailabilities: 0},
	}
	if to.Before(from) {
		return Patch{}, fmt.Errorf("unavailability ends %s before it starts %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	crew, err := h.store.CrewByID(ctx, crewID)
	if errors.Is(err, store.ErrNotFound) {
		p.Error = ErrCodeCrewNotFound
		return p, nil
	}
	if err != nil {
		return Patch{}, err
	}
	p.CrewName = crew.Name

	snap, err := h.snapshot(ctx)
	if err != nil {
		return Patch{}, err
	}
	window, err := h.store.FlightsBetween(ctx, from, to)
	if err != nil {
		return Patch{}, err
	}
	var affected []model.Flight
	types := map[string]bool{}
	for _, f := range window {
		// The qualification must hold through the end of the window.
		if snap.Qualifications.QualifiedOn(crewID, f.AircraftCode, to) {
			affected = append(affected, f)
			types[f.AircraftCode] = true
		}
	}
	p.AffectedFlights = len(affected)

	if len(affected) > 0 {
		active, err := h.store.ActiveCrew(ctx)
		if err != nil {
			return Patch{}, err
		}
		var others []model.Crew
		for _, c := range active {
			if c.ID != crewID && qualifiedForAny(snap.Qualifications, c.ID, types) {
				others = append(others, c)
			}
		}
		for _, f := range affected {
			for _, c := range others {
				if !snap.Qualifications.QualifiedOn(c.ID, f.AircraftCode, to) || snap.Availability.Blocked(c.ID, f.Date) {
					continue
				}
				p.Reassignments = append(p.Reassignments, Reassignment{
					FromCrewID:      crewID,
					FromCrewName:    crew.Name,
					FlightID:        f.ID,
					FlightNo:        f.FlightNo,
					FlightDate:      f.Date,
					CrewID:          c.ID,
					CrewName:        c.Name,
					PreferenceScore: roster.PreferenceScore(snap.Preferences.ActiveOn(c.ID, f.Date), f),
				})
				break
			}
		}
	}

	p.Count = len(p.Reassignments)
	p.Status = StatusUnavailabilityHandled
	if len(affected) == 0 {
		p.Message = "No flights affected by crew unavailability"
	} else {
		p.Message = fmt.Sprintf("Crew unavailability recorded. Found %d potential reassignments.", p.Count)
	}
	id := crewID
	if p.DisruptionID, err = h.record(ctx, model.DisruptionRecord{
		Type:       model.DisruptionCrewUnavailability,
		Date:       from,
		CrewID:     &id,
		Reason:     "Crew unavailable",
		Resolution: fmt.Sprintf("%d of %d flights covered", p.Count, len(affected)),
	}); err != nil {
		return Patch{}, err
	}
	p.KPIs[KPIHandledUnavailabilities] = 1
	return p, nil
}

func qualifiedForAny(ix model.QualificationIndex, crewID int64, types map[string]bool) bool {
	for code := range types {
		if _, ok := ix.Lookup(crewID, code); ok {
			return true
		}
	}
	return false
}

func (h *Handler) snapshot(ctx context.Context) (model.Snapshot, error) {
	quals, err := h.store.Qualifications(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	prefs, err := h.store.Preferences(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	avail, err := h.store.Availability(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.NewSnapshot(quals, prefs, avail), nil
}

// HistoryQuery selects past disruptions. DaysBack defaults to
// DefaultHistoryDays.
type HistoryQuery struct {
	FlightNo string
	CrewID   int64
	Type     model.DisruptionType
	DaysBack int
}

// History returns the disruptions recorded within the look-back window,
// latest disruption date first.
func (h *Handler) History(ctx context.Context, q HistoryQuery) ([]model.DisruptionRecord, error) {
	days := q.DaysBack
	if days <= 0 {
		days = DefaultHistoryDays
	}
	recs, err := h.store.Disruptions(ctx, model.DisruptionFilter{
		FlightNo: q.FlightNo,
		CrewID:   q.CrewID,
		Type:     q.Type,
		Since:    model.Day(h.now()).AddDate(0, 0, -days),
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.After(recs[j].Date) })
	return recs, nil
}
