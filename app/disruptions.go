package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/crewroster/core/disruption"
	"github.com/kilianp07/crewroster/core/events"
	"github.com/kilianp07/crewroster/core/journal"
	"github.com/kilianp07/crewroster/core/model"
)

// HandleDelay proposes shifting the latest instance of flightNo by minutes.
func (s *Service) HandleDelay(ctx context.Context, flightNo string, minutes int) (disruption.Patch, error) {
	return s.onFlight(ctx, flightNo, func(h *disruption.Handler) (disruption.Patch, error) {
		return h.Delay(ctx, flightNo, minutes)
	})
}

// HandleCancellation proposes reassignments for the crew released by the
// cancellation of flightNo.
func (s *Service) HandleCancellation(ctx context.Context, flightNo string) (disruption.Patch, error) {
	return s.onFlight(ctx, flightNo, func(h *disruption.Handler) (disruption.Patch, error) {
		return h.Cancellation(ctx, flightNo)
	})
}

// HandleCrewUnavailability proposes replacements on the flights the crew
// member could have flown between from and to, inclusive.
func (s *Service) HandleCrewUnavailability(ctx context.Context, crewID int64, from, to time.Time) (disruption.Patch, error) {
	first, last := model.Day(from), model.Day(to)
	release, err := s.locks.acquire(ctx, first, last.AddDate(0, 0, 1))
	if err != nil {
		return disruption.Patch{}, err
	}
	defer release()
	h, err := s.handler(ctx)
	if err != nil {
		return disruption.Patch{}, err
	}
	p, err := h.CrewUnavailability(ctx, crewID, from, to)
	if err != nil {
		return disruption.Patch{}, err
	}
	s.recordDisruption(ctx, p, fmt.Sprintf("crew %d", crewID))
	return p, nil
}

// Disruptions lists the recorded disruptions matching q, latest first.
func (s *Service) Disruptions(ctx context.Context, q disruption.HistoryQuery) ([]model.DisruptionRecord, error) {
	h, err := s.handler(ctx)
	if err != nil {
		return nil, err
	}
	return h.History(ctx, q)
}

// onFlight locks the day of the latest instance of flightNo while fn runs.
// An unknown flight takes no lock; the handler reports it.
func (s *Service) onFlight(ctx context.Context, flightNo string, fn func(*disruption.Handler) (disruption.Patch, error)) (disruption.Patch, error) {
	fs, err := s.store.FlightsByNumber(ctx, flightNo)
	if err != nil {
		return disruption.Patch{}, err
	}
	if len(fs) > 0 {
		day := model.Day(fs[0].Date)
		if fs[0].Date.IsZero() {
			day = model.Day(fs[0].SchedDep)
		}
		release, err := s.locks.acquire(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return disruption.Patch{}, err
		}
		defer release()
	}
	h, err := s.handler(ctx)
	if err != nil {
		return disruption.Patch{}, err
	}
	p, err := fn(h)
	if err != nil {
		return disruption.Patch{}, err
	}
	s.recordDisruption(ctx, p, flightNo)
	return p, nil
}

func (s *Service) handler(ctx context.Context) (*disruption.Handler, error) {
	engine, _, err := s.rules(ctx, "")
	if err != nil {
		return nil, err
	}
	return disruption.NewHandler(s.store, engine), nil
}

// recordDisruption journals the outcome and announces it on the bus.
func (s *Service) recordDisruption(ctx context.Context, p disruption.Patch, subject string) {
	summary := p.Message
	if !p.Found() {
		summary = p.Error
	}
	s.append(ctx, journal.Record{
		RunID:   journal.NewRunID(),
		Kind:    journal.KindDisruption,
		Subject: subject,
		Reason:  string(p.Type),
		Summary: summary,
		KPIs:    map[string]float64{"reassignments": float64(p.Count)},
		Error:   p.Error,
	})
	s.bus.Publish(events.DisruptionEvent{
		Type:     string(p.Type),
		FlightNo: p.FlightNo,
		CrewID:   p.CrewID,
		Error:    p.Error,
		Proposed: p.Count,
		Time:     s.now(),
	})
}
