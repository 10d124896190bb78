// Package app wires the rostering engine to persistence, metrics, the run
// journal and notifications.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/crewroster/core/events"
	"github.com/kilianp07/crewroster/core/journal"
	coremetrics "github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/core/model"
	coremqtt "github.com/kilianp07/crewroster/core/mqtt"
	"github.com/kilianp07/crewroster/core/roster"
	"github.com/kilianp07/crewroster/core/rules"
	"github.com/kilianp07/crewroster/core/store"
	"github.com/kilianp07/crewroster/infra/logger"
	inframetrics "github.com/kilianp07/crewroster/infra/metrics"
	"github.com/kilianp07/crewroster/infra/mqtt"
	"github.com/kilianp07/crewroster/internal/eventbus"
)

// Deps are the collaborators of a Service. Only Store is required.
type Deps struct {
	Store   store.Store
	Sink    coremetrics.Sink
	Journal journal.Store
	Bus     eventbus.EventBus
	// Versions are consulted when the store has no row for a rules version.
	Versions        rules.Versions
	DefaultVersion  string
	DefaultStrategy roster.Strategy
	SolverTimeout   time.Duration
	Logger          logger.Logger
}

// Service runs roster generation, conflict audits and disruption handling
// against one store. Calls on overlapping periods are serialized.
type Service struct {
	store           store.Store
	sink            coremetrics.Sink
	journal         journal.Store
	bus             eventbus.EventBus
	planner         *roster.Planner
	versions        rules.Versions
	defaultVersion  string
	defaultStrategy roster.Strategy
	locks           periodLocks
	log             logger.Logger
	now             func() time.Time

	workers []<-chan struct{}
	closers []io.Closer
}

// New returns a Service. Disruption events are recorded on the metrics sink
// through the event bus.
func New(d Deps) (*Service, error) {
	if d.Store == nil {
		return nil, errors.New("store is required")
	}
	if d.Sink == nil {
		d.Sink = coremetrics.NopSink{}
	}
	if d.Journal == nil {
		d.Journal = journal.NopStore{}
	}
	if d.Bus == nil {
		d.Bus = eventbus.New(eventbus.WithBuffer(64))
	}
	if d.Logger == nil {
		d.Logger = logger.New("service")
	}
	if d.DefaultStrategy == "" {
		d.DefaultStrategy = roster.StrategyGreedy
	}
	s := &Service{
		store:           d.Store,
		sink:            d.Sink,
		journal:         d.Journal,
		bus:             d.Bus,
		planner:         roster.NewPlanner(d.SolverTimeout, d.Bus, logger.New("planner")),
		versions:        d.Versions,
		defaultVersion:  d.DefaultVersion,
		defaultStrategy: d.DefaultStrategy,
		log:             d.Logger,
		now:             time.Now,
	}
	s.workers = append(s.workers, inframetrics.StartEventCollector(context.Background(), s.bus, s.sink))
	return s, nil
}

// Notify publishes roster and disruption events to pub until Close.
func (s *Service) Notify(pub coremqtt.Publisher, prefix string) {
	s.workers = append(s.workers, mqtt.NewNotifier(pub, prefix).Start(context.Background(), s.bus))
}

// Bus returns the event bus of the service.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// RosterRun is the outcome of GenerateRoster.
type RosterRun struct {
	RunID        string    `json:"run_id"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	RulesVersion string    `json:"rules_version"`
	roster.Result
}

// period normalizes an inclusive range of days.
func period(start, end time.Time) (time.Time, time.Time, error) {
	from, last := model.Day(start), model.Day(end)
	if last.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("period ends %s before it starts %s",
			last.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return from, last, nil
}

// GenerateRoster assigns crew to every flight dated in [periodStart,
// periodEnd] and replaces the committed duties of those days. An empty
// strategy or rules version selects the configured default.
func (s *Service) GenerateRoster(ctx context.Context, periodStart, periodEnd time.Time, rulesVersion, strategy string) (RosterRun, error) {
	from, last, err := period(periodStart, periodEnd)
	if err != nil {
		return RosterRun{}, err
	}
	strat := s.defaultStrategy
	if strategy != "" {
		if strat, err = roster.ParseStrategy(strategy); err != nil {
			return RosterRun{}, err
		}
	}
	to := last.AddDate(0, 0, 1)
	release, err := s.locks.acquire(ctx, from, to)
	if err != nil {
		return RosterRun{}, err
	}
	defer release()

	engine, version, err := s.rules(ctx, rulesVersion)
	if err != nil {
		return RosterRun{}, err
	}
	run := RosterRun{RunID: journal.NewRunID(), PeriodStart: from, PeriodEnd: last, RulesVersion: version}
	started := s.now()
	s.log.Infof("roster %s: %s to %s, rules %s, strategy %s", run.RunID,
		from.Format(time.DateOnly), last.Format(time.DateOnly), version, strat)

	res, duties, err := s.plan(ctx, run, strat, engine, to)
	if err != nil {
		s.log.Errorf("roster %s failed: %v", run.RunID, err)
		s.append(ctx, journal.Record{
			RunID:        run.RunID,
			Kind:         journal.KindRoster,
			PeriodStart:  from,
			PeriodEnd:    last,
			RulesVersion: version,
			Strategy:     string(strat),
			Error:        err.Error(),
		})
		return RosterRun{}, err
	}
	run.Result = res

	unassigned := unassignedFlights(res.Assignments)
	k := res.KPIs
	if err := s.sink.RecordRosterRun(coremetrics.RosterRun{
		RunID:                 run.RunID,
		PeriodStart:           from,
		PeriodEnd:             last,
		RulesVersion:          version,
		Strategy:              string(res.Strategy),
		FellBack:              res.FellBack,
		FlightsTotal:          k.FlightsTotal,
		FlightsAssigned:       k.FlightsAssigned,
		AssignmentRate:        k.AssignmentRate,
		ComplianceRate:        k.ComplianceRate,
		AvgPreferenceScore:    k.AvgPreferenceScore,
		FairnessScore:         k.FairnessScore,
		DutyDistributionRange: k.DutyDistributionRange,
		Duration:              s.now().Sub(started),
		Duties:                duties,
		Time:                  s.now(),
	}); err != nil {
		s.log.Warnf("record roster run: %v", err)
	}
	s.append(ctx, journal.Record{
		RunID:        run.RunID,
		Kind:         journal.KindRoster,
		PeriodStart:  from,
		PeriodEnd:    last,
		RulesVersion: version,
		Strategy:     string(res.Strategy),
		FellBack:     res.FellBack,
		Reason:       res.Reason,
		Summary:      fmt.Sprintf("%d of %d flights assigned", k.FlightsAssigned, k.FlightsTotal),
		KPIs:         kpiFields(k),
		Unassigned:   unassigned,
	})
	s.bus.Publish(events.RosterEvent{
		RunID:           run.RunID,
		PeriodStart:     from,
		PeriodEnd:       last,
		RulesVersion:    version,
		Strategy:        string(res.Strategy),
		FellBack:        res.FellBack,
		FlightsTotal:    k.FlightsTotal,
		FlightsAssigned: k.FlightsAssigned,
		Unassigned:      unassigned,
		Time:            s.now(),
	})
	return run, nil
}

// plan loads the period, runs the planner and commits the assigned duties.
func (s *Service) plan(ctx context.Context, run RosterRun, strat roster.Strategy, engine *rules.Engine, to time.Time) (roster.Result, []coremetrics.Duty, error) {
	flights, err := s.store.FlightsBetween(ctx, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return roster.Result{}, nil, fmt.Errorf("load flights: %w", err)
	}
	crew, err := s.store.ActiveCrew(ctx)
	if err != nil {
		return roster.Result{}, nil, fmt.Errorf("load crew: %w", err)
	}
	snap, err := snapshot(ctx, s.store)
	if err != nil {
		return roster.Result{}, nil, err
	}
	res, err := s.planner.Plan(ctx, run.RunID, strat, roster.Input{Flights: flights, Crew: crew, Snapshot: snap, Rules: engine})
	if err != nil {
		return roster.Result{}, nil, err
	}

	bases := make(map[int64]string, len(crew))
	for _, c := range crew {
		bases[c.ID] = c.BaseIATA
	}
	deps := make(map[int64]string, len(flights))
	for _, f := range flights {
		deps[f.ID] = f.DepIATA
	}
	var (
		commits []model.DutyAssignment
		duties  []coremetrics.Duty
	)
	for _, a := range res.Assignments {
		if !a.Assigned() {
			continue
		}
		base := bases[*a.CrewID]
		if base == "" {
			base = deps[a.FlightID]
		}
		commits = append(commits, model.DutyAssignment{CrewID: *a.CrewID, FlightID: a.FlightID, Start: a.Start, End: a.End, BaseIATA: base})
		duties = append(duties, coremetrics.Duty{
			CrewID:    *a.CrewID,
			Start:     a.Start,
			End:       a.End,
			BlockTime: a.End.Sub(a.Start),
			Night:     engine.IsNightDuty(a.Start, a.End),
		})
	}
	if err := s.store.ReplaceDuties(ctx, run.PeriodStart, to, commits); err != nil {
		return roster.Result{}, nil, fmt.Errorf("commit roster: %w", err)
	}
	return res, duties, nil
}

func snapshot(ctx context.Context, st store.Reader) (model.Snapshot, error) {
	quals, err := st.Qualifications(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load qualifications: %w", err)
	}
	prefs, err := st.Preferences(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load preferences: %w", err)
	}
	avail, err := st.Availability(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load availability: %w", err)
	}
	return model.NewSnapshot(quals, prefs, avail), nil
}

func unassignedFlights(asg []roster.Assignment) []string {
	var out []string
	for _, a := range asg {
		if !a.Assigned() {
			out = append(out, a.FlightNo)
		}
	}
	return out
}

func kpiFields(k roster.KPIs) map[string]float64 {
	return map[string]float64{
		"flights_total":           float64(k.FlightsTotal),
		"flights_assigned":        float64(k.FlightsAssigned),
		"assignment_rate":         k.AssignmentRate,
		"avg_duty_per_crew":       k.AvgDutyPerCrew,
		"max_duty_per_crew":       float64(k.MaxDutyPerCrew),
		"min_duty_per_crew":       float64(k.MinDutyPerCrew),
		"duty_distribution_range": float64(k.DutyDistributionRange),
		"compliance_rate":         k.ComplianceRate,
		"avg_preference_score":    k.AvgPreferenceScore,
		"fairness_score":          k.FairnessScore,
	}
}

func (s *Service) append(ctx context.Context, rec journal.Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	if err := s.journal.Append(ctx, rec); err != nil {
		s.log.Warnf("journal %s: %v", rec.Kind, err)
	}
}

// Journal returns the recorded runs matching q.
func (s *Service) Journal(ctx context.Context, q journal.Query) ([]journal.Record, error) {
	return s.journal.Query(ctx, q)
}

// Close stops the event consumers once they have drained the bus, then
// releases the journal, the store and any attached resources.
func (s *Service) Close() error {
	s.bus.Close()
	for _, done := range s.workers {
		<-done
	}
	errs := []error{s.journal.Close(), s.store.Close()}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
