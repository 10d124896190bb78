package scheduler

import (
	"context"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/infra/logger"
)

// GenerateFunc rosters the days [from, to].
type GenerateFunc func(ctx context.Context, from, to time.Time, rulesVersion, strategy string) error

// Scheduler calls a GenerateFunc for the rolling window on every tick.
type Scheduler struct {
	cfg      Config
	generate GenerateFunc
	log      logger.Logger
	now      func() time.Time
}

// New returns a Scheduler. cfg is expected to carry its defaults.
func New(cfg Config, gen GenerateFunc, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{cfg: cfg, generate: gen, log: log, now: time.Now}
}

// Window returns the first and last day rostered at now.
func (s *Scheduler) Window(now time.Time) (time.Time, time.Time) {
	from := model.Day(now).AddDate(0, 0, s.cfg.LeadDays)
	return from, from.AddDate(0, 0, s.cfg.HorizonDays-1)
}

// Run generates the window immediately and then on every interval until ctx
// is cancelled. A failed run is logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for ctx.Err() == nil {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	from, to := s.Window(s.now())
	if err := s.generate(ctx, from, to, s.cfg.Rules, s.cfg.Strategy); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Errorf("scheduled roster %s to %s: %v", from.Format(time.DateOnly), to.Format(time.DateOnly), err)
		return
	}
	s.log.Infof("scheduled roster %s to %s done", from.Format(time.DateOnly), to.Format(time.DateOnly))
}
