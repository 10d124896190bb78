package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/crewroster/core/events"
	"github.com/kilianp07/crewroster/core/logger"
	"github.com/kilianp07/crewroster/internal/eventbus"
)

// Strategy names an optimizer.
type Strategy string

const (
	StrategyGreedy Strategy = "greedy"
	StrategySolver Strategy = "solver"
)

// ParseStrategy accepts a strategy name, case-insensitively. An empty name
// selects the greedy strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyGreedy:
		return StrategyGreedy, nil
	case StrategySolver:
		return StrategySolver, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Planner runs the requested strategy and falls back to the greedy strategy
// on the same input whenever the solver cannot produce a roster.
type Planner struct {
	greedy Optimizer
	solver Optimizer
	bus    eventbus.EventBus
	logger logger.Logger
}

// NewPlanner returns a Planner using the default strategies. bus may be nil.
func NewPlanner(solverTimeout time.Duration, bus eventbus.EventBus, log logger.Logger) *Planner {
	return NewPlannerWith(NewGreedyAssigner(), NewConstraintSolver(solverTimeout), bus, log)
}

// NewPlannerWith returns a Planner around explicit strategies. A nil solver
// restricts the planner to the greedy strategy.
func NewPlannerWith(greedy, solver Optimizer, bus eventbus.EventBus, log logger.Logger) *Planner {
	if log == nil {
		log = nopLogger{}
	}
	return &Planner{greedy: greedy, solver: solver, bus: bus, logger: log}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// Plan produces a roster for in. runID tags the published strategy events.
func (p *Planner) Plan(ctx context.Context, runID string, strategy Strategy, in Input) (Result, error) {
	if strategy == StrategySolver && p.solver != nil {
		p.publish(events.StrategyEvent{RunID: runID, Strategy: string(StrategySolver), Action: "solver_attempt"})
		p.logger.Debugf("run %s: trying constraint solver on %d flights", runID, len(in.Flights))
		solverAttempts.Inc()
		start := time.Now()
		res, err := p.solver.Optimize(ctx, in)
		optimizeDuration.WithLabelValues(string(StrategySolver)).Observe(time.Since(start).Seconds())
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		reason := fallbackReason(err)
		solverFallbacks.WithLabelValues(reason).Inc()
		p.publish(events.StrategyEvent{RunID: runID, Strategy: string(StrategySolver), Action: "solver_failure", Err: err})
		p.logger.Warnf("run %s: solver failed (%v), falling back to greedy", runID, err)
		p.publish(events.StrategyEvent{RunID: runID, Strategy: string(StrategyGreedy), Action: "greedy_fallback", Err: err})
		res, gerr := p.runGreedy(ctx, in)
		if gerr != nil {
			return Result{}, gerr
		}
		res.FellBack = true
		res.Reason = err.Error()
		return res, nil
	}
	return p.runGreedy(ctx, in)
}

func (p *Planner) runGreedy(ctx context.Context, in Input) (Result, error) {
	start := time.Now()
	res, err := p.greedy.Optimize(ctx, in)
	optimizeDuration.WithLabelValues(string(StrategyGreedy)).Observe(time.Since(start).Seconds())
	return res, err
}

func (p *Planner) publish(ev events.StrategyEvent) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrInfeasible):
		return "infeasible"
	default:
		return "error"
	}
}
