package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/crewroster/core/events"
	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
	"github.com/kilianp07/crewroster/internal/eventbus"
)

type stubOptimizer struct {
	res   Result
	err   error
	calls int
}

func (s *stubOptimizer) Optimize(context.Context, Input) (Result, error) {
	s.calls++
	return s.res, s.err
}

func drain(ch <-chan eventbus.Event) []events.StrategyEvent {
	var out []events.StrategyEvent
	for {
		select {
		case ev := <-ch:
			if se, ok := ev.(events.StrategyEvent); ok {
				out = append(out, se)
			}
		default:
			return out
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": StrategyGreedy, "greedy": StrategyGreedy, " Solver ": StrategySolver} {
		got, err := ParseStrategy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStrategy("annealing")
	assert.Error(t, err)
}

func TestPlannerFallsBackToGreedy(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	overrideSolve(t, func([]float64, mat.Matrix, []float64) ([]float64, error) {
		return nil, errors.New("singular basis")
	})
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	in := newInput([]model.Flight{flightAt(1, 0, 8, 2, "A320")}, []model.Crew{crewMember(1, model.RankCaptain)},
		qualified("A320", 1), nil, nil, rules.Defaults())
	p := NewPlanner(time.Second, bus, nil)

	res, err := p.Plan(context.Background(), "run-1", StrategySolver, in)
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.Equal(t, StrategyGreedy, res.Strategy)
	assert.Contains(t, res.Reason, "singular basis")
	require.Len(t, res.Assignments, 1)
	assert.True(t, res.Assignments[0].Assigned())

	assert.Equal(t, 1.0, testutil.ToFloat64(solverAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(solverFallbacks.WithLabelValues("infeasible")))

	evs := drain(sub)
	require.Len(t, evs, 3)
	assert.Equal(t, "solver_attempt", evs[0].Action)
	assert.Equal(t, "solver_failure", evs[1].Action)
	assert.Equal(t, "greedy_fallback", evs[2].Action)
	for _, ev := range evs {
		assert.Equal(t, "run-1", ev.RunID)
	}
}

func TestPlannerSolverSuccess(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	greedy := &stubOptimizer{}
	solver := &stubOptimizer{res: Result{Strategy: StrategySolver}}
	p := NewPlannerWith(greedy, solver, nil, nil)

	res, err := p.Plan(context.Background(), "run-2", StrategySolver, Input{})
	require.NoError(t, err)
	assert.Equal(t, StrategySolver, res.Strategy)
	assert.False(t, res.FellBack)
	assert.Equal(t, 0, greedy.calls)
	assert.Equal(t, 0.0, testutil.ToFloat64(solverFallbacks.WithLabelValues("timeout")))
}

func TestPlannerTimeoutReason(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	greedy := &stubOptimizer{res: Result{Strategy: StrategyGreedy}}
	solver := &stubOptimizer{err: ErrTimeout}
	p := NewPlannerWith(greedy, solver, nil, nil)

	res, err := p.Plan(context.Background(), "run-3", StrategySolver, Input{})
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.Equal(t, 1, greedy.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(solverFallbacks.WithLabelValues("timeout")))
}

func TestPlannerGreedyOnly(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	greedy := &stubOptimizer{res: Result{Strategy: StrategyGreedy}}
	p := NewPlannerWith(greedy, nil, nil, nil)

	_, err := p.Plan(context.Background(), "run-4", StrategySolver, Input{})
	require.NoError(t, err)
	assert.Equal(t, 1, greedy.calls)
	assert.Equal(t, 0.0, testutil.ToFloat64(solverAttempts))
}

func TestPlannerCancelledContext(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	greedy := &stubOptimizer{}
	solver := &stubOptimizer{err: context.Canceled}
	p := NewPlannerWith(greedy, solver, nil, nil)

	_, err := p.Plan(ctx, "run-5", StrategySolver, Input{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, greedy.calls)
}

func TestPlannerOverlapFallsBackToGreedy(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	bus := eventbus.New()
	defer bus.Close()

	flights, prefs := overnightPair()
	crew := []model.Crew{crewMember(1, model.RankFirstOfficer), crewMember(2, model.RankFirstOfficer)}
	in := newInput(flights, crew, qualified("A320", 1, 2), prefs, nil, rules.Defaults())

	res, err := NewPlanner(time.Second, bus, nil).Plan(context.Background(), "run-overlap", StrategySolver, in)
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.Equal(t, StrategyGreedy, res.Strategy)
	require.Len(t, res.Assignments, 2)
	assert.Equal(t, int64(1), crewOf(res.Assignments[0]))
	assert.Equal(t, int64(2), crewOf(res.Assignments[1]))
}
