package roster

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/crewroster/core/model"
)

// DefaultSolverTimeout bounds one solver run.
const DefaultSolverTimeout = 5 * time.Second

const (
	simplexTolerance = 1e-9
	integralCutoff   = 0.5
)

// ConstraintSolver assigns crew by solving the assignment model as a linear
// program. Each flight takes exactly one eligible crew member and each crew
// member flies at most once per calendar day; the objective maximizes the
// total preference score. The constraint matrix is totally unimodular so the
// simplex vertex is integral.
type ConstraintSolver struct {
	Timeout time.Duration
}

// NewConstraintSolver returns a solver bounded by timeout, or by
// DefaultSolverTimeout when timeout is not positive.
func NewConstraintSolver(timeout time.Duration) *ConstraintSolver {
	if timeout <= 0 {
		timeout = DefaultSolverTimeout
	}
	return &ConstraintSolver{Timeout: timeout}
}

// variable is one eligible (flight, crew) pair.
type variable struct {
	flight int
	crew   int
	pref   float64
}

type lpModel struct {
	flights []model.Flight
	vars    []variable
	// byFlight lists the variable indexes of each flight.
	byFlight [][]int
	// groups lists the variables sharing a crew member and a day, when more
	// than one.
	groups [][]int
}

// solveLP runs the simplex method on the standard form problem
// min cᵀx s.t. Ax = b, x ≥ 0.
func solveLP(c []float64, A mat.Matrix, b []float64) ([]float64, error) {
	_, x, err := lp.Simplex(c, A, b, simplexTolerance, nil)
	return x, err
}

// lpSolve points to the function used to solve the LP. Tests override it to
// simulate solver failures.
var lpSolve = solveLP

// Optimize builds and solves the model. It returns ErrInfeasible or
// ErrTimeout when no roster can be decoded within the budget.
func (s *ConstraintSolver) Optimize(ctx context.Context, in Input) (Result, error) {
	flights := sortedFlights(in.Flights)
	in.Flights = flights
	if len(flights) == 0 {
		return Result{Assignments: []Assignment{}, KPIs: ComputeKPIs(in, nil), Strategy: StrategySolver}, nil
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSolverTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m, err := buildModel(in, flights)
	if err != nil {
		return Result{}, err
	}
	c, A, b, err := m.standardForm(ctx, in)
	if err != nil {
		return Result{}, err
	}

	type solution struct {
		x   []float64
		err error
	}
	done := make(chan solution, 1)
	solve := lpSolve
	go func() {
		x, err := solve(c, A, b)
		done <- solution{x: x, err: err}
	}()
	var sol solution
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return Result{}, ctx.Err()
	case sol = <-done:
	}
	if sol.err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInfeasible, sol.err)
	}
	asg, err := m.decode(in, sol.x)
	if err != nil {
		return Result{}, err
	}
	return Result{Assignments: asg, KPIs: ComputeKPIs(in, asg), Strategy: StrategySolver}, nil
}

// buildModel creates one variable per qualified and available pair. Pairs
// left out are fixed to zero. A flight without any pair makes the whole model
// infeasible.
func buildModel(in Input, flights []model.Flight) (*lpModel, error) {
	m := &lpModel{flights: flights, byFlight: make([][]int, len(flights))}
	type crewDay struct {
		crew int
		day  time.Time
	}
	groupIdx := map[crewDay]int{}
	var groups [][]int
	for i, f := range flights {
		for j, c := range in.Crew {
			if !c.IsActive() || !in.Snapshot.Eligible(c.ID, f) {
				continue
			}
			v := len(m.vars)
			m.vars = append(m.vars, variable{flight: i, crew: j})
			m.byFlight[i] = append(m.byFlight[i], v)
			key := crewDay{crew: j, day: model.Day(flightDate(f))}
			g, ok := groupIdx[key]
			if !ok {
				g = len(groups)
				groupIdx[key] = g
				groups = append(groups, nil)
			}
			groups[g] = append(groups[g], v)
		}
		if len(m.byFlight[i]) == 0 {
			return nil, fmt.Errorf("%w: flight %s has no eligible crew", ErrInfeasible, f.FlightNo)
		}
	}
	for _, g := range groups {
		if len(g) > 1 {
			m.groups = append(m.groups, g)
		}
	}
	return m, nil
}

// standardForm lays out the rows as one equality per flight followed by one
// row per crew-day group with its own slack column. Coefficient rows and
// preference scores are filled concurrently.
func (m *lpModel) standardForm(ctx context.Context, in Input) ([]float64, *mat.Dense, []float64, error) {
	nF, nG, nV := len(m.byFlight), len(m.groups), len(m.vars)
	rows, cols := nF+nG, nV+nG
	A := mat.NewDense(rows, cols, nil)
	c := make([]float64, cols)
	b := make([]float64, rows)
	for i := range b {
		b[i] = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range m.byFlight {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := m.flights[i]
			for _, v := range m.byFlight[i] {
				A.Set(i, v, 1)
				m.vars[v].pref = crewPreferenceScore(in.Snapshot, in.Crew[m.vars[v].crew].ID, f)
			}
			return nil
		})
	}
	for k, grp := range m.groups {
		k, grp := k, grp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, v := range grp {
				A.Set(nF+k, v, 1)
			}
			A.Set(nF+k, nV+k, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, nil, fmt.Errorf("%w while building model", ErrTimeout)
		}
		return nil, nil, nil, err
	}
	for v := range m.vars {
		c[v] = -m.vars[v].pref
	}
	return c, A, b, nil
}

// decode picks the selected crew of each flight and checks the solution is
// integral, respects the one-duty-per-day limit and never gives a crew member
// overlapping duties. Flights are visited in departure order, so a duty that
// starts before the latest end already held by its crew member overlaps it.
func (m *lpModel) decode(in Input, x []float64) ([]Assignment, error) {
	if len(x) < len(m.vars) {
		return nil, fmt.Errorf("%w: short solution vector", ErrInfeasible)
	}
	type crewDay struct {
		crew int64
		day  time.Time
	}
	used := map[crewDay]string{}
	type held struct {
		flightNo string
		end      time.Time
	}
	busy := map[int64]held{}
	out := make([]Assignment, 0, len(m.flights))
	for i, f := range m.flights {
		best := -1
		for _, v := range m.byFlight[i] {
			if best < 0 || x[v] > x[best] {
				best = v
			}
		}
		if x[best] <= integralCutoff {
			return nil, fmt.Errorf("%w: fractional solution for flight %s", ErrInfeasible, f.FlightNo)
		}
		v := m.vars[best]
		c := in.Crew[v.crew]
		key := crewDay{crew: c.ID, day: model.Day(flightDate(f))}
		if other, ok := used[key]; ok {
			return nil, fmt.Errorf("%w: crew %d holds %s and %s on the same day", ErrInfeasible, c.ID, other, f.FlightNo)
		}
		used[key] = f.FlightNo
		if prev, ok := busy[c.ID]; ok {
			if f.SchedDep.Before(prev.end) {
				return nil, fmt.Errorf("%w: crew %d holds overlapping %s and %s", ErrInfeasible, c.ID, prev.flightNo, f.FlightNo)
			}
		}
		busy[c.ID] = held{flightNo: f.FlightNo, end: f.SchedArr}
		out = append(out, assigned(f, c, v.pref))
	}
	return out, nil
}
