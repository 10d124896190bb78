package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/crewroster/app"
	"github.com/kilianp07/crewroster/core/store"
	"github.com/kilianp07/crewroster/infra/logger"
	"github.com/kilianp07/crewroster/infra/metrics"
	"github.com/kilianp07/crewroster/internal/eventbus"
)

// RunScenario generates the roster of sc on a fresh in-memory store and
// checks the outcome against sc.Expected.
func RunScenario(t *testing.T, sc *Scenario) {
	ctx := context.Background()
	ds, err := sc.Dataset()
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	start, end, err := sc.Period()
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	m := store.NewMemory()
	if err := store.Import(ctx, m, ds); err != nil {
		t.Fatalf("import: %v", err)
	}
	sink, err := metrics.NewPromSink(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	svc, err := app.New(app.Deps{Store: m, Sink: sink, Bus: eventbus.New(), Logger: logger.NopLogger{}})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	run, err := svc.GenerateRoster(ctx, start, end, "", sc.Strategy)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	k := run.KPIs
	if k.FlightsAssigned != sc.Expected.Assigned {
		t.Errorf("scenario %s expected %d assigned, got %d", sc.Name, sc.Expected.Assigned, k.FlightsAssigned)
	}
	if got := k.FlightsTotal - k.FlightsAssigned; got != sc.Expected.Unassigned {
		t.Errorf("scenario %s expected %d unassigned, got %d", sc.Name, sc.Expected.Unassigned, got)
	}
	for _, a := range run.Assignments {
		want, ok := sc.Expected.Reasons[a.FlightNo]
		if ok && a.Reason != want {
			t.Errorf("scenario %s flight %s: expected reason %q, got %q", sc.Name, a.FlightNo, want, a.Reason)
		}
	}

	if sc.Expected.Conflicts == nil {
		return
	}
	found, err := svc.DetectConflicts(ctx, start, end, "", "", "")
	if err != nil {
		t.Fatalf("conflicts: %v", err)
	}
	if len(found) != *sc.Expected.Conflicts {
		t.Errorf("scenario %s expected %d conflicts, got %d: %+v", sc.Name, *sc.Expected.Conflicts, len(found), found)
	}
}
