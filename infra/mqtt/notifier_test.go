package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewroster/core/events"
	"github.com/kilianp07/crewroster/internal/eventbus"
)

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	bodies [][]byte
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.bodies = append(f.bodies, payload)
	return f.err
}

func (f *fakePublisher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.topics...)
}

func TestNotifierTopics(t *testing.T) {
	pub := &fakePublisher{}
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := NewNotifier(pub, "").Start(ctx, bus)

	bus.Publish(events.RosterEvent{RunID: "r1", FlightsTotal: 3})
	bus.Publish(events.StrategyEvent{RunID: "r1", Action: "solver_attempt"})
	bus.Publish(events.StrategyEvent{RunID: "r1", Strategy: "greedy", Action: "greedy_fallback", Err: errors.New("infeasible")})
	bus.Publish(events.DisruptionEvent{Type: "crew_unavailability", CrewID: 7, Proposed: 2})

	want := []string{
		"crewroster/roster/generated",
		"crewroster/roster/fallback",
		"crewroster/disruptions/crew_unavailability",
		"crewroster/crew/7/disruptions",
	}
	require.Eventually(t, func() bool { return len(pub.seen()) == len(want) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, pub.seen())

	var roster events.RosterEvent
	require.NoError(t, json.Unmarshal(pub.bodies[0], &roster))
	assert.Equal(t, "r1", roster.RunID)
	var fb map[string]string
	require.NoError(t, json.Unmarshal(pub.bodies[1], &fb))
	assert.Equal(t, "infeasible", fb["error"])

	bus.Close()
	<-done
}

func TestNotifierKeepsRunningOnPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("offline")}
	bus := eventbus.New()
	done := NewNotifier(pub, "ops").Start(context.Background(), bus)

	bus.Publish(events.DisruptionEvent{Type: "delay", FlightNo: "AI101"})
	bus.Publish(events.DisruptionEvent{Type: "cancellation", FlightNo: "AI102"})
	require.Eventually(t, func() bool { return len(pub.seen()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"ops/disruptions/delay", "ops/disruptions/cancellation"}, pub.seen())
	bus.Close()
	<-done
}
