package opsfeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewroster/core/disruption"
)

type call struct {
	kind     string
	flightNo string
	minutes  int
	crewID   int64
	from, to time.Time
}

type fakeHandler struct{ calls []call }

func (f *fakeHandler) HandleDelay(_ context.Context, flightNo string, minutes int) (disruption.Patch, error) {
	f.calls = append(f.calls, call{kind: "delay", flightNo: flightNo, minutes: minutes})
	return disruption.Patch{FlightNo: flightNo}, nil
}

func (f *fakeHandler) HandleCancellation(_ context.Context, flightNo string) (disruption.Patch, error) {
	f.calls = append(f.calls, call{kind: "cancel", flightNo: flightNo})
	if flightNo == "ZZ1" {
		return disruption.Patch{Error: disruption.ErrCodeFlightNotFound}, nil
	}
	return disruption.Patch{FlightNo: flightNo}, nil
}

func (f *fakeHandler) HandleCrewUnavailability(_ context.Context, crewID int64, from, to time.Time) (disruption.Patch, error) {
	f.calls = append(f.calls, call{kind: "unavailable", crewID: crewID, from: from, to: to})
	return disruption.Patch{CrewID: crewID}, nil
}

func newTestListener(t *testing.T) (*Listener, *fakeHandler) {
	t.Helper()
	h := &fakeHandler{}
	l, err := newListener(nil, "", h, prometheus.NewRegistry())
	require.NoError(t, err)
	return l, h
}

func TestListenerTopic(t *testing.T) {
	l, _ := newTestListener(t)
	assert.Equal(t, "crewroster/ops/+", l.topic)
	l, err := newListener(nil, "airline/", &fakeHandler{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "airline/ops/+", l.topic)
}

func TestProcessDispatchesReports(t *testing.T) {
	l, h := newTestListener(t)
	ctx := context.Background()

	_, err := l.process(ctx, "delay", []byte(`{"flight_no":"AI101","delay_minutes":45}`))
	require.NoError(t, err)
	_, err = l.process(ctx, "cancel", []byte(`{"flight_no":"ZZ1"}`))
	require.NoError(t, err, "an unknown flight is reported in the patch")
	_, err = l.process(ctx, "unavailable", []byte(`{"crew_id":3,"from":"2025-03-03"}`))
	require.NoError(t, err)

	require.Len(t, h.calls, 3)
	assert.Equal(t, call{kind: "delay", flightNo: "AI101", minutes: 45}, h.calls[0])
	assert.Equal(t, "ZZ1", h.calls[1].flightNo)
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, call{kind: "unavailable", crewID: 3, from: day, to: day}, h.calls[2])
	assert.Equal(t, 1.0, testutil.ToFloat64(l.received.WithLabelValues("delay")))
	assert.Equal(t, 0.0, testutil.ToFloat64(l.failed.WithLabelValues("cancel")))
}

func TestProcessRejectsBadReports(t *testing.T) {
	l, h := newTestListener(t)
	ctx := context.Background()
	cases := map[string]string{
		"delay":       `{"flight_no":"AI101"}`,
		"cancel":      `{}`,
		"unavailable": `{"crew_id":3,"from":"03/03/2025"}`,
		"divert":      `{"flight_no":"AI101"}`,
	}
	for kind, body := range cases {
		_, err := l.process(ctx, kind, []byte(body))
		assert.Error(t, err, kind)
	}
	_, err := l.process(ctx, "delay", []byte(`not json`))
	assert.Error(t, err)
	_, err = l.process(ctx, "divert", []byte(`{}`))
	assert.True(t, errors.Is(err, errUnknownKind))

	assert.Empty(t, h.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(l.failed.WithLabelValues("delay")))
}
