package metrics

import (
	"context"

	"github.com/kilianp07/crewroster/core/events"
	coremetrics "github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/infra/logger"
	"github.com/kilianp07/crewroster/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records handled
// disruptions on sink. It stops when the context is cancelled or the bus is
// closed; the returned channel is closed then.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) <-chan struct{} {
	if bus == nil || sink == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	return eventbus.Forward(ctx, bus, func(e events.DisruptionEvent) {
		err := coremetrics.RecordDisruption(sink, coremetrics.DisruptionEvent{
			Type:     e.Type,
			FlightNo: e.FlightNo,
			CrewID:   e.CrewID,
			Found:    e.Error == "",
			Proposed: e.Proposed,
			Time:     e.Time,
		})
		if err != nil {
			log.Warnf("record disruption: %v", err)
		}
	})
}
