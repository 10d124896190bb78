// Package mqtt publishes roster notifications to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/kilianp07/crewroster/core/events"
	coremqtt "github.com/kilianp07/crewroster/core/mqtt"
	"github.com/kilianp07/crewroster/infra/logger"
	"github.com/kilianp07/crewroster/internal/eventbus"
)

// DefaultTopicPrefix roots every notification topic.
const DefaultTopicPrefix = "crewroster"

// Notifier relays bus events to MQTT topics:
//
//	<prefix>/roster/generated           committed rosters
//	<prefix>/roster/fallback            greedy fallbacks of the planner
//	<prefix>/disruptions/<type>         handled disruptions
//	<prefix>/crew/<id>/disruptions      disruptions naming a crew member
type Notifier struct {
	pub    coremqtt.Publisher
	prefix string
	log    logger.Logger
}

// NewNotifier returns a Notifier. An empty prefix selects DefaultTopicPrefix.
func NewNotifier(pub coremqtt.Publisher, prefix string) *Notifier {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Notifier{pub: pub, prefix: prefix, log: logger.New("mqtt-notifier")}
}

// Start forwards events until ctx is cancelled or the bus is closed. The
// returned channel is closed once forwarding stopped.
func (n *Notifier) Start(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	return eventbus.Forward(ctx, bus, func(ev eventbus.Event) {
		for _, m := range n.messages(ev) {
			n.send(ctx, m.topic, m.body)
		}
	})
}

type message struct {
	topic string
	body  any
}

func (n *Notifier) messages(ev eventbus.Event) []message {
	switch e := ev.(type) {
	case events.RosterEvent:
		return []message{{n.prefix + "/roster/generated", e}}
	case events.StrategyEvent:
		if e.Action != "greedy_fallback" {
			return nil
		}
		body := map[string]string{"run_id": e.RunID, "strategy": e.Strategy}
		if e.Err != nil {
			body["error"] = e.Err.Error()
		}
		return []message{{n.prefix + "/roster/fallback", body}}
	case events.DisruptionEvent:
		out := []message{{n.prefix + "/disruptions/" + e.Type, e}}
		if e.CrewID != 0 {
			out = append(out, message{n.prefix + "/crew/" + strconv.FormatInt(e.CrewID, 10) + "/disruptions", e})
		}
		return out
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, topic string, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		n.log.Errorf("encode %s: %v", topic, err)
		return
	}
	if err := n.pub.Publish(ctx, topic, payload); err != nil {
		n.log.Warnf("publish %s: %v", topic, err)
	}
}
