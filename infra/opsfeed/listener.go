// Package opsfeed consumes disruption reports published by operations
// systems over MQTT and hands them to the disruption handlers.
package opsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/crewroster/core/disruption"
	"github.com/kilianp07/crewroster/infra/logger"
	infmqtt "github.com/kilianp07/crewroster/infra/mqtt"
)

// Handler runs the disruption handlers.
type Handler interface {
	HandleDelay(ctx context.Context, flightNo string, minutes int) (disruption.Patch, error)
	HandleCancellation(ctx context.Context, flightNo string) (disruption.Patch, error)
	HandleCrewUnavailability(ctx context.Context, crewID int64, from, to time.Time) (disruption.Patch, error)
}

// Report is the JSON body of an ops message. The topic suffix selects the
// handler: delay, cancel or unavailable.
type Report struct {
	FlightNo string `json:"flight_no"`
	Minutes  int    `json:"delay_minutes"`
	CrewID   int64  `json:"crew_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

var errUnknownKind = errors.New("unknown report kind")

// Listener subscribes to <prefix>/ops/+ and handles every report.
type Listener struct {
	cli     paho.Client
	topic   string
	handler Handler
	log     logger.Logger

	received *prometheus.CounterVec
	failed   *prometheus.CounterVec
}

// NewListener connects a dedicated client to the broker of cfg.
func NewListener(cfg infmqtt.Config, h Handler, reg prometheus.Registerer) (*Listener, error) {
	opts, err := infmqtt.NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	id := cfg.ClientID
	if id != "" {
		id += "-ops"
	} else {
		id = "ops-" + uuid.NewString()
	}
	opts.SetClientID(id)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	l, err := newListener(cli, cfg.TopicPrefix, h, reg)
	if err != nil {
		cli.Disconnect(250)
		return nil, err
	}
	return l, nil
}

func newListener(cli paho.Client, prefix string, h Handler, reg prometheus.Registerer) (*Listener, error) {
	if prefix == "" {
		prefix = infmqtt.DefaultTopicPrefix
	}
	l := &Listener{
		cli:     cli,
		topic:   strings.TrimSuffix(prefix, "/") + "/ops/+",
		handler: h,
		log:     logger.New("opsfeed"),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crewroster_ops_reports_total", Help: "Number of ops reports received",
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crewroster_ops_reports_failed_total", Help: "Number of ops reports that could not be handled",
		}, []string{"kind"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{l.received, l.failed} {
			if err := reg.Register(c); err != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					return nil, err
				}
			}
		}
	}
	return l, nil
}

// Run subscribes and handles reports until ctx is done, then disconnects.
func (l *Listener) Run(ctx context.Context) error {
	token := l.cli.Subscribe(l.topic, 1, func(_ paho.Client, msg paho.Message) {
		kind := msg.Topic()[strings.LastIndex(msg.Topic(), "/")+1:]
		if _, err := l.process(ctx, kind, msg.Payload()); err != nil {
			l.log.Errorf("ops report %s: %v", msg.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", l.topic, token.Error())
	}
	l.log.Infof("listening for ops reports on %s", l.topic)
	<-ctx.Done()
	if l.cli.IsConnected() {
		l.cli.Unsubscribe(l.topic).WaitTimeout(time.Second)
		l.cli.Disconnect(250)
	}
	return nil
}

func (l *Listener) process(ctx context.Context, kind string, payload []byte) (disruption.Patch, error) {
	l.received.WithLabelValues(kind).Inc()
	p, err := l.dispatch(ctx, kind, payload)
	if err != nil {
		l.failed.WithLabelValues(kind).Inc()
		return disruption.Patch{}, err
	}
	if !p.Found() {
		l.log.Warnf("ops report %s: %s", kind, p.Error)
	}
	return p, nil
}

func (l *Listener) dispatch(ctx context.Context, kind string, payload []byte) (disruption.Patch, error) {
	var r Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return disruption.Patch{}, err
	}
	switch kind {
	case "delay":
		if r.FlightNo == "" || r.Minutes <= 0 {
			return disruption.Patch{}, errors.New("delay needs flight_no and positive delay_minutes")
		}
		return l.handler.HandleDelay(ctx, r.FlightNo, r.Minutes)
	case "cancel":
		if r.FlightNo == "" {
			return disruption.Patch{}, errors.New("cancel needs flight_no")
		}
		return l.handler.HandleCancellation(ctx, r.FlightNo)
	case "unavailable":
		if r.CrewID <= 0 {
			return disruption.Patch{}, errors.New("unavailable needs crew_id")
		}
		from, err := time.Parse(time.DateOnly, r.From)
		if err != nil {
			return disruption.Patch{}, fmt.Errorf("from: %w", err)
		}
		to := from
		if r.To != "" {
			if to, err = time.Parse(time.DateOnly, r.To); err != nil {
				return disruption.Patch{}, fmt.Errorf("to: %w", err)
			}
		}
		return l.handler.HandleCrewUnavailability(ctx, r.CrewID, from, to)
	}
	return disruption.Patch{}, fmt.Errorf("%w %q", errUnknownKind, kind)
}
