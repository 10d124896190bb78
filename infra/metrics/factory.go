package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/crewroster/core/factory"
	coremetrics "github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/core/metrics/workload"
	"github.com/kilianp07/crewroster/infra/kpi"
)

// defaultDutyLimitHours matches the default daily duty limit of the rules.
const defaultDutyLimitHours = 10

// init registers the built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.Sink, error) {
		return NewPromSink(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterSink("workload", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			Path       string  `json:"path"`
			LimitHours float64 `json:"limit_hours"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.LimitHours <= 0 {
			c.LimitHours = defaultDutyLimitHours
		}
		var store workload.Store = workload.NewMemoryStore()
		if c.Path != "" {
			s, err := kpi.NewSQLiteStore(c.Path)
			if err != nil {
				return nil, err
			}
			store = s
		}
		return NewWorkloadSink(store, c.LimitHours, prometheus.DefaultRegisterer)
	})
}
