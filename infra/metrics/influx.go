package metrics

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/infra/logger"
)

const writeTimeout = 5 * time.Second

// InfluxSink writes roster events to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: writeTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRosterRun writes the run KPIs as one roster_run point.
func (s *InfluxSink) RecordRosterRun(run coremetrics.RosterRun) error {
	p := write.NewPointWithMeasurement("roster_run").
		AddTag("run_id", run.RunID).
		AddTag("strategy", run.Strategy).
		AddTag("fell_back", strconv.FormatBool(run.FellBack)).
		AddTag("rules_version", run.RulesVersion).
		AddField("flights_total", run.FlightsTotal).
		AddField("flights_assigned", run.FlightsAssigned).
		AddField("assignment_rate", round3(run.AssignmentRate)).
		AddField("compliance_rate", round3(run.ComplianceRate)).
		AddField("avg_preference_score", round3(run.AvgPreferenceScore)).
		AddField("fairness_score", round3(run.FairnessScore)).
		AddField("duration_ms", run.Duration.Milliseconds()).
		SetTime(run.Time)
	return s.write(p)
}

// RecordConflictScan writes one conflict_scan point with a field per
// severity.
func (s *InfluxSink) RecordConflictScan(scan coremetrics.ConflictScan) error {
	p := write.NewPointWithMeasurement("conflict_scan").
		AddField("total", scan.Total).
		AddField("crew_affected", scan.CrewAffected)
	sevs := make([]string, 0, len(scan.BySeverity))
	for sev := range scan.BySeverity {
		sevs = append(sevs, sev)
	}
	sort.Strings(sevs)
	for _, sev := range sevs {
		p = p.AddField(sev, scan.BySeverity[sev])
	}
	return s.write(p.SetTime(scan.Time))
}

// RecordDisruption writes one disruption point.
func (s *InfluxSink) RecordDisruption(ev coremetrics.DisruptionEvent) error {
	p := write.NewPointWithMeasurement("disruption").
		AddTag("type", ev.Type).
		AddTag("found", strconv.FormatBool(ev.Found))
	if ev.FlightNo != "" {
		p = p.AddTag("flight_no", ev.FlightNo)
	}
	if ev.CrewID != 0 {
		p = p.AddTag("crew_id", strconv.FormatInt(ev.CrewID, 10))
	}
	return s.write(p.AddField("proposed", ev.Proposed).SetTime(ev.Time))
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
