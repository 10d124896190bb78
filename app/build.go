package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	apicrew "github.com/kilianp07/crewroster/api/crew"
	apijournal "github.com/kilianp07/crewroster/api/journal"
	"github.com/kilianp07/crewroster/config"
	"github.com/kilianp07/crewroster/core/journal"
	coremetrics "github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/core/roster"
	"github.com/kilianp07/crewroster/core/rules"
	"github.com/kilianp07/crewroster/core/store"
	"github.com/kilianp07/crewroster/infra/logger"
	inframetrics "github.com/kilianp07/crewroster/infra/metrics"
	"github.com/kilianp07/crewroster/infra/mqtt"
	"github.com/kilianp07/crewroster/infra/sqlite"
)

// NewFromConfig opens the store, metrics sinks, journal and optional MQTT
// notifier described by cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	var versions rules.Versions
	if cfg.Rules.VersionsFile != "" {
		if versions, err = rules.LoadVersions(cfg.Rules.VersionsFile); err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	jr, err := journal.Open(cfg.Journal)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("journal: %w", err)
	}
	strategy, err := roster.ParseStrategy(cfg.Solver.Strategy)
	if err != nil {
		_ = st.Close()
		_ = jr.Close()
		return nil, err
	}

	svc, err := New(Deps{
		Store:           st,
		Sink:            sink,
		Journal:         jr,
		Versions:        versions,
		DefaultVersion:  cfg.Rules.DefaultVersion,
		DefaultStrategy: strategy,
		SolverTimeout:   cfg.Solver.Timeout,
		Logger:          logger.New("service"),
	})
	if err != nil {
		return nil, err
	}
	if c, ok := sink.(interface{ Close() }); ok {
		svc.closers = append(svc.closers, closeFunc(func() error { c.Close(); return nil }))
	}
	if cfg.Notify.Enabled {
		client, err := mqtt.NewPahoClient(cfg.Notify.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.Notify(client, cfg.Notify.MQTT.TopicPrefix)
		svc.closers = append(svc.closers, closeFunc(func() error { client.Disconnect(); return nil }))
	}
	return svc, nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	var st interface {
		store.Store
		store.Writer
	}
	switch cfg.Driver {
	case "memory":
		st = store.NewMemory()
	default:
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		st = s
	}
	if cfg.Seed != "" {
		if err := importFile(ctx, st, cfg.Seed); err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	return st, nil
}

func importFile(ctx context.Context, w store.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	ds, err := store.ReadDataset(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return store.Import(ctx, w, ds)
}

// Import loads a JSON dataset file into the store.
func (s *Service) Import(ctx context.Context, path string) error {
	w, ok := s.store.(store.Writer)
	if !ok {
		return errors.New("store does not accept imports")
	}
	return importFile(ctx, w, path)
}

// Run serves the Prometheus endpoint on addr until ctx is cancelled, along
// with the HTTP API when api is enabled. Events keep flowing to the sinks and
// notifier meanwhile.
func (s *Service) Run(ctx context.Context, addr string, api config.APIConfig) error {
	if addr == "" {
		<-ctx.Done()
		return nil
	}
	var routes []inframetrics.Route
	if api.Enabled {
		routes = append(routes,
			inframetrics.Route{Pattern: "/api/journal", Handler: apijournal.NewHandler(s, api.Token)},
			inframetrics.Route{Pattern: "/api/crew/", Handler: apicrew.NewHandler(s, api.DutyLimitHours)},
		)
	}
	return inframetrics.StartPromServer(ctx, addr, prometheus.DefaultGatherer, routes...)
}
