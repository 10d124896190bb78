package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/crewroster/core/scheduler"
	"github.com/kilianp07/crewroster/infra/logger"
	"github.com/kilianp07/crewroster/infra/opsfeed"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"serve-metrics"},
	Short:   "Expose Prometheus metrics and the HTTP API until interrupted",
	Long: "Expose Prometheus metrics and the HTTP API until interrupted. " +
		"When scheduling is enabled the upcoming window is regenerated on every interval, " +
		"and with notify.listen set disruption reports are consumed from MQTT.",
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	logger.New("main").Infof("crewroster serving, metrics on %q", cfg.Metrics.PrometheusAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.svc.Run(gctx, cfg.Metrics.PrometheusAddr, cfg.API) })
	if cfg.Notify.Enabled && cfg.Notify.Listen {
		l, err := opsfeed.NewListener(cfg.Notify.MQTT, s.svc, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		g.Go(func() error { return l.Run(gctx) })
	}
	if cfg.Schedule.Enabled {
		sched := scheduler.New(cfg.Schedule, func(ctx context.Context, from, to time.Time, rules, strategy string) error {
			_, err := s.svc.GenerateRoster(ctx, from, to, rules, strategy)
			return err
		}, logger.New("scheduler"))
		g.Go(func() error { return sched.Run(gctx) })
	}
	return g.Wait()
}
