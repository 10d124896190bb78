package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewroster/app"
	"github.com/kilianp07/crewroster/config"
	"github.com/kilianp07/crewroster/core/monitoring"
	"github.com/kilianp07/crewroster/infra/logger"
	inframon "github.com/kilianp07/crewroster/infra/monitoring"
)

var (
	cfgPath    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "crewroster",
	Short:         "Crew rostering engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file. A missing default file yields
// the built-in configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// session is an opened service with its log output.
type session struct {
	svc  *app.Service
	logs io.Closer
}

func (s *session) Close() {
	if err := s.svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
	monitoring.Flush(2 * time.Second)
	_ = s.logs.Close()
}

// newMonitor reports to Sentry when a DSN is configured and to the log
// otherwise.
func newMonitor(cfg config.SentryConfig) (monitoring.Monitor, error) {
	if !cfg.Enabled() {
		return monitoring.LogMonitor{Log: logger.New("monitor")}, nil
	}
	return inframon.NewSentryMonitor(cfg)
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logs := logger.Setup(cfg.Logging.Options())
	mon, err := newMonitor(cfg.Sentry)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("init monitoring: %w", err)
	}
	monitoring.Init(mon)
	svc, err := app.NewFromConfig(ctx, cfg)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	return &session{svc: svc, logs: logs}, nil
}

func parseDay(flag, v string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, v)
	}
	return t, nil
}

// periodFlags parses --from and --to. --to defaults to --from.
func periodFlags(cmd *cobra.Command) (time.Time, time.Time, error) {
	fromS, _ := cmd.Flags().GetString("from")
	toS, _ := cmd.Flags().GetString("to")
	from, err := parseDay("from", fromS)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if toS == "" {
		return from, from, nil
	}
	to, err := parseDay("to", toS)
	return from, to, err
}

func addPeriodFlags(c *cobra.Command) {
	c.Flags().String("from", "", "first day of the period (YYYY-MM-DD)")
	c.Flags().String("to", "", "last day of the period, inclusive (defaults to --from)")
	_ = c.MarkFlagRequired("from")
}

func runCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
