package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [VERSION]",
	Short: "Show the effective constraints of a version",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	version := ""
	if len(args) == 1 {
		version = args[0]
	}
	ctx := runCtx(cmd)
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	cfg, cats, err := s.svc.Rules(ctx, version)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, map[string]any{"config": cfg, "categories": cats})
	}
	_, _ = headColor.Fprintf(w, "rules %s\n", cfg.Version)
	_, _ = fmt.Fprintf(w, "  max duty/day        %.1fh\n", cfg.MaxDutyHoursPerDay)
	_, _ = fmt.Fprintf(w, "  min rest after duty %.1fh\n", cfg.MinRestHoursAfterDuty)
	_, _ = fmt.Fprintf(w, "  max FDP             %.1fh\n", cfg.MaxFDPHours)
	_, _ = headColor.Fprintln(w, "hard rules")
	for _, r := range cats.Hard {
		_, _ = fmt.Fprintf(w, "  %s\n", r)
	}
	_, _ = headColor.Fprintln(w, "soft rules")
	for _, r := range cats.Soft {
		_, _ = fmt.Fprintf(w, "  %s\n", r)
	}
	return nil
}
