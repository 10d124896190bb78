package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewroster/pkg/export"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and commit the roster of a period",
	RunE:  runGenerate,
}

func init() {
	addPeriodFlags(generateCmd)
	generateCmd.Flags().String("rules", "", "constraints version")
	generateCmd.Flags().String("strategy", "", "greedy or solver")
	generateCmd.Flags().String("export", "", "write the assignments to this file")
	generateCmd.Flags().String("format", "csv", "export format: csv or json")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	from, to, err := periodFlags(cmd)
	if err != nil {
		return err
	}
	version, _ := cmd.Flags().GetString("rules")
	strategy, _ := cmd.Flags().GetString("strategy")
	exportPath, _ := cmd.Flags().GetString("export")
	format, _ := cmd.Flags().GetString("format")
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	ctx := runCtx(cmd)
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.svc.GenerateRoster(ctx, from, to, version, strategy)
	if err != nil {
		return err
	}
	if exportPath != "" {
		out, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		if err := export.WriteAssignments(out, f, run.Assignments); err != nil {
			_ = out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, run)
	}
	k := run.KPIs
	_, _ = headColor.Fprintf(w, "Roster %s\n", run.RunID)
	_, _ = fmt.Fprintf(w, "period     %s to %s\n", run.PeriodStart.Format("2006-01-02"), run.PeriodEnd.Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "rules      %s\n", run.RulesVersion)
	strat := string(run.Strategy)
	if run.FellBack {
		strat += warnColor.Sprintf(" (fallback: %s)", run.Reason)
	}
	_, _ = fmt.Fprintf(w, "strategy   %s\n", strat)
	_, _ = fmt.Fprintf(w, "assigned   %d/%d %s\n", k.FlightsAssigned, k.FlightsTotal, rate(k.AssignmentRate))
	_, _ = fmt.Fprintf(w, "compliance %s\n", rate(k.ComplianceRate))
	_, _ = fmt.Fprintf(w, "duties     avg %.2f  min %d  max %d  fairness %.3f\n", k.AvgDutyPerCrew, k.MinDutyPerCrew, k.MaxDutyPerCrew, k.FairnessScore)
	_, _ = fmt.Fprintf(w, "preference %.2f\n", k.AvgPreferenceScore)
	for _, a := range run.Assignments {
		if !a.Assigned() {
			_, _ = fmt.Fprintf(w, "  %s %s %s\n", errColor.Sprint("UNASSIGNED"), a.FlightNo, a.Reason)
		}
	}
	return nil
}
