package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewroster/core/conflict"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Audit the committed roster of a period",
	RunE:  runConflicts,
}

func init() {
	addPeriodFlags(conflictsCmd)
	conflictsCmd.Flags().String("rules", "", "constraints version")
	conflictsCmd.Flags().String("severity", "", "high, medium or low")
	conflictsCmd.Flags().String("type", "", "overlapping_duties, hard_rule_violation, soft_rule_violation or qualification_mismatch")
	conflictsCmd.Flags().Bool("summary", false, "print counts only")
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, _ []string) error {
	from, to, err := periodFlags(cmd)
	if err != nil {
		return err
	}
	version, _ := cmd.Flags().GetString("rules")
	severity, _ := cmd.Flags().GetString("severity")
	typ, _ := cmd.Flags().GetString("type")
	summaryOnly, _ := cmd.Flags().GetBool("summary")

	ctx := runCtx(cmd)
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	w := cmd.OutOrStdout()
	if summaryOnly {
		sum, err := s.svc.ConflictSummary(ctx, from, to, version)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(w, sum)
		}
		_, _ = headColor.Fprintf(w, "%d conflicts, %d crew affected\n", sum.Total, sum.CrewAffected)
		for _, sev := range []conflict.Severity{conflict.SeverityHigh, conflict.SeverityMedium, conflict.SeverityLow} {
			_, _ = fmt.Fprintf(w, "  %-8s %d\n", severityColor(sev).Sprint(sev), sum.BySeverity[sev])
		}
		return nil
	}

	found, err := s.svc.DetectConflicts(ctx, from, to, version, severity, typ)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(w, found)
	}
	if len(found) == 0 {
		_, _ = okColor.Fprintln(w, "no conflicts")
		return nil
	}
	for _, c := range found {
		_, _ = fmt.Fprintf(w, "#%-4d %s %-22s crew %d %s: %s\n", c.ID,
			severityColor(c.Severity).Sprintf("%-6s", c.Severity), c.Type, c.CrewID, c.CrewName, c.Description)
	}
	return nil
}
