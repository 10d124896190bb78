package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewroster/core/journal"
	"github.com/kilianp07/crewroster/infra/kpi"
	"github.com/kilianp07/crewroster/pkg/export"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a JSON dataset of crew, flights and constraints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := runCtx(cmd)
		s, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.svc.Import(ctx, args[0]); err != nil {
			return err
		}
		_, _ = okColor.Fprintf(cmd.OutOrStdout(), "imported %s\n", args[0])
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the committed duties of a period",
	RunE:  runCalendar,
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List journaled roster runs, audits and disruptions",
	RunE:  runJournal,
}

var workloadCmd = &cobra.Command{
	Use:   "workload CREW_ID",
	Short: "Show the daily workload recorded for a crew member",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkload,
}

func init() {
	addPeriodFlags(calendarCmd)
	calendarCmd.Flags().Int64("crew", 0, "restrict to one crew member")
	calendarCmd.Flags().String("format", "csv", "csv or json")

	journalCmd.Flags().String("kind", "", "roster, conflicts or disruption")
	journalCmd.Flags().String("run", "", "run identifier")
	journalCmd.Flags().Duration("since", 7*24*time.Hour, "look-back")

	addPeriodFlags(workloadCmd)
	workloadCmd.Flags().String("db", "workload.db", "workload database written by the workload sink")
	workloadCmd.Flags().Float64("limit", 10, "daily duty limit in hours")
	workloadCmd.Flags().Bool("backfill", false, "rebuild the period from committed duties first")

	rootCmd.AddCommand(importCmd, calendarCmd, journalCmd, workloadCmd)
}

func runCalendar(cmd *cobra.Command, _ []string) error {
	from, to, err := periodFlags(cmd)
	if err != nil {
		return err
	}
	crewID, _ := cmd.Flags().GetInt64("crew")
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
	entries, err := s.svc.RosterCalendar(ctx, from, to, crewID)
	if err != nil {
		return err
	}
	return export.WriteCalendar(cmd.OutOrStdout(), f, entries)
}

func runJournal(cmd *cobra.Command, _ []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	runID, _ := cmd.Flags().GetString("run")
	since, _ := cmd.Flags().GetDuration("since")
	ctx := runCtx(cmd)
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	recs, err := s.svc.Journal(ctx, journal.Query{Start: time.Now().Add(-since), Kind: journal.Kind(kind), RunID: runID})
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, recs)
	}
	for _, r := range recs {
		line := fmt.Sprintf("%s %-10s %s %s", r.Timestamp.Format(time.RFC3339), r.Kind, r.RunID, r.Summary)
		if r.Error != "" {
			_, _ = errColor.Fprintln(w, line+" error="+r.Error)
			continue
		}
		_, _ = fmt.Fprintln(w, line)
	}
	return nil
}

func runWorkload(cmd *cobra.Command, args []string) error {
	var crewID int64
	if _, err := fmt.Sscan(args[0], &crewID); err != nil {
		return fmt.Errorf("invalid crew id %q", args[0])
	}
	from, to, err := periodFlags(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("db")
	limit, _ := cmd.Flags().GetFloat64("limit")
	backfill, _ := cmd.Flags().GetBool("backfill")
	if !backfill {
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}
	st, err := kpi.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if backfill {
		ctx := runCtx(cmd)
		s, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		n, err := s.svc.BackfillWorkload(ctx, st, from, to)
		s.Close()
		if err != nil {
			return err
		}
		_, _ = okColor.Fprintf(cmd.ErrOrStderr(), "backfilled %d duties\n", n)
	}
	recs, err := st.Query(crewID, from, to)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, recs)
	}
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s duties %d  duty %.1fh  block %.1fh  night %d  utilization %.0f%%\n",
			r.Date.Format("2006-01-02"), r.Duties, r.DutyHours, r.BlockHours, r.NightDuties, r.Utilization(limit)*100)
	}
	return nil
}
