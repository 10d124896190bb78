package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewroster/core/disruption"
	"github.com/kilianp07/crewroster/core/model"
)

var delayCmd = &cobra.Command{
	Use:   "delay FLIGHT_NO MINUTES",
	Short: "Propose a schedule shift for a delayed flight",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[1])
		if err != nil || minutes < 0 {
			return fmt.Errorf("invalid delay %q", args[1])
		}
		return withPatch(cmd, func(s *session) (disruption.Patch, error) {
			return s.svc.HandleDelay(runCtx(cmd), args[0], minutes)
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel FLIGHT_NO",
	Short: "Propose reassignments for the crew of a cancelled flight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPatch(cmd, func(s *session) (disruption.Patch, error) {
			return s.svc.HandleCancellation(runCtx(cmd), args[0])
		})
	},
}

var unavailableCmd = &cobra.Command{
	Use:   "unavailable CREW_ID",
	Short: "Propose replacements for an unavailable crew member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		crewID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid crew id %q", args[0])
		}
		from, to, err := periodFlags(cmd)
		if err != nil {
			return err
		}
		return withPatch(cmd, func(s *session) (disruption.Patch, error) {
			return s.svc.HandleCrewUnavailability(runCtx(cmd), crewID, from, to)
		})
	},
}

var disruptionsCmd = &cobra.Command{
	Use:   "disruptions",
	Short: "List recorded disruptions",
	RunE:  runDisruptions,
}

func init() {
	addPeriodFlags(unavailableCmd)
	disruptionsCmd.Flags().String("flight", "", "flight number")
	disruptionsCmd.Flags().Int64("crew", 0, "crew identifier")
	disruptionsCmd.Flags().String("type", "", "delay, cancellation or crew_unavailability")
	disruptionsCmd.Flags().Int("days", disruption.DefaultHistoryDays, "look-back in days")
	rootCmd.AddCommand(delayCmd, cancelCmd, unavailableCmd, disruptionsCmd)
}

func withPatch(cmd *cobra.Command, fn func(*session) (disruption.Patch, error)) error {
	s, err := openSession(runCtx(cmd), cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	p, err := fn(s)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, p)
	}
	printPatch(w, p)
	return nil
}

func printPatch(w io.Writer, p disruption.Patch) {
	if !p.Found() {
		_, _ = errColor.Fprintf(w, "%s: %s\n", p.Type, p.Error)
		return
	}
	_, _ = headColor.Fprintf(w, "%s #%d\n", p.Type, p.DisruptionID)
	_, _ = fmt.Fprintln(w, p.Message)
	if p.Feasible != nil {
		state := okColor.Sprint("feasible")
		if !*p.Feasible {
			state = errColor.Sprint("exceeds duty limits")
		}
		_, _ = fmt.Fprintf(w, "new schedule %s - %s %s\n",
			p.NewSchedDep.Format("2006-01-02 15:04"), p.NewSchedArr.Format("15:04"), state)
	}
	for _, r := range p.Reassignments {
		_, _ = fmt.Fprintf(w, "  %s %s -> crew %d %s (score %.1f)\n",
			r.FlightDate.Format("2006-01-02"), r.FlightNo, r.CrewID, r.CrewName, r.PreferenceScore)
	}
}

func runDisruptions(cmd *cobra.Command, _ []string) error {
	flightNo, _ := cmd.Flags().GetString("flight")
	crewID, _ := cmd.Flags().GetInt64("crew")
	typ, _ := cmd.Flags().GetString("type")
	days, _ := cmd.Flags().GetInt("days")

	ctx := runCtx(cmd)
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	recs, err := s.svc.Disruptions(ctx, disruption.HistoryQuery{
		FlightNo: flightNo,
		CrewID:   crewID,
		Type:     model.DisruptionType(typ),
		DaysBack: days,
	})
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, recs)
	}
	for _, r := range recs {
		subject := ""
		if r.FlightNo != nil {
			subject = *r.FlightNo
		}
		if r.CrewID != nil {
			subject = fmt.Sprintf("crew %d", *r.CrewID)
		}
		_, _ = fmt.Fprintf(w, "#%-4d %s %-20s %-10s %s\n", r.ID, r.Date.Format("2006-01-02"), r.Type, subject, r.Resolution)
	}
	return nil
}
