package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/analytics"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print overall training statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd.Context(), rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			workouts, err := a.db.ListWorkouts(cmd.Context())
			if err != nil {
				return err
			}
			stats := analytics.ComputeStats(workouts, a.db.Now(), a.engine.Location())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	return cmd
}

func printStats(w io.Writer, s analytics.Stats) {
	fmt.Fprintf(w, "Workouts:          %d (%d completed)\n", s.TotalWorkouts, s.CompletedWorkouts)
	fmt.Fprintf(w, "Sets:              %d\n", s.TotalSets)
	fmt.Fprintf(w, "Volume:            %.1f kg\n", s.TotalVolume)
	fmt.Fprintf(w, "Avg duration:      %.0f min\n", s.AverageDurationMinutes)
	fmt.Fprintf(w, "Workouts per week: %.1f\n", s.WorkoutsPerWeek)
	fmt.Fprintf(w, "Streak:            %d days (longest %d)\n", s.CurrentStreak, s.LongestStreak)
	if s.FirstWorkout != nil && s.LastWorkout != nil {
		fmt.Fprintf(w, "Period:            %s to %s\n", s.FirstWorkout.Format(time.DateOnly), s.LastWorkout.Format(time.DateOnly))
	}
}
