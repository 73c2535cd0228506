package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"longevity/internal/analysis"
	"longevity/internal/fasting"
)

var fastCmd = &cobra.Command{
	Use:   "fast",
	Short: "Track fasting sessions",
}

var fastTarget float64

var fastStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a fast",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			s, err := e.tracker.Fasting.Start(fastTarget)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %gh fast at %s\n", s.TargetHours, s.StartedAt.Format("15:04"))
			return nil
		})
	},
}

var fastNotes string

var fastEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the active fast",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			entry, err := e.tracker.EndFast(fastNotes)
			if err != nil {
				return err
			}
			status := "ended early"
			if entry.Completed {
				status = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fast %s: %s of %gh target\n",
				status, analysis.FormatFastingTime(entry.Duration), entry.TargetHours)
			return nil
		})
	},
}

var fastCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Discard the active fast without recording it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			if err := e.tracker.Fasting.Cancel(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Fast cancelled")
			return nil
		})
	},
}

var fastStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active fast",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			st := e.tracker.Fasting.Status()
			printFastStatus(cmd, st)
			if e.client != nil {
				warnRemoteFast(cmd, e, st)
			}
			return nil
		})
	},
}

var fastWatchInterval time.Duration

var fastWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the active fast until it ends or you press Ctrl+C",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if !e.tracker.Fasting.Status().Active {
				fmt.Fprintln(cmd.OutOrStdout(), "No active fast")
				return nil
			}
			for st := range e.tracker.Fasting.Watch(ctx, fastWatchInterval) {
				fmt.Fprintf(cmd.OutOrStdout(), "\r%s  %s  %3.0f%%", st.Elapsed(), st.State.Name, st.ProgressPercent)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		})
	},
}

var fastHistoryLimit int

var fastHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List past fasts and statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			history := e.tracker.Fasting.History()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "DATE\tDURATION\tTARGET\tCOMPLETED\tNOTES")
			for i, h := range history {
				if fastHistoryLimit > 0 && i >= fastHistoryLimit {
					break
				}
				fmt.Fprintf(out, "%s\t%s\t%gh\t%t\t%s\n",
					h.Date, analysis.FormatFastingTime(h.Duration), h.TargetHours, h.Completed, h.Notes)
			}

			st := fasting.ComputeStats(history)
			fmt.Fprintf(out, "\n%s fasts, %d%% completed, average %.1fh, longest %.1fh, streak %d (best %d)\n",
				humanize.Comma(int64(st.TotalFasts)), st.CompletionRate, st.AverageDuration,
				st.LongestDuration, st.CurrentStreak, st.LongestStreak)
			return nil
		})
	},
}

func printFastStatus(cmd *cobra.Command, st fasting.Status) {
	out := cmd.OutOrStdout()
	if !st.Active {
		fmt.Fprintln(out, "No active fast")
		return
	}

	fmt.Fprintf(out, "Fasting for %s (started %s)\n", st.Elapsed(), relTime(st.Session.StartedAt))
	fmt.Fprintf(out, "State: %s\n", st.State.Name)
	fmt.Fprintf(out, "Progress: %.0f%% of %gh", st.ProgressPercent, st.TargetHours)
	if st.Remaining > 0 {
		fmt.Fprintf(out, ", %s to go", analysis.FormatFastingTime(st.Remaining.Hours()))
	}
	fmt.Fprintln(out)
	if st.Next != nil {
		fmt.Fprintf(out, "Next: %s at %gh\n", st.Next.Name, st.Next.MinHours)
	}
}

// warnRemoteFast flags a gateway whose active fast differs from the local
// one. Gateway errors only produce a warning.
func warnRemoteFast(cmd *cobra.Command, e *env, st fasting.Status) {
	out := cmd.OutOrStdout()
	remote, err := e.client.CurrentFast(cmd.Context())
	if err != nil {
		e.log.Warn().Err(err).Msg("Could not check the gateway's fast")
		return
	}

	switch {
	case remote == nil && st.Active:
		fmt.Fprintln(out, "Warning: the gateway has no active fast")
	case remote != nil && !st.Active:
		fmt.Fprintf(out, "Warning: the gateway still has fast %s active\n", remote.ID)
	case remote != nil && remote.ID != st.Session.ID:
		fmt.Fprintf(out, "Warning: the gateway is tracking a different fast (%s)\n", remote.ID)
	}
}

func init() {
	fastStartCmd.Flags().Float64Var(&fastTarget, "target", 0, "Target hours (default from config)")
	fastEndCmd.Flags().StringVar(&fastNotes, "notes", "", "Notes for this fast")
	fastWatchCmd.Flags().DurationVar(&fastWatchInterval, "interval", time.Second, "Refresh interval")
	fastHistoryCmd.Flags().IntVar(&fastHistoryLimit, "limit", 20, "Maximum fasts to list (0 for all)")

	fastCmd.AddCommand(fastStartCmd, fastEndCmd, fastCancelCmd, fastStatusCmd, fastWatchCmd, fastHistoryCmd)
	rootCmd.AddCommand(fastCmd)
}
