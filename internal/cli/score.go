package cli

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"longevity/internal/analysis"
	"longevity/internal/streak"
)

var (
	scoreDate   string
	scoreRemote bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show health scores and biological age",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(scoreDate)
		if err != nil {
			return err
		}
		return withEnv(cmd, func(e *env) error {
			if scoreRemote {
				if e.client == nil {
					return errNoGateway
				}
				set, err := e.client.CurrentScores(cmd.Context())
				if err != nil {
					return err
				}
				printScoreSet(cmd.OutOrStdout(), set)
				return nil
			}

			set, err := e.tracker.Scores.CurrentScores(date)
			if err != nil {
				return err
			}
			printScoreSet(cmd.OutOrStdout(), set)
			return nil
		})
	},
}

var scoreHistoryDays int

var scoreHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Chart the overall score over recent days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			history, err := e.tracker.Scores.History(scoreHistoryDays)
			if err != nil {
				return err
			}
			if len(history.Overall) == 0 {
				fmt.Fprintln(out, "No samples in this window")
				return nil
			}

			if len(history.Overall) > 1 {
				fmt.Fprintln(out, asciigraph.Plot(history.Overall,
					asciigraph.Height(8),
					asciigraph.Caption(fmt.Sprintf("Overall score, last %d days", scoreHistoryDays))))
				fmt.Fprintln(out)
			}
			for _, d := range history.Days {
				fmt.Fprintf(out, "%s\t%d\n", d.Date, d.Scores.Overall)
			}
			fmt.Fprintf(out, "\nTrend: %s %s\n", history.Trend.Arrow(), history.Trend)
			return nil
		})
	},
}

var streaksRemote bool

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show protocol, fasting and exercise streaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			streaks := e.tracker.Protocol.Streaks()
			if streaksRemote {
				if e.client == nil {
					return errNoGateway
				}
				var err error
				if streaks, err = e.client.Streaks(cmd.Context()); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "STREAK\tCURRENT\tLONGEST\tLAST")
			for _, typ := range streak.Types {
				s := streaks[typ]
				last := s.LastCompletedDate
				if last == "" {
					last = "-"
				}
				fmt.Fprintf(out, "%s\t%d\t%d\t%s\n", typ, s.Current, s.Longest, last)
			}
			return nil
		})
	},
}

func printScoreSet(out io.Writer, set *analysis.HealthScoreSet) {
	c := set.Components
	fmt.Fprintf(out, "Scores for %s\n", set.Date)
	fmt.Fprintf(out, "  Overall:    %d (%s)\n", set.Overall, analysis.ScoreDescription(set.Overall))
	fmt.Fprintf(out, "  Sleep:      %s\n", formatOptionalInt(c.Sleep))
	fmt.Fprintf(out, "  Activity:   %s\n", formatOptionalInt(c.Activity))
	fmt.Fprintf(out, "  Recovery:   %s\n", formatOptionalInt(c.Recovery))
	fmt.Fprintf(out, "  Nutrition:  %s\n", formatOptionalInt(c.Nutrition))
	fmt.Fprintf(out, "  Biomarkers: %s\n", formatOptionalInt(c.Biomarker))
	fmt.Fprintf(out, "  Adherence:  %s\n", formatOptionalInt(c.Adherence))

	if set.Age != nil {
		fmt.Fprintf(out, "Biological age %.1f (chronological %.0f, %+.1f years)\n",
			set.Age.BiologicalAge, set.Age.ChronologicalAge, set.Age.AgeDifference)
	}
}

func init() {
	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "Date YYYY-MM-DD (default today)")
	scoreCmd.Flags().BoolVar(&scoreRemote, "remote", false, "Show the gateway's current scores instead of local ones")
	streaksCmd.Flags().BoolVar(&streaksRemote, "remote", false, "Show the gateway's streak counters")
	scoreHistoryCmd.Flags().IntVar(&scoreHistoryDays, "days", 30, "Window in days")

	scoreCmd.AddCommand(scoreHistoryCmd)
	rootCmd.AddCommand(scoreCmd, streaksCmd)
}
