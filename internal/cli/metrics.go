package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"longevity/internal/analysis"
	"longevity/internal/store"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Record and list health metric samples",
}

var (
	metricDate      string
	metricSource    string
	metricSleep     float64
	metricDeep      float64
	metricRem       float64
	metricEff       float64
	metricHRV       float64
	metricRHR       float64
	metricResp      float64
	metricSteps     int
	metricCalories  float64
	metricWorkout   float64
	metricNutrition float64
)

var metricsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a metric sample",
	Long:  "Record a metric sample. Only the flags you pass are stored; a sample for the same date and source is replaced.",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(metricDate)
		if err != nil {
			return err
		}

		sample := &store.MetricSample{Date: date, Source: store.Source(metricSource)}
		flags := cmd.Flags()
		optional := func(name string, v float64) *float64 {
			if !flags.Changed(name) {
				return nil
			}
			return &v
		}
		sample.SleepDurationMinutes = optional("sleep", metricSleep)
		sample.DeepSleepMinutes = optional("deep", metricDeep)
		sample.RemSleepMinutes = optional("rem", metricRem)
		sample.SleepEfficiency = optional("efficiency", metricEff)
		sample.HRVAvg = optional("hrv", metricHRV)
		sample.RestingHR = optional("rhr", metricRHR)
		sample.RespiratoryRate = optional("resp", metricResp)
		sample.ActiveCalories = optional("calories", metricCalories)
		sample.WorkoutMinutes = optional("workout", metricWorkout)
		sample.NutritionScore = optional("nutrition", metricNutrition)
		if flags.Changed("steps") {
			steps := metricSteps
			sample.Steps = &steps
		}

		return withEnv(cmd, func(e *env) error {
			if err := e.tracker.Scores.RecordSample(sample); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s sample for %s\n", sample.Source, sample.Date)
			return nil
		})
	},
}

var (
	metricsFrom string
	metricsTo   string
)

var metricsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List samples with their component scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			samples, err := e.tracker.Scores.Samples(metricsFrom, metricsTo)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "DATE\tSOURCE\tSLEEP_MIN\tHRV\tRHR\tSTEPS\tSLEEP\tACTIVITY\tRECOVERY")
			for _, s := range samples {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					s.Date, s.Source,
					formatOptionalFloat(s.SleepDurationMinutes),
					formatOptionalFloat(s.HRVAvg),
					formatOptionalFloat(s.RestingHR),
					formatOptionalInt(s.Steps),
					formatOptionalInt(analysis.SleepScore(s)),
					formatOptionalInt(analysis.ActivityScore(s)),
					formatOptionalInt(analysis.RecoveryScore(s)))
			}
			return nil
		})
	},
}

var biomarkersCmd = &cobra.Command{
	Use:   "biomarkers",
	Short: "Record and grade lab panels",
}

var (
	panelDate   string
	panelSource string
)

var biomarkersAddCmd = &cobra.Command{
	Use:   "add key=value...",
	Short: "Record a lab panel, e.g. hba1c=5.1 apoB=85",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(panelDate)
		if err != nil {
			return err
		}
		values, err := parseKeyValues(args)
		if err != nil {
			return err
		}
		for key := range values {
			if _, ok := analysis.LookupBiomarker(key); !ok {
				return fmt.Errorf("unknown biomarker %q", key)
			}
		}

		return withEnv(cmd, func(e *env) error {
			if err := e.db.SavePanel(&store.BiomarkerPanel{TestDate: date, Source: panelSource, Values: values}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d biomarkers for %s\n", len(values), date)
			return nil
		})
	},
}

var biomarkersShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Grade the latest value of every biomarker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			panel, err := e.db.LatestPanel("")
			if errors.Is(err, store.ErrPanelNotFound) {
				fmt.Fprintln(out, "No biomarkers recorded")
				return nil
			}
			if err != nil {
				return err
			}

			results := analysis.GradeBiomarkers(panel.Values)
			sort.SliceStable(results, func(i, j int) bool {
				return results[i].Definition.Category < results[j].Definition.Category
			})
			fmt.Fprintln(out, "MARKER\tVALUE\tUNIT\tSTATUS\tOPTIMAL")
			for _, r := range results {
				d := r.Definition
				fmt.Fprintf(out, "%s\t%g\t%s\t%s\t%g-%g\n", d.Name, r.Value, d.Unit, r.Status, d.Optimal.Low, d.Optimal.High)
			}
			fmt.Fprintf(out, "\nBiomarker score: %s\n", formatOptionalInt(analysis.BiomarkerScore(panel.Values)))
			return nil
		})
	},
}

func init() {
	f := metricsAddCmd.Flags()
	f.StringVar(&metricDate, "date", "", "Date YYYY-MM-DD (default today)")
	f.StringVar(&metricSource, "source", string(store.SourceManual), "oura, whoop, apple_health or manual")
	f.Float64Var(&metricSleep, "sleep", 0, "Sleep duration in minutes")
	f.Float64Var(&metricDeep, "deep", 0, "Deep sleep minutes")
	f.Float64Var(&metricRem, "rem", 0, "REM sleep minutes")
	f.Float64Var(&metricEff, "efficiency", 0, "Sleep efficiency percent")
	f.Float64Var(&metricHRV, "hrv", 0, "Average HRV in ms")
	f.Float64Var(&metricRHR, "rhr", 0, "Resting heart rate")
	f.Float64Var(&metricResp, "resp", 0, "Respiratory rate")
	f.IntVar(&metricSteps, "steps", 0, "Steps")
	f.Float64Var(&metricCalories, "calories", 0, "Active calories")
	f.Float64Var(&metricWorkout, "workout", 0, "Workout minutes")
	f.Float64Var(&metricNutrition, "nutrition", 0, "Self-rated nutrition 0-100")

	metricsListCmd.Flags().StringVar(&metricsFrom, "from", "", "First date YYYY-MM-DD")
	metricsListCmd.Flags().StringVar(&metricsTo, "to", "", "Last date YYYY-MM-DD")

	biomarkersAddCmd.Flags().StringVar(&panelDate, "date", "", "Test date YYYY-MM-DD (default today)")
	biomarkersAddCmd.Flags().StringVar(&panelSource, "source", "", "Lab or provider")

	metricsCmd.AddCommand(metricsAddCmd, metricsListCmd)
	biomarkersCmd.AddCommand(biomarkersAddCmd, biomarkersShowCmd)
	rootCmd.AddCommand(metricsCmd, biomarkersCmd)
}
