package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errNoGateway = errors.New("the remote gateway is not configured (set gateway.base_url and gateway.enabled)")

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload metric samples to the remote gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			if e.sync == nil {
				return errNoGateway
			}

			result, err := e.sync.SyncMetrics(cmd.Context(), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %d samples (through %s)\n", result.SamplesUploaded, result.Cursor)
			for _, err := range result.Errors {
				fmt.Fprintf(out, "  error: %v\n", err)
			}
			remaining, resetsAt := e.client.RateLimitStatus()
			fmt.Fprintf(out, "Gateway budget: %d requests left, resets %s\n", remaining, humanize.Time(resetsAt))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
