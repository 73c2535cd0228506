package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"longevity/internal/config"
	"longevity/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard (default when no command is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI launches the dashboard. Logs go to ~/.longevity/tui.log so they do
// not tear the alternate screen.
func runTUI(cmd *cobra.Command) error {
	logOut, closeLog := tuiLogWriter()
	defer closeLog()

	e, err := openEnv(logOut)
	if err != nil {
		return err
	}
	defer e.close()

	app := tui.NewApp(e.tracker, e.sync, e.cfg.Fasting.DefaultTargetHours, e.log)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func tuiLogWriter() (io.Writer, func()) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return io.Discard, func() {}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}
