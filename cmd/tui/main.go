package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-builder/internal/config"
	"github.com/DoyleJ11/team-builder/internal/logging"
	"github.com/DoyleJ11/team-builder/internal/tui"
)

var (
	presetPath string
	exportDir  string
	logFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "team-builder",
	Short: "Build balanced lane matchups in the terminal",
	Long: `Type names, then move players between the tier pool and the lanes with
the keyboard. Press x to save the lanes as a PNG and copy a text summary.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		roster := config.DefaultRoster()
		if presetPath != "" {
			r, err := config.LoadRoster(presetPath)
			if err != nil {
				return err
			}
			roster = r
		}

		// The terminal belongs to the UI, so logs only go to a file.
		log := zap.NewNop()
		if logFile != "" {
			l, err := logging.ToFile(logFile, logLevel)
			if err != nil {
				return err
			}
			log = l
			defer func() { _ = log.Sync() }()
		}

		model := tui.New(tui.Options{
			State:     roster.NewState(),
			Logger:    log,
			ExportDir: exportDir,
		})
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&presetPath, "preset", os.Getenv("ROSTER_PRESET"), "YAML roster preset")
	rootCmd.Flags().StringVar(&exportDir, "export-dir", ".", "where x writes roster PNGs")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write debug logs to this file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "debug", "log level for --log-file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
