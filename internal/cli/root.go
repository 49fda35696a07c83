package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "labasi",
		Short: "Voice lab-assistant backend",
		Long: `Labasi - backend for a voice lab assistant. Projects scope spoken
conversations with an external agent; notes and todos keep an append-only
modification history; finished sessions are analyzed into new notes and todos.`,
		Version: "0.1.0",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default: ~/.labasi/labasi.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to settings file (default: ~/.labasi/settings.yaml)")

	rootCmd.AddCommand(
		NewServeCommand(),
		NewListCommand(),
		NewSearchCommand(),
		NewStatsCommand(),
		NewBrowseCommand(),
		NewAnalyzeCommand(),
		NewSeedCommand(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
