package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/labasi/labasi/internal/analyzer"
	"github.com/labasi/labasi/internal/config"
	"github.com/labasi/labasi/internal/storage"
)

func NewAnalyzeCommand() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "analyze <session-id>",
		Short: "Extract notes and todos from a session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], projectID)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project id owning the session (required)")
	cmd.MarkFlagRequired("project")

	return cmd
}

func runAnalyze(sessionID, projectID string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.Analyzer.Enabled {
		return fmt.Errorf("analyzer is disabled; enable it in settings.yaml")
	}

	database := dbPath
	if database == "" {
		database = settings.Database.Path
	}
	store, err := storage.NewStore(database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	llm := analyzer.NewOpenAIClient(
		settings.Analyzer.APIKey(),
		settings.Analyzer.BaseURL,
		settings.Analyzer.Model,
	)

	result, err := analyzer.New(store, llm, log).Analyze(context.Background(), sessionID, projectID)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Printf("Created %d notes, %d todos.\n", len(result.Notes), len(result.Todos))
	for _, n := range result.Notes {
		fmt.Printf("  note: %s\n", n.Title)
	}
	for _, t := range result.Todos {
		fmt.Printf("  todo: %s\n", t.Content)
	}
	return nil
}
