package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/labasi/labasi/api"
	"github.com/labasi/labasi/internal/analyzer"
	"github.com/labasi/labasi/internal/config"
	"github.com/labasi/labasi/internal/storage"
)

func NewServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  `Start the Labasi REST API serving projects, sessions, notes and todos.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides settings)")

	return cmd
}

func runServe(port string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if port == "" {
		port = settings.Server.Port
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

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	var an *analyzer.Analyzer
	if settings.Analyzer.Enabled {
		llm := analyzer.NewOpenAIClient(
			settings.Analyzer.APIKey(),
			settings.Analyzer.BaseURL,
			settings.Analyzer.Model,
		)
		an = analyzer.New(store, llm, log)
		log.Info("analyzer enabled", "model", settings.Analyzer.Model)
	} else {
		log.Info("analyzer disabled")
	}

	server := api.NewServer(store, an, log, port)
	return server.Start()
}
