package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labasi/labasi/internal/storage"
)

func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about the lab notebook",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	fmt.Println("Labasi Statistics")
	fmt.Println("=================")
	fmt.Printf("\nProjects: %d\n", stats.Projects)
	fmt.Printf("Sessions: %d\n", stats.Sessions)
	fmt.Printf("Messages: %d\n", stats.Messages)
	fmt.Printf("Notes: %d\n", stats.Notes)

	if len(stats.TodosByStatus) > 0 {
		fmt.Println("\nTodos by Status:")
		for status, count := range stats.TodosByStatus {
			fmt.Printf("  %s: %d\n", status, count)
		}
	}

	return nil
}
