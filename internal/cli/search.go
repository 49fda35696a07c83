package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/search"
	"github.com/labasi/labasi/internal/storage"
)

func NewSearchCommand() *cobra.Command {
	var limit int
	var filterProject string
	var filterSource string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search conversation transcripts",
		Long:  `Full-text search over everything said in recorded sessions.`,
		Example: `  # Find mentions of a reagent
  labasi search "imidazole"

  # Only what the researcher said, in one project
  labasi search "flow cell" --project 4f1c... --source user`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(query, limit, filterProject, filterSource)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	cmd.Flags().StringVar(&filterProject, "project", "", "Filter by project id")
	cmd.Flags().StringVar(&filterSource, "source", "", "Filter by message source (user|assistant)")

	return cmd
}

func runSearch(query string, limit int, projectID, source string) error {
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	searcher := search.NewSearcher(store)
	results, err := searcher.SearchWithFilters(query, limit, search.Filters{
		ProjectID: projectID,
		Source:    models.MessageSource(source),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d result(s) for '%s':\n\n", len(results), query)

	for i, result := range results {
		fmt.Printf("%d. [%s] %s\n", i+1, strings.ToUpper(string(result.Source)), result.ProjectName)
		fmt.Printf("   Session: %s | %s\n", result.SessionID, result.Timestamp.Format("2006-01-02 15:04"))
		fmt.Printf("   %s\n\n", result.Snippet)
	}

	return nil
}
