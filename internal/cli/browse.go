package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labasi/labasi/internal/storage"
	"github.com/labasi/labasi/internal/tui"
)

func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse projects and transcripts in an interactive TUI",
		Long:  `Open an interactive browser over projects, session transcripts, notes and todos.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			return tui.NewBrowser(store).Run()
		},
	}
}
