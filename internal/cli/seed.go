package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/storage"
)

func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo project with notes and todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

func runSeed() error {
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	project, err := store.CreateProject(
		"CRISPR Knockout Screen",
		"Genome-wide knockout screen in HeLa cells, library B.",
	)
	if err != nil {
		return fmt.Errorf("failed to seed project: %w", err)
	}

	notes := []struct{ title, content string }{
		{
			"Transfection efficiency",
			"- Day 2 efficiency at 68% by GFP\n- Lipofectamine lot #4417 performing below spec",
		},
		{
			"Puromycin selection",
			"- 2 ug/mL kills untransduced controls in 48h\n- Keep selection to 72h max to avoid bottlenecking",
		},
	}
	for _, n := range notes {
		if _, err := store.CreateNote(project.ID, n.title, n.content); err != nil {
			return fmt.Errorf("failed to seed note: %w", err)
		}
	}

	todos := []string{
		"Order fresh Lipofectamine 3000",
		"Sequence library representation before expansion",
		"[high] Verify puromycin stock concentration",
	}
	for _, t := range todos {
		if _, err := store.CreateTodo(project.ID, t, models.TodoOpen); err != nil {
			return fmt.Errorf("failed to seed todo: %w", err)
		}
	}

	fmt.Printf("Seeded project %s (%s) with %d notes and %d todos.\n",
		project.Name, project.ID, len(notes), len(todos))
	return nil
}
