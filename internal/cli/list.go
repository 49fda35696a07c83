package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/storage"
)

func NewListCommand() *cobra.Command {
	var filterProject string
	var filterStatus string

	cmd := &cobra.Command{
		Use:   "list [projects|sessions|notes|todos]",
		Short: "List projects, sessions, notes or todos",
		Args:  cobra.ExactArgs(1),
		Example: `  # List all projects
  labasi list projects

  # List sessions for one project
  labasi list sessions --project 4f1c...

  # List open todos
  labasi list todos --status open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0], filterProject, filterStatus)
		},
	}

	cmd.Flags().StringVar(&filterProject, "project", "", "Filter by project id")
	cmd.Flags().StringVar(&filterStatus, "status", "", "Filter todos by status (open|done)")

	return cmd
}

func runList(kind, projectID, status string) error {
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	switch kind {
	case "projects":
		return listProjects(store)
	case "sessions":
		return listSessions(store, projectID)
	case "notes":
		return listNotes(store, projectID)
	case "todos":
		return listTodos(store, projectID, status)
	default:
		return fmt.Errorf("unknown kind %q (want projects, sessions, notes or todos)", kind)
	}
}

func listProjects(store *storage.Store) error {
	projects, err := store.ListProjects()
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	for _, p := range projects {
		fmt.Printf("[%s] %s\n", p.ID, p.Name)
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		fmt.Printf("  Sessions: %d | Created: %s\n\n", p.SessionCount, p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func listSessions(store *storage.Store, projectID string) error {
	sessions, err := store.ListSessions(projectID)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	for _, s := range sessions {
		state := "in progress"
		if s.EndedAt != nil {
			state = "ended " + s.EndedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("[%s] agent=%s\n", s.ID, s.AgentID)
		fmt.Printf("  Started: %s | %s | Messages: %d\n\n",
			s.StartedAt.Format("2006-01-02 15:04:05"), state, len(s.Messages))
	}
	return nil
}

func listNotes(store *storage.Store, projectID string) error {
	notes, err := store.ListNotes(projectID)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	if len(notes) == 0 {
		fmt.Println("No notes found.")
		return nil
	}

	for _, n := range notes {
		fmt.Printf("[%s] %s\n", n.ID, n.Title)
		fmt.Printf("  %s\n", firstLine(n.Content))
		fmt.Printf("  Created: %s | Revisions: %d\n\n",
			n.CreatedAt.Format("2006-01-02 15:04:05"), len(n.Modified))
	}
	return nil
}

func listTodos(store *storage.Store, projectID, status string) error {
	todos, err := store.ListTodos(projectID, models.TodoStatus(status))
	if err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}
	if len(todos) == 0 {
		fmt.Println("No todos found.")
		return nil
	}

	for _, t := range todos {
		marker := "[ ]"
		if t.Status == models.TodoDone {
			marker = "[x]"
		}
		fmt.Printf("%s %s\n", marker, t.Content)
		fmt.Printf("    id=%s | Created: %s | Revisions: %d\n\n",
			t.ID, t.CreatedAt.Format("2006-01-02 15:04:05"), len(t.Modified))
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
