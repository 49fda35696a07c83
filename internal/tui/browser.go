// Package tui is an interactive browser over projects: session
// transcripts, notes and todos side by side with the project list.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB454"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BFFF"))
)

type Browser struct {
	store *storage.Store
}

func NewBrowser(store *storage.Store) *Browser {
	return &Browser{store: store}
}

func (b *Browser) Run() error {
	m := initialModel(b.store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

type projectItem struct {
	project models.Project
}

func (i projectItem) FilterValue() string { return i.project.Name }

func (i projectItem) Title() string { return i.project.Name }

func (i projectItem) Description() string {
	return fmt.Sprintf("%d sessions | %s",
		i.project.SessionCount, i.project.CreatedAt.Format("2006-01-02 15:04"))
}

type model struct {
	store    *storage.Store
	list     list.Model
	viewport viewport.Model
	selected *models.Project
	width    int
	height   int
	ready    bool
	err      error
}

func initialModel(store *storage.Store) model {
	items := []list.Item{}

	projects, err := store.ListProjects()
	if err == nil {
		for _, p := range projects {
			items = append(items, projectItem{project: p})
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	vp := viewport.New(0, 0)

	return model{
		store:    store,
		list:     l,
		viewport: vp,
		err:      err,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		listWidth := m.width / 3
		m.list.SetSize(listWidth, m.height-2)
		m.viewport.Width = m.width - listWidth - 4
		m.viewport.Height = m.height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(projectItem); ok {
				p := item.project
				m.selected = &p
				m.updateViewport()
			}

		case "r":
			m.reloadProjects()
		}
	}

	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) reloadProjects() {
	projects, err := m.store.ListProjects()
	if err != nil {
		m.err = err
		return
	}
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}
	m.list.SetItems(items)
}

func (m *model) updateViewport() {
	if m.selected == nil {
		m.viewport.SetContent("Select a project to view")
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.selected.Name))
	content.WriteString("\n")
	if m.selected.Description != "" {
		content.WriteString(m.selected.Description)
		content.WriteString("\n")
	}
	content.WriteString(fmt.Sprintf("Created: %s\n", m.selected.CreatedAt.Format("2006-01-02 15:04:05")))
	content.WriteString("\n" + strings.Repeat("─", 40) + "\n\n")

	m.renderSessions(&content)
	m.renderNotes(&content)
	m.renderTodos(&content)

	m.viewport.SetContent(content.String())
	m.viewport.GotoTop()
}

func (m *model) renderSessions(content *strings.Builder) {
	content.WriteString(sectionStyle.Render("Transcripts"))
	content.WriteString("\n\n")

	sessions, err := m.store.ListSessions(m.selected.ID)
	if err != nil || len(sessions) == 0 {
		content.WriteString("No sessions yet.\n\n")
		return
	}

	for _, s := range sessions {
		state := "in progress"
		if s.EndedAt != nil {
			state = "ended"
		}
		content.WriteString(fmt.Sprintf("Session %s (%s, %s)\n",
			s.ID[:8], s.StartedAt.Format("2006-01-02 15:04"), state))
		for _, msg := range s.Messages {
			if msg.Source == models.SourceUser {
				content.WriteString(userStyle.Render("User:"))
			} else {
				content.WriteString(assistantStyle.Render("Assistant:"))
			}
			content.WriteString(" " + msg.Content + "\n")
		}
		content.WriteString("\n")
	}
}

func (m *model) renderNotes(content *strings.Builder) {
	content.WriteString(sectionStyle.Render("Notes"))
	content.WriteString("\n\n")

	notes, err := m.store.ListNotes(m.selected.ID)
	if err != nil || len(notes) == 0 {
		content.WriteString("No notes yet.\n\n")
		return
	}
	for _, n := range notes {
		content.WriteString(fmt.Sprintf("%s (%d revisions)\n%s\n\n", n.Title, len(n.Modified), n.Content))
	}
}

func (m *model) renderTodos(content *strings.Builder) {
	content.WriteString(sectionStyle.Render("Todos"))
	content.WriteString("\n\n")

	todos, err := m.store.ListTodos(m.selected.ID, "")
	if err != nil || len(todos) == 0 {
		content.WriteString("No todos yet.\n")
		return
	}
	for _, t := range todos {
		marker := "[ ]"
		if t.Status == models.TodoDone {
			marker = "[x]"
		}
		content.WriteString(fmt.Sprintf("%s %s\n", marker, t.Content))
	}
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.err)
	}

	listView := paneStyle.
		Width(m.width/3 - 2).
		Height(m.height - 2).
		Render(m.list.View())

	contentView := paneStyle.
		Width(m.width - m.width/3 - 2).
		Height(m.height - 2).
		Render(m.viewport.View())

	help := helpStyle.Render("  j/k: navigate • enter: open project • r: reload • q: quit")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		listView,
		contentView,
	) + "\n" + help
}
