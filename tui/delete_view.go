// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Confirms removal of the selected record on any list tab
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	l := m.currentListing()
	if m.selectedRow >= len(l.rows) {
		return "Nothing selected"
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := fmt.Sprintf("Delete this %s record?", m.tab)
	entityInfo := fmt.Sprintf("\n%s\n", l.rows[m.selectedRow][0])
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	box := confirmBoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	))

	return lipgloss.Place(m.width, max(m.height-8, 12), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		l := m.currentListing()
		m.viewMode = ViewList
		if l.remove == nil || m.selectedRow >= len(l.ids) {
			return m, nil
		}
		id, remove := l.ids[m.selectedRow], l.remove
		return m, write(func(ctx context.Context) error { return remove(ctx, id) })
	case "n", "N", "esc":
		m.viewMode = ViewList
	}
	return m, nil
}
