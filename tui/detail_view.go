package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder
	l := m.currentListing()
	if m.selectedRow >= len(l.details) {
		return "Nothing selected"
	}

	s.WriteString(titleStyle.Render(strings.ToUpper(m.tab.String()) + " DETAIL"))
	s.WriteString("\n")
	for _, f := range l.details[m.selectedRow] {
		s.WriteString(renderField(f.label, f.value))
	}
	s.WriteString(renderField("ID", l.ids[m.selectedRow]))
	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp(l))
	return s.String()
}

func renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp(l listing) string {
	help := []string{"Esc: Back"}
	if l.remove != nil {
		help = append(help, "d: Delete")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "d":
		if m.currentListing().remove != nil {
			m.viewMode = ViewConfirmDelete
		}
	}
	return m, nil
}
