package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(22)

	focusedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	selectedDealStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255")).
				Bold(true)
)

func (m Model) columns() []views.Column {
	return m.board.Columns(views.BoardFilter{Term: m.search.Value()})
}

// selectedDeal is the highlighted deal in the focused column.
func (m Model) selectedDeal() (models.Deal, bool) {
	cols := m.columns()
	if m.column >= len(cols) {
		return models.Deal{}, false
	}
	deals := cols[m.column].Deals
	if m.selectedRow >= len(deals) {
		return models.Deal{}, false
	}
	return deals[m.selectedRow], true
}

func (m Model) renderPipelineView() string {
	var s strings.Builder
	cols := m.columns()

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	}

	rendered := make([]string, 0, len(cols))
	for i, col := range cols {
		var body strings.Builder
		body.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s (%d)", col.Stage.Name, len(col.Deals))))
		body.WriteString("\n")
		body.WriteString(money(col.Value))
		body.WriteString("\n")
		for j, d := range col.Deals {
			line := fmt.Sprintf("%s\n  %s · %d%%", d.Title, money(d.Value), d.Probability)
			if i == m.column && j == m.selectedRow {
				line = selectedDealStyle.Render(line)
			}
			body.WriteString("\n" + line)
		}
		style := columnStyle
		if i == m.column {
			style = focusedColumnStyle
		}
		rendered = append(rendered, style.Render(body.String()))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))

	if un := m.board.Unassigned(views.BoardFilter{Term: m.search.Value()}); len(un) > 0 {
		s.WriteString(fmt.Sprintf("\n%d deals without a stage", len(un)))
	}

	stats := m.board.Stats(views.BoardFilter{Term: m.search.Value()})
	s.WriteString(fmt.Sprintf("\n%d deals • %s total • %s weighted • %s average",
		stats.Deals, money(stats.TotalValue), money(stats.WeightedValue), money(stats.AvgDealSize)))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(strings.Join([]string{
		"[/]: Column", "↑/↓: Deal", "h/l: Move deal", "/: Search", "g: Graph", "r: Reload", "q: Quit",
	}, " • ")))
	return s.String()
}

func (m Model) handlePipelineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch msg.String() {
	case "[":
		if m.column > 0 {
			m.column--
			m.clampDeal()
		}
	case "]":
		if m.column < len(cols)-1 {
			m.column++
			m.clampDeal()
		}
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.column < len(cols) && m.selectedRow < len(cols[m.column].Deals)-1 {
			m.selectedRow++
		}
	case "h", "left":
		return m.moveSelected(-1)
	case "l", "right":
		return m.moveSelected(+1)
	case "/":
		m.searching = true
		m.search.Focus()
	case "esc":
		m.search.SetValue("")
		m.clampDeal()
	case "g":
		dot, err := m.pipelineGraph()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.graphDOT = dot
		m.viewMode = ViewGraph
	}
	return m, nil
}

// moveSelected moves the highlighted deal one stage left or right and
// keeps it selected in its new column.
func (m Model) moveSelected(step int) (tea.Model, tea.Cmd) {
	deal, ok := m.selectedDeal()
	if !ok {
		return m, nil
	}
	cols := m.columns()
	target := m.column + step
	if target < 0 || target >= len(cols) {
		return m, nil
	}
	stageID := cols[target].Stage.ID
	// The board patches the deal in place before the write returns.
	m.column = target
	m.selectedRow = 0
	return m, write(func(ctx context.Context) error {
		_, err := m.board.Move(ctx, deal.ID, stageID)
		return err
	})
}

func (m *Model) clampDeal() {
	cols := m.columns()
	if m.column >= len(cols) {
		m.column = max(len(cols)-1, 0)
	}
	n := 0
	if m.column < len(cols) {
		n = len(cols[m.column].Deals)
	}
	if m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
}
