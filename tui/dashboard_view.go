// ABOUTME: Dashboard and analytics tabs
// ABOUTME: Both render aggregates computed on load; nothing here writes
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/agency/views"
	"github.com/harperreed/agency/viz"
)

var sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

func (m Model) renderDashboardView() string {
	now := m.now()
	stats := viz.BuildDashboard(m.dashboard, m.board.Columns(views.BoardFilter{}), m.activities.Stats(now).Overdue, now)
	return viz.RenderDashboard(stats) + helpStyle.Render("Tab: Switch tabs • r: Reload • q: Quit")
}

func (m Model) renderAnalyticsView() string {
	var s strings.Builder
	r := m.report
	o := r.Overview

	s.WriteString(sectionStyle.Render(fmt.Sprintf("OVERVIEW (last %s)", r.Range)))
	s.WriteString("\n")
	s.WriteString(renderField("Revenue", money(o.TotalRevenue)))
	s.WriteString(renderField("Deals", fmt.Sprintf("%d (%d%% won)", o.TotalDeals, o.ConversionRate)))
	s.WriteString(renderField("Average deal", money(o.AvgDealSize)))
	s.WriteString(renderField("Pipeline value", money(o.PipelineValue)))
	s.WriteString(renderField("Activities", fmt.Sprintf("%d (%d%% done)", o.TotalActivities, o.CompletionRate)))
	s.WriteString(renderField("Active clients", fmt.Sprint(o.ActiveClients)))

	if len(r.Pipeline.StageConversion) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("PIPELINE"))
		s.WriteString("\n")
		for _, st := range r.Pipeline.StageConversion {
			s.WriteString(renderField(st.Stage, fmt.Sprintf("%d deals · %s · %d%%", st.Deals, money(st.Value), st.ConversionRate)))
		}
		s.WriteString(renderField("Win rate", fmt.Sprintf("%d%%", r.Pipeline.WinRate)))
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("LEADS"))
	s.WriteString("\n")
	ls := m.leadStats
	s.WriteString(renderField("Saved lists", fmt.Sprint(ls.TotalLists)))
	s.WriteString(renderField("Leads", fmt.Sprintf("%d (%d per list)", ls.TotalLeads, ls.AveragePerList)))
	for _, n := range ls.TopNiches {
		s.WriteString(renderField("  "+n.Key, fmt.Sprint(n.Count)))
	}

	s.WriteString(helpStyle.Render("Tab: Switch tabs • r: Reload • q: Quit"))
	return s.String()
}
