// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of clients, pipeline and work that needs attention
package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/agency/analytics"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

// StaleAfter is how long an open deal can sit untouched before it needs attention.
const StaleAfter = 14 * 24 * time.Hour

type DashboardStats struct {
	Summary  analytics.DashboardStats
	Pipeline []StageBar
	Recent   []analytics.RecentItem

	OverdueActivities int
	StaleDeals        []StaleDeal
}

type StageBar struct {
	Stage string
	Count int
	Value float64
}

type StaleDeal struct {
	Title     string
	DaysSince int
}

// BuildDashboard combines the dashboard aggregate with the board columns.
// Closed stages never count as stale.
func BuildDashboard(d analytics.Dashboard, columns []views.Column, overdue int, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		Summary:           d.Stats,
		Recent:            d.Recent,
		OverdueActivities: overdue,
	}
	for _, col := range columns {
		stats.Pipeline = append(stats.Pipeline, StageBar{Stage: col.Stage.Name, Count: len(col.Deals), Value: col.Value})
		if col.Stage.ID == models.WonStageID || col.Stage.ID == models.LostStageID {
			continue
		}
		for _, deal := range col.Deals {
			if since := now.Sub(deal.UpdatedAt); since > StaleAfter {
				stats.StaleDeals = append(stats.StaleDeals, StaleDeal{
					Title:     deal.Title,
					DaysSince: int(since.Hours() / 24),
				})
			}
		}
	}
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  AGENCY DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  👥 %d clients  💵 $%.0f/mo  📁 %d active projects  ✅ %d upcoming tasks\n\n",
		stats.Summary.TotalClients, stats.Summary.MonthlyRevenue,
		stats.Summary.ActiveProjects, stats.Summary.UpcomingTasks))

	if len(stats.Pipeline) > 0 {
		out.WriteString("PIPELINE OVERVIEW\n")
		renderPipeline(&out, stats.Pipeline)
		out.WriteString("\n")
	}

	if len(stats.Recent) > 0 {
		out.WriteString("RECENT ACTIVITY\n")
		for _, item := range stats.Recent {
			out.WriteString(fmt.Sprintf("  %s  %-9s %s (%s)\n",
				item.Timestamp.Format("Jan 02"), item.Type, item.Title, item.Status))
		}
		out.WriteString("\n")
	}

	if stats.OverdueActivities > 0 || len(stats.StaleDeals) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if stats.OverdueActivities > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d overdue activities\n", stats.OverdueActivities))
		}
		if len(stats.StaleDeals) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d deals - stale (no update in 14+ days)\n", len(stats.StaleDeals)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, stages []StageBar) {
	maxCount := 0
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n", s.Stage, bar, s.Count, money(s.Value)))
	}
}
