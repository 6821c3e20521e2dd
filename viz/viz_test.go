// ABOUTME: Tests for the ASCII dashboard and graphviz renderings
package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/agency/analytics"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func columns() []views.Column {
	lead := models.DefaultStages[0]
	won := models.DefaultStages[4]
	return []views.Column{
		{Stage: lead, Value: 5000, Deals: []models.Deal{
			{ID: "d1", Title: "Old audit", Value: 5000, Probability: 50, StageID: lead.ID, UpdatedAt: now.AddDate(0, 0, -30)},
		}},
		{Stage: won, Value: 9000, Deals: []models.Deal{
			{ID: "d2", Title: "Retainer", Value: 9000, Probability: 100, StageID: won.ID, UpdatedAt: now.AddDate(0, 0, -60)},
		}},
	}
}

func TestBuildDashboardFlagsStaleOpenDeals(t *testing.T) {
	stats := BuildDashboard(analytics.Dashboard{Stats: analytics.DashboardStats{TotalClients: 3}}, columns(), 2, now)

	require.Len(t, stats.StaleDeals, 1)
	assert.Equal(t, "Old audit", stats.StaleDeals[0].Title)
	assert.Equal(t, 30, stats.StaleDeals[0].DaysSince)
	require.Len(t, stats.Pipeline, 2)
	assert.Equal(t, StageBar{Stage: "Closed Won", Count: 1, Value: 9000}, stats.Pipeline[1])
}

func TestRenderDashboard(t *testing.T) {
	stats := BuildDashboard(analytics.Dashboard{
		Stats:  analytics.DashboardStats{TotalClients: 3, MonthlyRevenue: 4500},
		Recent: []analytics.RecentItem{{Type: "client", Title: "New client: Ada", Status: "active", Timestamp: now}},
	}, columns(), 2, now)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "AGENCY DASHBOARD")
	assert.Contains(t, out, "3 clients")
	assert.Contains(t, out, "$4500/mo")
	assert.Contains(t, out, "Lead")
	assert.Contains(t, out, "$5.0K")
	assert.Contains(t, out, "New client: Ada")
	assert.Contains(t, out, "2 overdue activities")
	assert.Contains(t, out, "1 deals - stale")
}

func TestRenderDashboardQuietWhenNothingNeedsAttention(t *testing.T) {
	out := RenderDashboard(BuildDashboard(analytics.Dashboard{}, nil, 0, now))
	assert.NotContains(t, out, "NEEDS ATTENTION")
	assert.NotContains(t, out, "PIPELINE OVERVIEW")
}

func TestPipelineGraph(t *testing.T) {
	dot, err := PipelineGraph(context.Background(), columns(), []models.Deal{{ID: "d3", Title: "Orphan", Value: 100}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(dot), "digraph"))
	assert.Contains(t, dot, "Old audit")
	assert.Contains(t, dot, "Unassigned")
	assert.Contains(t, dot, "Orphan")
}

func TestAccountMapSkipsDanglingReferences(t *testing.T) {
	clients := []models.Client{{ID: "c1", Name: "Ada", Company: "Acme", Status: models.ClientActive}}
	deals := []models.Deal{
		{ID: "d1", Title: "Rebuild", ClientID: "c1", Value: 12000},
		{ID: "d2", Title: "Ghost deal", ClientID: "gone"},
	}
	campaigns := []models.SocialCampaign{{ID: "s1", Title: "Launch", ClientID: "c1", Platform: models.PlatformInstagram}}

	dot, err := AccountMap(context.Background(), clients, deals, campaigns)
	require.NoError(t, err)
	assert.Contains(t, dot, "Acme")
	assert.Contains(t, dot, "Rebuild")
	assert.Contains(t, dot, "Launch")
	assert.NotContains(t, dot, "Ghost deal")
}
