// ABOUTME: Tests for dashboard, advanced and lead analytics aggregations
// ABOUTME: Pure computations use fixed clocks; loaders run against the fake gateway
package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/gateway/gatewaytest"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) time.Time { return now.Add(-d) }

const day = 24 * time.Hour

func TestPercentAndRatio(t *testing.T) {
	assert.Equal(t, 0, Percent(3, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 0.0, Ratio(5, 0))
	assert.InDelta(t, 2.5, Ratio(5, 2), 0.0001)
}

func TestTopN(t *testing.T) {
	got := TopN(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
	assert.Equal(t, []Count{{"c", 5}, {"a", 2}, {"b", 2}}, got)
	assert.Len(t, TopN(map[string]int{"x": 1, "y": 1}, 0), 2)
	assert.Empty(t, TopN(nil, 5))
}

func TestLoadDashboard(t *testing.T) {
	fake := gatewaytest.New(models.Principal{ID: "u1"})
	fake.Seed(gateway.Clients,
		transform.ClientToRecord(models.Client{Name: "Ada", Company: "Acme", MonthlyValue: 1000, CreatedAt: ago(5 * day)}, "u1", now),
		transform.ClientToRecord(models.Client{Name: "Bo", Company: "Beta", MonthlyValue: 500, CreatedAt: ago(1 * day)}, "u1", now),
		transform.ClientToRecord(models.Client{Name: "Cy", Company: "Old", MonthlyValue: 250, CreatedAt: ago(30 * day)}, "u1", now),
		transform.ClientToRecord(models.Client{Name: "Zed", MonthlyValue: 9999}, "u2", now),
	)
	fake.Seed(gateway.SocialCampaigns,
		transform.SocialCampaignToRecord(models.SocialCampaign{Title: "Spring", Platform: models.CampaignPlatform("instagram"), Status: models.CampaignActive, CreatedAt: ago(2 * day)}, "u1", now),
	)
	fake.Seed(gateway.UpworkProjects,
		transform.UpworkProjectToRecord(models.UpworkProject{Title: "Site", Status: models.ProjectActive, CreatedAt: ago(3 * day)}, "u1", now),
		transform.UpworkProjectToRecord(models.UpworkProject{Title: "App", Status: models.ProjectProposal, CreatedAt: ago(4 * day)}, "u1", now),
		transform.UpworkProjectToRecord(models.UpworkProject{Title: "Bid", Status: models.ProjectProposal, CreatedAt: ago(40 * day)}, "u1", now),
	)
	fake.FailList[gateway.LinkedInContacts] = errors.New("down")

	d, err := LoadDashboard(context.Background(), gateway.NewSession(fake), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 3, d.Stats.TotalClients)
	assert.InDelta(t, 1750.0, d.Stats.MonthlyRevenue, 0.001)
	assert.Equal(t, 2, d.Stats.ActiveProjects)
	assert.Equal(t, 2, d.Stats.UpcomingTasks)

	require.Len(t, d.Recent, FeedSize)
	assert.Equal(t, "New client added", d.Recent[0].Title)
	assert.Equal(t, "Bo - Beta", d.Recent[0].Description)
	assert.Equal(t, "Spring on instagram", d.Recent[1].Description)
	assert.Equal(t, "completed", d.Recent[1].Status)
	for i := 1; i < len(d.Recent); i++ {
		assert.False(t, d.Recent[i].Timestamp.After(d.Recent[i-1].Timestamp))
	}
}

func TestLoadDashboardUnauthenticated(t *testing.T) {
	fake := gatewaytest.New(models.Principal{})
	_, err := LoadDashboard(context.Background(), gateway.NewSession(fake), nil)
	assert.ErrorIs(t, err, gateway.ErrUnauthenticated)
}

func advancedInputs() Inputs {
	return Inputs{
		Clients: []models.Client{
			{MonthlyValue: 1000, Status: models.ClientActive},
			{MonthlyValue: 500, Status: models.ClientProspect},
		},
		Deals: []models.Deal{
			{ID: "d1", StageID: "stage_1", Value: 1000, CreatedAt: ago(5 * day), UpdatedAt: ago(4 * day)},
			{ID: "d2", StageID: models.WonStageID, Value: 3000, ActualCloseDate: "2024-05-10", Source: "LinkedIn", CreatedAt: ago(10 * day), UpdatedAt: ago(10 * day)},
			{ID: "d3", StageID: models.WonStageID, Value: 2000, CreatedAt: ago(3 * day), UpdatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "d4", StageID: "stage_2", Value: 4000, Probability: 50, ExpectedCloseDate: "2024-07-20", CreatedAt: ago(2 * day), UpdatedAt: ago(2 * day)},
			{ID: "old", StageID: "stage_1", Value: 999, CreatedAt: ago(60 * day), UpdatedAt: ago(60 * day)},
		},
		Activities: []models.Activity{
			{Type: models.ActivityCall, Status: models.ActivityCompleted, CreatedAt: ago(day), CompletedAt: models.Ptr(now)},
			{Type: models.ActivityCall, Status: models.ActivityPending, CreatedAt: now},
			{Type: models.ActivityEmail, Status: models.ActivityPending, AssignedTo: "bob", CreatedAt: ago(2 * day)},
		},
	}
}

func TestComputeAdvancedOverview(t *testing.T) {
	r := ComputeAdvanced(advancedInputs(), Range30d, now)
	ov := r.Overview

	assert.InDelta(t, 18000.0, ov.TotalRevenue, 0.001)
	assert.Equal(t, 4, ov.TotalDeals)
	assert.Equal(t, 50, ov.ConversionRate)
	assert.InDelta(t, 2500.0, ov.AvgDealSize, 0.001)
	assert.InDelta(t, 10000.0, ov.PipelineValue, 0.001)
	assert.Equal(t, 3, ov.TotalActivities)
	assert.Equal(t, 33, ov.CompletionRate)
	assert.Equal(t, 1, ov.ActiveClients)
}

func TestComputeAdvancedPipeline(t *testing.T) {
	p := ComputeAdvanced(advancedInputs(), Range30d, now).Pipeline

	require.Len(t, p.StageConversion, len(models.DefaultStages))
	assert.Equal(t, "Lead", p.StageConversion[0].Stage)
	assert.Equal(t, 1, p.StageConversion[0].Deals)
	assert.Equal(t, 100, p.StageConversion[0].ConversionRate)
	assert.Equal(t, 25, p.StageConversion[1].ConversionRate)
	assert.Equal(t, 2, p.StageConversion[4].Deals)
	assert.InDelta(t, 5000.0, p.StageConversion[4].Value, 0.001)
	assert.Equal(t, 50, p.WinRate)

	assert.Equal(t, 4, p.AvgTimeInStage[0].AvgDays)
	assert.False(t, p.AvgTimeInStage[0].Simulated)
	assert.True(t, p.AvgTimeInStage[2].Simulated)
}

func TestComputeAdvancedActivity(t *testing.T) {
	a := ComputeAdvanced(advancedInputs(), Range30d, now).Activity

	assert.Equal(t, TypeBreakdown{Type: "Call", Count: 2, CompletionRate: 50}, a.ByType[0])
	assert.Equal(t, TypeBreakdown{Type: "Email", Count: 1, CompletionRate: 0}, a.ByType[1])
	require.Len(t, a.ByUser, 2)
	assert.Equal(t, "You", a.ByUser[0].User)
	assert.Equal(t, 2, a.ByUser[0].Activities)

	require.Len(t, a.Trends, 7)
	assert.Equal(t, "Jun 15", a.Trends[6].Date)
	assert.Equal(t, 1, a.Trends[6].Activities)
	assert.Equal(t, 1, a.Trends[6].Completed)
	assert.Equal(t, 1, a.Trends[5].Activities)
	assert.False(t, a.Simulated)
}

func TestComputeAdvancedRevenue(t *testing.T) {
	rev := ComputeAdvanced(advancedInputs(), Range30d, now).Revenue

	require.Len(t, rev.Monthly, 6)
	assert.Equal(t, "Jan", rev.Monthly[0].Month)
	assert.Equal(t, MonthRevenue{Month: "May", Revenue: 3000, Deals: 1, AvgDealSize: 3000}, rev.Monthly[4])
	assert.Equal(t, MonthRevenue{Month: "Jun", Revenue: 2000, Deals: 1, AvgDealSize: 2000}, rev.Monthly[5])

	assert.Equal(t, []SourceRevenue{{"LinkedIn", 3000, 1}, {"Other", 2000, 1}}, rev.BySource)

	require.Len(t, rev.Forecast, 3)
	assert.Equal(t, ForecastMonth{Month: "Jul", Projected: 2000, Deals: 1}, rev.Forecast[0])
	assert.False(t, rev.Simulated)
	assert.False(t, rev.ForecastSimulated)
}

func TestComputeAdvancedEmpty(t *testing.T) {
	r := ComputeAdvanced(Inputs{}, ParseRange("bogus"), now)
	assert.Equal(t, Range30d, r.Range)
	assert.Zero(t, r.Overview.ConversionRate)
	assert.Zero(t, r.Overview.CompletionRate)
	assert.Zero(t, r.Overview.AvgDealSize)
	assert.Len(t, r.Pipeline.StageConversion, len(models.DefaultStages))
	assert.True(t, r.Activity.Simulated)
	assert.True(t, r.Revenue.Simulated)
	assert.True(t, r.Revenue.ForecastSimulated)
	assert.NotNil(t, r.Revenue.BySource)
	assert.NotNil(t, r.Activity.ByUser)
}

func TestRangeSince(t *testing.T) {
	assert.Equal(t, ago(7*day), Range7d.Since(now))
	assert.Equal(t, now.AddDate(-1, 0, 0), ParseRange("1Y").Since(now))
}

func TestLoadAdvancedUsesOwnedStages(t *testing.T) {
	fake := gatewaytest.New(models.Principal{ID: "u1"})
	fake.Seed(gateway.PipelineStages,
		transform.PipelineStageToRecord(models.PipelineStage{ID: "s_b", Name: "Second", Position: 2, IsActive: true}, "u1", now),
		transform.PipelineStageToRecord(models.PipelineStage{ID: "s_a", Name: "First", Position: 1, IsActive: true}, "u1", now),
		transform.PipelineStageToRecord(models.PipelineStage{ID: "s_x", Name: "Off", Position: 3, IsActive: false}, "u1", now),
		transform.PipelineStageToRecord(models.PipelineStage{ID: "s_o", Name: "Theirs", Position: 0, IsActive: true}, "u2", now),
	)
	fake.Seed(gateway.Deals, transform.DealToRecord(models.Deal{Title: "x", StageID: "s_b", Value: 10}, "u1", now))

	r, err := LoadAdvanced(context.Background(), gateway.NewSession(fake), Range30d, now.Add(time.Hour), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, r.Pipeline.StageConversion, 2)
	assert.Equal(t, "First", r.Pipeline.StageConversion[0].Stage)
	assert.Equal(t, 1, r.Pipeline.StageConversion[1].Deals)
}

func TestLeadStats(t *testing.T) {
	st := ComputeLeadStats([]models.LeadList{
		{Niche: "bakeries", TotalLeads: 10},
		{Niche: "bakeries", TotalLeads: 8},
		{Niche: "dentists", TotalLeads: 5},
	})
	assert.Equal(t, 3, st.TotalLists)
	assert.Equal(t, 23, st.TotalLeads)
	assert.Equal(t, 8, st.AveragePerList)
	assert.Equal(t, []Count{{"bakeries", 2}, {"dentists", 1}}, st.TopNiches)

	empty := ComputeLeadStats(nil)
	assert.Zero(t, empty.AveragePerList)
	assert.NotNil(t, empty.TopNiches)
}

func TestLoadLeadStats(t *testing.T) {
	fake := gatewaytest.New(models.Principal{ID: "u1"})
	fake.Seed(gateway.LeadLists,
		transform.LeadListToRecord(models.LeadList{Niche: "florists", Leads: []models.Lead{{CompanyName: "A"}, {CompanyName: "B"}}}, "u1", now),
		transform.LeadListToRecord(models.LeadList{Niche: "hidden", Leads: []models.Lead{{}}}, "u2", now),
	)
	st, err := LoadLeadStats(context.Background(), gateway.NewSession(fake), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalLists)
	assert.Equal(t, 2, st.TotalLeads)
}
