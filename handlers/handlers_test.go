// ABOUTME: Tests for the MCP tool handlers against the recording fake gateway
// ABOUTME: Tools are called directly; the MCP transport itself is not exercised
package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/gateway/gatewaytest"
	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ada = models.Principal{ID: "u1", Email: "ada@example.com", Name: "Ada"}

type cannedStreamer struct {
	text string
	err  error
}

func (s cannedStreamer) StreamText(_ context.Context, _ leadgen.Prompt, onChunk func(string)) error {
	if s.err != nil {
		return s.err
	}
	onChunk(s.text)
	return nil
}

func setup(t *testing.T, streamer leadgen.TextStreamer) (*gatewaytest.Fake, *Handlers) {
	t.Helper()
	fake := gatewaytest.New(ada)
	for _, st := range transform.SystemStageRecords(gateway.SystemOwner, time.Now()) {
		fake.Seed(gateway.PipelineStages, st)
	}
	h := New(gateway.NewSession(fake), streamer, leadgen.DefaultModel, zap.NewNop())
	return fake, h
}

func field(t *testing.T, fake *gatewaytest.Fake, c gateway.Collection, id, name string) any {
	t.Helper()
	row, ok := fake.Row(c, id)
	require.True(t, ok, "no %s row %s", c, id)
	return row[name]
}

func TestCreateAndListClients(t *testing.T) {
	fake, h := setup(t, nil)
	ctx := context.Background()

	_, out, err := h.CreateClient(ctx, nil, CreateClientInput{Name: "Ada", Company: "Acme", Status: "active", MonthlyValue: 2500})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Client.ID)
	assert.Equal(t, 1, fake.Count(gateway.Clients))

	fake.Seed(gateway.Clients, transform.ClientToRecord(models.Client{Name: "Not mine"}, "u2", time.Now()))

	_, list, err := h.ListRecords(ctx, nil, ListRecordsInput{Collection: "clients"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "Ada", list.Records[0]["name"])

	_, list, err = h.ListRecords(ctx, nil, ListRecordsInput{Collection: "clients", Query: "acme"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	_, list, err = h.ListRecords(ctx, nil, ListRecordsInput{Collection: "clients", Status: "prospect"})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
}

func TestCreateClientValidates(t *testing.T) {
	_, h := setup(t, nil)
	_, _, err := h.CreateClient(context.Background(), nil, CreateClientInput{Name: "  "})
	assert.Error(t, err)
	_, _, err = h.CreateClient(context.Background(), nil, CreateClientInput{Name: "Ada", Status: "vip"})
	assert.Error(t, err)
}

func TestUpdateClientOnlyTouchesGivenFields(t *testing.T) {
	fake, h := setup(t, nil)
	ctx := context.Background()
	_, created, err := h.CreateClient(ctx, nil, CreateClientInput{Name: "Ada", Company: "Acme"})
	require.NoError(t, err)

	_, out, err := h.UpdateClient(ctx, nil, UpdateClientInput{ID: created.Client.ID, Status: models.Ptr("active")})
	require.NoError(t, err)
	assert.Equal(t, models.ClientActive, out.Client.Status)
	assert.Equal(t, "Acme", out.Client.Company)
	assert.Equal(t, "active", field(t, fake, gateway.Clients, created.Client.ID, "status"))
}

func TestListRecordsRejectsUnknownCollection(t *testing.T) {
	_, h := setup(t, nil)
	_, _, err := h.ListRecords(context.Background(), nil, ListRecordsInput{Collection: "invoices"})
	assert.True(t, errors.Is(err, gateway.ErrInvalidCollection))
}

func TestListStagesIncludesSharedDefaults(t *testing.T) {
	_, h := setup(t, nil)
	_, out, err := h.ListRecords(context.Background(), nil, ListRecordsInput{Collection: "pipeline_stages"})
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultStages), out.Count)
}

func TestDeleteRecordRefusesSharedStages(t *testing.T) {
	fake, h := setup(t, nil)
	_, _, err := h.DeleteRecord(context.Background(), nil, DeleteRecordInput{Collection: "pipeline_stages", ID: "stage_1"})
	assert.True(t, errors.Is(err, gateway.ErrNotFound))
	assert.Equal(t, len(models.DefaultStages), fake.Count(gateway.PipelineStages))
}

func TestDealLifecycle(t *testing.T) {
	fake, h := setup(t, nil)
	ctx := context.Background()

	_, deal, err := h.CreateDeal(ctx, nil, CreateDealInput{Title: "Website rebuild", Value: 12000})
	require.NoError(t, err)
	assert.Equal(t, "stage_1", deal.Deal.StageID)
	assert.Equal(t, 50, deal.Deal.Probability)
	assert.Equal(t, "Lead", deal.Stage)

	_, moved, err := h.MoveDeal(ctx, nil, MoveDealInput{DealID: deal.Deal.ID, StageID: "stage_3"})
	require.NoError(t, err)
	assert.True(t, moved.Moved)
	assert.Equal(t, "Proposal", moved.Stage)
	assert.Equal(t, "stage_3", field(t, fake, gateway.Deals, deal.Deal.ID, "stage_id"))

	_, again, err := h.MoveDeal(ctx, nil, MoveDealInput{DealID: deal.Deal.ID, StageID: "stage_3"})
	require.NoError(t, err)
	assert.False(t, again.Moved)

	_, board, err := h.PipelineBoard(ctx, nil, PipelineBoardInput{})
	require.NoError(t, err)
	require.Len(t, board.Columns, len(models.DefaultStages))
	assert.Equal(t, 1, board.Columns[2].Count)
	assert.Equal(t, 12000.0, board.Stats.TotalValue)
	assert.Empty(t, board.Unassigned)
}

func TestMoveDealUnknownStage(t *testing.T) {
	_, h := setup(t, nil)
	ctx := context.Background()
	_, deal, err := h.CreateDeal(ctx, nil, CreateDealInput{Title: "Audit"})
	require.NoError(t, err)
	_, _, err = h.MoveDeal(ctx, nil, MoveDealInput{DealID: deal.Deal.ID, StageID: "stage_99"})
	assert.Error(t, err)
}

func TestLogAndCompleteActivity(t *testing.T) {
	fake, h := setup(t, nil)
	ctx := context.Background()
	_, client, err := h.CreateClient(ctx, nil, CreateClientInput{Name: "Ada", Company: "Acme"})
	require.NoError(t, err)

	_, logged, err := h.LogActivity(ctx, nil, LogActivityInput{
		Type:          "call",
		Title:         "Kickoff",
		RelatedToType: "client",
		RelatedToID:   client.Client.ID,
		DueDate:       "2030-01-02",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityPending, logged.Activity.Status)
	require.NotNil(t, logged.Activity.DueDate)
	assert.NotEmpty(t, logged.Related)

	_, done, err := h.CompleteActivity(ctx, nil, CompleteActivityInput{ID: logged.Activity.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityCompleted, done.Activity.Status)
	assert.Equal(t, "completed", field(t, fake, gateway.Activities, logged.Activity.ID, "status"))
}

func TestLogActivityValidates(t *testing.T) {
	_, h := setup(t, nil)
	ctx := context.Background()
	_, _, err := h.LogActivity(ctx, nil, LogActivityInput{Type: "fax", Title: "Old school"})
	assert.Error(t, err)
	_, _, err = h.LogActivity(ctx, nil, LogActivityInput{Type: "note", Title: "Later", DueDate: "someday"})
	assert.Error(t, err)
}

func TestGenerateLeadsNeedsStreamer(t *testing.T) {
	_, h := setup(t, nil)
	_, _, err := h.GenerateLeads(context.Background(), nil, GenerateLeadsInput{Niche: "bakeries"})
	assert.ErrorIs(t, err, ErrNoStreamer)
}

func TestGenerateLeadsFallsBackAndSaves(t *testing.T) {
	fake, h := setup(t, cannedStreamer{err: errors.New("rate limited")})
	_, out, err := h.GenerateLeads(context.Background(), nil, GenerateLeadsInput{Niche: "bakeries", Save: true})
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, "idle-with-fallback", out.State)
	assert.NotEmpty(t, out.Leads)
	assert.NotEmpty(t, out.SavedAs)
	assert.Equal(t, 1, fake.Count(gateway.LeadLists))
}

func TestGenerateLeadsParsesModelOutput(t *testing.T) {
	text := `Here you go: [{"companyName":"Crumb Co","contactName":"Bo","contactEmail":"bo@crumb.co","contactTitle":"Owner","personalizedIntro":"Love the sourdough","industry":"Food","companySize":"10"}]`
	_, h := setup(t, cannedStreamer{text: text})
	_, out, err := h.GenerateLeads(context.Background(), nil, GenerateLeadsInput{Niche: "bakeries"})
	require.NoError(t, err)
	assert.False(t, out.Fallback)
	require.Len(t, out.Leads, 1)
	assert.Equal(t, "Crumb Co", out.Leads[0].CompanyName)
}

func TestSaveLeadListRefusesEmpty(t *testing.T) {
	_, h := setup(t, nil)
	_, _, err := h.SaveLeadList(context.Background(), nil, SaveLeadListInput{Niche: "bakeries"})
	assert.ErrorIs(t, err, leadgen.ErrNoLeads)
}

func TestAnalyticsTools(t *testing.T) {
	_, h := setup(t, nil)
	ctx := context.Background()
	_, _, err := h.CreateClient(ctx, nil, CreateClientInput{Name: "Ada", Status: "active", MonthlyValue: 1000})
	require.NoError(t, err)

	_, dash, err := h.Dashboard(ctx, nil, DashboardInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Stats.TotalClients)

	_, report, err := h.AdvancedAnalytics(ctx, nil, AdvancedAnalyticsInput{Range: "7d"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Overview.TotalDeals)
}

func TestToolsRequireSignIn(t *testing.T) {
	fake := gatewaytest.New(models.Principal{})
	h := New(gateway.NewSession(fake), nil, "", zap.NewNop())
	_, _, err := h.ListRecords(context.Background(), nil, ListRecordsInput{Collection: "clients"})
	assert.ErrorIs(t, err, gateway.ErrUnauthenticated)
}

func TestPipelineReviewPrompt(t *testing.T) {
	_, h := setup(t, nil)
	ctx := context.Background()
	_, _, err := h.CreateDeal(ctx, nil, CreateDealInput{Title: "Website rebuild", Value: 12000})
	require.NoError(t, err)

	res, err := h.pipelineReviewPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "pipeline-review"}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Website rebuild")
	assert.Contains(t, text, "Lead: 1 deals")
}

func TestAddTeamMember(t *testing.T) {
	fake, h := setup(t, nil)
	ctx := context.Background()

	_, out, err := h.AddTeamMember(ctx, nil, AddTeamMemberInput{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, out.Member.Role)
	assert.Equal(t, "[]", field(t, fake, gateway.Users, out.Member.ID, "permissions"))

	_, _, err = h.AddTeamMember(ctx, nil, AddTeamMemberInput{Name: "Grace"})
	assert.Error(t, err)
}
