// ABOUTME: MCP tool, resource and prompt handlers over the CRM views
// ABOUTME: One Handlers value serves a single signed-in session on stdio
package handlers

import (
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/views"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type Handlers struct {
	session  *gateway.Session
	streamer leadgen.TextStreamer
	model    string
	notifier views.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// New builds handlers for session. streamer may be nil, in which case
// generate_leads reports that generation is not configured.
func New(session *gateway.Session, streamer leadgen.TextStreamer, model string, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		session:  session,
		streamer: streamer,
		model:    model,
		notifier: views.LogNotifier(logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Register adds every tool, resource and prompt to server.
func (h *Handlers) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_records",
		Description: "List your records in a collection, optionally filtered by a search term or status",
	}, h.ListRecords)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete one of your records by collection and id",
	}, h.DeleteRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_client",
		Description: "Add a new agency client",
	}, h.CreateClient)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_client",
		Description: "Update fields on an existing client; omitted fields are left alone",
	}, h.UpdateClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_team_member",
		Description: "Add an active member to the team roster",
	}, h.AddTeamMember)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a deal on the pipeline board, defaulting to the first stage and 50% probability",
	}, h.CreateDeal)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal",
		Description: "Move a deal to another pipeline stage",
	}, h.MoveDeal)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_board",
		Description: "Show the pipeline board columns with deal counts, values and stats",
	}, h.PipelineBoard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, email, meeting, note or task, optionally linked to a client or deal",
	}, h.LogActivity)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_activity",
		Description: "Mark an activity completed now",
	}, h.CompleteActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_leads",
		Description: "Generate B2B leads for a niche with the AI model",
	}, h.GenerateLeads)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_lead_list",
		Description: "Save a batch of generated leads under a niche",
	}, h.SaveLeadList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard",
		Description: "Headline stats and the recent activity feed",
	}, h.Dashboard)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "advanced_analytics",
		Description: "Pipeline, activity and revenue analytics for a date range (7d, 30d, 90d, 1y)",
	}, h.AdvancedAnalytics)

	h.registerResources(server)
	h.registerPrompts(server)
}
