// ABOUTME: MCP prompt templates for pipeline reviews, lead outreach and follow-ups
// ABOUTME: Each prompt renders current CRM data into a single user message
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (h *Handlers) registerPrompts(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review pipeline health stage by stage and suggest which deals need attention",
	}, h.pipelineReviewPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "lead-outreach",
		Description: "Draft outreach emails for a saved lead list",
		Arguments: []*mcp.PromptArgument{
			{Name: "list_id", Description: "Saved lead list id", Required: true},
		},
	}, h.leadOutreachPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "Suggest next steps for overdue and pending activities",
	}, h.followUpPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}

func (h *Handlers) pipelineReviewPrompt(ctx context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	board := views.NewBoard(h.session, h.notifier, h.logger)
	if err := board.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	stats := board.Stats(views.BoardFilter{})

	var b strings.Builder
	b.WriteString("Please review the current sales pipeline:\n\n")
	fmt.Fprintf(&b, "Total Deals: %d\n", stats.Deals)
	fmt.Fprintf(&b, "Total Value: $%.0f\n", stats.TotalValue)
	fmt.Fprintf(&b, "Weighted Value: $%.0f\n\n", stats.WeightedValue)
	b.WriteString("Pipeline by Stage:\n")
	for _, col := range board.Columns(views.BoardFilter{}) {
		fmt.Fprintf(&b, "  - %s: %d deals, $%.0f\n", col.Stage.Name, len(col.Deals), col.Value)
		for _, d := range col.Deals {
			fmt.Fprintf(&b, "      * %s ($%.0f, %d%%)", d.Title, d.Value, d.Probability)
			if d.ExpectedCloseDate != "" {
				fmt.Fprintf(&b, " expected close %s", d.ExpectedCloseDate)
			}
			b.WriteString("\n")
		}
	}
	if n := len(board.Unassigned(views.BoardFilter{})); n > 0 {
		fmt.Fprintf(&b, "  - (no stage): %d deals\n", n)
	}

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. Analysis of pipeline health and stage distribution")
	b.WriteString("\n2. Deals that look stalled or need attention")
	b.WriteString("\n3. Suggestions for improving conversion rates")

	return userPrompt("Pipeline review", b.String()), nil
}

func (h *Handlers) leadOutreachPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := req.Params.Arguments["list_id"]
	if id == "" {
		return nil, fmt.Errorf("list_id is required")
	}
	lists := leadgen.NewLists(h.session, h.notifier, h.logger)
	if _, err := lists.List(ctx); err != nil {
		return nil, err
	}
	list, ok := lists.Find(id)
	if !ok {
		return nil, fmt.Errorf("lead list %s not found", id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Draft a short, personal outreach email for each of these %s leads.\n\n", list.Niche)
	for i, l := range list.Leads {
		fmt.Fprintf(&b, "%d. %s at %s (%s)\n", i+1, l.ContactName, l.CompanyName, l.ContactTitle)
		if l.PersonalizedIntro != "" {
			fmt.Fprintf(&b, "   Angle: %s\n", l.PersonalizedIntro)
		}
	}
	b.WriteString("\nKeep each email under 120 words and end with one clear call to action.")

	return userPrompt(fmt.Sprintf("Outreach for %s", list.Niche), b.String()), nil
}

func (h *Handlers) followUpPrompt(ctx context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	acts := views.NewActivities(h.session, h.notifier, h.logger)
	if err := acts.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	now := h.now()
	overdue := acts.Search(views.ActivityFilter{Tab: views.TabOverdue}, now).Items
	pending := acts.Search(views.ActivityFilter{Tab: views.TabPending}, now).Items

	var b strings.Builder
	b.WriteString("Here is my open activity list:\n\n")
	writeActivities(&b, "Overdue", overdue)
	writeActivities(&b, "Pending", pending)
	b.WriteString("\nSuggest what to do next for each, most urgent first.")

	return userPrompt("Follow-up suggestions", b.String()), nil
}

func writeActivities(b *strings.Builder, heading string, acts []models.Activity) {
	fmt.Fprintf(b, "%s (%d):\n", heading, len(acts))
	for _, a := range acts {
		fmt.Fprintf(b, "  - [%s] %s", a.Type, a.Title)
		if a.DueDate != nil {
			fmt.Fprintf(b, " due %s", a.DueDate.Format(models.DateLayout))
		}
		b.WriteString("\n")
	}
}
