// ABOUTME: Lead generation and lead list tools
// ABOUTME: Generation never fails on bad model output; it falls back to sample leads
package handlers

import (
	"context"
	"errors"

	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var ErrNoStreamer = errors.New("lead generation is not configured: set AGENCY_OPENAI_API_KEY")

type GenerateLeadsInput struct {
	Niche string `json:"niche" jsonschema:"Industry or niche to prospect, e.g. boutique bakeries (required)"`
	Save  bool   `json:"save,omitempty" jsonschema:"Also save the result as a lead list"`
}

type GenerateLeadsOutput struct {
	Niche    string        `json:"niche"`
	State    string        `json:"state"`
	Leads    []models.Lead `json:"leads"`
	SavedAs  string        `json:"saved_as,omitempty"`
	Fallback bool          `json:"fallback"`
}

func (h *Handlers) GenerateLeads(ctx context.Context, _ *mcp.CallToolRequest, input GenerateLeadsInput) (*mcp.CallToolResult, GenerateLeadsOutput, error) {
	if h.streamer == nil {
		return nil, GenerateLeadsOutput{}, ErrNoStreamer
	}
	if _, err := h.session.Principal(ctx); err != nil {
		return nil, GenerateLeadsOutput{}, err
	}
	g := leadgen.NewGenerator(h.streamer, h.model, h.logger)
	leads, err := g.Generate(ctx, input.Niche)
	if err != nil {
		return nil, GenerateLeadsOutput{}, err
	}
	out := GenerateLeadsOutput{
		Niche:    g.Niche(),
		State:    g.State().String(),
		Leads:    leads,
		Fallback: g.State() == leadgen.IdleWithFallback,
	}
	if input.Save {
		saved, err := leadgen.NewLists(h.session, h.notifier, h.logger).Save(ctx, g.Niche(), leads)
		if err != nil {
			return nil, out, err
		}
		out.SavedAs = saved.ID
	}
	return nil, out, nil
}

type SaveLeadListInput struct {
	Niche string        `json:"niche" jsonschema:"Niche the leads were generated for (required)"`
	Leads []models.Lead `json:"leads" jsonschema:"Leads to save (at least one)"`
}

type SaveLeadListOutput struct {
	List models.LeadList `json:"list"`
}

func (h *Handlers) SaveLeadList(ctx context.Context, _ *mcp.CallToolRequest, input SaveLeadListInput) (*mcp.CallToolResult, SaveLeadListOutput, error) {
	saved, err := leadgen.NewLists(h.session, h.notifier, h.logger).Save(ctx, input.Niche, input.Leads)
	if err != nil {
		return nil, SaveLeadListOutput{}, err
	}
	return nil, SaveLeadListOutput{List: saved}, nil
}
