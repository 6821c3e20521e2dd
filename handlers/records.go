// ABOUTME: Generic record listing and deletion tools
// ABOUTME: Every read is scoped to the session principal; stages also include the shared defaults
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/agency/gateway"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultLimit = 50

type ListRecordsInput struct {
	Collection string `json:"collection" jsonschema:"Collection name, e.g. clients, deals, activities, lead_lists"`
	Query      string `json:"query,omitempty" jsonschema:"Case-insensitive text to match in any field"`
	Status     string `json:"status,omitempty" jsonschema:"Only records with this status"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListRecordsOutput struct {
	Collection string        `json:"collection"`
	Count      int           `json:"count"`
	Records    []gateway.Row `json:"records"`
}

func (h *Handlers) ListRecords(ctx context.Context, _ *mcp.CallToolRequest, input ListRecordsInput) (*mcp.CallToolResult, ListRecordsOutput, error) {
	c, err := gateway.ParseCollection(input.Collection)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}
	rows, err := h.ownedRows(ctx, c)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	term := strings.ToLower(strings.TrimSpace(input.Query))
	out := ListRecordsOutput{Collection: string(c), Records: []gateway.Row{}}
	for _, row := range rows {
		if input.Status != "" && fmt.Sprint(row["status"]) != input.Status {
			continue
		}
		if term != "" && !rowContains(row, term) {
			continue
		}
		out.Records = append(out.Records, row)
		if len(out.Records) == limit {
			break
		}
	}
	out.Count = len(out.Records)
	return nil, out, nil
}

func (h *Handlers) ownedRows(ctx context.Context, c gateway.Collection) ([]gateway.Row, error) {
	p, err := h.session.Principal(ctx)
	if err != nil {
		return nil, err
	}
	q := gateway.Owned(p.ID)
	switch c {
	case gateway.PipelineStages:
		q = gateway.Query{AnyOwner: []string{p.ID, gateway.SystemOwner}, OrderBy: "position"}
	case gateway.Users:
		q = gateway.Query{Where: map[string]any{"is_active": 1}}
	default:
		q.OrderBy = "created_at"
		q.Desc = true
	}
	rows, err := h.session.Gateway().List(ctx, c, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c, err)
	}
	return rows, nil
}

func rowContains(row gateway.Row, term string) bool {
	for _, v := range row {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

type DeleteRecordInput struct {
	Collection string `json:"collection" jsonschema:"Collection name"`
	ID         string `json:"id" jsonschema:"Record id"`
}

type DeleteRecordOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteRecord refuses records the principal does not own, which includes
// the shared default stages. Referring records are left untouched.
func (h *Handlers) DeleteRecord(ctx context.Context, _ *mcp.CallToolRequest, input DeleteRecordInput) (*mcp.CallToolResult, DeleteRecordOutput, error) {
	c, err := gateway.ParseCollection(input.Collection)
	if err != nil {
		return nil, DeleteRecordOutput{}, err
	}
	p, err := h.session.Principal(ctx)
	if err != nil {
		return nil, DeleteRecordOutput{}, err
	}
	gw := h.session.Gateway()
	row, err := gw.Get(ctx, c, input.ID)
	if err != nil {
		return nil, DeleteRecordOutput{}, fmt.Errorf("failed to find %s %s: %w", c, input.ID, err)
	}
	if owner, _ := row["user_id"].(string); owner != p.ID {
		return nil, DeleteRecordOutput{}, fmt.Errorf("%w: %s %s", gateway.ErrNotFound, c, input.ID)
	}
	if err := gw.Delete(ctx, c, input.ID); err != nil {
		return nil, DeleteRecordOutput{}, fmt.Errorf("failed to delete %s %s: %w", c, input.ID, err)
	}
	return nil, DeleteRecordOutput{Deleted: true, ID: input.ID}, nil
}
