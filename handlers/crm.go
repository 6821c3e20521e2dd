// ABOUTME: Client, deal and activity tools
// ABOUTME: Writes go through the same views the TUI and web API use
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/harperreed/agency/views"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CreateClientInput struct {
	Name         string   `json:"name" jsonschema:"Contact name (required)"`
	Company      string   `json:"company,omitempty" jsonschema:"Company name"`
	Email        string   `json:"email,omitempty" jsonschema:"Email address"`
	Phone        string   `json:"phone,omitempty" jsonschema:"Phone number"`
	Status       string   `json:"status,omitempty" jsonschema:"active, inactive or prospect (default prospect)"`
	Services     []string `json:"services,omitempty" jsonschema:"Services provided to the client"`
	MonthlyValue float64  `json:"monthly_value,omitempty" jsonschema:"Monthly retainer value"`
}

type ClientOutput struct {
	Client models.Client `json:"client"`
}

func (h *Handlers) CreateClient(ctx context.Context, _ *mcp.CallToolRequest, input CreateClientInput) (*mcp.CallToolResult, ClientOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ClientOutput{}, fmt.Errorf("name is required")
	}
	status := models.ClientStatus(input.Status)
	if input.Status != "" && !status.Valid() {
		return nil, ClientOutput{}, fmt.Errorf("invalid status %q", input.Status)
	}

	v := views.NewClients(h.session, h.notifier, h.logger)
	c, err := v.Add(ctx, models.Client{
		Name:         input.Name,
		Company:      input.Company,
		Email:        input.Email,
		Phone:        input.Phone,
		Status:       status,
		Services:     input.Services,
		MonthlyValue: input.MonthlyValue,
	})
	if err != nil {
		return nil, ClientOutput{}, err
	}
	return nil, ClientOutput{Client: c}, nil
}

type UpdateClientInput struct {
	ID           string    `json:"id" jsonschema:"Client id (required)"`
	Name         *string   `json:"name,omitempty"`
	Company      *string   `json:"company,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Status       *string   `json:"status,omitempty" jsonschema:"active, inactive or prospect"`
	Services     *[]string `json:"services,omitempty"`
	MonthlyValue *float64  `json:"monthly_value,omitempty"`
}

func (h *Handlers) UpdateClient(ctx context.Context, _ *mcp.CallToolRequest, input UpdateClientInput) (*mcp.CallToolResult, ClientOutput, error) {
	patch := models.ClientPatch{
		Name:         input.Name,
		Company:      input.Company,
		Email:        input.Email,
		Phone:        input.Phone,
		Services:     input.Services,
		MonthlyValue: input.MonthlyValue,
	}
	if input.Status != nil {
		s := models.ClientStatus(*input.Status)
		if !s.Valid() {
			return nil, ClientOutput{}, fmt.Errorf("invalid status %q", *input.Status)
		}
		patch.Status = &s
	}

	v := views.NewClients(h.session, h.notifier, h.logger)
	if err := v.Load(ctx); err != nil {
		return nil, ClientOutput{}, err
	}
	if err := v.Edit(ctx, input.ID, patch); err != nil {
		return nil, ClientOutput{}, err
	}
	c, _ := v.Find(input.ID)
	return nil, ClientOutput{Client: c}, nil
}

type CreateDealInput struct {
	Title             string  `json:"title" jsonschema:"Deal title (required)"`
	Value             float64 `json:"value,omitempty" jsonschema:"Deal value"`
	StageID           string  `json:"stage_id,omitempty" jsonschema:"Stage id (default: first stage)"`
	Probability       *int    `json:"probability,omitempty" jsonschema:"Win probability 0-100 (default 50)"`
	ClientID          string  `json:"client_id,omitempty" jsonschema:"Client id this deal is for"`
	Description       string  `json:"description,omitempty"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Source            string  `json:"source,omitempty" jsonschema:"Where the deal came from, e.g. LinkedIn"`
}

type DealOutput struct {
	Deal  models.Deal `json:"deal"`
	Stage string      `json:"stage"`
}

func (h *Handlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}
	b := views.NewBoard(h.session, h.notifier, h.logger)
	if err := b.Load(ctx); err != nil {
		return nil, DealOutput{}, err
	}
	f := b.NewDealForm()
	f.Title = input.Title
	f.Value = input.Value
	f.Description = input.Description
	f.ClientID = input.ClientID
	f.ExpectedCloseDate = input.ExpectedCloseDate
	f.Source = input.Source
	if input.StageID != "" {
		f.StageID = input.StageID
	}
	if input.Probability != nil {
		f.Probability = *input.Probability
	}
	d, err := b.AddDeal(ctx, f)
	if err != nil {
		return nil, DealOutput{}, err
	}
	return nil, DealOutput{Deal: d, Stage: b.StageLabel(d.StageID)}, nil
}

type MoveDealInput struct {
	DealID  string `json:"deal_id" jsonschema:"Deal id (required)"`
	StageID string `json:"stage_id" jsonschema:"Target stage id (required)"`
}

type MoveDealOutput struct {
	Moved bool   `json:"moved"`
	Stage string `json:"stage"`
}

func (h *Handlers) MoveDeal(ctx context.Context, _ *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, MoveDealOutput, error) {
	b := views.NewBoard(h.session, h.notifier, h.logger)
	if err := b.Load(ctx); err != nil {
		return nil, MoveDealOutput{}, err
	}
	moved, err := b.Move(ctx, input.DealID, input.StageID)
	if err != nil {
		return nil, MoveDealOutput{}, err
	}
	return nil, MoveDealOutput{Moved: moved, Stage: b.StageLabel(input.StageID)}, nil
}

type PipelineBoardInput struct {
	Query string `json:"query,omitempty" jsonschema:"Filter deals by title or description"`
	Stage string `json:"stage,omitempty" jsonschema:"Only show this stage id"`
}

type BoardColumn struct {
	StageID string        `json:"stage_id"`
	Stage   string        `json:"stage"`
	Count   int           `json:"count"`
	Value   float64       `json:"value"`
	Deals   []models.Deal `json:"deals"`
}

type PipelineBoardOutput struct {
	Columns    []BoardColumn    `json:"columns"`
	Unassigned []models.Deal    `json:"unassigned"`
	Stats      views.BoardStats `json:"stats"`
}

func (h *Handlers) PipelineBoard(ctx context.Context, _ *mcp.CallToolRequest, input PipelineBoardInput) (*mcp.CallToolResult, PipelineBoardOutput, error) {
	b := views.NewBoard(h.session, h.notifier, h.logger)
	if err := b.Load(ctx); err != nil {
		return nil, PipelineBoardOutput{}, err
	}
	f := views.BoardFilter{Term: input.Query, Stage: input.Stage}
	out := PipelineBoardOutput{Unassigned: b.Unassigned(f), Stats: b.Stats(f)}
	for _, col := range b.Columns(f) {
		out.Columns = append(out.Columns, BoardColumn{
			StageID: col.Stage.ID,
			Stage:   col.Stage.Name,
			Count:   len(col.Deals),
			Value:   col.Value,
			Deals:   col.Deals,
		})
	}
	return nil, out, nil
}

type LogActivityInput struct {
	Type          string `json:"type" jsonschema:"call, email, meeting, note or task"`
	Title         string `json:"title" jsonschema:"Short summary (required)"`
	Description   string `json:"description,omitempty"`
	RelatedToType string `json:"related_to_type,omitempty" jsonschema:"client, deal or contact"`
	RelatedToID   string `json:"related_to_id,omitempty" jsonschema:"Id of the related record"`
	DueDate       string `json:"due_date,omitempty" jsonschema:"Due date, YYYY-MM-DD or RFC 3339"`
	Priority      string `json:"priority,omitempty" jsonschema:"low, medium or high"`
	Completed     bool   `json:"completed,omitempty" jsonschema:"Log it as already done"`
}

type ActivityOutput struct {
	Activity models.Activity `json:"activity"`
	Related  string          `json:"related,omitempty"`
}

func (h *Handlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ActivityOutput{}, fmt.Errorf("title is required")
	}
	typ := models.ActivityType(input.Type)
	if !typ.Valid() {
		return nil, ActivityOutput{}, fmt.Errorf("invalid activity type %q", input.Type)
	}
	a := models.Activity{
		Type:          typ,
		Title:         input.Title,
		Description:   input.Description,
		RelatedToType: input.RelatedToType,
		RelatedToID:   input.RelatedToID,
		Priority:      models.ActivityPriority(input.Priority),
		Status:        models.ActivityPending,
	}
	if input.DueDate != "" {
		due := transform.ParseTime(input.DueDate)
		if due.IsZero() {
			return nil, ActivityOutput{}, fmt.Errorf("invalid due date %q", input.DueDate)
		}
		a.DueDate = &due
	}
	if input.Completed {
		now := h.now().UTC()
		a.Status = models.ActivityCompleted
		a.CompletedAt = &now
	}

	v := views.NewActivities(h.session, h.notifier, h.logger)
	created, err := v.Add(ctx, a)
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	return nil, ActivityOutput{Activity: created, Related: h.relatedLabel(ctx, created)}, nil
}

// relatedLabel resolves the activity's weak reference for display.
func (h *Handlers) relatedLabel(ctx context.Context, a models.Activity) string {
	ref, ok := a.Related()
	if !ok {
		return ""
	}
	r := views.NewResolver()
	switch ref.Kind {
	case models.RefClient:
		c := views.NewClients(h.session, nil, h.logger)
		if c.Load(ctx) == nil {
			r.Clients(c.Items())
		}
	case models.RefDeal:
		b := views.NewBoard(h.session, nil, h.logger)
		if b.Load(ctx) == nil {
			r.Deals(b.Deals())
		}
	case models.RefContact:
		c := views.NewContacts(h.session, nil, h.logger)
		if c.Load(ctx) == nil {
			r.Contacts(c.Items())
		}
	}
	return r.Label(ref, ok)
}

type CompleteActivityInput struct {
	ID string `json:"id" jsonschema:"Activity id (required)"`
}

func (h *Handlers) CompleteActivity(ctx context.Context, _ *mcp.CallToolRequest, input CompleteActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	v := views.NewActivities(h.session, h.notifier, h.logger)
	if err := v.Load(ctx); err != nil {
		return nil, ActivityOutput{}, err
	}
	if err := v.Complete(ctx, input.ID); err != nil {
		return nil, ActivityOutput{}, err
	}
	a, _ := v.Find(input.ID)
	return nil, ActivityOutput{Activity: a}, nil
}

type AddTeamMemberInput struct {
	Name       string `json:"name" jsonschema:"Member name (required)"`
	Email      string `json:"email" jsonschema:"Email address (required)"`
	Role       string `json:"role,omitempty" jsonschema:"admin, manager, member or viewer (default member)"`
	Department string `json:"department,omitempty" jsonschema:"Department"`
}

type TeamMemberOutput struct {
	Member models.User `json:"member"`
}

func (h *Handlers) AddTeamMember(ctx context.Context, _ *mcp.CallToolRequest, input AddTeamMemberInput) (*mcp.CallToolResult, TeamMemberOutput, error) {
	team := views.NewTeam(h.session, h.notifier, h.logger)
	u, err := team.AddMember(ctx, input.Name, input.Email, models.UserRole(input.Role), input.Department)
	if err != nil {
		return nil, TeamMemberOutput{}, err
	}
	return nil, TeamMemberOutput{Member: u}, nil
}
