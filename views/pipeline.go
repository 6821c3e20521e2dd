// ABOUTME: Pipeline board partitioning deals into ordered stage columns
// ABOUTME: Moves write one stage_id update, patch in place and roll back on failure
package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDealNotFound  = errors.New("deal not found")
	ErrStageNotFound = errors.New("stage not found")
)

// DefaultProbability prefills the new-deal form.
const DefaultProbability = 50

// Column is one stage with the deals currently in it.
type Column struct {
	Stage models.PipelineStage `json:"stage"`
	Deals []models.Deal        `json:"deals"`
	Value float64              `json:"value"`
}

// BoardFilter mirrors the pipeline search box and stage select.
type BoardFilter struct {
	Term  string
	Stage string
}

type BoardStats struct {
	Deals         int     `json:"deals"`
	TotalValue    float64 `json:"totalValue"`
	WeightedValue float64 `json:"weightedValue"`
	AvgDealSize   float64 `json:"avgDealSize"`
}

type Board struct {
	deals    *View[models.Deal]
	stages   *View[models.PipelineStage]
	notifier Notifier
	logger   *zap.Logger
}

func NewBoard(s *gateway.Session, n Notifier, logger *zap.Logger) *Board {
	if n == nil {
		n = Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deals := newMapping(gateway.Deals, "deal", transform.DealToView, transform.DealToRecord,
		func(d models.Deal) string { return d.ID })
	stages := newMapping(gateway.PipelineStages, "stage", transform.PipelineStageToView, transform.PipelineStageToRecord,
		func(s models.PipelineStage) string { return s.ID })
	// Stages are the principal's own plus the shared system defaults.
	stages.Scope = func(ownerID string) gateway.Query {
		return gateway.Query{AnyOwner: []string{ownerID, gateway.SystemOwner}, OrderBy: "position"}
	}
	return &Board{
		deals:    NewView(s, deals, n, logger),
		stages:   NewView(s, stages, n, logger),
		notifier: n,
		logger:   logger,
	}
}

// Load fetches deals and stages concurrently.
func (b *Board) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.deals.Load(ctx) })
	g.Go(func() error { return b.stages.Load(ctx) })
	return g.Wait()
}

func (b *Board) State() State {
	return b.deals.State()
}

// Deals returns every loaded deal.
func (b *Board) Deals() []models.Deal {
	return b.deals.Items()
}

// Stages returns the active stages in position order.
func (b *Board) Stages() []models.PipelineStage {
	var out []models.PipelineStage
	for _, s := range b.stages.Items() {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

func (b *Board) stage(id string) (models.PipelineStage, bool) {
	for _, s := range b.Stages() {
		if s.ID == id {
			return s, true
		}
	}
	return models.PipelineStage{}, false
}

// StageLabel names a stage, or "unknown" when the reference is stale.
func (b *Board) StageLabel(id string) string {
	return NewResolver().Stages(b.stages.Items()).Label(models.NewRef(models.RefStage, id))
}

// Filtered applies the search box and stage select.
func (b *Board) Filtered(f BoardFilter) []models.Deal {
	return b.deals.Filter(
		Search(f.Term,
			func(d models.Deal) string { return d.Title },
			func(d models.Deal) string { return d.Description },
		),
		Equals(f.Stage, func(d models.Deal) string { return d.StageID }),
	).Items
}

// Columns partitions the filtered deals by stage in position order.
func (b *Board) Columns(f BoardFilter) []Column {
	deals := b.Filtered(f)
	stages := b.Stages()
	cols := make([]Column, 0, len(stages))
	for _, s := range stages {
		col := Column{Stage: s, Deals: []models.Deal{}}
		for _, d := range deals {
			if d.StageID == s.ID {
				col.Deals = append(col.Deals, d)
				col.Value += d.Value
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// Unassigned returns filtered deals whose stage is empty, gone or inactive.
func (b *Board) Unassigned(f BoardFilter) []models.Deal {
	out := []models.Deal{}
	for _, d := range b.Filtered(f) {
		if _, ok := b.stage(d.StageID); !ok {
			out = append(out, d)
		}
	}
	return out
}

func (b *Board) Stats(f BoardFilter) BoardStats {
	deals := b.Filtered(f)
	s := BoardStats{Deals: len(deals)}
	for _, d := range deals {
		s.TotalValue += d.Value
		s.WeightedValue += d.WeightedValue()
	}
	if len(deals) > 0 {
		s.AvgDealSize = s.TotalValue / float64(len(deals))
	}
	return s
}

// Move puts a deal in another stage. It reports false without writing when
// the deal is already there. The in-memory deal is patched before the write
// and restored if the write fails.
func (b *Board) Move(ctx context.Context, dealID, stageID string) (bool, error) {
	deal, ok := b.deals.Find(dealID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrDealNotFound, dealID)
	}
	if deal.StageID == stageID {
		return false, nil
	}
	if _, ok := b.stage(stageID); !ok {
		return false, fmt.Errorf("%w: %s", ErrStageNotFound, stageID)
	}

	now := b.deals.now().UTC()
	prev, _ := b.deals.patch(dealID, func(d models.Deal) models.Deal {
		d.StageID = stageID
		d.UpdatedAt = now
		return d
	})

	fields := gateway.Fields(models.DealPatch{StageID: models.Ptr(stageID)}.Fields(now))
	if err := b.deals.session.Gateway().Update(ctx, gateway.Deals, dealID, fields); err != nil {
		b.deals.patch(dealID, func(d models.Deal) models.Deal {
			// Only undo our own change.
			if d.StageID == stageID {
				d.StageID = prev.StageID
				d.UpdatedAt = prev.UpdatedAt
			}
			return d
		})
		b.logger.Error("deal move failed",
			zap.String("deal_id", dealID),
			zap.String("stage_id", stageID),
			zap.Error(err),
		)
		b.notifier.Notify(Notification{Level: LevelError, Message: "Failed to move deal"})
		return false, fmt.Errorf("failed to move deal: %w", err)
	}

	b.notifier.Notify(Notification{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Deal moved to %s", b.StageLabel(stageID)),
	})
	return true, nil
}

// DealForm is the new-deal form with its defaults filled in.
type DealForm struct {
	Title             string
	Description       string
	Value             float64
	Probability       int
	StageID           string
	ClientID          string
	ExpectedCloseDate string
	Source            string
	AssignedTo        string
}

// NewDealForm defaults probability to 50 and the stage to the first column.
func (b *Board) NewDealForm() DealForm {
	f := DealForm{Probability: DefaultProbability}
	if stages := b.Stages(); len(stages) > 0 {
		f.StageID = stages[0].ID
	}
	return f
}

// AddDeal creates a deal from form and reloads.
func (b *Board) AddDeal(ctx context.Context, f DealForm) (models.Deal, error) {
	return b.deals.Add(ctx, models.Deal{
		Title:             f.Title,
		Description:       f.Description,
		Value:             f.Value,
		Probability:       f.Probability,
		StageID:           f.StageID,
		ClientID:          f.ClientID,
		ExpectedCloseDate: f.ExpectedCloseDate,
		Source:            f.Source,
		AssignedTo:        f.AssignedTo,
	})
}

func (b *Board) EditDeal(ctx context.Context, id string, patch models.DealPatch) error {
	return b.deals.Edit(ctx, id, patch)
}

func (b *Board) DeleteDeal(ctx context.Context, id string) error {
	return b.deals.Delete(ctx, id)
}

// SetClock replaces the time source; tests use it for stable timestamps.
func (b *Board) SetClock(now func() time.Time) {
	b.deals.now = now
}
