// ABOUTME: Activities view with type, status and priority selects plus tab buckets
// ABOUTME: Completing an activity stamps completed_at and reloads
package views

import (
	"context"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
)

// Activity tabs.
const (
	TabAll       = "all"
	TabPending   = "pending"
	TabCompleted = "completed"
	TabOverdue   = "overdue"
)

type Activities struct {
	*View[models.Activity]
}

func NewActivities(s *gateway.Session, n Notifier, logger *zap.Logger) *Activities {
	mapping := newMapping(gateway.Activities, "activity", transform.ActivityToView, transform.ActivityToRecord,
		func(a models.Activity) string { return a.ID })
	return &Activities{NewView(s, mapping, n, logger)}
}

// ActivityFilter mirrors the activity page controls. Empty fields match all.
type ActivityFilter struct {
	Term     string
	Type     string
	Status   string
	Priority string
	Tab      string
}

func (v *Activities) Search(f ActivityFilter, now time.Time) Listing[models.Activity] {
	return v.Filter(
		Search(f.Term,
			func(a models.Activity) string { return a.Title },
			func(a models.Activity) string { return a.Description },
		),
		Equals(f.Type, func(a models.Activity) models.ActivityType { return a.Type }),
		Equals(f.Status, func(a models.Activity) models.ActivityStatus { return a.Status }),
		Equals(f.Priority, func(a models.Activity) models.ActivityPriority { return a.Priority }),
		tab(f.Tab, now),
	)
}

func tab(name string, now time.Time) Predicate[models.Activity] {
	switch name {
	case TabPending:
		return func(a models.Activity) bool { return a.Status == models.ActivityPending }
	case TabCompleted:
		return func(a models.Activity) bool { return a.Status == models.ActivityCompleted }
	case TabOverdue:
		return func(a models.Activity) bool { return a.Overdue(now) }
	default:
		return nil
	}
}

// Complete marks an activity completed now.
func (v *Activities) Complete(ctx context.Context, id string) error {
	now := v.now().UTC()
	return v.Edit(ctx, id, models.ActivityPatch{
		Status:      models.Ptr(models.ActivityCompleted),
		CompletedAt: models.Ptr(&now),
	})
}

type ActivityStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

func (v *Activities) Stats(now time.Time) ActivityStats {
	var s ActivityStats
	for _, a := range v.Items() {
		s.Total++
		switch a.Status {
		case models.ActivityPending:
			s.Pending++
		case models.ActivityCompleted:
			s.Completed++
		}
		if a.Overdue(now) {
			s.Overdue++
		}
	}
	return s
}
