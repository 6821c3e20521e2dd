// ABOUTME: Saved lead lists, one per generation the user chose to keep
// ABOUTME: Backed by the lead_lists collection through the shared entity view
package leadgen

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/harperreed/agency/views"
	"go.uber.org/zap"
)

var ErrNoLeads = errors.New("no leads to save")

type Lists struct {
	*views.View[models.LeadList]
}

func NewLists(s *gateway.Session, n views.Notifier, logger *zap.Logger) *Lists {
	mapping := views.Mapping[models.LeadList]{
		Collection: gateway.LeadLists,
		Noun:       "lead list",
		Decode: func(row gateway.Row) models.LeadList {
			return transform.LeadListToView(gateway.DecodeOne[models.LeadListRecord](row))
		},
		Encode: func(l models.LeadList, ownerID string, now time.Time) (gateway.Row, error) {
			return gateway.Encode(transform.LeadListToRecord(l, ownerID, now))
		},
		ID: func(l models.LeadList) string { return l.ID },
		Scope: func(ownerID string) gateway.Query {
			q := gateway.Owned(ownerID)
			q.OrderBy = "created_at"
			q.Desc = true
			return q
		},
	}
	return &Lists{views.NewView(s, mapping, n, logger)}
}

// Save stores leads under niche. An empty batch is refused.
func (l *Lists) Save(ctx context.Context, niche string, leads []models.Lead) (models.LeadList, error) {
	niche = strings.TrimSpace(niche)
	if niche == "" {
		return models.LeadList{}, ErrEmptyNiche
	}
	if len(leads) == 0 {
		return models.LeadList{}, ErrNoLeads
	}
	return l.Add(ctx, models.LeadList{Niche: niche, Leads: leads, TotalLeads: len(leads)})
}

// List reloads and returns saved lists, newest first.
func (l *Lists) List(ctx context.Context) ([]models.LeadList, error) {
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	return l.Items(), nil
}

// Search filters loaded lists by niche.
func (l *Lists) Search(term string) views.Listing[models.LeadList] {
	return l.Filter(views.Search(term, func(x models.LeadList) string { return x.Niche }))
}
