// ABOUTME: Resolves weak references to display labels at render time
// ABOUTME: Missing targets render as "unknown" instead of failing
package views

import "github.com/harperreed/agency/models"

// Resolver maps references to labels from whatever collections are loaded.
type Resolver struct {
	labels map[models.RefKind]map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{labels: make(map[models.RefKind]map[string]string)}
}

// Add registers a label for kind/id.
func (r *Resolver) Add(kind models.RefKind, id, label string) *Resolver {
	if r.labels[kind] == nil {
		r.labels[kind] = make(map[string]string)
	}
	r.labels[kind][id] = label
	return r
}

func (r *Resolver) Clients(clients []models.Client) *Resolver {
	for _, c := range clients {
		r.Add(models.RefClient, c.ID, c.Name)
	}
	return r
}

func (r *Resolver) Deals(deals []models.Deal) *Resolver {
	for _, d := range deals {
		r.Add(models.RefDeal, d.ID, d.Title)
	}
	return r
}

func (r *Resolver) Stages(stages []models.PipelineStage) *Resolver {
	for _, s := range stages {
		r.Add(models.RefStage, s.ID, s.Name)
	}
	return r
}

func (r *Resolver) Contacts(contacts []models.LinkedInContact) *Resolver {
	for _, c := range contacts {
		r.Add(models.RefContact, c.ID, c.Name)
	}
	return r
}

// Label returns the target's label, "" when there is no reference and
// models.UnknownLabel when the target is gone.
func (r *Resolver) Label(ref models.Ref, ok bool) string {
	if !ok {
		return ""
	}
	if label, found := r.labels[ref.Kind][ref.ID]; found {
		return label
	}
	return models.UnknownLabel
}
