// ABOUTME: Automation view over email sequences and their enrollments
// ABOUTME: Supports toggling sequences, drafting steps and enrollment progress
package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/harperreed/agency/analytics"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Automation struct {
	Sequences   *View[models.EmailSequence]
	Enrollments *View[models.SequenceEnrollment]
}

func NewAutomation(s *gateway.Session, n Notifier, logger *zap.Logger) *Automation {
	seqs := newMapping(gateway.EmailSequences, "sequence", transform.EmailSequenceToView, transform.EmailSequenceToRecord,
		func(q models.EmailSequence) string { return q.ID })
	enrollments := newMapping(gateway.SequenceEnrollments, "enrollment", transform.SequenceEnrollmentToView, transform.SequenceEnrollmentToRecord,
		func(e models.SequenceEnrollment) string { return e.ID })
	return &Automation{
		Sequences:   NewView(s, seqs, n, logger),
		Enrollments: NewView(s, enrollments, n, logger),
	}
}

func (a *Automation) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Sequences.Load(ctx) })
	g.Go(func() error { return a.Enrollments.Load(ctx) })
	return g.Wait()
}

func (a *Automation) SearchSequences(term, trigger string) Listing[models.EmailSequence] {
	return a.Sequences.Filter(
		Search(term,
			func(s models.EmailSequence) string { return s.Name },
			func(s models.EmailSequence) string { return s.Description },
		),
		Equals(trigger, func(s models.EmailSequence) models.TriggerType { return s.TriggerType }),
	)
}

// Toggle flips a sequence between active and paused.
func (a *Automation) Toggle(ctx context.Context, id string) error {
	seq, ok := a.Sequences.Find(id)
	if !ok {
		return a.Sequences.fail("update", fmt.Errorf("%w: sequence %s", gateway.ErrNotFound, id))
	}
	return a.Sequences.Edit(ctx, id, models.EmailSequencePatch{IsActive: models.Ptr(!seq.IsActive)})
}

// Enroll starts a contact on a sequence at step zero.
func (a *Automation) Enroll(ctx context.Context, sequenceID, contactID string) (models.SequenceEnrollment, error) {
	if _, ok := a.Sequences.Find(sequenceID); !ok {
		return models.SequenceEnrollment{}, a.Enrollments.fail("create", fmt.Errorf("%w: sequence %s", gateway.ErrNotFound, sequenceID))
	}
	return a.Enrollments.Add(ctx, models.SequenceEnrollment{SequenceID: sequenceID, ContactID: contactID})
}

// Progress is the enrollment's step position as a percentage of its
// sequence; 0 when the sequence is gone or empty.
func (a *Automation) Progress(e models.SequenceEnrollment) int {
	seq, ok := a.Sequences.Find(e.SequenceID)
	if !ok {
		return 0
	}
	return analytics.Percent(e.CurrentStep, len(seq.Steps))
}

// EnrolledIn counts enrollments per sequence.
func (a *Automation) EnrolledIn(sequenceID string) int {
	n := 0
	for _, e := range a.Enrollments.Items() {
		if e.SequenceID == sequenceID {
			n++
		}
	}
	return n
}

type SequenceStats struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	TotalEnrollments  int `json:"totalEnrollments"`
	ActiveEnrollments int `json:"activeEnrollments"`
}

func (a *Automation) Stats() SequenceStats {
	var s SequenceStats
	for _, seq := range a.Sequences.Items() {
		s.Total++
		if seq.IsActive {
			s.Active++
		}
	}
	for _, e := range a.Enrollments.Items() {
		s.TotalEnrollments++
		if e.Status == models.EnrollmentActive {
			s.ActiveEnrollments++
		}
	}
	return s
}

// SequenceDraft is a sequence being composed. It always keeps at least one
// step.
type SequenceDraft struct {
	Name        string
	Description string
	Trigger     models.TriggerType
	Steps       []models.EmailStep
}

func NewSequenceDraft() *SequenceDraft {
	return &SequenceDraft{
		Trigger: models.TriggerManual,
		Steps:   []models.EmailStep{{ID: "1", Delay: 0}},
	}
}

// AddStep appends an empty step with a default one-day delay.
func (d *SequenceDraft) AddStep() {
	d.Steps = append(d.Steps, models.EmailStep{ID: strconv.Itoa(len(d.Steps) + 1), Delay: 24})
}

// RemoveStep drops step i unless it is the last one left.
func (d *SequenceDraft) RemoveStep(i int) bool {
	if len(d.Steps) <= 1 || i < 0 || i >= len(d.Steps) {
		return false
	}
	d.Steps = append(d.Steps[:i], d.Steps[i+1:]...)
	return true
}

// Create saves the draft as an active sequence.
func (a *Automation) Create(ctx context.Context, d *SequenceDraft) (models.EmailSequence, error) {
	return a.Sequences.Add(ctx, models.EmailSequence{
		Name:        d.Name,
		Description: d.Description,
		TriggerType: d.Trigger,
		IsActive:    true,
		Steps:       d.Steps,
	})
}
