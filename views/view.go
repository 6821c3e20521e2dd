// ABOUTME: Generic owner-scoped entity view with load, write-then-reload and local filtering
// ABOUTME: Every per-entity view and the pipeline board are built on it
package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"go.uber.org/zap"
)

// State is where a view is in its load cycle.
type State int

const (
	Loading State = iota
	Ready
	ReadyEmpty
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case ReadyEmpty:
		return "ready-empty"
	default:
		return "loading"
	}
}

// Patch is any per-entity partial update from the models package.
type Patch interface {
	Fields(now time.Time) models.Fields
}

// Mapping describes how one collection maps to its view model.
type Mapping[T any] struct {
	Collection gateway.Collection
	Noun       string
	Decode     func(gateway.Row) T
	Encode     func(item T, ownerID string, now time.Time) (gateway.Row, error)
	ID         func(T) string
	// Scope builds the list query; nil means owned by the principal.
	Scope func(ownerID string) gateway.Query
}

// newMapping wires a record type R and its transform pair into a Mapping.
func newMapping[R, T any](
	c gateway.Collection,
	noun string,
	toView func(R) T,
	toRecord func(T, string, time.Time) R,
	id func(T) string,
) Mapping[T] {
	return Mapping[T]{
		Collection: c,
		Noun:       noun,
		Decode: func(row gateway.Row) T {
			return toView(gateway.DecodeOne[R](row))
		},
		Encode: func(item T, ownerID string, now time.Time) (gateway.Row, error) {
			return gateway.Encode(toRecord(item, ownerID, now))
		},
		ID: id,
	}
}

// View holds one owned collection in memory.
type View[T any] struct {
	session  *gateway.Session
	mapping  Mapping[T]
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.RWMutex
	state State
	items []T
}

func NewView[T any](session *gateway.Session, mapping Mapping[T], notifier Notifier, logger *zap.Logger) *View[T] {
	if notifier == nil {
		notifier = Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View[T]{
		session:  session,
		mapping:  mapping,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		items:    []T{},
	}
}

// Load fetches the principal then the owned collection. Only an auth
// failure is returned; a failed list leaves the view ReadyEmpty.
func (v *View[T]) Load(ctx context.Context) error {
	p, err := v.session.Principal(ctx)
	if err != nil {
		return err
	}

	q := gateway.Owned(p.ID)
	if v.mapping.Scope != nil {
		q = v.mapping.Scope(p.ID)
	}

	rows, err := v.session.Gateway().List(ctx, v.mapping.Collection, q)
	if err != nil {
		v.logger.Warn("list failed, showing empty collection",
			zap.String("collection", string(v.mapping.Collection)),
			zap.Error(err),
		)
		v.set(ReadyEmpty, []T{})
		return nil
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		items = append(items, v.mapping.Decode(row))
	}
	v.set(Ready, items)
	return nil
}

func (v *View[T]) set(state State, items []T) {
	v.mu.Lock()
	v.state = state
	v.items = items
	v.mu.Unlock()
}

func (v *View[T]) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Items returns a copy of the loaded collection.
func (v *View[T]) Items() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Find returns the loaded item with id.
func (v *View[T]) Find(id string) (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, item := range v.items {
		if v.mapping.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Add creates item under the principal and reloads. The created item (with
// its generated id) is returned.
func (v *View[T]) Add(ctx context.Context, item T) (T, error) {
	var zero T
	p, err := v.session.Principal(ctx)
	if err != nil {
		return zero, v.fail("create", err)
	}
	row, err := v.mapping.Encode(item, p.ID, v.now().UTC())
	if err != nil {
		return zero, v.fail("create", err)
	}
	if err := v.session.Gateway().Create(ctx, v.mapping.Collection, row); err != nil {
		return zero, v.fail("create", err)
	}
	created := v.mapping.Decode(row)
	v.succeed(ctx, fmt.Sprintf("%s created", capitalize(v.mapping.Noun)))
	return created, nil
}

// Edit applies patch to an owned item and reloads.
func (v *View[T]) Edit(ctx context.Context, id string, patch Patch) error {
	if _, ok := v.Find(id); !ok {
		return v.fail("update", fmt.Errorf("%w: %s %s", gateway.ErrNotFound, v.mapping.Noun, id))
	}
	fields := gateway.Fields(patch.Fields(v.now().UTC()))
	if err := v.session.Gateway().Update(ctx, v.mapping.Collection, id, fields); err != nil {
		return v.fail("update", err)
	}
	v.succeed(ctx, fmt.Sprintf("%s updated", capitalize(v.mapping.Noun)))
	return nil
}

// Delete hard-deletes an owned item and reloads. Records referring to it
// are left alone.
func (v *View[T]) Delete(ctx context.Context, id string) error {
	if _, ok := v.Find(id); !ok {
		return v.fail("delete", fmt.Errorf("%w: %s %s", gateway.ErrNotFound, v.mapping.Noun, id))
	}
	if err := v.session.Gateway().Delete(ctx, v.mapping.Collection, id); err != nil {
		return v.fail("delete", err)
	}
	v.succeed(ctx, fmt.Sprintf("%s deleted", capitalize(v.mapping.Noun)))
	return nil
}

func (v *View[T]) fail(op string, err error) error {
	v.logger.Error("write failed",
		zap.String("collection", string(v.mapping.Collection)),
		zap.String("op", op),
		zap.Error(err),
	)
	v.notifier.Notify(Notification{
		Level:   LevelError,
		Message: fmt.Sprintf("Failed to %s %s", op, v.mapping.Noun),
	})
	return fmt.Errorf("failed to %s %s: %w", op, v.mapping.Noun, err)
}

func (v *View[T]) succeed(ctx context.Context, msg string) {
	v.notifier.Notify(Notification{Level: LevelSuccess, Message: msg})
	if err := v.Load(ctx); err != nil && !errors.Is(err, gateway.ErrUnauthenticated) {
		v.logger.Warn("reload after write failed", zap.Error(err))
	}
}

// Filter applies preds to the loaded items.
func (v *View[T]) Filter(preds ...Predicate[T]) Listing[T] {
	return Select(v.Items(), v.mapping.Noun, preds...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// patch swaps the loaded item with id for fn's result without a reload. It
// returns the item as it was before.
func (v *View[T]) patch(id string, fn func(T) T) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, item := range v.items {
		if v.mapping.ID(item) == id {
			v.items[i] = fn(item)
			return item, true
		}
	}
	var zero T
	return zero, false
}
