// ABOUTME: In-memory gateway for tests with call recording and failure injection
// ABOUTME: Lets view, board and analytics tests assert exactly which writes were issued
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
)

// Call records one write made through the fake.
type Call struct {
	Op         string
	Collection gateway.Collection
	ID         string
	Row        gateway.Row
}

// Fake is a gateway.Gateway backed by maps.
type Fake struct {
	mu        sync.Mutex
	principal models.Principal
	data      map[gateway.Collection]map[string]gateway.Row
	order     map[gateway.Collection][]string
	calls     []Call

	// FailList, FailCreate, FailUpdate and FailDelete force errors for the
	// named collections.
	FailList   map[gateway.Collection]error
	FailCreate map[gateway.Collection]error
	FailUpdate map[gateway.Collection]error
	FailDelete map[gateway.Collection]error
	// FailAuth makes CurrentUser fail.
	FailAuth error
}

func New(p models.Principal) *Fake {
	return &Fake{
		principal:  p,
		data:       make(map[gateway.Collection]map[string]gateway.Row),
		order:      make(map[gateway.Collection][]string),
		FailList:   make(map[gateway.Collection]error),
		FailCreate: make(map[gateway.Collection]error),
		FailUpdate: make(map[gateway.Collection]error),
		FailDelete: make(map[gateway.Collection]error),
	}
}

// Seed inserts records without recording a call.
func (f *Fake) Seed(c gateway.Collection, records ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range records {
		row, err := gateway.Encode(rec)
		if err != nil {
			panic(err)
		}
		f.put(c, row)
	}
}

func (f *Fake) put(c gateway.Collection, row gateway.Row) {
	id := fmt.Sprint(row["id"])
	if f.data[c] == nil {
		f.data[c] = make(map[string]gateway.Row)
	}
	if _, exists := f.data[c][id]; !exists {
		f.order[c] = append(f.order[c], id)
	}
	f.data[c][id] = row
}

// Calls returns the writes seen so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many rows a collection holds.
func (f *Fake) Count(c gateway.Collection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data[c])
}

// Row returns a stored row for assertions.
func (f *Fake) Row(c gateway.Collection, id string) (gateway.Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.data[c][id]
	return row, ok
}

func (f *Fake) CurrentUser(context.Context) (models.Principal, error) {
	if f.FailAuth != nil {
		return models.Principal{}, f.FailAuth
	}
	if f.principal.ID == "" {
		return models.Principal{}, gateway.ErrUnauthenticated
	}
	return f.principal, nil
}

func (f *Fake) List(_ context.Context, c gateway.Collection, q gateway.Query) ([]gateway.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FailList[c]; err != nil {
		return nil, err
	}
	rows := make([]gateway.Row, 0, len(f.order[c]))
	for _, id := range f.order[c] {
		if row, ok := f.data[c][id]; ok {
			rows = append(rows, copyRow(row))
		}
	}
	return gateway.Apply(rows, q), nil
}

func (f *Fake) Get(_ context.Context, c gateway.Collection, id string) (gateway.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.data[c][id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return copyRow(row), nil
}

func (f *Fake) Create(_ context.Context, c gateway.Collection, row gateway.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "create", Collection: c, ID: fmt.Sprint(row["id"]), Row: copyRow(row)})
	if err := f.FailCreate[c]; err != nil {
		return err
	}
	f.put(c, copyRow(row))
	return nil
}

func (f *Fake) Update(_ context.Context, c gateway.Collection, id string, partial gateway.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "update", Collection: c, ID: id, Row: copyRow(partial)})
	if err := f.FailUpdate[c]; err != nil {
		return err
	}
	row, ok := f.data[c][id]
	if !ok {
		return gateway.ErrNotFound
	}
	for k, v := range partial {
		row[k] = v
	}
	return nil
}

func (f *Fake) Delete(_ context.Context, c gateway.Collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "delete", Collection: c, ID: id})
	if err := f.FailDelete[c]; err != nil {
		return err
	}
	if _, ok := f.data[c][id]; !ok {
		return gateway.ErrNotFound
	}
	delete(f.data[c], id)
	return nil
}

func copyRow(row gateway.Row) gateway.Row {
	out := make(gateway.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
