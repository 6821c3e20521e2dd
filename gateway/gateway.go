// ABOUTME: Data gateway contract shared by every storage backend
// ABOUTME: Defines collections, queries, rows, sentinel errors and row codecs
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harperreed/agency/models"
)

var (
	ErrUnauthenticated   = errors.New("not signed in")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidCollection = errors.New("unknown collection")
)

// SystemOwner owns the shared default pipeline stages.
const SystemOwner = "system"

type Collection string

const (
	Clients             Collection = "clients"
	SocialCampaigns     Collection = "social_campaigns"
	UpworkProjects      Collection = "upwork_projects"
	LinkedInContacts    Collection = "linkedin_contacts"
	Users               Collection = "users"
	PipelineStages      Collection = "pipeline_stages"
	Deals               Collection = "deals"
	Activities          Collection = "activities"
	EmailSequences      Collection = "email_sequences"
	SequenceEnrollments Collection = "sequence_enrollments"
	Goals               Collection = "goals"
	LeadLists           Collection = "lead_lists"
)

// Collections lists every collection in a stable order.
var Collections = []Collection{
	Clients, SocialCampaigns, UpworkProjects, LinkedInContacts, Users,
	PipelineStages, Deals, Activities, EmailSequences, SequenceEnrollments,
	Goals, LeadLists,
}

func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Owned reports whether rows in c carry a user_id owner. Users are
// themselves principals and pipeline stages are shared.
func (c Collection) Owned() bool {
	return c.Valid() && c != Users && c != PipelineStages
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidCollection, name)
	}
	return c, nil
}

// Row is one stored record as a snake_case document.
type Row = map[string]any

// Query narrows a List call. Where is an AND of equality matches on record
// fields. AnyOwner, when set, replaces an owner equality in Where with an OR
// over the given owner ids.
type Query struct {
	Where    map[string]any
	AnyOwner []string
	OrderBy  string
	Desc     bool
	Limit    int
}

// Owned builds the owner-filtered query every view uses.
func Owned(ownerID string) Query {
	return Query{Where: map[string]any{"user_id": ownerID}}
}

// Gateway is the remote data service. Implementations must return an empty
// slice, not an error, when nothing matches.
type Gateway interface {
	CurrentUser(ctx context.Context) (models.Principal, error)
	List(ctx context.Context, c Collection, q Query) ([]Row, error)
	Get(ctx context.Context, c Collection, id string) (Row, error)
	Create(ctx context.Context, c Collection, row Row) error
	Update(ctx context.Context, c Collection, id string, partial Row) error
	Delete(ctx context.Context, c Collection, id string) error
}

// Encode turns a record struct into a Row.
func Encode(v any) (Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return row, nil
}

// Decode converts rows into record structs. A row whose shape does not fit
// is decoded field by field as far as possible rather than dropped.
func Decode[T any](rows []Row) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, DecodeOne[T](row))
	}
	return out
}

// DecodeOne converts a single row. Fields with the wrong type are left zero.
func DecodeOne[T any](row Row) T {
	var rec T
	data, err := json.Marshal(row)
	if err != nil {
		return rec
	}
	if err := json.Unmarshal(data, &rec); err == nil {
		return rec
	}
	// Retry one field at a time so a single bad column keeps the rest.
	var partial T
	for key, value := range row {
		field, err := json.Marshal(map[string]any{key: value})
		if err != nil {
			continue
		}
		_ = json.Unmarshal(field, &partial)
	}
	return partial
}

// Fields converts a patch partial into a Row.
func Fields(f models.Fields) Row {
	return Row(f)
}

// Matches reports whether row satisfies q's filters. Backends that cannot
// push filters down use it after fetching.
func Matches(row Row, q Query) bool {
	for key, want := range q.Where {
		if key == "user_id" && len(q.AnyOwner) > 0 {
			continue
		}
		if !equalValues(row[key], want) {
			return false
		}
	}
	if len(q.AnyOwner) > 0 {
		owner, _ := row["user_id"].(string)
		found := false
		for _, id := range q.AnyOwner {
			if owner == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalValues(got, want any) bool {
	return fmt.Sprint(normalize(got)) == fmt.Sprint(normalize(want))
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case bool:
		if n {
			return float64(1)
		}
		return float64(0)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return n.String()
		}
		return f
	}
	return v
}
