// ABOUTME: Tests for the calendar importer against a fake Calendar API served by httptest
// ABOUTME: Covers skip rules, pagination, dedup, client matching and sync token fallback
package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harperreed/agency/db"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var (
	ada     = models.Principal{ID: "u1", Email: "ada@example.com", Name: "Ada"}
	fixedAt = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
)

func timed(id, summary string, start time.Time, attendees ...*calendar.EventAttendee) *calendar.Event {
	return &calendar.Event{
		Id:        id,
		Summary:   summary,
		Status:    "confirmed",
		Start:     &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:       &calendar.EventDateTime{DateTime: start.Add(30 * time.Minute).Format(time.RFC3339)},
		Attendees: attendees,
	}
}

func self() *calendar.EventAttendee {
	return &calendar.EventAttendee{Email: ada.Email, Self: true, ResponseStatus: "accepted"}
}

func guest(email string) *calendar.EventAttendee {
	return &calendar.EventAttendee{Email: email, ResponseStatus: "accepted"}
}

// calendarAPI serves pages keyed by pageToken and answers 410 for the
// "expired" sync token.
type calendarAPI struct {
	pages map[string]*calendar.Events
	seen  []string
}

func (a *calendarAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a.seen = append(a.seen, q.Encode())
	if q.Get("syncToken") == "expired" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte(`{"error":{"code":410,"message":"Sync token is no longer valid"}}`))
		return
	}
	page, ok := a.pages[q.Get("pageToken")]
	if !ok {
		page = &calendar.Events{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func setupImporter(t *testing.T, api *calendarAPI) (*CalendarImporter, *sql.DB, *db.Store) {
	t.Helper()
	database, err := db.OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	service, err := calendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	store := db.NewStore(database, ada)
	im := NewCalendarImporter(database, gateway.NewSession(store), service, nil, zap.NewNop())
	im.now = func() time.Time { return fixedAt }
	return im, database, store
}

func activities(t *testing.T, store *db.Store) []models.Activity {
	t.Helper()
	rows, err := store.List(context.Background(), gateway.Activities, gateway.Owned(ada.ID))
	require.NoError(t, err)
	var out []models.Activity
	for _, rec := range gateway.Decode[models.ActivityRecord](rows) {
		out = append(out, transform.ActivityToView(rec))
	}
	return out
}

func TestShouldSkipEvent(t *testing.T) {
	past := fixedAt.Add(-48 * time.Hour)
	tests := []struct {
		name   string
		event  *calendar.Event
		skip   bool
		reason string
	}{
		{"nil", nil, true, "nil event"},
		{"meeting", timed("e1", "Sync", past, self(), guest("bob@acme.io")), false, ""},
		{"all day", &calendar.Event{
			Start:     &calendar.EventDateTime{Date: "2024-06-01"},
			End:       &calendar.EventDateTime{Date: "2024-06-02"},
			Attendees: []*calendar.EventAttendee{self(), guest("bob@acme.io")},
		}, true, "all-day event"},
		{"cancelled", func() *calendar.Event {
			e := timed("e2", "Sync", past, self(), guest("bob@acme.io"))
			e.Status = "cancelled"
			return e
		}(), true, "cancelled"},
		{"declined", timed("e3", "Sync", past,
			&calendar.EventAttendee{Email: ada.Email, Self: true, ResponseStatus: "declined"},
			guest("bob@acme.io")), true, "declined"},
		{"solo", timed("e4", "Focus", past, self()), true, "solo event (1 attendee)"},
		{"nobody", timed("e5", "Focus", past), true, "solo event (0 attendees)"},
		{"upcoming", timed("e6", "Later", fixedAt.Add(time.Hour), self(), guest("bob@acme.io")), true, "upcoming"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, reason := shouldSkipEvent(tt.event, fixedAt)
			assert.Equal(t, tt.skip, skip)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestImportCreatesMeetingsAndPaginates(t *testing.T) {
	past := fixedAt.Add(-72 * time.Hour)
	api := &calendarAPI{pages: map[string]*calendar.Events{
		"": {
			Items:         []*calendar.Event{timed("e1", "Kickoff", past, self(), guest("bob@acme.io")), timed("e2", "Focus", past, self())},
			NextPageToken: "p2",
		},
		"p2": {
			Items:         []*calendar.Event{timed("e3", "", past.Add(time.Hour), self(), guest("zed@elsewhere.dev"))},
			NextSyncToken: "tok-1",
		},
	}}
	im, database, store := setupImporter(t, api)
	ctx := context.Background()

	client := transform.ClientToRecord(models.Client{Name: "Alice", Email: "alice@acme.io"}, ada.ID, fixedAt)
	row, err := gateway.Encode(client)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, gateway.Clients, row))

	res, err := im.Import(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped["solo event (1 attendee)"])

	acts := activities(t, store)
	require.Len(t, acts, 2)
	byTitle := map[string]models.Activity{}
	for _, a := range acts {
		byTitle[a.Title] = a
		assert.Equal(t, models.ActivityMeeting, a.Type)
		assert.Equal(t, models.ActivityCompleted, a.Status)
		require.NotNil(t, a.CompletedAt)
	}
	assert.Equal(t, client.ID, byTitle["Kickoff"].RelatedToID)
	assert.Equal(t, "client", byTitle["Kickoff"].RelatedToType)
	assert.Equal(t, "e1", byTitle["Kickoff"].Metadata["calendar_event_id"])
	assert.Empty(t, byTitle["Meeting"].RelatedToID)

	state, err := db.GetSyncState(ctx, database, CalendarService)
	require.NoError(t, err)
	require.NotNil(t, state.LastSyncToken)
	assert.Equal(t, "tok-1", *state.LastSyncToken)
	assert.Equal(t, db.SyncIdle, state.Status)

	// A second pass uses the stored token and skips what was imported.
	again, err := im.Import(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 2, again.Duplicates)
	assert.Contains(t, api.seen[len(api.seen)-2], "syncToken=tok-1")
	assert.Len(t, activities(t, store), 2)
}

func TestImportFallsBackWhenSyncTokenExpired(t *testing.T) {
	past := fixedAt.Add(-24 * time.Hour)
	api := &calendarAPI{pages: map[string]*calendar.Events{
		"": {Items: []*calendar.Event{timed("e1", "Review", past, self(), guest("bob@acme.io"))}, NextSyncToken: "tok-2"},
	}}
	im, database, store := setupImporter(t, api)
	ctx := context.Background()
	require.NoError(t, db.SaveSyncToken(ctx, database, CalendarService, "expired"))

	res, err := im.Import(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Len(t, activities(t, store), 1)

	state, err := db.GetSyncState(ctx, database, CalendarService)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", *state.LastSyncToken)
}

func TestImportRequiresSignIn(t *testing.T) {
	api := &calendarAPI{}
	im, _, _ := setupImporter(t, api)
	im.session = gateway.NewSession(db.NewStore(im.database, models.Principal{}))
	_, err := im.Import(context.Background(), true)
	assert.ErrorIs(t, err, gateway.ErrUnauthenticated)
	assert.Empty(t, api.seen)
}
