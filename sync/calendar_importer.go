// ABOUTME: Google Calendar importer that logs past meetings as completed activities
// ABOUTME: Handles pagination, incremental sync tokens with 410 fallback and dedup via the sync log
package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harperreed/agency/db"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

const (
	CalendarService = "calendar"
	maxResults      = 250 // Google Calendar API max per page
	lookback        = 6   // months fetched when there is no sync token
)

// ImportResult summarizes one calendar sync.
type ImportResult struct {
	Fetched    int            `json:"fetched"`
	Imported   int            `json:"imported"`
	Duplicates int            `json:"duplicates"`
	Skipped    map[string]int `json:"skipped"`
}

// CalendarImporter turns calendar events into meeting activities owned by
// the session principal. Sync bookkeeping lives in the local database
// whatever backend holds the records.
type CalendarImporter struct {
	database *sql.DB
	session  *gateway.Session
	service  *calendar.Service
	logger   *zap.Logger
	out      io.Writer
	now      func() time.Time
}

func NewCalendarImporter(database *sql.DB, session *gateway.Session, service *calendar.Service, out io.Writer, logger *zap.Logger) *CalendarImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &CalendarImporter{
		database: database,
		session:  session,
		service:  service,
		logger:   logger,
		out:      out,
		now:      time.Now,
	}
}

// shouldSkipEvent determines if an event should be skipped during import.
// Returns (true, reason) if the event should be skipped, (false, "") otherwise.
func shouldSkipEvent(event *calendar.Event, now time.Time) (bool, string) {
	if event == nil {
		return true, "nil event"
	}
	if event.Start == nil || event.End == nil {
		return true, "missing start time"
	}
	// All-day events carry Date instead of DateTime.
	if event.Start.Date != "" {
		return true, "all-day event"
	}
	if event.Status == "cancelled" {
		return true, "cancelled"
	}
	for _, attendee := range event.Attendees {
		if attendee.Self && attendee.ResponseStatus == "declined" {
			return true, "declined"
		}
	}
	if n := len(event.Attendees); n <= 1 {
		return true, fmt.Sprintf("solo event (%d attendee%s)", n, pluralize(n))
	}
	if end, err := time.Parse(time.RFC3339, event.End.DateTime); err != nil || end.After(now) {
		return true, "upcoming"
	}
	return false, ""
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func (im *CalendarImporter) fail(ctx context.Context, err error) error {
	msg := err.Error()
	_ = db.SetSyncStatus(ctx, im.database, CalendarService, db.SyncError, &msg)
	im.logger.Error("calendar sync failed", zap.Error(err))
	return err
}

func (im *CalendarImporter) listCall(ctx context.Context) *calendar.EventsListCall {
	return im.service.Events.List("primary").
		Context(ctx).
		MaxResults(maxResults).
		SingleEvents(true)
}

// Import fetches events and logs each qualifying meeting once. initial
// ignores any stored sync token and refetches the last six months.
func (im *CalendarImporter) Import(ctx context.Context, initial bool) (ImportResult, error) {
	result := ImportResult{Skipped: map[string]int{}}
	p, err := im.session.Principal(ctx)
	if err != nil {
		return result, err
	}

	_, _ = fmt.Fprintln(im.out, "Syncing Google Calendar...")
	if err := db.SetSyncStatus(ctx, im.database, CalendarService, db.SyncRunning, nil); err != nil {
		return result, fmt.Errorf("failed to update sync status: %w", err)
	}

	state, err := db.GetSyncState(ctx, im.database, CalendarService)
	if err != nil {
		return result, im.fail(ctx, fmt.Errorf("failed to get sync state: %w", err))
	}

	matcher, err := im.clientMatcher(ctx, p)
	if err != nil {
		return result, im.fail(ctx, err)
	}

	since := im.now().AddDate(0, -lookback, 0)
	call := im.listCall(ctx)
	switch {
	case initial:
		call = call.TimeMin(since.Format(time.RFC3339))
		_, _ = fmt.Fprintln(im.out, "  → Initial sync (last 6 months)...")
	case state != nil && state.LastSyncToken != nil && *state.LastSyncToken != "":
		call = call.SyncToken(*state.LastSyncToken)
		_, _ = fmt.Fprintln(im.out, "  → Incremental sync...")
	default:
		call = call.TimeMin(since.Format(time.RFC3339))
		_, _ = fmt.Fprintln(im.out, "  → No previous sync found, fetching last 6 months...")
	}

	page := 0
	for {
		events, err := call.Do()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusGone {
			// The sync token expired; fall back to a time window.
			_, _ = fmt.Fprintln(im.out, "  → Sync token invalid, falling back to time-based sync...")
			fallback := since
			if state != nil && state.LastSyncTime != nil {
				fallback = *state.LastSyncTime
			}
			call = im.listCall(ctx).TimeMin(fallback.Format(time.RFC3339))
			events, err = call.Do()
		}
		if err != nil {
			return result, im.fail(ctx, fmt.Errorf("failed to fetch calendar events: %w", err))
		}

		page++
		result.Fetched += len(events.Items)
		if len(events.Items) > 0 {
			_, _ = fmt.Fprintf(im.out, "  → Fetched %d events (page %d)\n", len(events.Items), page)
		}

		for _, event := range events.Items {
			if skip, reason := shouldSkipEvent(event, im.now()); skip {
				result.Skipped[reason]++
				continue
			}
			imported, err := im.importEvent(ctx, p, event, matcher)
			if err != nil {
				return result, im.fail(ctx, err)
			}
			if imported {
				result.Imported++
			} else {
				result.Duplicates++
			}
		}

		if events.NextPageToken == "" {
			if events.NextSyncToken != "" {
				if err := db.SaveSyncToken(ctx, im.database, CalendarService, events.NextSyncToken); err != nil {
					return result, im.fail(ctx, fmt.Errorf("failed to update sync token: %w", err))
				}
			}
			break
		}
		call = call.PageToken(events.NextPageToken)
	}

	if err := db.SetSyncStatus(ctx, im.database, CalendarService, db.SyncIdle, nil); err != nil {
		return result, fmt.Errorf("failed to update sync status: %w", err)
	}
	im.logger.Info("calendar sync finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("imported", result.Imported),
		zap.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

func (im *CalendarImporter) clientMatcher(ctx context.Context, p models.Principal) (*ClientMatcher, error) {
	rows, err := im.session.Gateway().List(ctx, gateway.Clients, gateway.Owned(p.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	var clients []models.Client
	for _, rec := range gateway.Decode[models.ClientRecord](rows) {
		clients = append(clients, transform.ClientToView(rec))
	}
	return NewClientMatcher(clients), nil
}

// importEvent reports false when the event was already imported.
func (im *CalendarImporter) importEvent(ctx context.Context, p models.Principal, event *calendar.Event, matcher *ClientMatcher) (bool, error) {
	seen, err := db.WasImported(ctx, im.database, CalendarService, event.Id)
	if err != nil || seen {
		return false, err
	}

	start, _ := time.Parse(time.RFC3339, event.Start.DateTime)
	end, _ := time.Parse(time.RFC3339, event.End.DateTime)
	start, end = start.UTC(), end.UTC()

	var attendees []string
	var client models.Client
	matched := false
	for _, a := range event.Attendees {
		if a.Self || a.Email == "" {
			continue
		}
		attendees = append(attendees, a.Email)
		if !matched {
			client, matched = matcher.FindMatch(a.Email)
		}
	}

	title := strings.TrimSpace(event.Summary)
	if title == "" {
		title = "Meeting"
	}
	metadata := map[string]any{
		"calendar_event_id": event.Id,
		"attendees":         attendees,
		"duration_minutes":  int(end.Sub(start).Minutes()),
	}
	if event.Location != "" {
		metadata["location"] = event.Location
	}
	activity := models.Activity{
		Type:        models.ActivityMeeting,
		Title:       title,
		Description: event.Description,
		DueDate:     &start,
		CompletedAt: &end,
		Status:      models.ActivityCompleted,
		Priority:    models.PriorityMedium,
		Metadata:    metadata,
	}
	if matched {
		activity.RelatedToType = string(models.RefClient)
		activity.RelatedToID = client.ID
	}

	rec := transform.ActivityToRecord(activity, p.ID, im.now().UTC())
	row, err := gateway.Encode(rec)
	if err != nil {
		return false, err
	}
	if err := im.session.Gateway().Create(ctx, gateway.Activities, row); err != nil {
		return false, fmt.Errorf("failed to create activity for event %s: %w", event.Id, err)
	}

	meta, _ := json.Marshal(map[string]string{"summary": title})
	if err := db.RecordImport(ctx, im.database, transform.NewID("sync"), CalendarService, event.Id, string(gateway.Activities), rec.ID, string(meta)); err != nil {
		return false, err
	}
	return true, nil
}
