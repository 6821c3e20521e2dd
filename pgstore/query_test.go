// ABOUTME: Tests for Postgres statement building and an optional live round trip
// ABOUTME: The live test runs only when AGENCY_TEST_DATABASE_URL is set
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildListOwnerAndContainment(t *testing.T) {
	sql, args, err := buildList(gateway.Activities, gateway.Query{
		Where: map[string]any{"user_id": "u1", "status": "pending", "is_active": 1},
	})
	require.NoError(t, err)

	assert.Equal(t, `SELECT data FROM records WHERE collection = $1 AND user_id = $2 AND data @> $3::jsonb ORDER BY created_at DESC`, sql)
	require.Len(t, args, 3)
	assert.Equal(t, "activities", args[0])
	assert.Equal(t, "u1", args[1])

	var filter map[string]string
	require.NoError(t, json.Unmarshal(args[2].([]byte), &filter))
	assert.Equal(t, map[string]string{"status": "pending"}, filter)
}

func TestBuildListAnyOwner(t *testing.T) {
	sql, args, err := buildList(gateway.PipelineStages, gateway.Query{
		AnyOwner: []string{"u1", gateway.SystemOwner},
		Where:    map[string]any{"user_id": "ignored"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `user_id = ANY($2)`)
	assert.NotContains(t, sql, `@>`)
	assert.Equal(t, []string{"u1", "system"}, args[1])
}

func TestBuildUpdateMergesAndRemoves(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sql, args, err := buildUpdate(gateway.Deals, "deal_1", gateway.Row{
		"id":          "deal_1",
		"stage_id":    "stage_2",
		"description": nil,
		"source":      nil,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, `UPDATE records SET data = ((data || $1::jsonb) - $2::text[]), updated_at = now() WHERE collection = $3 AND id = $4`, sql)

	var set map[string]any
	require.NoError(t, json.Unmarshal(args[0].([]byte), &set))
	assert.Equal(t, "stage_2", set["stage_id"])
	assert.Equal(t, "2024-03-01T12:00:00.000Z", set["updated_at"])
	assert.NotContains(t, set, "id")
	assert.Equal(t, []string{"description", "source"}, args[1])
	assert.Equal(t, "deals", args[2])
	assert.Equal(t, "deal_1", args[3])
}

func TestBuildUpdateReowns(t *testing.T) {
	sql, args, err := buildUpdate(gateway.Clients, "c1", gateway.Row{"user_id": "u2"}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, sql, `user_id = $2`)
	assert.Equal(t, "u2", args[1])
}

func TestStoreLiveRoundTrip(t *testing.T) {
	url := os.Getenv("AGENCY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("AGENCY_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	owner := "pgtest-" + transform.NewID("u")

	store, err := New(ctx, url, models.Principal{ID: owner}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	rec := transform.ClientToRecord(models.Client{Name: "Ada", Status: models.ClientActive}, owner, time.Now())
	row, err := gateway.Encode(rec)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, gateway.Clients, row))
	defer func() { _ = store.Delete(ctx, gateway.Clients, rec.ID) }()

	rows, err := store.List(ctx, gateway.Clients, gateway.Query{Where: map[string]any{"user_id": owner, "status": "active"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, store.Update(ctx, gateway.Clients, rec.ID, gateway.Row{"name": "Grace"}))
	got, err := store.Get(ctx, gateway.Clients, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got["name"])

	require.NoError(t, store.Delete(ctx, gateway.Clients, rec.ID))
	_, err = store.Get(ctx, gateway.Clients, rec.ID)
	assert.True(t, errors.Is(err, gateway.ErrNotFound))
}
