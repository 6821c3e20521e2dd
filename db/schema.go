// ABOUTME: Database schema definitions and default data
// ABOUTME: One records table holds every collection as JSON documents
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/transform"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	user_id TEXT,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_records_owner ON records(collection, user_id);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(collection, created_at DESC);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	last_sync_token TEXT,
	status TEXT CHECK(status IN ('idle', 'syncing', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_log (
	id TEXT PRIMARY KEY,
	source_service TEXT NOT NULL,
	source_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	metadata TEXT,
	UNIQUE(source_service, source_id)
);

CREATE INDEX IF NOT EXISTS idx_sync_log_source ON sync_log(source_service, source_id);
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return SeedPipelineStages(context.Background(), db)
}

// SeedPipelineStages inserts the default stages if they are missing.
func SeedPipelineStages(ctx context.Context, db *sql.DB) error {
	repo := NewRecordsRepository(db)
	for _, rec := range transform.SystemStageRecords(gateway.SystemOwner, time.Now().UTC()) {
		row, err := gateway.Encode(rec)
		if err != nil {
			return err
		}
		if err := repo.InsertIfMissing(ctx, gateway.PipelineStages, row); err != nil {
			return fmt.Errorf("failed to seed pipeline stage %s: %w", rec.ID, err)
		}
	}
	return nil
}
