// ABOUTME: Sync bookkeeping for external imports such as Google Calendar
// ABOUTME: Tracks per-service status and tokens, and which source items became records
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncRunning SyncStatus = "syncing"
	SyncError   SyncStatus = "error"
)

// SyncState is the last known import state of one external service.
type SyncState struct {
	Service       string
	LastSyncTime  *time.Time
	LastSyncToken *string
	Status        SyncStatus
	ErrorMessage  *string
	UpdatedAt     time.Time
}

const syncStateColumns = `service, last_sync_time, last_sync_token, status, error_message, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSyncState(s scanner) (*SyncState, error) {
	var state SyncState
	var status string
	var lastSyncTime sql.NullTime
	var lastSyncToken, errorMessage sql.NullString

	if err := s.Scan(&state.Service, &lastSyncTime, &lastSyncToken, &status, &errorMessage, &state.UpdatedAt); err != nil {
		return nil, err
	}
	state.Status = SyncStatus(status)
	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	if lastSyncToken.Valid {
		state.LastSyncToken = &lastSyncToken.String
	}
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}
	return &state, nil
}

// GetSyncState returns nil, nil when the service has never synced.
func GetSyncState(ctx context.Context, db *sql.DB, service string) (*SyncState, error) {
	row := db.QueryRowContext(ctx, `SELECT `+syncStateColumns+` FROM sync_state WHERE service = ?`, service)
	state, err := scanSyncState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return state, nil
}

// ListSyncStates returns every known service ordered by name.
func ListSyncStates(ctx context.Context, db *sql.DB) ([]SyncState, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+syncStateColumns+` FROM sync_state ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, *state)
	}
	return states, rows.Err()
}

// SetSyncStatus records a status change; errMsg is cleared when nil.
func SetSyncStatus(ctx context.Context, db *sql.DB, service string, status SyncStatus, errMsg *string) error {
	var msg sql.NullString
	if errMsg != nil {
		msg = sql.NullString{String: *errMsg, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, string(status), msg)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// SaveSyncToken stores the incremental token and marks the service idle.
func SaveSyncToken(ctx context.Context, db *sql.DB, service, token string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_state (service, last_sync_time, last_sync_token, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, ?, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = CURRENT_TIMESTAMP,
			last_sync_token = excluded.last_sync_token,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service, token)
	if err != nil {
		return fmt.Errorf("failed to update sync token: %w", err)
	}
	return nil
}

// WasImported reports whether a source item already produced a record.
func WasImported(ctx context.Context, db *sql.DB, service, sourceID string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sync_log WHERE source_service = ? AND source_id = ?`,
		service, sourceID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check sync log: %w", err)
	}
	return count > 0, nil
}

// RecordImport links a source item to the record created from it.
func RecordImport(ctx context.Context, db *sql.DB, id, service, sourceID, entityType, entityID, metadata string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_log (id, source_service, source_id, entity_type, entity_id, imported_at, metadata)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?)
	`, id, service, sourceID, entityType, entityID, metadata)
	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	return nil
}
