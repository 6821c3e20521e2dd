// ABOUTME: Repository for collection records stored as JSON documents in SQLite
// ABOUTME: Implements insert, get, list, merge-update and delete over the records table
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
)

var ErrMissingID = errors.New("record has no id")

// RecordsRepository provides CRUD over the records table.
type RecordsRepository struct {
	db *sql.DB
}

func NewRecordsRepository(db *sql.DB) *RecordsRepository {
	return &RecordsRepository{db: db}
}

func rowMeta(row gateway.Row) (id, owner, created, updated string, err error) {
	id, _ = row["id"].(string)
	if id == "" {
		return "", "", "", "", ErrMissingID
	}
	owner, _ = row["user_id"].(string)
	now := models.FormatTime(time.Now())
	created, _ = row["created_at"].(string)
	if created == "" {
		created = now
		row["created_at"] = now
	}
	updated, _ = row["updated_at"].(string)
	if updated == "" {
		updated = now
		row["updated_at"] = now
	}
	return id, owner, created, updated, nil
}

// Insert stores a new record. The row must carry an id.
func (r *RecordsRepository) Insert(ctx context.Context, c gateway.Collection, row gateway.Row) error {
	return r.insert(ctx, "INSERT", c, row)
}

// InsertIfMissing stores the record unless one with the same id exists.
func (r *RecordsRepository) InsertIfMissing(ctx context.Context, c gateway.Collection, row gateway.Row) error {
	return r.insert(ctx, "INSERT OR IGNORE", c, row)
}

// Upsert replaces the whole record.
func (r *RecordsRepository) Upsert(ctx context.Context, c gateway.Collection, row gateway.Row) error {
	return r.insert(ctx, "INSERT OR REPLACE", c, row)
}

func (r *RecordsRepository) insert(ctx context.Context, verb string, c gateway.Collection, row gateway.Row) error {
	id, owner, created, updated, err := rowMeta(row)
	if err != nil {
		return err
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", c, err)
	}

	query := verb + ` INTO records (collection, id, user_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, string(c), id, nullString(owner), string(data), created, updated); err != nil {
		return fmt.Errorf("failed to insert %s record: %w", c, err)
	}
	return nil
}

// Get retrieves one record.
func (r *RecordsRepository) Get(ctx context.Context, c gateway.Collection, id string) (gateway.Row, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = ? AND id = ?`, string(c), id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record: %w", c, err)
	}
	return decodeRow(data)
}

// List returns the records of a collection matching q. Owner filters run in
// SQL; other equality filters are evaluated on the decoded documents.
func (r *RecordsRepository) List(ctx context.Context, c gateway.Collection, q gateway.Query) ([]gateway.Row, error) {
	var sb strings.Builder
	args := []any{string(c)}
	sb.WriteString(`SELECT data FROM records WHERE collection = ?`)

	switch {
	case len(q.AnyOwner) > 0:
		sb.WriteString(` AND user_id IN (?` + strings.Repeat(", ?", len(q.AnyOwner)-1) + `)`)
		for _, owner := range q.AnyOwner {
			args = append(args, owner)
		}
	case q.Where["user_id"] != nil:
		sb.WriteString(` AND user_id = ?`)
		args = append(args, fmt.Sprint(q.Where["user_id"]))
	}

	if q.OrderBy != "" {
		sb.WriteString(` ORDER BY json_extract(data, ?)`)
		args = append(args, "$."+q.OrderBy)
		if q.Desc {
			sb.WriteString(` DESC`)
		}
	} else {
		sb.WriteString(` ORDER BY created_at DESC`)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", c, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]gateway.Row, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", c, err)
		}
		row, err := decodeRow(data)
		if err != nil {
			continue
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s records: %w", c, err)
	}

	filter := q
	filter.OrderBy = ""
	return gateway.Apply(out, filter), nil
}

// Update merges partial into the stored document.
func (r *RecordsRepository) Update(ctx context.Context, c gateway.Collection, id string, partial gateway.Row) error {
	patch := make(gateway.Row, len(partial))
	for k, v := range partial {
		if k == "id" {
			continue
		}
		patch[k] = v
	}
	updated, _ := patch["updated_at"].(string)
	if updated == "" {
		updated = models.FormatTime(time.Now())
		patch["updated_at"] = updated
	}

	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode %s update: %w", c, err)
	}

	query := `UPDATE records SET data = json_patch(data, ?), updated_at = ?`
	args := []any{string(data), updated}
	if owner, ok := patch["user_id"].(string); ok {
		query += `, user_id = ?`
		args = append(args, owner)
	}
	query += ` WHERE collection = ? AND id = ?`
	args = append(args, string(c), id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s record: %w", c, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// Delete removes a record. Nothing referencing it is touched.
func (r *RecordsRepository) Delete(ctx context.Context, c gateway.Collection, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, string(c), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", c, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// Count returns the number of records per collection.
func (r *RecordsRepository) Count(ctx context.Context) (map[gateway.Collection]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT collection, COUNT(*) FROM records GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[gateway.Collection]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[gateway.Collection(name)] = n
	}
	return counts, rows.Err()
}

func decodeRow(data string) (gateway.Row, error) {
	var row gateway.Row
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return nil, err
	}
	return row, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
