// ABOUTME: Postgres record store implementing the data gateway over jsonb documents
// ABOUTME: Uses a pgx connection pool; filters by containment and merges with ||
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	user_id TEXT,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_records_owner ON records(collection, user_id);
CREATE INDEX IF NOT EXISTS idx_records_data ON records USING GIN (data jsonb_path_ops);
`

// Store is a gateway.Gateway over a shared Postgres database. The principal
// is fixed per Store; the web server wraps it per request instead.
type Store struct {
	pool      *pgxpool.Pool
	principal models.Principal
	logger    *zap.Logger
}

// New connects to databaseURL, verifies the connection and ensures the
// records table exists.
func New(ctx context.Context, databaseURL string, principal models.Principal, logger *zap.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 20 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := seedStages(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres record store ready",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.Int32("max_conns", poolConfig.MaxConns),
	)
	return &Store{pool: pool, principal: principal, logger: logger}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) CurrentUser(context.Context) (models.Principal, error) {
	if s.principal.ID == "" {
		return models.Principal{}, gateway.ErrUnauthenticated
	}
	return s.principal, nil
}

func (s *Store) List(ctx context.Context, c gateway.Collection, q gateway.Query) ([]gateway.Row, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", gateway.ErrInvalidCollection, c)
	}
	sql, args, err := buildList(c, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", c, err)
	}
	defer rows.Close()

	out := make([]gateway.Row, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", c, err)
		}
		var row gateway.Row
		if err := json.Unmarshal(data, &row); err != nil {
			s.logger.Warn("skipping undecodable record", zap.String("collection", string(c)), zap.Error(err))
			continue
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s records: %w", c, err)
	}
	return gateway.Apply(out, q), nil
}

func (s *Store) Get(ctx context.Context, c gateway.Collection, id string) (gateway.Row, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM records WHERE collection = $1 AND id = $2`, string(c), id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record: %w", c, err)
	}
	var row gateway.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", c, err)
	}
	return row, nil
}

func (s *Store) Create(ctx context.Context, c gateway.Collection, row gateway.Row) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", gateway.ErrInvalidCollection, c)
	}
	id, _ := row["id"].(string)
	if id == "" {
		return fmt.Errorf("failed to create %s record: missing id", c)
	}
	stampRow(row, time.Now())
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", c, err)
	}
	owner, _ := row["user_id"].(string)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO records (collection, id, user_id, data, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, now(), now())`,
		string(c), id, owner, data)
	if err != nil {
		return fmt.Errorf("failed to insert %s record: %w", c, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, c gateway.Collection, id string, partial gateway.Row) error {
	sql, args, err := buildUpdate(c, id, partial, time.Now())
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s record: %w", c, err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, c gateway.Collection, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM records WHERE collection = $1 AND id = $2`, string(c), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", c, err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func seedStages(ctx context.Context, pool *pgxpool.Pool) error {
	for _, rec := range transform.SystemStageRecords(gateway.SystemOwner, time.Now().UTC()) {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO records (collection, id, user_id, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (collection, id) DO NOTHING`,
			string(gateway.PipelineStages), rec.ID, gateway.SystemOwner, data)
		if err != nil {
			return fmt.Errorf("failed to seed pipeline stage %s: %w", rec.ID, err)
		}
	}
	return nil
}

func stampRow(row gateway.Row, now time.Time) {
	stamp := models.FormatTime(now)
	if v, _ := row["created_at"].(string); v == "" {
		row["created_at"] = stamp
	}
	if v, _ := row["updated_at"].(string); v == "" {
		row["updated_at"] = stamp
	}
}
