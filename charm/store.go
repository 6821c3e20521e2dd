// ABOUTME: Record store over charm KV implementing the data gateway
// ABOUTME: Keys are rec/<collection>/<id>; the principal is the device's charm account

package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
)

const keyPrefix = "rec/"

var ErrExists = errors.New("record already exists")

func recordKey(c gateway.Collection, id string) []byte {
	return []byte(keyPrefix + string(c) + "/" + id)
}

func collectionPrefix(c gateway.Collection) []byte {
	return []byte(keyPrefix + string(c) + "/")
}

// Store is a gateway.Gateway over charm KV.
type Store struct {
	client  *Client
	profile models.Principal
	logger  *zap.Logger
}

// NewStore pairs a charm client with display details for the signed-in
// account. The profile's ID is ignored; the charm account id is used.
func NewStore(c *Client, profile models.Principal, logger *zap.Logger) *Store {
	return &Store{client: c, profile: profile, logger: logger}
}

func (s *Store) CurrentUser(context.Context) (models.Principal, error) {
	id, err := s.client.ID()
	if err != nil || id == "" {
		s.logger.Debug("charm account unavailable", zap.Error(err))
		return models.Principal{}, gateway.ErrUnauthenticated
	}
	p := s.profile
	p.ID = id
	return p, nil
}

func (s *Store) List(_ context.Context, c gateway.Collection, q gateway.Query) ([]gateway.Row, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", gateway.ErrInvalidCollection, c)
	}
	keys, err := s.client.KeysWithPrefix(collectionPrefix(c))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s keys: %w", c, err)
	}

	rows := make([]gateway.Row, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(key)
		if err != nil {
			continue
		}
		var row gateway.Row
		if err := json.Unmarshal(data, &row); err != nil {
			s.logger.Warn("skipping undecodable record", zap.ByteString("key", key), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}

	if q.OrderBy == "" {
		sort.SliceStable(rows, func(i, j int) bool {
			a, _ := rows[i]["created_at"].(string)
			b, _ := rows[j]["created_at"].(string)
			return a > b
		})
	}
	return gateway.Apply(rows, q), nil
}

func (s *Store) Get(_ context.Context, c gateway.Collection, id string) (gateway.Row, error) {
	data, err := s.client.Get(recordKey(c, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
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
	if _, err := s.Get(ctx, c, id); err == nil {
		return fmt.Errorf("%w: %s/%s", ErrExists, c, id)
	}

	now := models.FormatTime(time.Now())
	if v, _ := row["created_at"].(string); v == "" {
		row["created_at"] = now
	}
	if v, _ := row["updated_at"].(string); v == "" {
		row["updated_at"] = now
	}
	return s.put(c, id, row)
}

// Update merges partial into the stored record. Nil values delete keys.
func (s *Store) Update(ctx context.Context, c gateway.Collection, id string, partial gateway.Row) error {
	row, err := s.Get(ctx, c, id)
	if err != nil {
		return err
	}
	for key, value := range partial {
		switch {
		case key == "id":
		case value == nil:
			delete(row, key)
		default:
			row[key] = value
		}
	}
	if _, ok := partial["updated_at"]; !ok {
		row["updated_at"] = models.FormatTime(time.Now())
	}
	return s.put(c, id, row)
}

func (s *Store) Delete(ctx context.Context, c gateway.Collection, id string) error {
	if _, err := s.Get(ctx, c, id); err != nil {
		return err
	}
	if err := s.client.Delete(recordKey(c, id)); err != nil {
		return fmt.Errorf("failed to delete %s record: %w", c, err)
	}
	return nil
}

func (s *Store) put(c gateway.Collection, id string, row gateway.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", c, err)
	}
	if err := s.client.Set(recordKey(c, id), data); err != nil {
		return fmt.Errorf("failed to store %s record: %w", c, err)
	}
	return nil
}

// SeedStages writes the default stages under the system owner when they
// are missing.
func (s *Store) SeedStages(ctx context.Context) error {
	for _, rec := range transform.SystemStageRecords(gateway.SystemOwner, time.Now().UTC()) {
		if _, err := s.Get(ctx, gateway.PipelineStages, rec.ID); err == nil {
			continue
		}
		row, err := gateway.Encode(rec)
		if err != nil {
			return err
		}
		if err := s.Create(ctx, gateway.PipelineStages, row); err != nil {
			return fmt.Errorf("failed to seed pipeline stage %s: %w", rec.ID, err)
		}
	}
	return nil
}
