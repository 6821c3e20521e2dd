// ABOUTME: Local gateway backed by the SQLite records repository
// ABOUTME: Serves one configured principal, the way a single-user install signs in
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
)

// Store implements gateway.Gateway over SQLite.
type Store struct {
	repo      *RecordsRepository
	principal models.Principal
}

func NewStore(database *sql.DB, principal models.Principal) *Store {
	return &Store{repo: NewRecordsRepository(database), principal: principal}
}

// Repository exposes the underlying repository for import and admin tools.
func (s *Store) Repository() *RecordsRepository {
	return s.repo
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
	return s.repo.List(ctx, c, q)
}

func (s *Store) Get(ctx context.Context, c gateway.Collection, id string) (gateway.Row, error) {
	return s.repo.Get(ctx, c, id)
}

func (s *Store) Create(ctx context.Context, c gateway.Collection, row gateway.Row) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", gateway.ErrInvalidCollection, c)
	}
	return s.repo.Insert(ctx, c, row)
}

func (s *Store) Update(ctx context.Context, c gateway.Collection, id string, partial gateway.Row) error {
	return s.repo.Update(ctx, c, id, partial)
}

func (s *Store) Delete(ctx context.Context, c gateway.Collection, id string) error {
	return s.repo.Delete(ctx, c, id)
}

// EnsureUser adds the principal to the team roster on first sign-in and
// refreshes its last login afterwards.
func (s *Store) EnsureUser(ctx context.Context) error {
	if s.principal.ID == "" {
		return gateway.ErrUnauthenticated
	}
	now := time.Now().UTC()

	_, err := s.repo.Get(ctx, gateway.Users, s.principal.ID)
	if errors.Is(err, gateway.ErrNotFound) {
		rec := transform.UserToRecord(models.User{
			ID:        s.principal.ID,
			Email:     s.principal.Email,
			Name:      s.principal.Name,
			Role:      models.RoleAdmin,
			IsActive:  true,
			LastLogin: &now,
		}, now)
		row, err := gateway.Encode(rec)
		if err != nil {
			return err
		}
		return s.repo.Insert(ctx, gateway.Users, row)
	}
	if err != nil {
		return err
	}

	return s.repo.Update(ctx, gateway.Users, s.principal.ID, gateway.Fields(models.UserPatch{
		LastLogin: models.Ptr(&now),
	}.Fields(now)))
}
