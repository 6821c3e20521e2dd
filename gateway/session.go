// ABOUTME: Explicit session holding the signed-in principal for one surface
// ABOUTME: Resolved once from the gateway and cleared on sign-out
package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperreed/agency/models"
)

// Session caches the principal so views do not re-resolve it on every call.
type Session struct {
	gw Gateway

	mu        sync.RWMutex
	principal *models.Principal
}

func NewSession(gw Gateway) *Session {
	return &Session{gw: gw}
}

// Gateway returns the data gateway this session reads and writes through.
func (s *Session) Gateway() Gateway {
	return s.gw
}

// Principal returns the signed-in user, resolving it on first use.
func (s *Session) Principal(ctx context.Context) (models.Principal, error) {
	s.mu.RLock()
	if s.principal != nil {
		p := *s.principal
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	p, err := s.gw.CurrentUser(ctx)
	if err != nil {
		return models.Principal{}, fmt.Errorf("failed to resolve current user: %w", err)
	}
	if p.ID == "" {
		return models.Principal{}, ErrUnauthenticated
	}

	s.mu.Lock()
	s.principal = &p
	s.mu.Unlock()
	return p, nil
}

// SignOut forgets the cached principal.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.principal = nil
	s.mu.Unlock()
}

// StaticPrincipal wraps a gateway so CurrentUser always returns p. The web
// server uses it to scope a shared store to the caller named in a token.
type StaticPrincipal struct {
	Gateway
	P models.Principal
}

func (s StaticPrincipal) CurrentUser(context.Context) (models.Principal, error) {
	if s.P.ID == "" {
		return models.Principal{}, ErrUnauthenticated
	}
	return s.P, nil
}
