// ABOUTME: Team view over the shared active user roster plus the principal's goals
// ABOUTME: Goal progress is capped at 100 for display; averages use the raw value
package views

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrForbidden is returned when the principal may not change a record
	// it can see.
	ErrForbidden = errors.New("not allowed")

	ErrMemberIncomplete = errors.New("name and email are required")
	ErrInvalidRole      = errors.New("invalid role")
)

// Team bundles the roster and goal views behind one load.
type Team struct {
	Users *View[models.User]
	Goals *View[models.Goal]
}

func NewTeam(s *gateway.Session, n Notifier, logger *zap.Logger) *Team {
	users := newMapping(gateway.Users, "team member", transform.UserToView,
		func(u models.User, _ string, now time.Time) models.UserRecord { return transform.UserToRecord(u, now) },
		func(u models.User) string { return u.ID })
	// The roster is shared, not owned.
	users.Scope = func(string) gateway.Query {
		return gateway.Query{Where: map[string]any{"is_active": 1}}
	}
	goals := newMapping(gateway.Goals, "goal", transform.GoalToView, transform.GoalToRecord,
		func(g models.Goal) string { return g.ID })
	return &Team{
		Users: NewView(s, users, n, logger),
		Goals: NewView(s, goals, n, logger),
	}
}

// Load fetches roster and goals concurrently.
func (t *Team) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.Users.Load(ctx) })
	g.Go(func() error { return t.Goals.Load(ctx) })
	return g.Wait()
}

// AddMember puts a new active member on the roster. Role defaults to
// member.
func (t *Team) AddMember(ctx context.Context, name, email string, role models.UserRole, department string) (models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.User{}, ErrMemberIncomplete
	}
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	return t.Users.Add(ctx, models.User{
		Name:        name,
		Email:       email,
		Role:        role,
		Department:  department,
		Permissions: []string{},
		IsActive:    true,
	})
}

// EditMember updates a roster entry. Members may change their own profile
// fields; role, permissions, activation and other people's entries need an
// active admin. The roster must be loaded.
func (t *Team) EditMember(ctx context.Context, id string, patch models.UserPatch) error {
	p, err := t.Users.session.Principal(ctx)
	if err != nil {
		return t.Users.fail("update", err)
	}
	privileged := patch.Role != nil || patch.Permissions != nil || patch.IsActive != nil
	if id != p.ID || privileged {
		me, ok := t.Users.Find(p.ID)
		if !ok || !me.IsActive || me.Role != models.RoleAdmin {
			return t.Users.fail("update", fmt.Errorf("%w: team member %s", ErrForbidden, id))
		}
	}
	return t.Users.Edit(ctx, id, patch)
}

func (t *Team) SearchUsers(term, role string) Listing[models.User] {
	return t.Users.Filter(
		Search(term,
			func(u models.User) string { return u.Name },
			func(u models.User) string { return u.Email },
		),
		Equals(role, func(u models.User) models.UserRole { return u.Role }),
	)
}

type TeamStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Admins   int `json:"admins"`
	Managers int `json:"managers"`
}

func (t *Team) Stats() TeamStats {
	var s TeamStats
	for _, u := range t.Users.Items() {
		s.Total++
		if u.IsActive {
			s.Active++
		}
		switch u.Role {
		case models.RoleAdmin:
			s.Admins++
		case models.RoleManager:
			s.Managers++
		}
	}
	return s
}

type GoalStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Completed   int `json:"completed"`
	AvgProgress int `json:"avgProgress"`
}

func (t *Team) GoalStats() GoalStats {
	goals := t.Goals.Items()
	s := GoalStats{Total: len(goals)}
	sum := 0.0
	for _, g := range goals {
		sum += g.Progress()
		switch g.Status {
		case models.GoalActive:
			s.Active++
		case models.GoalCompleted:
			s.Completed++
		}
	}
	if len(goals) > 0 {
		s.AvgProgress = int(math.Round(sum / float64(len(goals))))
	}
	return s
}

// DisplayProgress is a goal's rounded progress capped at 100.
func DisplayProgress(g models.Goal) int {
	p := int(math.Round(g.Progress()))
	if p > 100 {
		return 100
	}
	return p
}

// MembersByRole counts roster members per role.
func (t *Team) MembersByRole() map[models.UserRole]int {
	out := make(map[models.UserRole]int)
	for _, u := range t.Users.Items() {
		out[u.Role]++
	}
	return out
}
