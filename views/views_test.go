// ABOUTME: Tests for the generic view and per-entity views against the recording fake gateway
// ABOUTME: Covers load states, write-then-reload, notifications, filters and stats
package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/gateway/gatewaytest"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testUser = models.Principal{ID: "u1", Email: "ada@example.com", Name: "Ada"}

func newFake() (*gatewaytest.Fake, *gateway.Session) {
	fake := gatewaytest.New(testUser)
	return fake, gateway.NewSession(fake)
}

func clientRec(name, company, owner string, status models.ClientStatus) models.ClientRecord {
	return transform.ClientToRecord(models.Client{Name: name, Company: company, Status: status, MonthlyValue: 1000}, owner, time.Now())
}

func TestLoadOnlyOwnedRecords(t *testing.T) {
	fake, session := newFake()
	fake.Seed(gateway.Clients, clientRec("Ada", "Acme", "u1", models.ClientActive), clientRec("Bob", "Other", "u2", models.ClientActive))

	v := NewClients(session, nil, zap.NewNop())
	assert.Equal(t, Loading, v.State())
	require.NoError(t, v.Load(context.Background()))

	assert.Equal(t, Ready, v.State())
	require.Len(t, v.Items(), 1)
	assert.Equal(t, "Ada", v.Items()[0].Name)
}

func TestLoadFailureDegradesToEmpty(t *testing.T) {
	fake, session := newFake()
	fake.Seed(gateway.Clients, clientRec("Ada", "Acme", "u1", models.ClientActive))
	fake.FailList[gateway.Clients] = errors.New("backend down")

	v := NewClients(session, nil, zap.NewNop())
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, ReadyEmpty, v.State())
	assert.Empty(t, v.Items())
}

func TestLoadUnauthenticated(t *testing.T) {
	fake := gatewaytest.New(models.Principal{})
	v := NewClients(gateway.NewSession(fake), nil, zap.NewNop())
	err := v.Load(context.Background())
	assert.True(t, errors.Is(err, gateway.ErrUnauthenticated))
	assert.Equal(t, Loading, v.State())
}

func TestAddStoresEmptyServicesAndReloads(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	inbox := &Inbox{}
	v := NewClients(session, inbox, zap.NewNop())
	require.NoError(t, v.Load(ctx))

	created, err := v.Add(ctx, models.Client{Name: "Ada", Services: []string{}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	row, ok := fake.Row(gateway.Clients, created.ID)
	require.True(t, ok)
	assert.Equal(t, "[]", row["services"])
	assert.Equal(t, "u1", row["user_id"])

	require.Len(t, v.Items(), 1)
	assert.Equal(t, []string{}, v.Items()[0].Services)
	assert.Equal(t, []Notification{{Level: LevelSuccess, Message: "Client created"}}, inbox.Drain())
}

func TestWriteFailureNotifiesAndReturns(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	fake.Seed(gateway.Clients, clientRec("Ada", "Acme", "u1", models.ClientActive))
	fake.FailUpdate[gateway.Clients] = errors.New("boom")
	fake.FailCreate[gateway.Clients] = errors.New("boom")

	inbox := &Inbox{}
	v := NewClients(session, inbox, zap.NewNop())
	require.NoError(t, v.Load(ctx))
	id := v.Items()[0].ID

	err := v.Edit(ctx, id, models.ClientPatch{Name: models.Ptr("Grace")})
	require.Error(t, err)
	_, err = v.Add(ctx, models.Client{Name: "New"})
	require.Error(t, err)

	notes := inbox.Drain()
	require.Len(t, notes, 2)
	assert.Equal(t, LevelError, notes[0].Level)
	assert.Equal(t, "Failed to update client", notes[0].Message)
	assert.Equal(t, "Ada", v.Items()[0].Name)
}

func TestEditRejectsUnownedID(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	other := clientRec("Bob", "Other", "u2", models.ClientActive)
	fake.Seed(gateway.Clients, other)

	v := NewClients(session, nil, zap.NewNop())
	require.NoError(t, v.Load(ctx))

	err := v.Edit(ctx, other.ID, models.ClientPatch{Name: models.Ptr("Mine now")})
	assert.True(t, errors.Is(err, gateway.ErrNotFound))
	assert.Empty(t, fake.Calls())
}

func TestDeleteDealLeavesActivity(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	deal := transform.DealToRecord(models.Deal{Title: "Retainer", StageID: "stage_1"}, "u1", time.Now())
	fake.Seed(gateway.Deals, deal)
	fake.Seed(gateway.Activities, transform.ActivityToRecord(models.Activity{
		Title: "Follow up", RelatedToType: "deal", RelatedToID: deal.ID,
	}, "u1", time.Now()))

	board := NewBoard(session, nil, zap.NewNop())
	require.NoError(t, board.Load(ctx))
	require.NoError(t, board.DeleteDeal(ctx, deal.ID))

	acts := NewActivities(session, nil, zap.NewNop())
	require.NoError(t, acts.Load(ctx))
	require.Len(t, acts.Items(), 1)

	resolver := NewResolver().Deals(board.Deals())
	assert.Equal(t, models.UnknownLabel, resolver.Label(acts.Items()[0].Related()))
}

func TestSearchNoMatchIsExplicitlyEmpty(t *testing.T) {
	fake, session := newFake()
	fake.Seed(gateway.Clients, clientRec("Ada", "Acme", "u1", models.ClientActive), clientRec("Grace", "Navy", "u1", models.ClientProspect))
	v := NewClients(session, nil, zap.NewNop())
	require.NoError(t, v.Load(context.Background()))

	assert.Len(t, v.Search("acme", "").Items, 1)
	assert.Len(t, v.Search("", "prospect").Items, 1)
	assert.Len(t, v.Search("", All).Items, 2)

	none := v.Search("zzz", "")
	assert.True(t, none.Empty)
	assert.Equal(t, "No clients found", none.EmptyMessage)
	assert.NotNil(t, none.Items)
}

func TestActivitiesTabsAndComplete(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	fake.Seed(gateway.Activities,
		transform.ActivityToRecord(models.Activity{Title: "Call Ada", Type: models.ActivityCall, DueDate: &past}, "u1", now),
		transform.ActivityToRecord(models.Activity{Title: "Email", Type: models.ActivityEmail, Status: models.ActivityCompleted}, "u1", now),
	)

	v := NewActivities(session, nil, zap.NewNop())
	require.NoError(t, v.Load(ctx))

	assert.Equal(t, ActivityStats{Total: 2, Pending: 1, Completed: 1, Overdue: 1}, v.Stats(now))
	overdue := v.Search(ActivityFilter{Tab: TabOverdue}, now)
	require.Len(t, overdue.Items, 1)
	assert.Len(t, v.Search(ActivityFilter{Type: "email"}, now).Items, 1)
	assert.True(t, v.Search(ActivityFilter{Priority: "urgent"}, now).Empty)

	require.NoError(t, v.Complete(ctx, overdue.Items[0].ID))
	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "completed", calls[0].Row["status"])
	assert.NotNil(t, calls[0].Row["completed_at"])
	assert.Equal(t, 0, v.Stats(now).Overdue)
}

func TestEntityStatsWithNoData(t *testing.T) {
	_, session := newFake()
	contacts := NewContacts(session, nil, zap.NewNop())
	require.NoError(t, contacts.Load(context.Background()))
	assert.Equal(t, ContactStats{}, contacts.Stats())

	team := NewTeam(session, nil, zap.NewNop())
	require.NoError(t, team.Load(context.Background()))
	assert.Equal(t, GoalStats{}, team.GoalStats())
}

func TestContactAndProjectStats(t *testing.T) {
	fake, session := newFake()
	now := time.Now()
	fake.Seed(gateway.LinkedInContacts,
		transform.LinkedInContactToRecord(models.LinkedInContact{Name: "A", Status: models.ContactResponded}, "u1", now),
		transform.LinkedInContactToRecord(models.LinkedInContact{Name: "B", Status: models.ContactConverted}, "u1", now),
		transform.LinkedInContactToRecord(models.LinkedInContact{Name: "C"}, "u1", now),
	)
	fake.Seed(gateway.UpworkProjects,
		transform.UpworkProjectToRecord(models.UpworkProject{Title: "Site", Budget: 500, Status: models.ProjectActive}, "u1", now),
		transform.UpworkProjectToRecord(models.UpworkProject{Title: "App", Budget: 1500}, "u1", now),
	)

	contacts := NewContacts(session, nil, zap.NewNop())
	require.NoError(t, contacts.Load(context.Background()))
	assert.Equal(t, ContactStats{Total: 3, ResponseRate: 33, Conversions: 1}, contacts.Stats())

	projects := NewProjects(session, nil, zap.NewNop())
	require.NoError(t, projects.Load(context.Background()))
	assert.Equal(t, ProjectStats{Total: 2, TotalValue: 2000, Active: 1, PendingProposals: 1}, projects.Stats())
}

func TestTeamRosterAndGoals(t *testing.T) {
	fake, session := newFake()
	now := time.Now()
	fake.Seed(gateway.Users,
		transform.UserToRecord(models.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin, IsActive: true}, now),
		transform.UserToRecord(models.User{ID: "u9", Name: "Gone", Email: "gone@example.com", IsActive: false}, now),
	)
	fake.Seed(gateway.Goals,
		transform.GoalToRecord(models.Goal{Title: "Revenue", TargetValue: 100, CurrentValue: 150}, "u1", now),
		transform.GoalToRecord(models.Goal{Title: "Calls", TargetValue: 10, CurrentValue: 5, Status: models.GoalCompleted}, "u1", now),
	)

	team := NewTeam(session, nil, zap.NewNop())
	require.NoError(t, team.Load(context.Background()))

	require.Len(t, team.Users.Items(), 1)
	assert.Equal(t, TeamStats{Total: 1, Active: 1, Admins: 1}, team.Stats())
	assert.Equal(t, GoalStats{Total: 2, Active: 1, Completed: 1, AvgProgress: 100}, team.GoalStats())
	assert.Equal(t, 100, DisplayProgress(team.Goals.Items()[0]))
}

func TestAutomationDraftToggleAndProgress(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	a := NewAutomation(session, nil, zap.NewNop())
	require.NoError(t, a.Load(ctx))

	draft := NewSequenceDraft()
	draft.Name = "Welcome"
	draft.AddStep()
	draft.AddStep()
	assert.Len(t, draft.Steps, 3)
	assert.Equal(t, "3", draft.Steps[2].ID)
	assert.True(t, draft.RemoveStep(2))
	assert.True(t, draft.RemoveStep(1))
	assert.False(t, draft.RemoveStep(0), "last step stays")
	draft.AddStep()

	seq, err := a.Create(ctx, draft)
	require.NoError(t, err)

	enrollment, err := a.Enroll(ctx, seq.ID, "contact_1")
	require.NoError(t, err)
	require.NoError(t, a.Enrollments.Edit(ctx, enrollment.ID, models.SequenceEnrollmentPatch{CurrentStep: models.Ptr(1)}))

	loaded, _ := a.Enrollments.Find(enrollment.ID)
	assert.Equal(t, 50, a.Progress(loaded))
	assert.Equal(t, 0, a.Progress(models.SequenceEnrollment{SequenceID: "gone", CurrentStep: 3}))
	assert.Equal(t, 1, a.EnrolledIn(seq.ID))

	require.NoError(t, a.Toggle(ctx, seq.ID))
	row, _ := fake.Row(gateway.EmailSequences, seq.ID)
	assert.Equal(t, 0, row["is_active"])
	assert.Equal(t, SequenceStats{Total: 1, TotalEnrollments: 1, ActiveEnrollments: 1}, a.Stats())
}

func TestEnrollUnknownSequence(t *testing.T) {
	_, session := newFake()
	a := NewAutomation(session, nil, zap.NewNop())
	require.NoError(t, a.Load(context.Background()))
	_, err := a.Enroll(context.Background(), "missing", "c1")
	assert.True(t, errors.Is(err, gateway.ErrNotFound))
}

func userRec(id string, role models.UserRole) models.UserRecord {
	return transform.UserToRecord(models.User{ID: id, Name: id, Email: id + "@example.com", Role: role, IsActive: true}, time.Now())
}

func TestEditMemberNeedsAdminForOthers(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	fake.Seed(gateway.Users, userRec("u1", models.RoleMember), userRec("u2", models.RoleViewer))

	team := NewTeam(session, nil, zap.NewNop())
	require.NoError(t, team.Load(ctx))

	err := team.EditMember(ctx, "u2", models.UserPatch{Role: models.Ptr(models.RoleAdmin)})
	assert.ErrorIs(t, err, ErrForbidden)
	err = team.EditMember(ctx, "u1", models.UserPatch{IsActive: models.Ptr(false)})
	assert.ErrorIs(t, err, ErrForbidden)
	row, _ := fake.Row(gateway.Users, "u2")
	assert.Equal(t, "viewer", row["role"])

	require.NoError(t, team.EditMember(ctx, "u1", models.UserPatch{Name: models.Ptr("Ada L")}))
	row, _ = fake.Row(gateway.Users, "u1")
	assert.Equal(t, "Ada L", row["name"])
}

func TestAddMemberDefaults(t *testing.T) {
	ctx := context.Background()
	fake, session := newFake()
	team := NewTeam(session, nil, zap.NewNop())

	u, err := team.AddMember(ctx, "Grace", "grace@example.com", "", "Ops")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, u.Role)
	assert.True(t, u.IsActive)

	row, ok := fake.Row(gateway.Users, u.ID)
	require.True(t, ok)
	assert.Equal(t, "[]", row["permissions"])
	assert.EqualValues(t, 1, row["is_active"])
	require.Len(t, team.Users.Items(), 1)

	_, err = team.AddMember(ctx, "Grace", " ", "", "")
	assert.ErrorIs(t, err, ErrMemberIncomplete)
	_, err = team.AddMember(ctx, "Grace", "g@example.com", "owner", "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
