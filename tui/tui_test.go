// ABOUTME: Tests for the TUI model driven with key messages against the fake gateway
// ABOUTME: Commands are executed inline so writes land before assertions
package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/gateway/gatewaytest"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	ada     = models.Principal{ID: "u1", Email: "ada@example.com", Name: "Ada"}
	fixedAt = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys and runs any resulting command once.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(key(k))
		m = next.(Model)
		if cmd != nil {
			if msg := cmd(); msg != nil {
				if _, ok := msg.(writeDoneMsg); ok {
					next, _ = m.Update(msg)
					m = next.(Model)
				}
			}
		}
	}
	return m
}

func loaded(t *testing.T, fake *gatewaytest.Fake) Model {
	t.Helper()
	m := NewModel(gateway.NewSession(fake), zap.NewNop())
	m.now = func() time.Time { return fixedAt }
	next, _ := m.Update(m.Init()())
	return next.(Model)
}

func seeded(t *testing.T) *gatewaytest.Fake {
	t.Helper()
	fake := gatewaytest.New(ada)
	for _, st := range transform.SystemStageRecords(gateway.SystemOwner, fixedAt) {
		fake.Seed(gateway.PipelineStages, st)
	}
	fake.Seed(gateway.Clients,
		transform.ClientToRecord(models.Client{ID: "c1", Name: "Ada", Company: "Acme", Status: models.ClientActive, MonthlyValue: 3000}, ada.ID, fixedAt),
		transform.ClientToRecord(models.Client{ID: "c2", Name: "Grace", Company: "Navy", Status: models.ClientProspect}, ada.ID, fixedAt),
	)
	fake.Seed(gateway.Deals,
		transform.DealToRecord(models.Deal{ID: "d1", Title: "Rebuild", Value: 12000, Probability: 50, StageID: "stage_1"}, ada.ID, fixedAt))
	due := fixedAt.AddDate(0, 0, -2)
	fake.Seed(gateway.Activities,
		transform.ActivityToRecord(models.Activity{ID: "a1", Type: models.ActivityCall, Title: "Call Ada", DueDate: &due,
			Priority: models.PriorityHigh, Status: models.ActivityPending, RelatedToType: "client", RelatedToID: "c1"}, ada.ID, fixedAt))
	return fake
}

func TestSignedOutShowsOnlySignIn(t *testing.T) {
	m := loaded(t, gatewaytest.New(models.Principal{}))
	out := m.View()
	assert.Contains(t, out, "not signed in")
	assert.NotContains(t, out, "Dashboard")

	m = press(t, m, "tab")
	assert.Equal(t, TabDashboard, m.tab)
}

func TestDashboardTab(t *testing.T) {
	m := loaded(t, seeded(t))
	out := m.View()
	assert.Contains(t, out, "AGENCY DASHBOARD")
	assert.Contains(t, out, "2 clients")
	assert.Contains(t, out, "1 overdue activities")
}

func TestClientsTabSearchAndDetail(t *testing.T) {
	m := loaded(t, seeded(t))
	m.switchTab(TabClients)
	out := m.View()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Navy")

	m = press(t, m, "/", "n", "a", "v", "y", "enter")
	assert.False(t, m.searching)
	out = m.View()
	assert.Contains(t, out, "Navy")
	assert.NotContains(t, out, "Acme")

	m = press(t, m, "enter")
	assert.Equal(t, ViewDetail, m.viewMode)
	assert.Contains(t, m.View(), "prospect")

	m = press(t, m, "esc", "esc")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Contains(t, m.View(), "Acme")
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	fake := seeded(t)
	m := loaded(t, fake)
	m.switchTab(TabClients)

	m = press(t, m, "d")
	assert.Equal(t, ViewConfirmDelete, m.viewMode)
	m = press(t, m, "n")
	assert.Equal(t, 2, fake.Count(gateway.Clients))

	m = press(t, m, "d", "y")
	assert.Equal(t, 1, fake.Count(gateway.Clients))
	assert.Contains(t, m.View(), "Client deleted")
}

func TestPipelineMoveRight(t *testing.T) {
	fake := seeded(t)
	m := loaded(t, fake)
	m = press(t, m, "tab")
	require.Equal(t, TabPipeline, m.tab)
	assert.Contains(t, m.View(), "Rebuild")

	m = press(t, m, "l")
	row, ok := fake.Row(gateway.Deals, "d1")
	require.True(t, ok)
	assert.Equal(t, "stage_2", row["stage_id"])
	assert.Equal(t, 1, m.column)
	assert.Contains(t, m.View(), "Deal moved to Qualified")

	// The first column has nowhere further left to go.
	m = press(t, m, "[", "h")
	row, _ = fake.Row(gateway.Deals, "d1")
	assert.Equal(t, "stage_2", row["stage_id"])
}

func TestCompleteActivity(t *testing.T) {
	fake := seeded(t)
	m := loaded(t, fake)
	m.switchTab(TabActivities)
	assert.Contains(t, m.View(), "Call Ada")

	m = press(t, m, "enter")
	assert.Contains(t, m.View(), "Ada")
	m = press(t, m, "esc", "c")
	row, _ := fake.Row(gateway.Activities, "a1")
	assert.Equal(t, "completed", row["status"])
}

func TestFailedWriteShowsError(t *testing.T) {
	fake := seeded(t)
	m := loaded(t, fake)
	fake.FailUpdate = map[gateway.Collection]error{gateway.Deals: assert.AnError}
	m = press(t, m, "tab", "l")

	row, _ := fake.Row(gateway.Deals, "d1")
	assert.Equal(t, "stage_1", row["stage_id"])
	assert.Contains(t, m.View(), "Failed to move deal")
}
