// ABOUTME: Tests for the CLI commands against the recording fake gateway
// ABOUTME: Commands run in JSON mode so output can be decoded and asserted
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/agency/auth"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/gateway/gatewaytest"
	"github.com/harperreed/agency/leadgen"
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

type cannedStreamer struct{ text string }

func (s cannedStreamer) StreamText(_ context.Context, _ leadgen.Prompt, onChunk func(string)) error {
	onChunk(s.text)
	return nil
}

func setup(t *testing.T) (*gatewaytest.Fake, *App, *bytes.Buffer) {
	t.Helper()
	fake := gatewaytest.New(ada)
	for _, st := range transform.SystemStageRecords(gateway.SystemOwner, fixedAt) {
		fake.Seed(gateway.PipelineStages, st)
	}
	var out bytes.Buffer
	app := &App{
		Session: gateway.NewSession(fake),
		Model:   leadgen.DefaultModel,
		Logger:  zap.NewNop(),
		Out:     &out,
		JSON:    true,
		Now:     func() time.Time { return fixedAt },
	}
	return fake, app, &out
}

// decode reads the most recent JSON document written to out.
func decode(t *testing.T, out *bytes.Buffer, v any) {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(out.Bytes()))
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			break
		}
		require.NoError(t, json.Unmarshal(raw, v))
	}
	out.Reset()
}

func TestClientsAddListUpdate(t *testing.T) {
	fake, app, out := setup(t)

	require.NoError(t, CRMCommand(app, []string{"clients", "add", "--name", "Ada", "--company", "Acme", "--status", "active", "--monthly-value", "2500", "--services", "seo, ads"}))
	var created models.Client
	decode(t, out, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"seo", "ads"}, created.Services)
	assert.Equal(t, 1, fake.Count(gateway.Clients))

	require.NoError(t, CRMCommand(app, []string{"clients", "list", "--query", "acme"}))
	var listed struct {
		Clients struct {
			Items []models.Client `json:"items"`
		} `json:"clients"`
		Stats struct {
			Active         int     `json:"active"`
			MonthlyRevenue float64 `json:"monthlyRevenue"`
		} `json:"stats"`
	}
	decode(t, out, &listed)
	require.Len(t, listed.Clients.Items, 1)
	assert.Equal(t, 1, listed.Stats.Active)
	assert.Equal(t, 2500.0, listed.Stats.MonthlyRevenue)

	// Id before flags works, and only the given flag is written.
	require.NoError(t, CRMCommand(app, []string{"clients", "update", created.ID, "--status", "inactive"}))
	row, ok := fake.Row(gateway.Clients, created.ID)
	require.True(t, ok)
	assert.Equal(t, "inactive", row["status"])
	assert.Equal(t, "Ada", row["name"])
}

func TestClientsAddValidates(t *testing.T) {
	fake, app, _ := setup(t)
	assert.Error(t, CRMCommand(app, []string{"clients", "add"}))
	assert.Error(t, CRMCommand(app, []string{"clients", "add", "--name", "Ada", "--status", "vip"}))
	assert.Equal(t, 0, fake.Count(gateway.Clients))
}

func TestCRMUnknownEntity(t *testing.T) {
	_, app, _ := setup(t)
	err := CRMCommand(app, []string{"companies", "list"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown crm command")

	err = CRMCommand(app, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clients, linkedin, social, upwork")
}

func TestSocialCampaignLifecycle(t *testing.T) {
	fake, app, out := setup(t)
	require.NoError(t, CRMCommand(app, []string{"social", "add", "--title", "Launch", "--platform", "linkedin", "--budget", "800"}))
	var c models.SocialCampaign
	decode(t, out, &c)
	assert.Equal(t, models.PlatformLinkedIn, c.Platform)
	assert.Equal(t, models.CampaignDraft, c.Status)

	require.NoError(t, CRMCommand(app, []string{"social", "delete", c.ID}))
	assert.Equal(t, 0, fake.Count(gateway.SocialCampaigns))
}

func TestLinkedInConnectStampsDate(t *testing.T) {
	fake, app, out := setup(t)
	require.NoError(t, CRMCommand(app, []string{"linkedin", "add", "--name", "Grace", "--company", "Navy"}))
	var c models.LinkedInContact
	decode(t, out, &c)

	require.NoError(t, CRMCommand(app, []string{"linkedin", "update", "--status", "connected", c.ID}))
	row, _ := fake.Row(gateway.LinkedInContacts, c.ID)
	assert.Equal(t, "connected", row["status"])
	assert.Equal(t, "2024-06-15", row["connection_date"])
}

func TestPipelineAddAndMove(t *testing.T) {
	fake, app, out := setup(t)

	require.NoError(t, PipelineCommand(app, []string{"add", "--title", "Rebuild", "--value", "12000"}))
	var deal models.Deal
	decode(t, out, &deal)
	assert.Equal(t, "stage_1", deal.StageID)
	assert.Equal(t, 50, deal.Probability)

	require.NoError(t, PipelineCommand(app, []string{"move", deal.ID, "stage_3"}))
	var moved map[string]any
	decode(t, out, &moved)
	assert.Equal(t, true, moved["moved"])
	row, _ := fake.Row(gateway.Deals, deal.ID)
	assert.Equal(t, "stage_3", row["stage_id"])

	assert.Error(t, PipelineCommand(app, []string{"move", deal.ID, "stage_99"}))
	assert.Error(t, PipelineCommand(app, []string{"move", deal.ID}))

	require.NoError(t, PipelineCommand(app, []string{"board"}))
	var board struct {
		Columns []struct {
			Stage models.PipelineStage `json:"stage"`
			Deals []models.Deal        `json:"deals"`
		} `json:"columns"`
		Stats struct {
			Deals         int     `json:"deals"`
			WeightedValue float64 `json:"weightedValue"`
		} `json:"stats"`
	}
	decode(t, out, &board)
	require.Len(t, board.Columns, len(models.DefaultStages))
	assert.Len(t, board.Columns[2].Deals, 1)
	assert.Equal(t, 6000.0, board.Stats.WeightedValue)
}

func TestPipelineRejectsBadProbability(t *testing.T) {
	fake, app, _ := setup(t)
	assert.Error(t, PipelineCommand(app, []string{"add", "--title", "X", "--probability", "120"}))
	assert.Equal(t, 0, fake.Count(gateway.Deals))
}

func TestActivityAddListComplete(t *testing.T) {
	fake, app, out := setup(t)

	require.NoError(t, ActivityCommand(app, []string{"add", "--type", "call", "--title", "Check in", "--due", "2024-06-01"}))
	var a models.Activity
	decode(t, out, &a)
	assert.Equal(t, models.PriorityMedium, a.Priority)

	require.NoError(t, ActivityCommand(app, []string{"list", "--tab", "overdue"}))
	var listed struct {
		Activities struct {
			Items []models.Activity `json:"items"`
		} `json:"activities"`
		Stats struct {
			Overdue int `json:"overdue"`
		} `json:"stats"`
	}
	decode(t, out, &listed)
	assert.Len(t, listed.Activities.Items, 1)
	assert.Equal(t, 1, listed.Stats.Overdue)

	require.NoError(t, ActivityCommand(app, []string{"complete", a.ID}))
	row, _ := fake.Row(gateway.Activities, a.ID)
	assert.Equal(t, "completed", row["status"])
	assert.NotNil(t, row["completed_at"])
}

func TestActivityAddValidates(t *testing.T) {
	_, app, _ := setup(t)
	assert.Error(t, ActivityCommand(app, []string{"add", "--title", "x", "--type", "fax"}))
	assert.Error(t, ActivityCommand(app, []string{"add", "--title", "x", "--due", "someday"}))
}

func TestLeadsGenerateNeedsModel(t *testing.T) {
	_, app, _ := setup(t)
	assert.ErrorIs(t, LeadsCommand(app, []string{"generate", "--niche", "dentists"}), ErrNoAPIKey)
}

func TestLeadsGenerateSaveAndExport(t *testing.T) {
	fake, app, out := setup(t)
	app.Streamer = cannedStreamer{text: `Here you go: [{"companyName":"Bright Smiles","contactName":"Dr. Lee","contactEmail":"lee@bright.example"}]`}

	require.NoError(t, LeadsCommand(app, []string{"generate", "--niche", "dentists", "--save"}))
	var gen struct {
		State   string        `json:"state"`
		Leads   []models.Lead `json:"leads"`
		SavedAs string        `json:"savedAs"`
	}
	decode(t, out, &gen)
	assert.Equal(t, "populated", gen.State)
	require.Len(t, gen.Leads, 1)
	require.NotEmpty(t, gen.SavedAs)
	assert.Equal(t, 1, fake.Count(gateway.LeadLists))

	path := filepath.Join(t.TempDir(), "out", "leads.csv")
	require.NoError(t, LeadsCommand(app, []string{"export", gen.SavedAs, "--output", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Bright Smiles")

	assert.Error(t, LeadsCommand(app, []string{"show", "missing"}))
}

func TestTeamGoalsAndAutomation(t *testing.T) {
	fake, app, out := setup(t)

	require.NoError(t, TeamCommand(app, []string{"add-goal", "--title", "Q3 revenue", "--target", "10000"}))
	var g models.Goal
	decode(t, out, &g)
	assert.Equal(t, "2024-06-15", g.StartDate)

	require.NoError(t, TeamCommand(app, []string{"progress", g.ID, "--current", "2500"}))
	row, _ := fake.Row(gateway.Goals, g.ID)
	assert.EqualValues(t, 2500, row["current_value"])

	require.NoError(t, AutomationCommand(app, []string{"add", "--name", "Welcome",
		"--step", "Hi|Thanks for connecting|0", "--step", "Follow up|Any questions?|48"}))
	var seq models.EmailSequence
	decode(t, out, &seq)
	require.Len(t, seq.Steps, 2)
	assert.Equal(t, 48, seq.Steps[1].Delay)
	assert.True(t, seq.IsActive)

	require.NoError(t, AutomationCommand(app, []string{"toggle", seq.ID}))
	row, _ = fake.Row(gateway.EmailSequences, seq.ID)
	assert.EqualValues(t, 0, row["is_active"])
}

func TestTeamAddMember(t *testing.T) {
	fake, app, out := setup(t)

	require.NoError(t, TeamCommand(app, []string{"add", "--name", "Grace", "--email", "grace@example.com", "--department", "Ops"}))
	var u models.User
	decode(t, out, &u)
	assert.Equal(t, models.RoleMember, u.Role)
	row, ok := fake.Row(gateway.Users, u.ID)
	require.True(t, ok)
	assert.Equal(t, "Ops", row["department"])

	assert.Error(t, TeamCommand(app, []string{"add", "--name", "Grace"}))
	assert.Error(t, TeamCommand(app, []string{"add", "--name", "Grace", "--email", "g@example.com", "--role", "owner"}))
}

func TestWhoamiAndToken(t *testing.T) {
	_, app, out := setup(t)

	require.NoError(t, WhoamiCommand(app))
	var p models.Principal
	decode(t, out, &p)
	assert.Equal(t, ada, p)

	require.NoError(t, TokenCommand(app, "secret", nil))
	var tok map[string]string
	decode(t, out, &tok)
	claims, err := auth.Parse(tok["token"], "secret")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, claims.UserID)

	assert.ErrorIs(t, TokenCommand(app, "", nil), auth.ErrNoSecret)
}

func TestCommandsRequireSignIn(t *testing.T) {
	_, app, _ := setup(t)
	app.Session = gateway.NewSession(gatewaytest.New(models.Principal{}))
	assert.ErrorIs(t, CRMCommand(app, []string{"clients", "list"}), gateway.ErrUnauthenticated)
	assert.ErrorIs(t, WhoamiCommand(app), gateway.ErrUnauthenticated)
}

func TestTableOutput(t *testing.T) {
	_, app, out := setup(t)
	app.JSON = false
	require.NoError(t, CRMCommand(app, []string{"clients", "add", "--name", "Ada"}))
	assert.Contains(t, out.String(), "✓")
	out.Reset()

	require.NoError(t, CRMCommand(app, []string{"clients", "list"}))
	text := out.String()
	assert.Contains(t, text, "NAME")
	assert.Contains(t, text, "----")
	assert.True(t, strings.Contains(text, "prospect"))
}
