// ABOUTME: Tests for the record transform layer
// ABOUTME: Verifies defaults, JSON field round trips and malformed input fallbacks
package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/harperreed/agency/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func TestClientRoundTrip(t *testing.T) {
	client := models.Client{
		Name:         "Ada",
		Company:      "Analytical Co",
		Services:     []string{"seo", "ads"},
		MonthlyValue: 1500,
	}

	rec := ClientToRecord(client, "user-1", fixedNow)
	assert.True(t, strings.HasPrefix(rec.ID, "client_"))
	assert.Equal(t, `["seo","ads"]`, rec.Services)
	assert.Equal(t, "prospect", rec.Status)
	assert.Equal(t, "2024-03-15", rec.JoinedDate)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	back := ClientToView(rec)
	assert.Equal(t, []string{"seo", "ads"}, back.Services)
	assert.Equal(t, models.ClientProspect, back.Status)
	assert.Equal(t, fixedNow, back.CreatedAt)
}

func TestUpworkProjectSkillsRoundTrip(t *testing.T) {
	rec := UpworkProjectToRecord(models.UpworkProject{Title: "Storefront", Skills: []string{"go", "react"}}, "user-1", fixedNow)
	assert.Equal(t, `["go","react"]`, rec.Skills)

	back := UpworkProjectToView(rec)
	assert.Equal(t, []string{"go", "react"}, back.Skills)
	assert.Equal(t, "Storefront", back.Title)

	for _, raw := range []string{"", "null", "{", `"go"`} {
		view := UpworkProjectToView(models.UpworkProjectRecord{Skills: raw})
		require.NotNil(t, view.Skills, raw)
		assert.Empty(t, view.Skills, raw)
	}
}

func TestDealTagsRoundTrip(t *testing.T) {
	rec := DealToRecord(models.Deal{Title: "Retainer", Tags: []string{"warm", "referral"}}, "user-1", fixedNow)
	assert.Equal(t, `["warm","referral"]`, rec.Tags)

	back := DealToView(rec)
	assert.Equal(t, []string{"warm", "referral"}, back.Tags)
}

func TestClientToRecordKeepsCreatedAt(t *testing.T) {
	created := fixedNow.Add(-48 * time.Hour)
	rec := ClientToRecord(models.Client{ID: "client_x", CreatedAt: created}, "u", fixedNow)

	assert.Equal(t, "client_x", rec.ID)
	assert.Equal(t, models.FormatTime(created), rec.CreatedAt)
	assert.Equal(t, models.FormatTime(fixedNow), rec.UpdatedAt)
}

func TestEmptyServicesStoredAsEmptyArray(t *testing.T) {
	rec := ClientToRecord(models.Client{Name: "x"}, "u", fixedNow)
	assert.Equal(t, "[]", rec.Services)
}

func TestMalformedJSONFallsBackToEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "not json", `{"a":1}`, "[1,"} {
		view := ClientToView(models.ClientRecord{Services: raw})
		require.NotNil(t, view.Services, raw)
		assert.Empty(t, view.Services, raw)
	}

	deal := DealToView(models.DealRecord{Tags: "[", CustomFields: "[]"})
	assert.Empty(t, deal.Tags)
	assert.NotNil(t, deal.CustomFields)
	assert.Empty(t, deal.CustomFields)

	seq := EmailSequenceToView(models.EmailSequenceRecord{Steps: "{broken"})
	assert.NotNil(t, seq.Steps)
	assert.Empty(t, seq.Steps)
}

func TestOptionalEmptyStringsBecomeNull(t *testing.T) {
	rec := DealToRecord(models.Deal{Title: "Retainer", Value: 100}, "u", fixedNow)
	assert.Nil(t, rec.Description)
	assert.Nil(t, rec.StageID)
	assert.Nil(t, rec.ClientID)
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, "[]", rec.Tags)
	assert.Equal(t, "{}", rec.CustomFields)

	proj := UpworkProjectToRecord(models.UpworkProject{Title: "Site"}, "u", fixedNow)
	assert.Nil(t, proj.Deadline)
	assert.Equal(t, "proposal", proj.Status)
	assert.Equal(t, "2024-03-15", proj.SubmittedDate)
}

func TestDealToViewReadsNullables(t *testing.T) {
	stage := "stage_2"
	view := DealToView(models.DealRecord{
		ID:           "deal_1",
		StageID:      &stage,
		Tags:         `["a"]`,
		CustomFields: `{"k":"v"}`,
		Probability:  40,
		Value:        1000,
	})
	assert.Equal(t, "stage_2", view.StageID)
	assert.Equal(t, "", view.Description)
	assert.Equal(t, []string{"a"}, view.Tags)
	assert.Equal(t, "v", view.CustomFields["k"])
	assert.InDelta(t, 400.0, view.WeightedValue(), 0.001)
}

func TestCampaignAndContactDefaults(t *testing.T) {
	camp := SocialCampaignToRecord(models.SocialCampaign{Title: "Launch"}, "u", fixedNow)
	assert.Equal(t, "instagram", camp.Platform)
	assert.Equal(t, "draft", camp.Status)
	assert.Equal(t, "2024-03-15", camp.StartDate)
	assert.True(t, strings.HasPrefix(camp.ID, "campaign_"))

	contact := LinkedInContactToRecord(models.LinkedInContact{Name: "Grace"}, "u", fixedNow)
	assert.Equal(t, "pending", contact.Status)
	assert.Nil(t, contact.ConnectionDate)
	assert.True(t, strings.HasPrefix(contact.ID, "contact_"))
}

func TestActivityTimes(t *testing.T) {
	due := fixedNow.Add(24 * time.Hour)
	rec := ActivityToRecord(models.Activity{Title: "Call", DueDate: &due}, "u", fixedNow)
	require.NotNil(t, rec.DueDate)
	assert.Nil(t, rec.CompletedAt)
	assert.Equal(t, "task", rec.Type)
	assert.Equal(t, "medium", rec.Priority)
	assert.Equal(t, "pending", rec.Status)

	view := ActivityToView(rec)
	require.NotNil(t, view.DueDate)
	assert.True(t, view.DueDate.Equal(due))
	assert.NotNil(t, view.Metadata)
}

func TestUserFlags(t *testing.T) {
	rec := UserToRecord(models.User{Email: "a@b.c", IsActive: true}, fixedNow)
	assert.Equal(t, 1, rec.IsActive)
	assert.Equal(t, "member", rec.Role)
	assert.True(t, UserToView(rec).IsActive)
	assert.False(t, UserToView(models.UserRecord{IsActive: 0}).IsActive)
}

func TestSequenceStepsGetIDs(t *testing.T) {
	rec := EmailSequenceToRecord(models.EmailSequence{
		Name:  "Welcome",
		Steps: []models.EmailStep{{Subject: "Hi", Delay: 24}},
	}, "u", fixedNow)

	view := EmailSequenceToView(rec)
	require.Len(t, view.Steps, 1)
	assert.True(t, strings.HasPrefix(view.Steps[0].ID, "step_"))
	assert.Equal(t, 24, view.Steps[0].Delay)
	assert.Equal(t, models.TriggerManual, view.TriggerType)
}

func TestLeadListRoundTrip(t *testing.T) {
	rec := LeadListToRecord(models.LeadList{
		Niche: "bakeries",
		Leads: []models.Lead{{ID: "lead-1", CompanyName: "Crumb"}},
	}, "u", fixedNow)
	assert.Equal(t, 1, rec.TotalLeads)

	view := LeadListToView(rec)
	require.Len(t, view.Leads, 1)
	assert.Equal(t, "Crumb", view.Leads[0].CompanyName)

	broken := LeadListToView(models.LeadListRecord{Leads: "oops"})
	assert.NotNil(t, broken.Leads)
	assert.Zero(t, broken.TotalLeads)
}

func TestParseTimeFormats(t *testing.T) {
	assert.Equal(t, 2024, ParseTime("2024-03-15").Year())
	assert.Equal(t, 30, ParseTime("2024-03-15T09:30:00.000Z").Minute())
	assert.Equal(t, 30, ParseTime("2024-03-15 09:30:00").Minute())
	assert.True(t, ParseTime("soon").IsZero())
	assert.True(t, ParseTime("").IsZero())
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID(PrefixDeal)
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.True(t, strings.HasPrefix(NewLeadID(), "lead-"))
}
