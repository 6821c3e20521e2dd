// ABOUTME: Tests for lead generation, parsing, saved lists and export
// ABOUTME: Uses a scripted streamer and the recording fake gateway
package leadgen

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
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

type scriptedStreamer struct {
	chunks []string
	err    error
	prompt Prompt
}

func (s *scriptedStreamer) StreamText(_ context.Context, p Prompt, onChunk func(string)) error {
	s.prompt = p
	for _, c := range s.chunks {
		onChunk(c)
	}
	return s.err
}

const twoLeads = `[{"companyName":"Crumb Co","contactName":"Jo","contactEmail":"jo@crumb.co","contactTitle":"Owner","personalizedIntro":"Hi [Jo]","industry":"Bakery","companySize":"small"},
{"companyName":"Loaf","contactName":"Al","contactEmail":"al@loaf.io","contactTitle":"CEO","personalizedIntro":"Hello","industry":"Bakery","companySize":"startup","website":"https://loaf.io"}]`

func TestGenerateParsesStreamedArray(t *testing.T) {
	s := &scriptedStreamer{chunks: []string{"Here you go:\n```json\n", twoLeads[:40], twoLeads[40:], "\n```"}}
	g := NewGenerator(s, "", zap.NewNop())
	assert.Equal(t, Idle, g.State())

	leads, err := g.Generate(context.Background(), "  bakeries ")
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, Populated, g.State())
	assert.Equal(t, "bakeries", g.Niche())
	assert.Equal(t, "Crumb Co", leads[0].CompanyName)
	assert.Equal(t, "Hi [Jo]", leads[0].PersonalizedIntro)
	assert.True(t, strings.HasPrefix(leads[0].ID, "lead-"))
	assert.NotEqual(t, leads[0].ID, leads[1].ID)

	assert.Equal(t, DefaultModel, s.prompt.Model)
	assert.Equal(t, DefaultMaxTokens, s.prompt.MaxTokens)
	assert.Contains(t, s.prompt.Text, `"bakeries" niche`)
	assert.True(t, strings.HasPrefix(g.Preview(), "Here you go:"))
}

func TestGenerateFallsBack(t *testing.T) {
	cases := map[string]*scriptedStreamer{
		"stream error": {chunks: []string{twoLeads}, err: errors.New("rate limited")},
		"no array":     {chunks: []string{"I cannot help with that."}},
		"bad json":     {chunks: []string{`[{"companyName": }]`}},
		"empty array":  {chunks: []string{"[]"}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(s, "", zap.NewNop())
			leads, err := g.Generate(context.Background(), "dentists")
			require.NoError(t, err)
			require.Len(t, leads, 2)
			assert.Equal(t, IdleWithFallback, g.State())
			assert.Equal(t, "TechFlow Solutions", leads[0].CompanyName)
			assert.Contains(t, leads[0].PersonalizedIntro, "dentists space")
			assert.Equal(t, "dentists", leads[1].Industry)
		})
	}
}

func TestGenerateRejectsEmptyNiche(t *testing.T) {
	s := &scriptedStreamer{}
	g := NewGenerator(s, "", nil)
	_, err := g.Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyNiche)
	assert.Equal(t, Idle, g.State())
	assert.Empty(t, s.prompt.Text)
}

func TestPreviewTruncates(t *testing.T) {
	s := &scriptedStreamer{chunks: []string{strings.Repeat("é", PreviewLimit+20)}}
	g := NewGenerator(s, "", nil)
	_, err := g.Generate(context.Background(), "x")
	require.NoError(t, err)
	p := g.Preview()
	assert.True(t, strings.HasSuffix(p, "..."))
	assert.Equal(t, PreviewLimit+3, len([]rune(p)))
}

func TestParseLeadsSkipsNonLeadBrackets(t *testing.T) {
	text := "Note [draft] below: " + twoLeads + " trailing ]"
	leads, ok := ParseLeads(text)
	require.True(t, ok)
	assert.Len(t, leads, 2)

	_, ok = ParseLeads("[unterminated")
	assert.False(t, ok)
}

func TestSampleLeadsDefaultIndustry(t *testing.T) {
	leads := SampleLeads("")
	assert.Equal(t, "Technology", leads[0].Industry)
}

func newLists(t *testing.T) (*gatewaytest.Fake, *Lists) {
	t.Helper()
	fake := gatewaytest.New(models.Principal{ID: "u1"})
	return fake, NewLists(gateway.NewSession(fake), nil, zap.NewNop())
}

func TestListsSaveAndListNewestFirst(t *testing.T) {
	fake, lists := newLists(t)
	old := transform.LeadListToRecord(models.LeadList{Niche: "florists", Leads: SampleLeads("florists")}, "u1", time.Now().Add(-time.Hour))
	other := transform.LeadListToRecord(models.LeadList{Niche: "hidden"}, "u2", time.Now())
	fake.Seed(gateway.LeadLists, old, other)

	saved, err := lists.Save(context.Background(), "bakeries", SampleLeads("bakeries"))
	require.NoError(t, err)
	assert.Equal(t, 2, saved.TotalLeads)

	all, err := lists.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bakeries", all[0].Niche)
	assert.Equal(t, "florists", all[1].Niche)
	assert.Len(t, all[0].Leads, 2)

	row, ok := fake.Row(gateway.LeadLists, saved.ID)
	require.True(t, ok)
	assert.Equal(t, "u1", row["user_id"])

	found := lists.Search("FLOR")
	require.Len(t, found.Items, 1)
	assert.True(t, lists.Search("plumbers").Empty)
}

func TestListsRefuseEmpty(t *testing.T) {
	fake, lists := newLists(t)
	_, err := lists.Save(context.Background(), "bakeries", nil)
	assert.ErrorIs(t, err, ErrNoLeads)
	_, err = lists.Save(context.Background(), "", SampleLeads("x"))
	assert.ErrorIs(t, err, ErrEmptyNiche)
	assert.Empty(t, fake.Calls())
}

func TestListsDelete(t *testing.T) {
	fake, lists := newLists(t)
	saved, err := lists.Save(context.Background(), "bakeries", SampleLeads("bakeries"))
	require.NoError(t, err)
	require.NoError(t, lists.Delete(context.Background(), saved.ID))
	assert.Zero(t, fake.Count(gateway.LeadLists))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	leads := []models.Lead{{CompanyName: "Crumb, Inc", ContactName: "Jo", PersonalizedIntro: `Say "hi"`}}
	require.NoError(t, WriteCSV(&buf, leads))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Crumb, Inc", records[1][0])
	assert.Equal(t, `Say "hi"`, records[1][4])
}

func TestWriteJSONNeverNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	var out []models.Lead
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.NotNil(t, out)
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "bakeries-leads-2024-03-09.csv", ExportFilename("bakeries", day))
	assert.Equal(t, "dental-clinics-leads-2024-03-09.csv", ExportFilename("dental clinics/", day))
	assert.Equal(t, "leads-leads-2024-03-09.csv", ExportFilename("  ", day))
}
