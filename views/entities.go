// ABOUTME: Per-entity views for clients, social campaigns, Upwork projects and LinkedIn contacts
// ABOUTME: Each adds its own search fields, select filters and summary stats
package views

import (
	"github.com/harperreed/agency/analytics"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
)

type Clients struct {
	*View[models.Client]
}

func NewClients(s *gateway.Session, n Notifier, logger *zap.Logger) *Clients {
	mapping := newMapping(gateway.Clients, "client", transform.ClientToView, transform.ClientToRecord,
		func(c models.Client) string { return c.ID })
	return &Clients{NewView(s, mapping, n, logger)}
}

// Search filters by name, company or email and an optional status.
func (v *Clients) Search(term, status string) Listing[models.Client] {
	return v.Filter(
		Search(term,
			func(c models.Client) string { return c.Name },
			func(c models.Client) string { return c.Company },
			func(c models.Client) string { return c.Email },
		),
		Equals(status, func(c models.Client) models.ClientStatus { return c.Status }),
	)
}

type ClientStats struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Prospects      int     `json:"prospects"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
}

func (v *Clients) Stats() ClientStats {
	var s ClientStats
	for _, c := range v.Items() {
		s.Total++
		s.MonthlyRevenue += c.MonthlyValue
		switch c.Status {
		case models.ClientActive:
			s.Active++
		case models.ClientProspect:
			s.Prospects++
		}
	}
	return s
}

type Campaigns struct {
	*View[models.SocialCampaign]
}

func NewCampaigns(s *gateway.Session, n Notifier, logger *zap.Logger) *Campaigns {
	mapping := newMapping(gateway.SocialCampaigns, "campaign", transform.SocialCampaignToView, transform.SocialCampaignToRecord,
		func(c models.SocialCampaign) string { return c.ID })
	return &Campaigns{NewView(s, mapping, n, logger)}
}

func (v *Campaigns) Search(term, status, platform string) Listing[models.SocialCampaign] {
	return v.Filter(
		Search(term, func(c models.SocialCampaign) string { return c.Title }),
		Equals(status, func(c models.SocialCampaign) models.CampaignStatus { return c.Status }),
		Equals(platform, func(c models.SocialCampaign) models.CampaignPlatform { return c.Platform }),
	)
}

type CampaignTotals struct {
	Budget     float64 `json:"budget"`
	Reach      int     `json:"reach"`
	Engagement int     `json:"engagement"`
	Active     int     `json:"active"`
}

func (v *Campaigns) Totals() CampaignTotals {
	var t CampaignTotals
	for _, c := range v.Items() {
		t.Budget += c.Budget
		t.Reach += c.Reach
		t.Engagement += c.Engagement
		if c.Status == models.CampaignActive {
			t.Active++
		}
	}
	return t
}

type Projects struct {
	*View[models.UpworkProject]
}

func NewProjects(s *gateway.Session, n Notifier, logger *zap.Logger) *Projects {
	mapping := newMapping(gateway.UpworkProjects, "project", transform.UpworkProjectToView, transform.UpworkProjectToRecord,
		func(p models.UpworkProject) string { return p.ID })
	return &Projects{NewView(s, mapping, n, logger)}
}

func (v *Projects) Search(term, status string) Listing[models.UpworkProject] {
	return v.Filter(
		Search(term,
			func(p models.UpworkProject) string { return p.Title },
			func(p models.UpworkProject) string { return p.Client },
		),
		Equals(status, func(p models.UpworkProject) models.ProjectStatus { return p.Status }),
	)
}

type ProjectStats struct {
	Total            int     `json:"total"`
	TotalValue       float64 `json:"totalValue"`
	Active           int     `json:"active"`
	PendingProposals int     `json:"pendingProposals"`
}

func (v *Projects) Stats() ProjectStats {
	var s ProjectStats
	for _, p := range v.Items() {
		s.Total++
		s.TotalValue += p.Budget
		switch p.Status {
		case models.ProjectActive:
			s.Active++
		case models.ProjectProposal:
			s.PendingProposals++
		}
	}
	return s
}

type Contacts struct {
	*View[models.LinkedInContact]
}

func NewContacts(s *gateway.Session, n Notifier, logger *zap.Logger) *Contacts {
	mapping := newMapping(gateway.LinkedInContacts, "contact", transform.LinkedInContactToView, transform.LinkedInContactToRecord,
		func(c models.LinkedInContact) string { return c.ID })
	return &Contacts{NewView(s, mapping, n, logger)}
}

func (v *Contacts) Search(term, status string) Listing[models.LinkedInContact] {
	return v.Filter(
		Search(term,
			func(c models.LinkedInContact) string { return c.Name },
			func(c models.LinkedInContact) string { return c.Company },
			func(c models.LinkedInContact) string { return c.Title },
		),
		Equals(status, func(c models.LinkedInContact) models.ContactStatus { return c.Status }),
	)
}

type ContactStats struct {
	Total        int `json:"total"`
	ResponseRate int `json:"responseRate"`
	Conversions  int `json:"conversions"`
}

// Stats counts responded contacts toward the response rate, like the
// outreach page always has.
func (v *Contacts) Stats() ContactStats {
	items := v.Items()
	responded := 0
	s := ContactStats{Total: len(items)}
	for _, c := range items {
		switch c.Status {
		case models.ContactResponded:
			responded++
		case models.ContactConverted:
			s.Conversions++
		}
	}
	s.ResponseRate = analytics.Percent(responded, s.Total)
	return s
}
