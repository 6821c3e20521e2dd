// ABOUTME: Home dashboard headline stats and the recent activity feed
// ABOUTME: Clients, campaigns, projects and contacts load in parallel
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DashboardStats struct {
	TotalClients   int     `json:"totalClients"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
	ActiveProjects int     `json:"activeProjects"`
	UpcomingTasks  int     `json:"upcomingTasks"`
}

// RecentItem is one line of the "recent activity" feed.
type RecentItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

type Dashboard struct {
	Stats  DashboardStats `json:"stats"`
	Recent []RecentItem   `json:"recentActivity"`
}

// FeedSize caps the recent activity feed.
const FeedSize = 5

// LoadDashboard fetches the four source collections concurrently. Only an
// authentication failure is returned.
func LoadDashboard(ctx context.Context, s *gateway.Session, logger *zap.Logger) (Dashboard, error) {
	logger = orNop(logger)
	p, err := s.Principal(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	gw := s.Gateway()
	q := gateway.Owned(p.ID)

	var (
		clients   []models.Client
		campaigns []models.SocialCampaign
		projects  []models.UpworkProject
		contacts  []models.LinkedInContact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clients = list(gctx, gw, gateway.Clients, q, transform.ClientToView, logger)
		return nil
	})
	g.Go(func() error {
		campaigns = list(gctx, gw, gateway.SocialCampaigns, q, transform.SocialCampaignToView, logger)
		return nil
	})
	g.Go(func() error {
		projects = list(gctx, gw, gateway.UpworkProjects, q, transform.UpworkProjectToView, logger)
		return nil
	})
	g.Go(func() error {
		contacts = list(gctx, gw, gateway.LinkedInContacts, q, transform.LinkedInContactToView, logger)
		return nil
	})
	_ = g.Wait()

	return ComputeDashboard(clients, campaigns, projects, contacts), nil
}

// ComputeDashboard aggregates already-loaded collections.
func ComputeDashboard(clients []models.Client, campaigns []models.SocialCampaign, projects []models.UpworkProject, contacts []models.LinkedInContact) Dashboard {
	var st DashboardStats
	st.TotalClients = len(clients)
	for _, c := range clients {
		st.MonthlyRevenue += c.MonthlyValue
	}
	for _, p := range projects {
		switch p.Status {
		case models.ProjectActive:
			st.ActiveProjects++
		case models.ProjectProposal:
			st.UpcomingTasks++
		}
	}
	for _, c := range campaigns {
		if c.Status == models.CampaignActive {
			st.ActiveProjects++
		}
	}

	feed := make([]RecentItem, 0, 7)
	for _, c := range newest(clients, func(c models.Client) time.Time { return c.CreatedAt }, 2) {
		feed = append(feed, RecentItem{
			ID: "client_" + c.ID, Type: "client", Title: "New client added",
			Description: fmt.Sprintf("%s - %s", c.Name, c.Company),
			Timestamp:   c.CreatedAt, Status: "completed",
		})
	}
	for _, c := range newest(campaigns, func(c models.SocialCampaign) time.Time { return c.CreatedAt }, 2) {
		feed = append(feed, RecentItem{
			ID: "campaign_" + c.ID, Type: "social", Title: "Campaign created",
			Description: fmt.Sprintf("%s on %s", c.Title, c.Platform),
			Timestamp:   c.CreatedAt, Status: doneIf(c.Status == models.CampaignActive),
		})
	}
	for _, p := range newest(projects, func(p models.UpworkProject) time.Time { return p.CreatedAt }, 2) {
		feed = append(feed, RecentItem{
			ID: "project_" + p.ID, Type: "project", Title: "Upwork proposal submitted",
			Description: p.Title,
			Timestamp:   p.CreatedAt, Status: doneIf(p.Status == models.ProjectActive),
		})
	}
	for _, c := range newest(contacts, func(c models.LinkedInContact) time.Time { return c.CreatedAt }, 1) {
		feed = append(feed, RecentItem{
			ID: "linkedin_" + c.ID, Type: "linkedin", Title: "LinkedIn contact added",
			Description: fmt.Sprintf("%s at %s", c.Name, c.Company),
			Timestamp:   c.CreatedAt, Status: doneIf(c.Status == models.ContactConnected),
		})
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Timestamp.After(feed[j].Timestamp) })
	if len(feed) > FeedSize {
		feed = feed[:FeedSize]
	}
	return Dashboard{Stats: st, Recent: feed}
}

func newest[T any](items []T, at func(T) time.Time, n int) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return at(sorted[i]).After(at(sorted[j])) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func doneIf(ok bool) string {
	if ok {
		return "completed"
	}
	return "pending"
}
