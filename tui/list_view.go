package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

// field is one label/value line in the detail view.
type field struct {
	label string
	value string
}

// listing is a list tab's filtered rows ready for the table.
type listing struct {
	columns []table.Column
	rows    []table.Row
	ids     []string
	details [][]field
	empty   string
	// remove deletes the row with this id; nil when the tab has no delete.
	remove func(ctx context.Context, id string) error
}

func money(v float64) string { return fmt.Sprintf("$%.0f", v) }

func build[T any](l views.Listing[T], cols []table.Column, id func(T) string, cells func(T) table.Row, detail func(T) []field) listing {
	out := listing{columns: cols, empty: l.EmptyMessage}
	for _, item := range l.Items {
		out.rows = append(out.rows, cells(item))
		out.ids = append(out.ids, id(item))
		out.details = append(out.details, detail(item))
	}
	return out
}

// currentListing builds the table for the active list tab.
func (m Model) currentListing() listing {
	term := m.search.Value()
	now := m.now()

	switch m.tab {
	case TabClients:
		l := build(m.clients.Search(term, ""),
			[]table.Column{{Title: "Name", Width: 22}, {Title: "Company", Width: 22}, {Title: "Status", Width: 10}, {Title: "Monthly", Width: 10}},
			func(c models.Client) string { return c.ID },
			func(c models.Client) table.Row {
				return table.Row{c.Name, c.Company, string(c.Status), money(c.MonthlyValue)}
			},
			func(c models.Client) []field {
				return []field{{"Name", c.Name}, {"Company", c.Company}, {"Email", c.Email}, {"Phone", c.Phone},
					{"Status", string(c.Status)}, {"Services", strings.Join(c.Services, ", ")},
					{"Monthly value", money(c.MonthlyValue)}, {"Joined", c.JoinedDate}}
			})
		l.remove = m.clients.Delete
		return l
	case TabSocial:
		names := views.NewResolver().Clients(m.clients.Items())
		l := build(m.campaigns.Search(term, "", ""),
			[]table.Column{{Title: "Title", Width: 24}, {Title: "Client", Width: 16}, {Title: "Platform", Width: 10}, {Title: "Status", Width: 10}, {Title: "Budget", Width: 9}},
			func(c models.SocialCampaign) string { return c.ID },
			func(c models.SocialCampaign) table.Row {
				return table.Row{c.Title, names.Label(c.ClientRef()), string(c.Platform), string(c.Status), money(c.Budget)}
			},
			func(c models.SocialCampaign) []field {
				return []field{{"Title", c.Title}, {"Client", names.Label(c.ClientRef())}, {"Platform", string(c.Platform)},
					{"Status", string(c.Status)}, {"Dates", c.StartDate + " → " + c.EndDate}, {"Budget", money(c.Budget)},
					{"Reach", fmt.Sprint(c.Reach)}, {"Engagement", fmt.Sprint(c.Engagement)}}
			})
		l.remove = m.campaigns.Delete
		return l
	case TabUpwork:
		l := build(m.projects.Search(term, ""),
			[]table.Column{{Title: "Title", Width: 28}, {Title: "Client", Width: 18}, {Title: "Status", Width: 10}, {Title: "Budget", Width: 9}},
			func(p models.UpworkProject) string { return p.ID },
			func(p models.UpworkProject) table.Row {
				return table.Row{p.Title, p.Client, string(p.Status), money(p.Budget)}
			},
			func(p models.UpworkProject) []field {
				return []field{{"Title", p.Title}, {"Client", p.Client}, {"Status", string(p.Status)}, {"Budget", money(p.Budget)},
					{"Submitted", p.SubmittedDate}, {"Deadline", p.Deadline}, {"Skills", strings.Join(p.Skills, ", ")}, {"Description", p.Description}}
			})
		l.remove = m.projects.Delete
		return l
	case TabLinkedIn:
		l := build(m.contacts.Search(term, ""),
			[]table.Column{{Title: "Name", Width: 20}, {Title: "Title", Width: 20}, {Title: "Company", Width: 18}, {Title: "Status", Width: 10}},
			func(c models.LinkedInContact) string { return c.ID },
			func(c models.LinkedInContact) table.Row {
				return table.Row{c.Name, c.Title, c.Company, string(c.Status)}
			},
			func(c models.LinkedInContact) []field {
				return []field{{"Name", c.Name}, {"Title", c.Title}, {"Company", c.Company}, {"Status", string(c.Status)},
					{"Connected", c.ConnectionDate}, {"Last message", c.LastMessage}, {"Notes", c.Notes}}
			})
		l.remove = m.contacts.Delete
		return l
	case TabActivities:
		l := build(m.activities.Search(views.ActivityFilter{Term: term}, now),
			[]table.Column{{Title: "Type", Width: 8}, {Title: "Title", Width: 28}, {Title: "Priority", Width: 8}, {Title: "Status", Width: 11}, {Title: "Due", Width: 12}},
			func(a models.Activity) string { return a.ID },
			func(a models.Activity) table.Row {
				due := ""
				if a.DueDate != nil {
					due = a.DueDate.Format(models.DateLayout)
					if a.Overdue(now) {
						due += " !"
					}
				}
				return table.Row{string(a.Type), a.Title, string(a.Priority), string(a.Status), due}
			},
			func(a models.Activity) []field {
				return []field{{"Type", string(a.Type)}, {"Title", a.Title}, {"Description", a.Description},
					{"Related", m.relatedLabel(a)}, {"Priority", string(a.Priority)}, {"Status", string(a.Status)}}
			})
		l.remove = m.activities.Delete
		return l
	case TabTeam:
		return build(m.team.SearchUsers(term, ""),
			[]table.Column{{Title: "Name", Width: 22}, {Title: "Email", Width: 28}, {Title: "Role", Width: 9}, {Title: "Department", Width: 14}},
			func(u models.User) string { return u.ID },
			func(u models.User) table.Row {
				return table.Row{u.Name, u.Email, string(u.Role), u.Department}
			},
			func(u models.User) []field {
				return []field{{"Name", u.Name}, {"Email", u.Email}, {"Role", string(u.Role)}, {"Department", u.Department},
					{"Permissions", strings.Join(u.Permissions, ", ")}}
			})
	case TabAutomation:
		l := build(m.automation.SearchSequences(term, ""),
			[]table.Column{{Title: "Name", Width: 24}, {Title: "Trigger", Width: 12}, {Title: "Steps", Width: 6}, {Title: "Enrolled", Width: 8}, {Title: "Active", Width: 6}},
			func(s models.EmailSequence) string { return s.ID },
			func(s models.EmailSequence) table.Row {
				return table.Row{s.Name, string(s.TriggerType), fmt.Sprint(len(s.Steps)), fmt.Sprint(m.automation.EnrolledIn(s.ID)), yesNo(s.IsActive)}
			},
			func(s models.EmailSequence) []field {
				out := []field{{"Name", s.Name}, {"Description", s.Description}, {"Trigger", string(s.TriggerType)}, {"Active", yesNo(s.IsActive)}}
				for i, step := range s.Steps {
					out = append(out, field{fmt.Sprintf("Step %d (+%dh)", i+1, step.Delay), step.Subject})
				}
				return out
			})
		l.remove = m.automation.Sequences.Delete
		return l
	case TabLeads:
		l := build(m.lists.Search(term),
			[]table.Column{{Title: "Niche", Width: 30}, {Title: "Leads", Width: 6}, {Title: "Created", Width: 12}},
			func(x models.LeadList) string { return x.ID },
			func(x models.LeadList) table.Row {
				return table.Row{x.Niche, fmt.Sprint(x.TotalLeads), x.CreatedAt.Format(models.DateLayout)}
			},
			func(x models.LeadList) []field {
				out := []field{{"Niche", x.Niche}, {"Leads", fmt.Sprint(x.TotalLeads)}}
				for _, lead := range x.Leads {
					out = append(out, field{lead.CompanyName, lead.ContactName + " <" + lead.ContactEmail + ">"})
				}
				return out
			})
		l.remove = m.lists.Delete
		return l
	}
	return listing{}
}

func (m Model) relatedLabel(a models.Activity) string {
	return views.NewResolver().
		Clients(m.clients.Items()).
		Deals(m.board.Deals()).
		Contacts(m.contacts.Items()).
		Label(a.Related())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (m Model) renderListView() string {
	var s strings.Builder
	l := m.currentListing()

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	}

	if len(l.rows) == 0 {
		s.WriteString(l.empty)
	} else {
		t := table.New(
			table.WithColumns(l.columns),
			table.WithRows(l.rows),
			table.WithFocused(true),
			table.WithHeight(max(m.height-12, 5)),
		)
		t.SetCursor(m.selectedRow)
		s.WriteString(t.View())
	}
	s.WriteString("\n")
	s.WriteString(m.renderListHelp())
	return s.String()
}

func (m Model) renderListHelp() string {
	help := []string{"↑/↓: Navigate", "Tab: Switch tabs", "Enter: Details", "/: Search", "d: Delete", "r: Reload"}
	switch m.tab {
	case TabActivities:
		help = append(help, "c: Complete")
	case TabAutomation:
		help = append(help, "t: Toggle")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tab == TabDashboard || m.tab == TabAnalytics {
		return m, nil
	}
	l := m.currentListing()

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(l.rows)-1 {
			m.selectedRow++
		}
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "esc":
		m.search.SetValue("")
		m.selectedRow = 0
	case "enter":
		if len(l.ids) > 0 {
			m.viewMode = ViewDetail
		}
	case "d":
		if len(l.ids) > 0 && l.remove != nil {
			m.viewMode = ViewConfirmDelete
		}
	case "c":
		if m.tab == TabActivities && len(l.ids) > 0 {
			id := l.ids[m.selectedRow]
			return m, write(func(ctx context.Context) error { return m.activities.Complete(ctx, id) })
		}
	case "t":
		if m.tab == TabAutomation && len(l.ids) > 0 {
			id := l.ids[m.selectedRow]
			return m, write(func(ctx context.Context) error { return m.automation.Toggle(ctx, id) })
		}
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		if msg.String() == "esc" {
			m.search.SetValue("")
		}
		m.selectedRow = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selectedRow = 0
	return m, cmd
}

// clampCursor keeps the selection inside the current rows after a reload.
func (m *Model) clampCursor() {
	if m.tab == TabPipeline {
		m.clampDeal()
		return
	}
	n := len(m.currentListing().rows)
	if m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
}
