// ABOUTME: CRM entity commands for clients, social campaigns, Upwork projects and LinkedIn contacts
// ABOUTME: Each entity supports add, list, update and delete through its view
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

// CRMCommand routes `agency crm <entity> <action>`.
func CRMCommand(app *App, args []string) error {
	return Dispatch("crm", map[string]func([]string) error{
		"clients":  func(a []string) error { return clientsCommand(app, a) },
		"social":   func(a []string) error { return campaignsCommand(app, a) },
		"upwork":   func(a []string) error { return projectsCommand(app, a) },
		"linkedin": func(a []string) error { return contactsCommand(app, a) },
	}, args)
}

// deleteEntity loads v, removes id and reports it.
func deleteEntity[T any](ctx context.Context, app *App, v *views.View[T], noun string, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	parseArgs(fs, args)
	id, err := requireID(fs, noun)
	if err != nil {
		return err
	}
	if err := v.Load(ctx); err != nil {
		return err
	}
	if err := v.Delete(ctx, id); err != nil {
		return err
	}
	return app.emit(map[string]any{"deleted": true, "id": id}, func(w io.Writer) {})
}

func clientsCommand(app *App, args []string) error {
	ctx := context.Background()
	v := views.NewClients(app.Session, app.notifier(), app.Logger)
	return Dispatch("crm clients", map[string]func([]string) error{
		"add": func(args []string) error {
			fs := flag.NewFlagSet("crm clients add", flag.ExitOnError)
			name := fs.String("name", "", "Contact name (required)")
			company := fs.String("company", "", "Company name")
			email := fs.String("email", "", "Email address")
			phone := fs.String("phone", "", "Phone number")
			status := fs.String("status", string(models.ClientProspect), "active, inactive or prospect")
			services := fs.String("services", "", "Comma separated services")
			monthly := fs.Float64("monthly-value", 0, "Monthly retainer value")
			parseArgs(fs, args)

			if *name == "" {
				return fmt.Errorf("--name is required")
			}
			st := models.ClientStatus(*status)
			if !st.Valid() {
				return fmt.Errorf("invalid status %q", *status)
			}
			c, err := v.Add(ctx, models.Client{
				Name: *name, Company: *company, Email: *email, Phone: *phone,
				Status: st, Services: splitList(*services), MonthlyValue: *monthly,
			})
			if err != nil {
				return err
			}
			return app.emit(c, func(w io.Writer) {
				row(w, "ID:", c.ID)
				row(w, "Company:", orDash(c.Company))
				row(w, "Status:", c.Status)
			})
		},
		"list": func(args []string) error {
			fs := flag.NewFlagSet("crm clients list", flag.ExitOnError)
			query := fs.String("query", "", "Search name, company or email")
			status := fs.String("status", "", "Filter by status")
			parseArgs(fs, args)
			if err := v.Load(ctx); err != nil {
				return err
			}
			list := v.Search(*query, *status)
			return app.emit(map[string]any{"clients": list, "stats": v.Stats()}, func(w io.Writer) {
				if list.Empty {
					row(w, list.EmptyMessage)
					return
				}
				header(w, "NAME", "COMPANY", "STATUS", "MONTHLY", "ID")
				for _, c := range list.Items {
					row(w, c.Name, orDash(c.Company), c.Status, fmt.Sprintf("$%.0f", c.MonthlyValue), c.ID)
				}
			})
		},
		"update": func(args []string) error {
			fs := flag.NewFlagSet("crm clients update", flag.ExitOnError)
			name := fs.String("name", "", "Contact name")
			company := fs.String("company", "", "Company name")
			email := fs.String("email", "", "Email address")
			phone := fs.String("phone", "", "Phone number")
			status := fs.String("status", "", "active, inactive or prospect")
			services := fs.String("services", "", "Comma separated services")
			monthly := fs.Float64("monthly-value", 0, "Monthly retainer value")
			parseArgs(fs, args)
			id, err := requireID(fs, "client")
			if err != nil {
				return err
			}

			set := visited(fs)
			var p models.ClientPatch
			if set["name"] {
				p.Name = name
			}
			if set["company"] {
				p.Company = company
			}
			if set["email"] {
				p.Email = email
			}
			if set["phone"] {
				p.Phone = phone
			}
			if set["status"] {
				st := models.ClientStatus(*status)
				if !st.Valid() {
					return fmt.Errorf("invalid status %q", *status)
				}
				p.Status = &st
			}
			if set["services"] {
				p.Services = models.Ptr(splitList(*services))
			}
			if set["monthly-value"] {
				p.MonthlyValue = monthly
			}
			if err := v.Load(ctx); err != nil {
				return err
			}
			if err := v.Edit(ctx, id, p); err != nil {
				return err
			}
			c, _ := v.Find(id)
			return app.emit(c, func(io.Writer) {})
		},
		"delete": func(args []string) error { return deleteEntity(ctx, app, v.View, "client", args) },
	}, args)
}

func campaignsCommand(app *App, args []string) error {
	ctx := context.Background()
	v := views.NewCampaigns(app.Session, app.notifier(), app.Logger)
	return Dispatch("crm social", map[string]func([]string) error{
		"add": func(args []string) error {
			fs := flag.NewFlagSet("crm social add", flag.ExitOnError)
			title := fs.String("title", "", "Campaign title (required)")
			client := fs.String("client", "", "Client id")
			platform := fs.String("platform", string(models.PlatformInstagram), "instagram, facebook, twitter or linkedin")
			status := fs.String("status", string(models.CampaignDraft), "draft, scheduled, active or completed")
			start := fs.String("start", "", "Start date YYYY-MM-DD")
			end := fs.String("end", "", "End date YYYY-MM-DD")
			budget := fs.Float64("budget", 0, "Budget")
			parseArgs(fs, args)

			if *title == "" {
				return fmt.Errorf("--title is required")
			}
			pl, st := models.CampaignPlatform(*platform), models.CampaignStatus(*status)
			if !pl.Valid() || !st.Valid() {
				return fmt.Errorf("invalid platform %q or status %q", *platform, *status)
			}
			c, err := v.Add(ctx, models.SocialCampaign{
				Title: *title, ClientID: *client, Platform: pl, Status: st,
				StartDate: *start, EndDate: *end, Budget: *budget,
			})
			if err != nil {
				return err
			}
			return app.emit(c, func(w io.Writer) { row(w, "ID:", c.ID) })
		},
		"list": func(args []string) error {
			fs := flag.NewFlagSet("crm social list", flag.ExitOnError)
			query := fs.String("query", "", "Search title")
			status := fs.String("status", "", "Filter by status")
			platform := fs.String("platform", "", "Filter by platform")
			parseArgs(fs, args)
			if err := v.Load(ctx); err != nil {
				return err
			}
			clients := views.NewClients(app.Session, nil, app.Logger)
			_ = clients.Load(ctx)
			names := views.NewResolver().Clients(clients.Items())

			list := v.Search(*query, *status, *platform)
			return app.emit(map[string]any{"campaigns": list, "totals": v.Totals()}, func(w io.Writer) {
				if list.Empty {
					row(w, list.EmptyMessage)
					return
				}
				header(w, "TITLE", "CLIENT", "PLATFORM", "STATUS", "BUDGET", "REACH", "ID")
				for _, c := range list.Items {
					row(w, c.Title, names.Label(c.ClientRef()), c.Platform, c.Status,
						fmt.Sprintf("$%.0f", c.Budget), c.Reach, c.ID)
				}
			})
		},
		"update": func(args []string) error {
			fs := flag.NewFlagSet("crm social update", flag.ExitOnError)
			title := fs.String("title", "", "Campaign title")
			status := fs.String("status", "", "draft, scheduled, active or completed")
			budget := fs.Float64("budget", 0, "Budget")
			reach := fs.Int("reach", 0, "Reach")
			engagement := fs.Int("engagement", 0, "Engagement")
			parseArgs(fs, args)
			id, err := requireID(fs, "campaign")
			if err != nil {
				return err
			}
			set := visited(fs)
			var p models.SocialCampaignPatch
			if set["title"] {
				p.Title = title
			}
			if set["status"] {
				st := models.CampaignStatus(*status)
				if !st.Valid() {
					return fmt.Errorf("invalid status %q", *status)
				}
				p.Status = &st
			}
			if set["budget"] {
				p.Budget = budget
			}
			if set["reach"] {
				p.Reach = reach
			}
			if set["engagement"] {
				p.Engagement = engagement
			}
			if err := v.Load(ctx); err != nil {
				return err
			}
			if err := v.Edit(ctx, id, p); err != nil {
				return err
			}
			c, _ := v.Find(id)
			return app.emit(c, func(io.Writer) {})
		},
		"delete": func(args []string) error { return deleteEntity(ctx, app, v.View, "campaign", args) },
	}, args)
}

func projectsCommand(app *App, args []string) error {
	ctx := context.Background()
	v := views.NewProjects(app.Session, app.notifier(), app.Logger)
	return Dispatch("crm upwork", map[string]func([]string) error{
		"add": func(args []string) error {
			fs := flag.NewFlagSet("crm upwork add", flag.ExitOnError)
			title := fs.String("title", "", "Project title (required)")
			client := fs.String("client", "", "Client name as shown on Upwork")
			budget := fs.Float64("budget", 0, "Budget")
			status := fs.String("status", string(models.ProjectProposal), "proposal, interview, active, completed or declined")
			deadline := fs.String("deadline", "", "Deadline YYYY-MM-DD")
			description := fs.String("description", "", "Description")
			skills := fs.String("skills", "", "Comma separated skills")
			parseArgs(fs, args)

			if *title == "" {
				return fmt.Errorf("--title is required")
			}
			st := models.ProjectStatus(*status)
			if !st.Valid() {
				return fmt.Errorf("invalid status %q", *status)
			}
			p, err := v.Add(ctx, models.UpworkProject{
				Title: *title, Client: *client, Budget: *budget, Status: st,
				SubmittedDate: app.Now().Format(models.DateLayout),
				Deadline:      *deadline, Description: *description, Skills: splitList(*skills),
			})
			if err != nil {
				return err
			}
			return app.emit(p, func(w io.Writer) { row(w, "ID:", p.ID) })
		},
		"list": func(args []string) error {
			fs := flag.NewFlagSet("crm upwork list", flag.ExitOnError)
			query := fs.String("query", "", "Search title or client")
			status := fs.String("status", "", "Filter by status")
			parseArgs(fs, args)
			if err := v.Load(ctx); err != nil {
				return err
			}
			list := v.Search(*query, *status)
			return app.emit(map[string]any{"projects": list, "stats": v.Stats()}, func(w io.Writer) {
				if list.Empty {
					row(w, list.EmptyMessage)
					return
				}
				header(w, "TITLE", "CLIENT", "STATUS", "BUDGET", "SUBMITTED", "ID")
				for _, p := range list.Items {
					row(w, p.Title, orDash(p.Client), p.Status, fmt.Sprintf("$%.0f", p.Budget), orDash(p.SubmittedDate), p.ID)
				}
			})
		},
		"update": func(args []string) error {
			fs := flag.NewFlagSet("crm upwork update", flag.ExitOnError)
			title := fs.String("title", "", "Project title")
			status := fs.String("status", "", "proposal, interview, active, completed or declined")
			budget := fs.Float64("budget", 0, "Budget")
			deadline := fs.String("deadline", "", "Deadline YYYY-MM-DD")
			parseArgs(fs, args)
			id, err := requireID(fs, "project")
			if err != nil {
				return err
			}
			set := visited(fs)
			var p models.UpworkProjectPatch
			if set["title"] {
				p.Title = title
			}
			if set["status"] {
				st := models.ProjectStatus(*status)
				if !st.Valid() {
					return fmt.Errorf("invalid status %q", *status)
				}
				p.Status = &st
			}
			if set["budget"] {
				p.Budget = budget
			}
			if set["deadline"] {
				p.Deadline = deadline
			}
			if err := v.Load(ctx); err != nil {
				return err
			}
			if err := v.Edit(ctx, id, p); err != nil {
				return err
			}
			item, _ := v.Find(id)
			return app.emit(item, func(io.Writer) {})
		},
		"delete": func(args []string) error { return deleteEntity(ctx, app, v.View, "project", args) },
	}, args)
}

func contactsCommand(app *App, args []string) error {
	ctx := context.Background()
	v := views.NewContacts(app.Session, app.notifier(), app.Logger)
	return Dispatch("crm linkedin", map[string]func([]string) error{
		"add": func(args []string) error {
			fs := flag.NewFlagSet("crm linkedin add", flag.ExitOnError)
			name := fs.String("name", "", "Contact name (required)")
			title := fs.String("title", "", "Job title")
			company := fs.String("company", "", "Company")
			status := fs.String("status", string(models.ContactPending), "pending, connected, messaged, responded or converted")
			notes := fs.String("notes", "", "Notes")
			parseArgs(fs, args)

			if *name == "" {
				return fmt.Errorf("--name is required")
			}
			st := models.ContactStatus(*status)
			if !st.Valid() {
				return fmt.Errorf("invalid status %q", *status)
			}
			c, err := v.Add(ctx, models.LinkedInContact{Name: *name, Title: *title, Company: *company, Status: st, Notes: *notes})
			if err != nil {
				return err
			}
			return app.emit(c, func(w io.Writer) { row(w, "ID:", c.ID) })
		},
		"list": func(args []string) error {
			fs := flag.NewFlagSet("crm linkedin list", flag.ExitOnError)
			query := fs.String("query", "", "Search name, company or title")
			status := fs.String("status", "", "Filter by status")
			parseArgs(fs, args)
			if err := v.Load(ctx); err != nil {
				return err
			}
			list := v.Search(*query, *status)
			return app.emit(map[string]any{"contacts": list, "stats": v.Stats()}, func(w io.Writer) {
				if list.Empty {
					row(w, list.EmptyMessage)
					return
				}
				header(w, "NAME", "TITLE", "COMPANY", "STATUS", "ID")
				for _, c := range list.Items {
					row(w, c.Name, orDash(c.Title), orDash(c.Company), c.Status, c.ID)
				}
			})
		},
		"update": func(args []string) error {
			fs := flag.NewFlagSet("crm linkedin update", flag.ExitOnError)
			status := fs.String("status", "", "pending, connected, messaged, responded or converted")
			lastMessage := fs.String("last-message", "", "Last message sent")
			notes := fs.String("notes", "", "Notes")
			parseArgs(fs, args)
			id, err := requireID(fs, "contact")
			if err != nil {
				return err
			}
			set := visited(fs)
			var p models.LinkedInContactPatch
			if set["status"] {
				st := models.ContactStatus(*status)
				if !st.Valid() {
					return fmt.Errorf("invalid status %q", *status)
				}
				p.Status = &st
				if st == models.ContactConnected {
					p.ConnectionDate = models.Ptr(app.Now().Format(models.DateLayout))
				}
			}
			if set["last-message"] {
				p.LastMessage = lastMessage
			}
			if set["notes"] {
				p.Notes = notes
			}
			if err := v.Load(ctx); err != nil {
				return err
			}
			if err := v.Edit(ctx, id, p); err != nil {
				return err
			}
			item, _ := v.Find(id)
			return app.emit(item, func(io.Writer) {})
		},
		"delete": func(args []string) error { return deleteEntity(ctx, app, v.View, "contact", args) },
	}, args)
}
