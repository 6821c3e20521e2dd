// ABOUTME: Team roster, goals and email automation commands
// ABOUTME: Sequences are drafted step by step from repeated --step flags
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

// TeamCommand routes `agency team <action>`.
func TeamCommand(app *App, args []string) error {
	ctx := context.Background()
	team := views.NewTeam(app.Session, app.notifier(), app.Logger)

	return Dispatch("team", map[string]func([]string) error{
		"list": func(args []string) error {
			fs := flag.NewFlagSet("team list", flag.ExitOnError)
			query := fs.String("query", "", "Search name or email")
			role := fs.String("role", "", "admin, manager, member or viewer")
			parseArgs(fs, args)
			if err := team.Load(ctx); err != nil {
				return err
			}
			users := team.SearchUsers(*query, *role)
			return app.emit(map[string]any{"users": users, "stats": team.Stats(), "byRole": team.MembersByRole()}, func(w io.Writer) {
				if users.Empty {
					row(w, users.EmptyMessage)
					return
				}
				header(w, "NAME", "EMAIL", "ROLE", "DEPARTMENT")
				for _, u := range users.Items {
					row(w, u.Name, u.Email, u.Role, orDash(u.Department))
				}
			})
		},
		"add": func(args []string) error {
			fs := flag.NewFlagSet("team add", flag.ExitOnError)
			name := fs.String("name", "", "Member name (required)")
			email := fs.String("email", "", "Email address (required)")
			role := fs.String("role", string(models.RoleMember), "admin, manager, member or viewer")
			department := fs.String("department", "", "Department")
			parseArgs(fs, args)
			u, err := team.AddMember(ctx, *name, *email, models.UserRole(*role), *department)
			if err != nil {
				return err
			}
			return app.emit(u, func(w io.Writer) {
				row(w, "ID:", u.ID)
				row(w, "Name:", u.Name)
				row(w, "Role:", u.Role)
			})
		},
		"goals": func(args []string) error {
			if err := team.Load(ctx); err != nil {
				return err
			}
			goals := team.Goals.Items()
			return app.emit(map[string]any{"goals": goals, "stats": team.GoalStats()}, func(w io.Writer) {
				header(w, "TITLE", "TYPE", "PERIOD", "PROGRESS", "STATUS", "ID")
				for _, g := range goals {
					row(w, g.Title, g.Type, g.Period, fmt.Sprintf("%d%%", views.DisplayProgress(g)), g.Status, g.ID)
				}
				s := team.GoalStats()
				row(w)
				row(w, "Average progress:", fmt.Sprintf("%d%%", s.AvgProgress))
			})
		},
		"add-goal": func(args []string) error {
			fs := flag.NewFlagSet("team add-goal", flag.ExitOnError)
			title := fs.String("title", "", "Goal title (required)")
			typ := fs.String("type", string(models.GoalRevenue), "revenue, deals, activities or custom")
			period := fs.String("period", string(models.PeriodMonthly), "daily, weekly, monthly, quarterly or yearly")
			target := fs.Float64("target", 0, "Target value")
			start := fs.String("start", "", "Start date YYYY-MM-DD (default today)")
			end := fs.String("end", "", "End date YYYY-MM-DD")
			assignee := fs.String("assign", "", "User id the goal belongs to")
			parseArgs(fs, args)

			if *title == "" {
				return fmt.Errorf("--title is required")
			}
			g := models.Goal{
				Title: *title, Type: models.GoalType(*typ), Period: models.GoalPeriod(*period),
				TargetValue: *target, StartDate: *start, EndDate: *end,
				AssignedTo: *assignee, Status: models.GoalActive,
			}
			if !g.Type.Valid() || !g.Period.Valid() {
				return fmt.Errorf("invalid goal type %q or period %q", *typ, *period)
			}
			if g.StartDate == "" {
				g.StartDate = app.Now().Format(models.DateLayout)
			}
			created, err := team.Goals.Add(ctx, g)
			if err != nil {
				return err
			}
			return app.emit(created, func(w io.Writer) { row(w, "ID:", created.ID) })
		},
		"progress": func(args []string) error {
			fs := flag.NewFlagSet("team progress", flag.ExitOnError)
			current := fs.Float64("current", 0, "Current value (required)")
			status := fs.String("status", "", "active, completed, paused or cancelled")
			parseArgs(fs, args)
			id, err := requireID(fs, "goal")
			if err != nil {
				return err
			}
			set := visited(fs)
			var p models.GoalPatch
			if set["current"] {
				p.CurrentValue = current
			}
			if set["status"] {
				st := models.GoalStatus(*status)
				if !st.Valid() {
					return fmt.Errorf("invalid status %q", *status)
				}
				p.Status = &st
			}
			if err := team.Load(ctx); err != nil {
				return err
			}
			return team.Goals.Edit(ctx, id, p)
		},
	}, args)
}

// stepFlags collects repeated --step "subject|content|delay-hours" values.
type stepFlags []string

func (s *stepFlags) String() string     { return strings.Join(*s, ", ") }
func (s *stepFlags) Set(v string) error { *s = append(*s, v); return nil }

// AutomationCommand routes `agency automation <action>`.
func AutomationCommand(app *App, args []string) error {
	ctx := context.Background()
	auto := views.NewAutomation(app.Session, app.notifier(), app.Logger)

	return Dispatch("automation", map[string]func([]string) error{
		"list": func(args []string) error {
			fs := flag.NewFlagSet("automation list", flag.ExitOnError)
			query := fs.String("query", "", "Search name or description")
			trigger := fs.String("trigger", "", "manual, new_lead, stage_change or date_based")
			parseArgs(fs, args)
			if err := auto.Load(ctx); err != nil {
				return err
			}
			seqs := auto.SearchSequences(*query, *trigger)
			return app.emit(map[string]any{"sequences": seqs, "stats": auto.Stats()}, func(w io.Writer) {
				if seqs.Empty {
					row(w, seqs.EmptyMessage)
					return
				}
				header(w, "NAME", "TRIGGER", "STEPS", "ENROLLED", "ACTIVE", "ID")
				for _, s := range seqs.Items {
					row(w, s.Name, s.TriggerType, len(s.Steps), auto.EnrolledIn(s.ID), s.IsActive, s.ID)
				}
			})
		},
		"add": func(args []string) error {
			draft := views.NewSequenceDraft()
			var steps stepFlags
			fs := flag.NewFlagSet("automation add", flag.ExitOnError)
			fs.StringVar(&draft.Name, "name", "", "Sequence name (required)")
			fs.StringVar(&draft.Description, "description", "", "Description")
			trigger := fs.String("trigger", string(models.TriggerManual), "manual, new_lead, stage_change or date_based")
			fs.Var(&steps, "step", "Step as \"subject|content|delay-hours\"; repeat for more")
			parseArgs(fs, args)

			if draft.Name == "" {
				return fmt.Errorf("--name is required")
			}
			draft.Trigger = models.TriggerType(*trigger)
			if !draft.Trigger.Valid() {
				return fmt.Errorf("invalid trigger %q", *trigger)
			}
			for i, raw := range steps {
				if i > 0 {
					draft.AddStep()
				}
				if err := fillStep(&draft.Steps[i], raw); err != nil {
					return err
				}
			}
			if err := auto.Load(ctx); err != nil {
				return err
			}
			seq, err := auto.Create(ctx, draft)
			if err != nil {
				return err
			}
			return app.emit(seq, func(w io.Writer) { row(w, "ID:", seq.ID) })
		},
		"toggle": func(args []string) error {
			fs := flag.NewFlagSet("automation toggle", flag.ExitOnError)
			parseArgs(fs, args)
			id, err := requireID(fs, "sequence")
			if err != nil {
				return err
			}
			if err := auto.Load(ctx); err != nil {
				return err
			}
			return auto.Toggle(ctx, id)
		},
		"enroll": func(args []string) error {
			fs := flag.NewFlagSet("automation enroll", flag.ExitOnError)
			parseArgs(fs, args)
			if fs.NArg() < 2 {
				return fmt.Errorf("usage: automation enroll <sequence-id> <contact-id>")
			}
			if err := auto.Load(ctx); err != nil {
				return err
			}
			e, err := auto.Enroll(ctx, fs.Arg(0), fs.Arg(1))
			if err != nil {
				return err
			}
			return app.emit(e, func(w io.Writer) { row(w, "ID:", e.ID) })
		},
		"enrollments": func(args []string) error {
			if err := auto.Load(ctx); err != nil {
				return err
			}
			contacts := views.NewContacts(app.Session, nil, app.Logger)
			_ = contacts.Load(ctx)
			names := views.NewResolver().Contacts(contacts.Items())
			items := auto.Enrollments.Items()
			return app.emit(items, func(w io.Writer) {
				header(w, "CONTACT", "SEQUENCE", "PROGRESS", "STATUS", "ID")
				for _, e := range items {
					seq, _ := auto.Sequences.Find(e.SequenceID)
					row(w, names.Label(e.ContactRef()), orDash(seq.Name), fmt.Sprintf("%d%%", auto.Progress(e)), e.Status, e.ID)
				}
			})
		},
	}, args)
}

func fillStep(step *models.EmailStep, raw string) error {
	parts := strings.SplitN(raw, "|", 3)
	step.Subject = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		step.Content = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		var hours int
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[2]), "%d", &hours); err != nil {
			return fmt.Errorf("invalid step delay %q", parts[2])
		}
		step.Delay = hours
	}
	return nil
}
