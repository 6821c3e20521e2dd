// ABOUTME: Activity commands for logging, listing and completing calls, meetings and tasks
// ABOUTME: Listing supports the pending, completed and overdue tabs
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"github.com/harperreed/agency/views"
)

// ActivityCommand routes `agency activity <action>`.
func ActivityCommand(app *App, args []string) error {
	ctx := context.Background()
	v := views.NewActivities(app.Session, app.notifier(), app.Logger)

	return Dispatch("activity", map[string]func([]string) error{
		"add": func(args []string) error {
			fs := flag.NewFlagSet("activity add", flag.ExitOnError)
			typ := fs.String("type", string(models.ActivityTask), "call, email, meeting, note or task")
			title := fs.String("title", "", "Short summary (required)")
			description := fs.String("description", "", "Details")
			relType := fs.String("related-type", "", "client, deal or contact")
			relID := fs.String("related-id", "", "Id of the related record")
			due := fs.String("due", "", "Due date YYYY-MM-DD")
			priority := fs.String("priority", string(models.PriorityMedium), "low, medium, high or urgent")
			done := fs.Bool("done", false, "Log it as already completed")
			parseArgs(fs, args)

			if *title == "" {
				return fmt.Errorf("--title is required")
			}
			a := models.Activity{
				Type:          models.ActivityType(*typ),
				Title:         *title,
				Description:   *description,
				RelatedToType: *relType,
				RelatedToID:   *relID,
				Priority:      models.ActivityPriority(*priority),
				Status:        models.ActivityPending,
			}
			if !a.Type.Valid() {
				return fmt.Errorf("invalid activity type %q", *typ)
			}
			if !a.Priority.Valid() {
				return fmt.Errorf("invalid priority %q", *priority)
			}
			if *due != "" {
				t := transform.ParseTime(*due)
				if t.IsZero() {
					return fmt.Errorf("invalid due date %q", *due)
				}
				a.DueDate = &t
			}
			if *done {
				now := app.Now().UTC()
				a.Status = models.ActivityCompleted
				a.CompletedAt = &now
			}
			created, err := v.Add(ctx, a)
			if err != nil {
				return err
			}
			return app.emit(created, func(w io.Writer) { row(w, "ID:", created.ID) })
		},
		"list": func(args []string) error {
			fs := flag.NewFlagSet("activity list", flag.ExitOnError)
			var f views.ActivityFilter
			fs.StringVar(&f.Term, "query", "", "Search title or description")
			fs.StringVar(&f.Type, "type", "", "Filter by type")
			fs.StringVar(&f.Status, "status", "", "Filter by status")
			fs.StringVar(&f.Priority, "priority", "", "Filter by priority")
			fs.StringVar(&f.Tab, "tab", views.TabAll, "all, pending, completed or overdue")
			parseArgs(fs, args)
			if err := v.Load(ctx); err != nil {
				return err
			}

			now := app.Now()
			list := v.Search(f, now)
			return app.emit(map[string]any{"activities": list, "stats": v.Stats(now)}, func(w io.Writer) {
				if list.Empty {
					row(w, list.EmptyMessage)
					return
				}
				header(w, "TYPE", "TITLE", "PRIORITY", "STATUS", "DUE", "ID")
				for _, a := range list.Items {
					due := "-"
					if a.DueDate != nil {
						due = a.DueDate.Format(models.DateLayout)
						if a.Overdue(now) {
							due += " (overdue)"
						}
					}
					row(w, a.Type, a.Title, a.Priority, a.Status, due, a.ID)
				}
			})
		},
		"complete": func(args []string) error {
			fs := flag.NewFlagSet("activity complete", flag.ExitOnError)
			parseArgs(fs, args)
			id, err := requireID(fs, "activity")
			if err != nil {
				return err
			}
			if err := v.Load(ctx); err != nil {
				return err
			}
			if err := v.Complete(ctx, id); err != nil {
				return err
			}
			a, _ := v.Find(id)
			return app.emit(a, func(io.Writer) {})
		},
		"delete": func(args []string) error { return deleteEntity(ctx, app, v.View, "activity", args) },
	}, args)
}
