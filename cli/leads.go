// ABOUTME: AI lead generator commands: generate, list saved lists, export and delete
// ABOUTME: Generation streams the model output to stderr while it runs
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/models"
)

// ErrNoAPIKey means lead generation was requested without a model configured.
var ErrNoAPIKey = errors.New("lead generation needs OPENAI_API_KEY")

// echoStreamer copies streamed chunks to w as they arrive.
type echoStreamer struct {
	inner leadgen.TextStreamer
	w     io.Writer
}

func (e echoStreamer) StreamText(ctx context.Context, p leadgen.Prompt, onChunk func(string)) error {
	return e.inner.StreamText(ctx, p, func(chunk string) {
		_, _ = io.WriteString(e.w, chunk)
		onChunk(chunk)
	})
}

// LeadsCommand routes `agency leads <action>`.
func LeadsCommand(app *App, args []string) error {
	ctx := context.Background()
	lists := leadgen.NewLists(app.Session, app.notifier(), app.Logger)

	return Dispatch("leads", map[string]func([]string) error{
		"generate": func(args []string) error {
			fs := flag.NewFlagSet("leads generate", flag.ExitOnError)
			niche := fs.String("niche", "", "Target niche, e.g. \"dental clinics in Austin\" (required)")
			save := fs.Bool("save", false, "Save the generated leads as a list")
			output := fs.String("output", "", "Also write the leads to this CSV file")
			quiet := fs.Bool("quiet", false, "Do not echo the model output while generating")
			parseArgs(fs, args)

			if app.Streamer == nil {
				return ErrNoAPIKey
			}
			if _, err := app.Session.Principal(ctx); err != nil {
				return err
			}
			var streamer leadgen.TextStreamer = app.Streamer
			if !app.JSON && !*quiet {
				streamer = echoStreamer{inner: app.Streamer, w: os.Stderr}
			}
			gen := leadgen.NewGenerator(streamer, app.Model, app.Logger)
			leads, err := gen.Generate(ctx, *niche)
			if err != nil {
				return err
			}
			app.printf("\n\n")
			if gen.State() == leadgen.IdleWithFallback {
				app.printf("⚠️  Generation failed, showing sample leads\n")
			}

			result := map[string]any{"niche": gen.Niche(), "state": gen.State().String(), "leads": leads}
			if *save {
				saved, err := lists.Save(ctx, gen.Niche(), leads)
				if err != nil {
					return err
				}
				result["savedAs"] = saved.ID
			}
			if *output != "" {
				if err := writeLeadsFile(*output, "csv", leads); err != nil {
					return err
				}
				app.printf("✓ Wrote %s\n", *output)
			}
			return app.emit(result, func(w io.Writer) { leadsTable(w, leads) })
		},
		"lists": func(args []string) error {
			fs := flag.NewFlagSet("leads lists", flag.ExitOnError)
			query := fs.String("query", "", "Search niche")
			parseArgs(fs, args)
			if err := lists.Load(ctx); err != nil {
				return err
			}
			found := lists.Search(*query)
			return app.emit(found, func(w io.Writer) {
				if found.Empty {
					row(w, found.EmptyMessage)
					return
				}
				header(w, "NICHE", "LEADS", "CREATED", "ID")
				for _, l := range found.Items {
					row(w, l.Niche, l.TotalLeads, l.CreatedAt.Format(models.DateLayout), l.ID)
				}
			})
		},
		"show": func(args []string) error {
			list, err := findList(ctx, lists, args, "leads show")
			if err != nil {
				return err
			}
			return app.emit(list, func(w io.Writer) { leadsTable(w, list.Leads) })
		},
		"export": func(args []string) error {
			fs := flag.NewFlagSet("leads export", flag.ExitOnError)
			format := fs.String("format", "csv", "csv or json")
			output := fs.String("output", "", "File to write; defaults to <niche>-leads-<date>.csv")
			parseArgs(fs, args)
			list, err := findList(ctx, lists, fs.Args(), "leads export")
			if err != nil {
				return err
			}
			path := *output
			if path == "" {
				path = leadgen.ExportFilename(list.Niche, app.Now())
				if *format == "json" {
					path = strings.TrimSuffix(path, ".csv") + ".json"
				}
			}
			if err := writeLeadsFile(path, *format, list.Leads); err != nil {
				return err
			}
			return app.emit(map[string]any{"path": path, "leads": len(list.Leads)}, func(w io.Writer) {
				row(w, fmt.Sprintf("✓ Exported %d leads to %s", len(list.Leads), path))
			})
		},
		"delete": func(args []string) error { return deleteEntity(ctx, app, lists.View, "lead list", args) },
	}, args)
}

func findList(ctx context.Context, lists *leadgen.Lists, args []string, name string) (models.LeadList, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	parseArgs(fs, args)
	id, err := requireID(fs, "lead list")
	if err != nil {
		return models.LeadList{}, err
	}
	if err := lists.Load(ctx); err != nil {
		return models.LeadList{}, err
	}
	list, ok := lists.Find(id)
	if !ok {
		return models.LeadList{}, fmt.Errorf("lead list not found: %s", id)
	}
	return list, nil
}

func writeLeadsFile(path, format string, leads []models.Lead) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch format {
	case "json":
		return leadgen.WriteJSON(f, leads)
	case "csv":
		return leadgen.WriteCSV(f, leads)
	default:
		return fmt.Errorf("unknown format %q (csv or json)", format)
	}
}

func leadsTable(w io.Writer, leads []models.Lead) {
	header(w, "COMPANY", "CONTACT", "TITLE", "EMAIL", "SIZE")
	for _, l := range leads {
		row(w, l.CompanyName, l.ContactName, orDash(l.ContactTitle), l.ContactEmail, orDash(l.CompanySize))
	}
}
