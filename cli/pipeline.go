// ABOUTME: Pipeline board commands: show the board, add, move, update and delete deals
// ABOUTME: Moves go through the board so stage references are validated
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

// PipelineCommand routes `agency pipeline <action>`.
func PipelineCommand(app *App, args []string) error {
	ctx := context.Background()
	board := views.NewBoard(app.Session, app.notifier(), app.Logger)
	board.SetClock(app.Now)

	load := func() error { return board.Load(ctx) }

	return Dispatch("pipeline", map[string]func([]string) error{
		"board": func(args []string) error {
			fs := flag.NewFlagSet("pipeline board", flag.ExitOnError)
			query := fs.String("query", "", "Search deal title or description")
			stage := fs.String("stage", "", "Only show one stage id")
			parseArgs(fs, args)
			if err := load(); err != nil {
				return err
			}
			f := views.BoardFilter{Term: *query, Stage: *stage}
			cols, unassigned, stats := board.Columns(f), board.Unassigned(f), board.Stats(f)
			return app.emit(map[string]any{"columns": cols, "unassigned": unassigned, "stats": stats}, func(w io.Writer) {
				for _, col := range cols {
					row(w, fmt.Sprintf("%s (%d)", col.Stage.Name, len(col.Deals)), "", fmt.Sprintf("$%.0f", col.Value))
					for _, d := range col.Deals {
						row(w, "  "+d.Title, fmt.Sprintf("%d%%", d.Probability), fmt.Sprintf("$%.0f", d.Value), d.ID)
					}
				}
				if len(unassigned) > 0 {
					row(w, fmt.Sprintf("Unassigned (%d)", len(unassigned)))
					for _, d := range unassigned {
						row(w, "  "+d.Title, fmt.Sprintf("%d%%", d.Probability), fmt.Sprintf("$%.0f", d.Value), d.ID)
					}
				}
				row(w)
				row(w, "Deals:", stats.Deals)
				row(w, "Total value:", fmt.Sprintf("$%.0f", stats.TotalValue))
				row(w, "Weighted:", fmt.Sprintf("$%.0f", stats.WeightedValue))
				row(w, "Average:", fmt.Sprintf("$%.0f", stats.AvgDealSize))
			})
		},
		"stages": func(args []string) error {
			if err := load(); err != nil {
				return err
			}
			stages := board.Stages()
			return app.emit(stages, func(w io.Writer) {
				header(w, "POS", "NAME", "ID")
				for _, s := range stages {
					row(w, s.Position, s.Name, s.ID)
				}
			})
		},
		"add": func(args []string) error {
			if err := load(); err != nil {
				return err
			}
			form := board.NewDealForm()
			fs := flag.NewFlagSet("pipeline add", flag.ExitOnError)
			fs.StringVar(&form.Title, "title", "", "Deal title (required)")
			fs.StringVar(&form.Description, "description", "", "Description")
			fs.Float64Var(&form.Value, "value", 0, "Deal value")
			fs.IntVar(&form.Probability, "probability", form.Probability, "Win probability 0-100")
			fs.StringVar(&form.StageID, "stage", form.StageID, "Stage id")
			fs.StringVar(&form.ClientID, "client", "", "Client id")
			fs.StringVar(&form.ExpectedCloseDate, "close-date", "", "Expected close date YYYY-MM-DD")
			fs.StringVar(&form.Source, "source", "", "Where the deal came from")
			parseArgs(fs, args)

			if form.Title == "" {
				return fmt.Errorf("--title is required")
			}
			if form.Probability < 0 || form.Probability > 100 {
				return fmt.Errorf("probability must be between 0 and 100")
			}
			deal, err := board.AddDeal(ctx, form)
			if err != nil {
				return err
			}
			return app.emit(deal, func(w io.Writer) {
				row(w, "ID:", deal.ID)
				row(w, "Stage:", board.StageLabel(deal.StageID))
			})
		},
		"move": func(args []string) error {
			fs := flag.NewFlagSet("pipeline move", flag.ExitOnError)
			parseArgs(fs, args)
			if fs.NArg() < 2 {
				return fmt.Errorf("usage: pipeline move <deal-id> <stage-id>")
			}
			if err := load(); err != nil {
				return err
			}
			moved, err := board.Move(ctx, fs.Arg(0), fs.Arg(1))
			if err != nil {
				return err
			}
			if !moved {
				app.printf("Deal already in %s\n", board.StageLabel(fs.Arg(1)))
			}
			return app.emit(map[string]any{"moved": moved, "id": fs.Arg(0), "stageId": fs.Arg(1)}, func(io.Writer) {})
		},
		"update": func(args []string) error {
			fs := flag.NewFlagSet("pipeline update", flag.ExitOnError)
			title := fs.String("title", "", "Deal title")
			description := fs.String("description", "", "Description")
			value := fs.Float64("value", 0, "Deal value")
			probability := fs.Int("probability", 0, "Win probability 0-100")
			client := fs.String("client", "", "Client id")
			closeDate := fs.String("close-date", "", "Expected close date YYYY-MM-DD")
			parseArgs(fs, args)
			id, err := requireID(fs, "deal")
			if err != nil {
				return err
			}
			set := visited(fs)
			var p models.DealPatch
			if set["title"] {
				p.Title = title
			}
			if set["description"] {
				p.Description = description
			}
			if set["value"] {
				p.Value = value
			}
			if set["probability"] {
				if *probability < 0 || *probability > 100 {
					return fmt.Errorf("probability must be between 0 and 100")
				}
				p.Probability = probability
			}
			if set["client"] {
				p.ClientID = client
			}
			if set["close-date"] {
				p.ExpectedCloseDate = closeDate
			}
			if err := load(); err != nil {
				return err
			}
			return board.EditDeal(ctx, id, p)
		},
		"delete": func(args []string) error {
			fs := flag.NewFlagSet("pipeline delete", flag.ExitOnError)
			parseArgs(fs, args)
			id, err := requireID(fs, "deal")
			if err != nil {
				return err
			}
			if err := load(); err != nil {
				return err
			}
			return board.DeleteDeal(ctx, id)
		},
	}, args)
}
