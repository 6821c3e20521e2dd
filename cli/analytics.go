// ABOUTME: Analytics and visualization commands
// ABOUTME: Dashboard, advanced report, lead stats and graphviz exports of the pipeline and accounts
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/agency/analytics"
	"github.com/harperreed/agency/views"
	"github.com/harperreed/agency/viz"
	"golang.org/x/sync/errgroup"
)

// AnalyticsCommand routes `agency analytics <action>`.
func AnalyticsCommand(app *App, args []string) error {
	ctx := context.Background()
	return Dispatch("analytics", map[string]func([]string) error{
		"dashboard": func(args []string) error { return dashboardCommand(ctx, app) },
		"advanced": func(args []string) error {
			fs := flag.NewFlagSet("analytics advanced", flag.ExitOnError)
			rng := fs.String("range", "30d", "7d, 30d, 90d or 1y")
			parseArgs(fs, args)
			report, err := analytics.LoadAdvanced(ctx, app.Session, analytics.ParseRange(*rng), app.Now(), app.Logger)
			if err != nil {
				return err
			}
			return app.emit(report, func(w io.Writer) { advancedTable(w, report) })
		},
		"leads": func(args []string) error {
			stats, err := analytics.LoadLeadStats(ctx, app.Session, app.Logger)
			if err != nil {
				return err
			}
			return app.emit(stats, func(w io.Writer) {
				row(w, "Lists:", stats.TotalLists)
				row(w, "Leads:", stats.TotalLeads)
				row(w, "Average per list:", stats.AveragePerList)
				for _, n := range stats.TopNiches {
					row(w, "  "+n.Key, n.Count)
				}
			})
		},
		"graph": func(args []string) error { return graphCommand(ctx, app, args) },
	}, args)
}

func dashboardCommand(ctx context.Context, app *App) error {
	board := views.NewBoard(app.Session, nil, app.Logger)
	acts := views.NewActivities(app.Session, nil, app.Logger)

	var dash analytics.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash, err = analytics.LoadDashboard(gctx, app.Session, app.Logger)
		return err
	})
	g.Go(func() error { return board.Load(gctx) })
	g.Go(func() error { return acts.Load(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	now := app.Now()
	stats := viz.BuildDashboard(dash, board.Columns(views.BoardFilter{}), acts.Stats(now).Overdue, now)
	if app.JSON {
		return app.emit(stats, nil)
	}
	_, err := io.WriteString(app.Out, viz.RenderDashboard(stats))
	return err
}

func advancedTable(w io.Writer, r analytics.Report) {
	o := r.Overview
	row(w, "Range:", r.Range)
	row(w, "Revenue:", fmt.Sprintf("$%.0f", o.TotalRevenue))
	row(w, "Deals:", o.TotalDeals)
	row(w, "Conversion:", fmt.Sprintf("%d%%", o.ConversionRate))
	row(w, "Avg deal:", fmt.Sprintf("$%.0f", o.AvgDealSize))
	row(w, "Pipeline value:", fmt.Sprintf("$%.0f", o.PipelineValue))
	row(w, "Activities:", fmt.Sprintf("%d (%d%% done)", o.TotalActivities, o.CompletionRate))
	row(w, "Active clients:", o.ActiveClients)
	row(w, "Win rate:", fmt.Sprintf("%d%%", r.Pipeline.WinRate))
	row(w)
	header(w, "STAGE", "DEALS", "VALUE", "CONVERSION")
	for _, s := range r.Pipeline.StageConversion {
		row(w, s.Stage, s.Deals, fmt.Sprintf("$%.0f", s.Value), fmt.Sprintf("%d%%", s.ConversionRate))
	}
	if len(r.Revenue.Forecast) > 0 {
		row(w)
		header(w, "MONTH", "PROJECTED", "DEALS")
		for _, f := range r.Revenue.Forecast {
			row(w, f.Month, fmt.Sprintf("$%.0f", f.Projected), f.Deals)
		}
	}
}

func graphCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("analytics graph requires pipeline or accounts")
	}
	kind := args[0]
	fs := flag.NewFlagSet("analytics graph "+kind, flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	parseArgs(fs, args[1:])

	var dot string
	switch kind {
	case "pipeline":
		board := views.NewBoard(app.Session, nil, app.Logger)
		if err := board.Load(ctx); err != nil {
			return err
		}
		var err error
		dot, err = viz.PipelineGraph(ctx, board.Columns(views.BoardFilter{}), board.Unassigned(views.BoardFilter{}))
		if err != nil {
			return err
		}
	case "accounts":
		clients := views.NewClients(app.Session, nil, app.Logger)
		campaigns := views.NewCampaigns(app.Session, nil, app.Logger)
		board := views.NewBoard(app.Session, nil, app.Logger)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return clients.Load(gctx) })
		g.Go(func() error { return campaigns.Load(gctx) })
		g.Go(func() error { return board.Load(gctx) })
		if err := g.Wait(); err != nil {
			return err
		}
		var err error
		dot, err = viz.AccountMap(ctx, clients.Items(), board.Deals(), campaigns.Items())
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown graph %q (pipeline or accounts)", kind)
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}
	_, err := fmt.Fprintln(app.Out, dot)
	return err
}
