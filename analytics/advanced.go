// ABOUTME: Advanced analytics report over deals, activities and clients
// ABOUTME: Time series are derived from stored timestamps; empty series are flagged Simulated
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Range limits which deals and activities feed the overview, pipeline and
// activity sections.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"
	Range1y  Range = "1y"
)

// ParseRange accepts 7d, 30d, 90d or 1y; anything else is 30d.
func ParseRange(s string) Range {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case Range7d, Range30d, Range90d, Range1y:
		return r
	default:
		return Range30d
	}
}

// Since is the start of the range ending at now.
func (r Range) Since(now time.Time) time.Time {
	switch r {
	case Range7d:
		return now.AddDate(0, 0, -7)
	case Range90d:
		return now.AddDate(0, 0, -90)
	case Range1y:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

type Overview struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalDeals      int     `json:"totalDeals"`
	ConversionRate  int     `json:"conversionRate"`
	AvgDealSize     float64 `json:"avgDealSize"`
	TotalActivities int     `json:"totalActivities"`
	CompletionRate  int     `json:"completionRate"`
	ActiveClients   int     `json:"activeClients"`
	PipelineValue   float64 `json:"pipelineValue"`
}

type StageConversion struct {
	StageID        string  `json:"stageId"`
	Stage          string  `json:"stage"`
	Deals          int     `json:"deals"`
	Value          float64 `json:"value"`
	ConversionRate int     `json:"conversionRate"`
}

type StageTime struct {
	Stage     string `json:"stage"`
	AvgDays   int    `json:"avgDays"`
	Simulated bool   `json:"simulated"`
}

type PipelineReport struct {
	StageConversion    []StageConversion `json:"stageConversion"`
	AvgTimeInStage     []StageTime       `json:"avgTimeInStage"`
	WinRate            int               `json:"winRate"`
	AvgDealSize        float64           `json:"avgDealSize"`
	TotalPipelineValue float64           `json:"totalPipelineValue"`
}

type TypeBreakdown struct {
	Type           string `json:"type"`
	Count          int    `json:"count"`
	CompletionRate int    `json:"completionRate"`
}

type AssigneeBreakdown struct {
	User           string `json:"user"`
	Activities     int    `json:"activities"`
	CompletionRate int    `json:"completionRate"`
}

type DayTrend struct {
	Date       string `json:"date"`
	Activities int    `json:"activities"`
	Completed  int    `json:"completed"`
}

type ActivityReport struct {
	ByType    []TypeBreakdown     `json:"byType"`
	ByUser    []AssigneeBreakdown `json:"byUser"`
	Trends    []DayTrend          `json:"trends"`
	Simulated bool                `json:"simulated"`
}

type MonthRevenue struct {
	Month       string  `json:"month"`
	Revenue     float64 `json:"revenue"`
	Deals       int     `json:"deals"`
	AvgDealSize float64 `json:"avgDealSize"`
}

type SourceRevenue struct {
	Source  string  `json:"source"`
	Revenue float64 `json:"revenue"`
	Deals   int     `json:"deals"`
}

type ForecastMonth struct {
	Month     string  `json:"month"`
	Projected float64 `json:"projected"`
	Deals     int     `json:"deals"`
}

type RevenueReport struct {
	Monthly           []MonthRevenue  `json:"monthly"`
	BySource          []SourceRevenue `json:"bySource"`
	Forecast          []ForecastMonth `json:"forecast"`
	Simulated         bool            `json:"simulated"`
	ForecastSimulated bool            `json:"forecastSimulated"`
}

type Report struct {
	Range    Range          `json:"range"`
	Overview Overview       `json:"overview"`
	Pipeline PipelineReport `json:"pipeline"`
	Activity ActivityReport `json:"activity"`
	Revenue  RevenueReport  `json:"revenue"`
}

// Inputs are the collections an advanced report is computed from.
type Inputs struct {
	Clients    []models.Client
	Deals      []models.Deal
	Activities []models.Activity
	Stages     []models.PipelineStage
}

// LoadAdvanced fetches clients, deals, activities and stages in parallel
// and computes the report for rng.
func LoadAdvanced(ctx context.Context, s *gateway.Session, rng Range, now time.Time, logger *zap.Logger) (Report, error) {
	logger = orNop(logger)
	p, err := s.Principal(ctx)
	if err != nil {
		return Report{}, err
	}
	gw := s.Gateway()
	q := gateway.Owned(p.ID)

	var in Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in.Clients = list(gctx, gw, gateway.Clients, q, transform.ClientToView, logger)
		return nil
	})
	g.Go(func() error {
		in.Deals = list(gctx, gw, gateway.Deals, q, transform.DealToView, logger)
		return nil
	})
	g.Go(func() error {
		in.Activities = list(gctx, gw, gateway.Activities, q, transform.ActivityToView, logger)
		return nil
	})
	g.Go(func() error {
		sq := gateway.Query{AnyOwner: []string{p.ID, gateway.SystemOwner}, OrderBy: "position"}
		in.Stages = list(gctx, gw, gateway.PipelineStages, sq, transform.PipelineStageToView, logger)
		return nil
	})
	_ = g.Wait()

	return ComputeAdvanced(in, rng, now), nil
}

// ComputeAdvanced builds the report. Overview, pipeline and activity
// sections only count deals and activities created inside rng; the time
// series keep their own fixed windows.
func ComputeAdvanced(in Inputs, rng Range, now time.Time) Report {
	since := rng.Since(now)
	deals := make([]models.Deal, 0, len(in.Deals))
	for _, d := range in.Deals {
		if !d.CreatedAt.Before(since) {
			deals = append(deals, d)
		}
	}
	acts := make([]models.Activity, 0, len(in.Activities))
	for _, a := range in.Activities {
		if !a.CreatedAt.Before(since) {
			acts = append(acts, a)
		}
	}
	stages := activeStages(in.Stages)

	ov := overview(in.Clients, deals, acts)
	return Report{
		Range:    rng,
		Overview: ov,
		Pipeline: pipelineReport(stages, deals, ov, now),
		Activity: activityReport(acts, now),
		Revenue:  revenueReport(in.Deals, now),
	}
}

func activeStages(stages []models.PipelineStage) []models.PipelineStage {
	out := make([]models.PipelineStage, 0, len(stages))
	for _, s := range stages {
		if s.IsActive {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = append(out, models.DefaultStages...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func overview(clients []models.Client, deals []models.Deal, acts []models.Activity) Overview {
	var ov Overview
	var monthly float64
	for _, c := range clients {
		monthly += c.MonthlyValue
		if c.Status == models.ClientActive {
			ov.ActiveClients++
		}
	}
	ov.TotalRevenue = monthly * 12

	won := 0
	for _, d := range deals {
		ov.PipelineValue += d.Value
		if d.StageID == models.WonStageID {
			won++
		}
	}
	ov.TotalDeals = len(deals)
	ov.ConversionRate = Percent(won, len(deals))
	ov.AvgDealSize = math.Round(Ratio(ov.PipelineValue, float64(len(deals))))

	completed := 0
	for _, a := range acts {
		if a.Status == models.ActivityCompleted {
			completed++
		}
	}
	ov.TotalActivities = len(acts)
	ov.CompletionRate = Percent(completed, len(acts))
	return ov
}

func pipelineReport(stages []models.PipelineStage, deals []models.Deal, ov Overview, now time.Time) PipelineReport {
	pr := PipelineReport{
		StageConversion:    make([]StageConversion, 0, len(stages)),
		AvgTimeInStage:     make([]StageTime, 0, len(stages)),
		WinRate:            ov.ConversionRate,
		AvgDealSize:        ov.AvgDealSize,
		TotalPipelineValue: ov.PipelineValue,
	}
	total := len(deals)
	if total < 1 {
		total = 1
	}
	for i, st := range stages {
		var count int
		var value, days float64
		for _, d := range deals {
			if d.StageID != st.ID {
				continue
			}
			count++
			value += d.Value
			days += math.Floor(now.Sub(d.UpdatedAt).Hours() / 24)
		}
		rate := Percent(count, total)
		if i == 0 {
			rate = 100
		}
		pr.StageConversion = append(pr.StageConversion, StageConversion{
			StageID: st.ID, Stage: st.Name, Deals: count, Value: value, ConversionRate: rate,
		})
		pr.AvgTimeInStage = append(pr.AvgTimeInStage, StageTime{
			Stage:     st.Name,
			AvgDays:   int(math.Round(Ratio(days, float64(count)))),
			Simulated: count == 0,
		})
	}
	return pr
}

func activityReport(acts []models.Activity, now time.Time) ActivityReport {
	ar := ActivityReport{
		ByType: make([]TypeBreakdown, 0, len(models.TrackedActivityTypes)),
		ByUser: []AssigneeBreakdown{},
		Trends: make([]DayTrend, 0, 7),
	}
	for _, t := range models.TrackedActivityTypes {
		var count, done int
		for _, a := range acts {
			if a.Type == t {
				count++
				if a.Status == models.ActivityCompleted {
					done++
				}
			}
		}
		ar.ByType = append(ar.ByType, TypeBreakdown{Type: label(string(t)), Count: count, CompletionRate: Percent(done, count)})
	}

	type tally struct{ total, done int }
	byUser := map[string]*tally{}
	for _, a := range acts {
		who := a.AssignedTo
		if who == "" {
			who = "You"
		}
		if byUser[who] == nil {
			byUser[who] = &tally{}
		}
		byUser[who].total++
		if a.Status == models.ActivityCompleted {
			byUser[who].done++
		}
	}
	counts := make(map[string]int, len(byUser))
	for who, t := range byUser {
		counts[who] = t.total
	}
	for _, c := range TopN(counts, 0) {
		t := byUser[c.Key]
		ar.ByUser = append(ar.ByUser, AssigneeBreakdown{User: c.Key, Activities: t.total, CompletionRate: Percent(t.done, t.total)})
	}

	today := dayStart(now)
	seen := false
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		next := day.AddDate(0, 0, 1)
		var dt DayTrend
		dt.Date = day.Format("Jan 2")
		for _, a := range acts {
			if within(a.CreatedAt, day, next) {
				dt.Activities++
			}
			if a.CompletedAt != nil && within(*a.CompletedAt, day, next) {
				dt.Completed++
			}
		}
		if dt.Activities > 0 || dt.Completed > 0 {
			seen = true
		}
		ar.Trends = append(ar.Trends, dt)
	}
	ar.Simulated = !seen
	return ar
}

func revenueReport(deals []models.Deal, now time.Time) RevenueReport {
	rr := RevenueReport{
		Monthly:  make([]MonthRevenue, 0, 6),
		BySource: []SourceRevenue{},
		Forecast: make([]ForecastMonth, 0, 3),
	}

	var won, open []models.Deal
	for _, d := range deals {
		switch d.StageID {
		case models.WonStageID:
			won = append(won, d)
		case models.LostStageID:
		default:
			open = append(open, d)
		}
	}

	month := monthStart(now)
	for i := 5; i >= 0; i-- {
		from := month.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)
		mr := MonthRevenue{Month: from.Format("Jan")}
		for _, d := range won {
			if within(closedAt(d), from, to) {
				mr.Revenue += d.Value
				mr.Deals++
			}
		}
		mr.AvgDealSize = math.Round(Ratio(mr.Revenue, float64(mr.Deals)))
		rr.Monthly = append(rr.Monthly, mr)
	}

	sources := map[string]*SourceRevenue{}
	for _, d := range won {
		src := strings.TrimSpace(d.Source)
		if src == "" {
			src = "Other"
		}
		if sources[src] == nil {
			sources[src] = &SourceRevenue{Source: src}
		}
		sources[src].Revenue += d.Value
		sources[src].Deals++
	}
	for _, s := range sources {
		rr.BySource = append(rr.BySource, *s)
	}
	sort.Slice(rr.BySource, func(i, j int) bool {
		if rr.BySource[i].Revenue != rr.BySource[j].Revenue {
			return rr.BySource[i].Revenue > rr.BySource[j].Revenue
		}
		return rr.BySource[i].Source < rr.BySource[j].Source
	})
	rr.Simulated = len(won) == 0

	forecastDeals := 0
	for i := 1; i <= 3; i++ {
		from := month.AddDate(0, i, 0)
		to := from.AddDate(0, 1, 0)
		fm := ForecastMonth{Month: from.Format("Jan")}
		for _, d := range open {
			at, ok := parseDate(d.ExpectedCloseDate)
			if ok && within(at, from, to) {
				fm.Projected += d.WeightedValue()
				fm.Deals++
			}
		}
		forecastDeals += fm.Deals
		rr.Forecast = append(rr.Forecast, fm)
	}
	rr.ForecastSimulated = forecastDeals == 0
	return rr
}

// closedAt is the actual close date, or the last update when none was
// recorded.
func closedAt(d models.Deal) time.Time {
	if at, ok := parseDate(d.ActualCloseDate); ok {
		return at
	}
	return d.UpdatedAt
}

func parseDate(s string) (time.Time, bool) {
	t := transform.ParseTime(s)
	return t, !t.IsZero()
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func label(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// String renders a one-line summary for logs and the CLI.
func (o Overview) String() string {
	return fmt.Sprintf("revenue=%.0f deals=%d conversion=%d%% activities=%d completion=%d%%",
		o.TotalRevenue, o.TotalDeals, o.ConversionRate, o.TotalActivities, o.CompletionRate)
}
