// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: One tab per agency page; views are loaded together and writes report to a status line
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/agency/analytics"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/views"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Tab is one page of the app.
type Tab int

const (
	TabDashboard Tab = iota
	TabPipeline
	TabActivities
	TabClients
	TabTeam
	TabSocial
	TabUpwork
	TabLinkedIn
	TabAnalytics
	TabAutomation
	TabLeads
	tabCount
)

var tabNames = [...]string{"Dashboard", "Pipeline", "Activities", "Clients", "Team", "Social", "Upwork", "LinkedIn", "Analytics", "Automation", "Leads"}

func (t Tab) String() string { return tabNames[t] }

// ViewMode is what the current tab is showing.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewConfirmDelete
	ViewGraph
)

// Model is the main bubbletea model
type Model struct {
	session *gateway.Session
	logger  *zap.Logger
	inbox   *views.Inbox
	now     func() time.Time

	clients    *views.Clients
	campaigns  *views.Campaigns
	projects   *views.Projects
	contacts   *views.Contacts
	activities *views.Activities
	team       *views.Team
	automation *views.Automation
	board      *views.Board
	lists      *leadgen.Lists

	dashboard analytics.Dashboard
	report    analytics.Report
	leadStats analytics.LeadStats

	tab      Tab
	viewMode ViewMode

	// list tabs
	selectedRow int
	search      textinput.Model
	searching   bool

	// pipeline tab
	column   int
	graphDOT string

	loading   bool
	signedOut bool
	err       error
	notice    views.Notification

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(session *gateway.Session, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	inbox := &views.Inbox{}
	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "

	return Model{
		session:    session,
		logger:     logger,
		inbox:      inbox,
		now:        time.Now,
		clients:    views.NewClients(session, inbox, logger),
		campaigns:  views.NewCampaigns(session, inbox, logger),
		projects:   views.NewProjects(session, inbox, logger),
		contacts:   views.NewContacts(session, inbox, logger),
		activities: views.NewActivities(session, inbox, logger),
		team:       views.NewTeam(session, inbox, logger),
		automation: views.NewAutomation(session, inbox, logger),
		board:      views.NewBoard(session, inbox, logger),
		lists:      leadgen.NewLists(session, inbox, logger),
		search:     search,
		loading:    true,
		width:      100,
		height:     30,
	}
}

// Run starts the program full screen.
func Run(session *gateway.Session, logger *zap.Logger) error {
	_, err := tea.NewProgram(NewModel(session, logger), tea.WithAltScreen()).Run()
	return err
}

// loadedMsg carries the aggregates computed by load.
type loadedMsg struct {
	dashboard analytics.Dashboard
	report    analytics.Report
	leadStats analytics.LeadStats
	err       error
}

// writeDoneMsg ends a write started from a key press.
type writeDoneMsg struct{ err error }

// load checks the principal, then fetches every view and aggregate
// concurrently. Only a sign-in failure is fatal.
func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := m.session.Principal(ctx); err != nil {
			return loadedMsg{err: err}
		}

		var msg loadedMsg
		g, ctx := errgroup.WithContext(ctx)
		for _, load := range []func(context.Context) error{
			m.clients.Load, m.campaigns.Load, m.projects.Load, m.contacts.Load,
			m.activities.Load, m.team.Load, m.automation.Load, m.board.Load, m.lists.Load,
		} {
			g.Go(func() error { return load(ctx) })
		}
		g.Go(func() (err error) {
			msg.dashboard, err = analytics.LoadDashboard(ctx, m.session, m.logger)
			return err
		})
		g.Go(func() (err error) {
			msg.report, err = analytics.LoadAdvanced(ctx, m.session, analytics.Range30d, m.now(), m.logger)
			return err
		})
		g.Go(func() (err error) {
			msg.leadStats, err = analytics.LoadLeadStats(ctx, m.session, m.logger)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if errors.Is(msg.err, gateway.ErrUnauthenticated) {
			m.signedOut = true
			return m, nil
		}
		m.err = msg.err
		m.dashboard, m.report, m.leadStats = msg.dashboard, msg.report, msg.leadStats
		m.clampCursor()
		return m, nil
	case writeDoneMsg:
		m.err = nil
		if msg.err != nil && errors.Is(msg.err, gateway.ErrUnauthenticated) {
			m.signedOut = true
		}
		m.drainNotices()
		m.clampCursor()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m *Model) drainNotices() {
	if notes := m.inbox.Drain(); len(notes) > 0 {
		m.notice = notes[len(notes)-1]
	}
}

func (m Model) View() string {
	if m.signedOut {
		return titleStyle.Render("AGENCY") + "\n\n" +
			"You are not signed in. Run `agency charm link` or set AGENCY_USER_ID, then start again.\n\n" +
			helpStyle.Render("q: Quit")
	}
	if m.loading {
		return titleStyle.Render("AGENCY") + "\n\nLoading...\n"
	}

	var body string
	switch m.viewMode {
	case ViewDetail:
		body = m.renderDetailView()
	case ViewConfirmDelete:
		body = m.renderConfirmDeleteView()
	case ViewGraph:
		body = m.renderGraphView()
	default:
		body = m.renderTab()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("AGENCY"),
		m.renderTabs(),
		"",
		body,
		m.renderStatusLine(),
	)
}

func (m Model) renderTab() string {
	switch m.tab {
	case TabDashboard:
		return m.renderDashboardView()
	case TabAnalytics:
		return m.renderAnalyticsView()
	case TabPipeline:
		return m.renderPipelineView()
	default:
		return m.renderListView()
	}
}

func (m Model) renderTabs() string {
	rendered := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		if t == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(t.String()))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderStatusLine() string {
	if m.err != nil {
		return errorStyle.Render("✗ " + m.err.Error())
	}
	if m.notice.Message == "" {
		return helpStyle.Render(" ")
	}
	if m.notice.Level == views.LevelError {
		return errorStyle.Render("✗ " + m.notice.Message)
	}
	return successStyle.Render("✓ " + m.notice.Message)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if m.signedOut || m.loading {
		return m, nil
	}

	switch m.viewMode {
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	}

	switch msg.String() {
	case "tab":
		m.switchTab((m.tab + 1) % tabCount)
		return m, nil
	case "shift+tab":
		m.switchTab((m.tab + tabCount - 1) % tabCount)
		return m, nil
	case "r":
		m.loading = true
		m.notice = views.Notification{}
		return m, m.load()
	}

	if m.tab == TabPipeline {
		return m.handlePipelineKeys(msg)
	}
	return m.handleListKeys(msg)
}

func (m *Model) switchTab(t Tab) {
	m.tab = t
	m.selectedRow = 0
	m.column = 0
	m.search.SetValue("")
	m.viewMode = ViewList
}

// write runs fn as a command so the UI stays responsive.
func write(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return writeDoneMsg{err: fn(context.Background())}
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			MarginTop(1)
)
