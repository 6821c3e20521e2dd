// ABOUTME: Entry point for the agency CRM: CLI, TUI, web API and MCP server
// ABOUTME: Loads config, opens the selected record backend and routes to commands
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/agency/charm"
	"github.com/harperreed/agency/cli"
	"github.com/harperreed/agency/config"
	"github.com/harperreed/agency/db"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/logging"
	"github.com/harperreed/agency/pgstore"
	"github.com/harperreed/agency/tui"
	"github.com/harperreed/agency/web"
	"go.uber.org/zap"
)

const version = "0.2.0"

// backend is an opened record store plus the handles some commands need
// directly.
type backend struct {
	gw gateway.Gateway
	// local is the sqlite database; it also holds calendar sync state.
	local *sql.DB
	charm *charm.Client
	close func()
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "SQLite database path (default: ~/.local/share/agency/agency.db)")
	envFile := flag.String("env-file", ".env", "Environment file to load")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("agency version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 || args[0] == "help" {
		printUsage()
		os.Exit(0)
	}
	command, commandArgs := args[0], args[1:]

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// charm auto only edits the local charm config.
	if command == "charm" && len(commandArgs) > 0 && commandArgs[0] == "auto" {
		fatal(logger, charm.AutoSyncCommand(commandArgs[1:]))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger, command == "charm")
	if err != nil {
		logger.Fatal("failed to open backend", zap.String("backend", string(cfg.Backend)), zap.Error(err))
	}
	defer b.close()

	app := cli.NewApp(gateway.NewSession(b.gw), logger)
	app.Model = cfg.OpenAIModel
	if cfg.OpenAIKey != "" {
		app.Streamer = leadgen.NewOpenAIStreamer(cfg.OpenAIBaseURL, cfg.OpenAIKey)
	}

	switch command {
	case "crm":
		err = cli.CRMCommand(app, commandArgs)
	case "pipeline":
		err = cli.PipelineCommand(app, commandArgs)
	case "activity", "activities":
		err = cli.ActivityCommand(app, commandArgs)
	case "leads":
		err = cli.LeadsCommand(app, commandArgs)
	case "analytics":
		err = cli.AnalyticsCommand(app, commandArgs)
	case "team":
		err = cli.TeamCommand(app, commandArgs)
	case "automation":
		err = cli.AutomationCommand(app, commandArgs)
	case "sync":
		err = cli.SyncCommand(app, b.local, commandArgs)
	case "token":
		err = cli.TokenCommand(app, cfg.JWTSecret, commandArgs)
	case "whoami":
		err = cli.WhoamiCommand(app)
	case "mcp":
		err = cli.MCPCommand(app, version)
	case "tui":
		err = tui.Run(app.Session, logger)
	case "web":
		err = runWeb(ctx, cfg, b.gw, app, logger, commandArgs)
	case "charm":
		err = charmCommand(b.charm, commandArgs)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	fatal(logger, err)
}

func fatal(logger *zap.Logger, err error) {
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

// openBackend opens the configured record store. The local sqlite database
// is always opened because calendar sync keeps its state there.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger, forceCharm bool) (*backend, error) {
	local, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	b := &backend{local: local, close: func() { _ = local.Close() }}

	kind := cfg.Backend
	if forceCharm {
		kind = config.BackendCharm
	}

	switch kind {
	case config.BackendSQLite:
		store := db.NewStore(local, cfg.Principal)
		if err := store.EnsureUser(ctx); err != nil {
			b.close()
			return nil, fmt.Errorf("failed to register local user: %w", err)
		}
		logger.Debug("using sqlite backend", zap.String("path", cfg.DBPath))
		b.gw = store

	case config.BackendPostgres:
		store, err := pgstore.New(ctx, cfg.DatabaseURL, cfg.Principal, logger)
		if err != nil {
			b.close()
			return nil, err
		}
		b.gw = store
		b.close = func() { store.Close(); _ = local.Close() }

	case config.BackendCharm:
		charmCfg, err := charm.LoadConfig()
		if err != nil {
			b.close()
			return nil, fmt.Errorf("failed to load charm config: %w", err)
		}
		client, err := charm.Open(charmCfg)
		if err != nil {
			b.close()
			return nil, err
		}
		store := charm.NewStore(client, cfg.Principal, logger)
		if err := store.SeedStages(ctx); err != nil {
			logger.Warn("failed to seed pipeline stages", zap.Error(err))
		}
		b.gw = store
		b.charm = client

	default:
		b.close()
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, kind)
	}
	return b, nil
}

func runWeb(ctx context.Context, cfg *config.Config, gw gateway.Gateway, app *cli.App, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	port := fs.String("port", cfg.Port, "Port to listen on")
	_ = fs.Parse(args)

	if cfg.JWTSecret == "" {
		return fmt.Errorf("web requires AGENCY_JWT_SECRET")
	}
	server := web.NewServer(gw, web.Options{
		JWTSecret: cfg.JWTSecret,
		Backend:   string(cfg.Backend),
		Model:     app.Model,
		Streamer:  app.Streamer,
	}, logger)
	return server.Run(ctx, ":"+*port)
}

func charmCommand(c *charm.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("charm requires a subcommand: link, status, sync, wipe, auto")
	}
	rest := args[1:]
	switch args[0] {
	case "link":
		return charm.LinkCommand(c, rest)
	case "status":
		return charm.StatusCommand(c, rest)
	case "sync":
		return charm.NowCommand(c, rest)
	case "wipe":
		return charm.WipeCommand(c, rest)
	default:
		return fmt.Errorf("unknown charm command: %s", args[0])
	}
}

func printUsage() {
	fmt.Printf(`agency v%s - Agency CRM and lead generator

USAGE:
  agency [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       SQLite database path (default: ~/.local/share/agency/agency.db)
  --env-file <path>      Environment file to load (default: .env)

COMMANDS:
  crm                    Clients, social campaigns, Upwork projects, LinkedIn contacts
  pipeline               Deal board, stages and deal moves
  activity               Calls, meetings, emails and tasks
  leads                  Generate, save and export AI lead lists
  analytics              Dashboard, advanced analytics, lead stats and graphs
  team                   Team members and goals
  automation             Email sequences and enrollments
  sync                   Google Calendar import
  token                  Mint a bearer token for the web API
  whoami                 Show the signed-in principal
  tui                    Full-screen terminal interface
  web                    Serve the JSON HTTP API
  mcp                    Start MCP server on stdio
  charm                  Charm backend: link, status, sync, wipe, auto

CRM COMMANDS:
  agency crm clients add --name <name> [--company] [--email] [--phone]
                         [--status active|inactive|prospect] [--services a,b] [--monthly-value <n>]
  agency crm clients list [--query <text>] [--status <status>]
  agency crm clients update <id> [flags]
  agency crm clients delete <id>
  (social, upwork and linkedin take the same add/list/update/delete actions)

PIPELINE COMMANDS:
  agency pipeline board [--query <text>] [--stage <id>]
  agency pipeline stages
  agency pipeline add --title <title> [--value <n>] [--probability 0-100] [--stage <id>]
  agency pipeline move <deal-id> <stage-id>
  agency pipeline update <id> [flags]
  agency pipeline delete <id>

ACTIVITY COMMANDS:
  agency activity add --title <title> [--type call|email|meeting|task] [--priority <p>] [--due <date>]
  agency activity list [--tab all|pending|completed|overdue] [--query <text>]
  agency activity complete <id>
  agency activity delete <id>

LEADS COMMANDS:
  agency leads generate --niche <text> [--save] [--output <file>]
  agency leads lists [--query <text>]
  agency leads show <id>
  agency leads export <id> [--format csv|json] [--output <file>]
  agency leads delete <id>

ANALYTICS COMMANDS:
  agency analytics dashboard
  agency analytics advanced [--range 7d|30d|90d|1y]
  agency analytics leads
  agency analytics graph pipeline|accounts [--output <file>]

TEAM AND AUTOMATION:
  agency team list [--query <text>] [--role <role>]
  agency team goals
  agency team add --name <name> --email <email> [--role admin|manager|member|viewer] [--department]
  agency team add-goal --title <title> --type <type> --target <n>
  agency team progress <goal-id> --current <n>
  agency automation list
  agency automation add --name <name> --step "subject|content|hours" [--step ...]
  agency automation toggle <id>
  agency automation enroll <sequence-id> <contact-id>
  agency automation enrollments

SYNC COMMANDS:
  agency sync init [--no-browser]    Authorize Google Calendar access
  agency sync calendar [--initial]   Import past meetings as activities
  agency sync status                 Show sync state

ENVIRONMENT:
  AGENCY_BACKEND          sqlite (default), postgres or charm
  AGENCY_DATABASE_URL     Postgres connection string
  AGENCY_JWT_SECRET       Signing secret for web tokens
  AGENCY_OPENAI_API_KEY   Enables lead generation
  AGENCY_OPENAI_MODEL     Model name (default: gpt-4o-mini)

Output is a table on a terminal and JSON when piped.

`, version)
}
