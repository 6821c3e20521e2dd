// ABOUTME: Shared CLI state and output helpers
// ABOUTME: Prints tabwriter tables on a terminal and JSON when stdout is piped
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/views"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// App is what every command needs: the signed-in session and where to write.
type App struct {
	Session  *gateway.Session
	Streamer leadgen.TextStreamer
	Model    string
	Logger   *zap.Logger
	Out      io.Writer
	// JSON switches output to machine-readable JSON.
	JSON bool
	Now  func() time.Time
}

func NewApp(session *gateway.Session, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		Session: session,
		Model:   leadgen.DefaultModel,
		Logger:  logger,
		Out:     os.Stdout,
		JSON:    !term.IsTerminal(int(os.Stdout.Fd())),
		Now:     time.Now,
	}
}

// notifier prints view notifications on the terminal only; JSON output
// stays clean.
func (a *App) notifier() views.Notifier {
	return views.NotifierFunc(func(n views.Notification) {
		if a.JSON {
			a.Logger.Debug("notification", zap.String("level", string(n.Level)), zap.String("message", n.Message))
			return
		}
		mark := "✓"
		if n.Level == views.LevelError {
			mark = "✗"
		}
		_, _ = fmt.Fprintf(a.Out, "%s %s\n", mark, n.Message)
	})
}

// emit writes v as JSON, or calls table with a tabwriter on a terminal.
func (a *App) emit(v any, table func(w io.Writer)) error {
	if a.JSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	table(w)
	return w.Flush()
}

func (a *App) printf(format string, args ...any) {
	if !a.JSON {
		_, _ = fmt.Fprintf(a.Out, format, args...)
	}
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	_, _ = fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func header(w io.Writer, cols ...string) {
	row(w, toAny(cols)...)
	under := make([]any, len(cols))
	for i, c := range cols {
		under[i] = strings.Repeat("-", len(c))
	}
	row(w, under...)
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// visited reports which flags were given on the command line, so update
// commands only touch those fields.
func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// splitList turns "a, b,c" into a trimmed slice.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseArgs parses flags and accepts positional ids either before or
// after them.
func parseArgs(fs *flag.FlagSet, args []string) {
	lead := 0
	for lead < len(args) && !strings.HasPrefix(args[lead], "-") {
		lead++
	}
	if lead > 0 && lead < len(args) {
		args = append(append([]string{}, args[lead:]...), args[:lead]...)
	}
	_ = fs.Parse(args)
}

// requireID takes the single positional id after the flags.
func requireID(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("%s id is required", what)
	}
	return fs.Arg(0), nil
}

// Dispatch runs the named subcommand from table.
func Dispatch(name string, table map[string]func([]string) error, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s requires a subcommand (%s)", name, strings.Join(keys(table), ", "))
	}
	cmd, ok := table[args[0]]
	if !ok {
		return fmt.Errorf("unknown %s command: %s", name, args[0])
	}
	return cmd(args[1:])
}

func keys(table map[string]func([]string) error) []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
