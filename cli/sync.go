// ABOUTME: Google Calendar sync CLI commands
// ABOUTME: Handles OAuth setup, calendar import into activities and sync status
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/harperreed/agency/db"
	"github.com/harperreed/agency/sync"
	"golang.org/x/oauth2"
)

// SyncCommand routes `agency sync <action>`. database holds sync state
// and the import log whatever backend stores the records.
func SyncCommand(app *App, database *sql.DB, args []string) error {
	return Dispatch("sync", map[string]func([]string) error{
		"init":     func(a []string) error { return SyncInitCommand(app, a) },
		"calendar": func(a []string) error { return SyncCalendarCommand(app, database, a) },
		"status":   func(a []string) error { return SyncStatusCommand(app, database) },
	}, args)
}

// SyncInitCommand runs the OAuth flow through a local callback server.
func SyncInitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sync init", flag.ExitOnError)
	noBrowser := fs.Bool("no-browser", false, "Print the sign-in URL instead of opening a browser")
	parseArgs(fs, args)

	ctx := context.Background()
	config, err := sync.OAuthConfig()
	if err != nil {
		return err
	}

	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}
		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}
		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: ":8085", Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer func() { _ = server.Shutdown(ctx) }()

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)
	_, _ = fmt.Fprintln(app.Out, "Opening browser for Google OAuth...")
	_, _ = fmt.Fprintf(app.Out, "\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	if !*noBrowser {
		_ = openBrowser(authURL)
	}

	select {
	case token := <-callbackChan:
		if err := sync.SaveToken(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		_, _ = fmt.Fprintf(app.Out, "\n✓ Authenticated successfully\n")
		_, _ = fmt.Fprintf(app.Out, "✓ Tokens saved to %s\n\n", sync.TokenPath())
		_, _ = fmt.Fprintln(app.Out, "Ready to sync! Run 'agency sync calendar --initial' to import meetings.")
		return nil
	case err := <-errChan:
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

// SyncCalendarCommand imports past meetings as completed activities.
func SyncCalendarCommand(app *App, database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("sync calendar", flag.ExitOnError)
	initial := fs.Bool("initial", false, "Full import (last 6 months)")
	parseArgs(fs, args)

	ctx := context.Background()
	token, err := sync.LoadToken()
	if err != nil {
		return fmt.Errorf("no authentication token found. Run 'agency sync init' first: %w", err)
	}
	service, err := sync.NewCalendarClient(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to create Calendar client: %w", err)
	}

	var progress io.Writer = app.Out
	if app.JSON {
		progress = io.Discard
	}
	importer := sync.NewCalendarImporter(database, app.Session, service, progress, app.Logger)
	res, err := importer.Import(ctx, *initial)
	if err != nil {
		return fmt.Errorf("calendar sync failed: %w", err)
	}
	return app.emit(res, func(w io.Writer) {
		row(w, "Fetched:", res.Fetched)
		row(w, "Imported:", res.Imported)
		row(w, "Duplicates:", res.Duplicates)
		for reason, n := range res.Skipped {
			row(w, "Skipped ("+reason+"):", n)
		}
	})
}

func SyncStatusCommand(app *App, database *sql.DB) error {
	states, err := db.ListSyncStates(context.Background(), database)
	if err != nil {
		return err
	}
	return app.emit(states, func(w io.Writer) {
		if len(states) == 0 {
			row(w, "Nothing synced yet")
			return
		}
		header(w, "SERVICE", "STATUS", "LAST SYNC", "ERROR")
		for _, s := range states {
			last, msg := "-", "-"
			if s.LastSyncTime != nil {
				last = s.LastSyncTime.Format("2006-01-02 15:04")
			}
			if s.ErrorMessage != nil {
				msg = *s.ErrorMessage
			}
			row(w, s.Service, s.Status, last, msg)
		}
	})
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
