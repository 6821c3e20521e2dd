// ABOUTME: Identity commands for the configured principal
// ABOUTME: token mints a bearer JWT for the web API; whoami prints who is signed in
package cli

import (
	"context"
	"flag"
	"io"
	"time"

	"github.com/harperreed/agency/auth"
)

// TokenCommand prints a bearer token for the signed-in principal.
func TokenCommand(app *App, secret string, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	ttl := fs.Duration("ttl", auth.DefaultTTL, "How long the token stays valid")
	parseArgs(fs, args)

	p, err := app.Session.Principal(context.Background())
	if err != nil {
		return err
	}
	token, err := auth.Issue(p, secret, *ttl)
	if err != nil {
		return err
	}
	expires := app.Now().Add(*ttl).UTC().Format(time.RFC3339)
	return app.emit(map[string]string{"token": token, "expiresAt": expires}, func(w io.Writer) {
		row(w, token)
	})
}

func WhoamiCommand(app *App) error {
	p, err := app.Session.Principal(context.Background())
	if err != nil {
		return err
	}
	return app.emit(p, func(w io.Writer) {
		row(w, "ID:", p.ID)
		row(w, "Name:", orDash(p.Name))
		row(w, "Email:", orDash(p.Email))
	})
}
