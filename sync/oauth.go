// ABOUTME: OAuth configuration and token management for Google Calendar
// ABOUTME: Tokens live under the agency XDG data directory with owner-only permissions
package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harperreed/agency/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// RedirectURL is where the local callback server listens during sign-in.
const RedirectURL = "http://localhost:8085/oauth/callback"

var ErrNotConfigured = errors.New("google OAuth credentials not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")

// NewOAuthConfig creates the read-only calendar OAuth2 config.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.GetEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: config.GetEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  RedirectURL,
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfig is NewOAuthConfig, failing when credentials are missing.
func OAuthConfig() (*oauth2.Config, error) {
	cfg := NewOAuthConfig()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	return cfg, nil
}

// TokenPath returns the XDG path of the stored Google token.
func TokenPath() string {
	return filepath.Join(config.DataDir(), "google-credentials.json")
}

func SaveToken(token *oauth2.Token) error {
	path := TokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

func LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}
