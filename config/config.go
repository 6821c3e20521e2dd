// ABOUTME: Runtime configuration loaded from .env, environment and XDG defaults
// ABOUTME: Selects the storage backend and carries API, auth and principal settings
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/harperreed/agency/models"
	"github.com/joho/godotenv"
)

const AppName = "agency"

// Backend names a gateway implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendCharm    Backend = "charm"
)

var ErrUnknownBackend = errors.New("unknown backend")

type Config struct {
	Backend     Backend
	DBPath      string
	DatabaseURL string

	JWTSecret string
	Port      string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	Env      string
	LogLevel string

	// Principal is the local identity for sqlite and postgres backends.
	Principal models.Principal
}

// Load reads envFiles (default ".env"; missing files are ignored), then the
// environment, then fills defaults.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Backend:       Backend(GetEnv("AGENCY_BACKEND", string(BackendSQLite))),
		DBPath:        GetEnv("AGENCY_DB_PATH", DefaultDBPath()),
		DatabaseURL:   GetEnv("AGENCY_DATABASE_URL", GetEnv("DATABASE_URL", "")),
		JWTSecret:     GetEnv("AGENCY_JWT_SECRET", ""),
		Port:          GetEnv("AGENCY_PORT", "8080"),
		OpenAIKey:     GetEnv("AGENCY_OPENAI_API_KEY", GetEnv("OPENAI_API_KEY", "")),
		OpenAIBaseURL: GetEnv("AGENCY_OPENAI_BASE_URL", ""),
		OpenAIModel:   GetEnv("AGENCY_OPENAI_MODEL", "gpt-4o-mini"),
		Env:           GetEnv("AGENCY_ENV", "development"),
		LogLevel:      GetEnv("AGENCY_LOG_LEVEL", "info"),
		Principal: models.Principal{
			ID:    GetEnv("AGENCY_USER_ID", ""),
			Email: GetEnv("AGENCY_USER_EMAIL", ""),
			Name:  GetEnv("AGENCY_USER_NAME", ""),
		},
	}

	switch cfg.Backend {
	case BackendSQLite, BackendCharm:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires AGENCY_DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}

	if cfg.Backend == BackendSQLite && cfg.Principal.ID == "" {
		id, err := localUserID()
		if err != nil {
			return nil, err
		}
		cfg.Principal.ID = id
	}
	if cfg.Principal.Name == "" {
		cfg.Principal.Name = GetEnv("USER", "")
	}
	return cfg, nil
}

// GetEnv returns the variable's value or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvInt parses an integer variable, falling back on absence or error.
func GetEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// DataDir is the XDG data directory for agency.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultDBPath is the sqlite file under the data directory.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), AppName+".db")
}

// localUserID returns a stable per-install id, creating it on first use.
func localUserID() (string, error) {
	path := filepath.Join(DataDir(), "user-id")
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		return string(data), nil
	}
	if err := os.MkdirAll(DataDir(), 0700); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0600); err != nil {
		return "", fmt.Errorf("failed to store user id: %w", err)
	}
	return id, nil
}
