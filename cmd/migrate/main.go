// ABOUTME: Import utility that loads a JSON export of agency records into SQLite
// ABOUTME: Provides dry-run, backup and owner assignment for moving data between installs

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/harperreed/agency/config"
	"github.com/harperreed/agency/db"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/logging"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
)

// options controls how an export is applied.
type options struct {
	dryRun  bool
	replace bool
	// owner, when set, replaces user_id on every owned row.
	owner string
}

func main() {
	dbPath := flag.String("db", config.DefaultDBPath(), "Path to database file")
	file := flag.String("file", "", "JSON export to import (required)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create backup before importing")
	replace := flag.Bool("replace", false, "Overwrite records that already exist")
	owner := flag.String("owner", "", "Re-own every imported row to this user id")
	flag.Parse()

	if *file == "" {
		log.Fatal("Error: -file flag is required")
	}

	logger, err := logging.New(config.GetEnv("AGENCY_ENV", "development"), config.GetEnv("AGENCY_LOG_LEVEL", "info"))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("failed to read export", zap.String("file", *file), zap.Error(err))
	}

	if *backup && !*dryRun {
		if err := backupDatabase(*dbPath, logger); err != nil {
			logger.Fatal("backup failed", zap.Error(err))
		}
	}

	database, err := db.OpenDatabase(*dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", *dbPath), zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	counts, err := importExport(context.Background(), db.NewRecordsRepository(database), data, options{
		dryRun:  *dryRun,
		replace: *replace,
		owner:   *owner,
	}, logger)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	for _, c := range gateway.Collections {
		if n, ok := counts[c]; ok {
			logger.Info("imported", zap.String("collection", string(c)), zap.Int("records", n), zap.Bool("dry_run", *dryRun))
		}
	}
	logger.Info("import completed")
}

// recordWriter is the part of the records repository the import uses.
type recordWriter interface {
	InsertIfMissing(ctx context.Context, c gateway.Collection, row gateway.Row) error
	Upsert(ctx context.Context, c gateway.Collection, row gateway.Row) error
}

// importExport applies an export shaped {"clients": [{...}], ...}. Unknown
// collection names fail the whole import before anything is written.
func importExport(ctx context.Context, repo recordWriter, data []byte, opts options, logger *zap.Logger) (map[gateway.Collection]int, error) {
	var export map[string][]gateway.Row
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}

	batches := make(map[gateway.Collection][]gateway.Row, len(export))
	for name, rows := range export {
		c, err := gateway.ParseCollection(name)
		if err != nil {
			return nil, err
		}
		batches[c] = rows
	}

	counts := make(map[gateway.Collection]int, len(batches))
	for _, c := range gateway.Collections {
		rows, ok := batches[c]
		if !ok {
			continue
		}
		for _, row := range rows {
			if id, _ := row["id"].(string); id == "" {
				row["id"] = transform.NewID(string(c))
			}
			if opts.owner != "" && c.Owned() {
				row["user_id"] = opts.owner
			}
			if opts.dryRun {
				logger.Debug("would import", zap.String("collection", string(c)), zap.Any("id", row["id"]))
				counts[c]++
				continue
			}

			write := repo.InsertIfMissing
			if opts.replace {
				write = repo.Upsert
			}
			if err := write(ctx, c, row); err != nil {
				return counts, fmt.Errorf("failed to import %s %v: %w", c, row["id"], err)
			}
			counts[c]++
		}
	}
	return counts, nil
}

func backupDatabase(dbPath string, logger *zap.Logger) error {
	input, err := os.ReadFile(dbPath)
	if os.IsNotExist(err) {
		logger.Info("no existing database, skipping backup", zap.String("path", dbPath))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	logger.Info("backup created", zap.String("path", backupPath))
	return nil
}
