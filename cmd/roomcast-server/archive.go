package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coregx/roomcast"
	"github.com/coregx/roomcast/cmd/roomcast-server/internal/config"
	"github.com/coregx/roomcast/retry"
)

// minPruneInterval bounds how often the retention sweep runs.
const minPruneInterval = time.Minute

// openDatabase connects to the archive database, retrying the initial ping,
// and applies the embedded schema when auto-migration is enabled.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger roomcast.Logger) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	attempts, err := retry.DefaultStrategy().Do(ctx, db.PingContext)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Infof("Database connection established (%s, %d attempts)", cfg.Driver, attempts)

	if cfg.AutoMigrate {
		if err := migrate(ctx, db, cfg.Driver, cfg.Prefix); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Archive schema is up to date")
	}
	return db, nil
}

// migrate applies the embedded schema. Every statement is idempotent.
func migrate(ctx context.Context, db *sql.DB, driver, prefix string) error {
	statements, err := roomcast.MigrationStatements(driver, prefix)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

// pruneArchive deletes archived messages older than retention until ctx ends.
func pruneArchive(ctx context.Context, messages roomcast.MessageRepository, retention time.Duration, logger roomcast.Logger) error {
	ticker := time.NewTicker(max(retention/4, minPruneInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pruneOnce(ctx, messages, retention, logger)
		}
	}
}

func pruneOnce(ctx context.Context, messages roomcast.MessageRepository, retention time.Duration, logger roomcast.Logger) {
	deleted, err := messages.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		logger.Errorf("Failed to prune archive: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("Pruned %d archived messages older than %s", deleted, retention)
	}
}

// waitArchive waits for the archiver to drain. A nil done means no archive
// was started and returns true at once.
func waitArchive(done <-chan struct{}, timeout time.Duration) bool {
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
