package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS servants (
					id INTEGER PRIMARY KEY,
					name TEXT NOT NULL,
					jp_name TEXT,
					aliases TEXT,
					voice_actor TEXT,
					illustrator TEXT,
					class_type TEXT,
					attribute TEXT,
					gender TEXT,
					alignment TEXT,
					traits TEXT,
					rarity INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_servants_name ON servants(name)`,

				`CREATE TABLE IF NOT EXISTS events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					region TEXT NOT NULL,
					position INTEGER NOT NULL,
					slug TEXT NOT NULL,
					name TEXT NOT NULL,
					image_file TEXT,
					start_date DATETIME,
					end_date DATETIME,
					UNIQUE(region, name)
				)`,
				`CREATE INDEX idx_events_region ON events(region, position)`,

				`CREATE TABLE IF NOT EXISTS banners (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					event_id INTEGER NOT NULL,
					position INTEGER NOT NULL,
					slug TEXT NOT NULL,
					name TEXT NOT NULL,
					start_date DATETIME,
					end_date DATETIME,
					date_origin TEXT,
					FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_banners_event ON banners(event_id, position)`,

				`CREATE TABLE IF NOT EXISTS banner_rateups (
					banner_id INTEGER NOT NULL,
					servant_id INTEGER NOT NULL,
					servant_name TEXT NOT NULL,
					PRIMARY KEY (banner_id, servant_id),
					FOREIGN KEY (banner_id) REFERENCES banners(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_banner_rateups_servant ON banner_rateups(servant_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add harvest run history",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS harvest_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					region TEXT NOT NULL,
					started_at DATETIME NOT NULL,
					finished_at DATETIME NOT NULL,
					events INTEGER NOT NULL DEFAULT 0,
					banners INTEGER NOT NULL DEFAULT 0,
					rules_digest TEXT
				)`,
				`CREATE INDEX idx_harvest_runs_region ON harvest_runs(region, finished_at)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add slug lookup indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX idx_events_slug ON events(slug)`,
				`CREATE INDEX idx_banners_slug ON banners(slug)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
