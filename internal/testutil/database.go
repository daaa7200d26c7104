// Package testutil provides test utilities for the almanac: in-memory
// databases seeded with servant rosters and an in-memory wiki.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/service"
	"github.com/Veraticus/summon-almanac/internal/storage"
	"github.com/Veraticus/summon-almanac/internal/testutil/roster"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
	Roster  roster.Roster
}

// SetupTestDB creates a new in-memory test database seeded with the given roster.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		roster.NewBuilder(t).
//			WithFixture(roster.FixtureStandard).
//			Build(),
//	)
func SetupTestDB(t *testing.T, servants roster.Roster) *TestDB {
	t.Helper()

	return SetupTestDBWithOptions(t, TestDBOptions{Roster: servants})
}

// SetupTestDBWithBuilder creates a test database using a roster builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b roster.Builder) roster.Builder {
//		return b.WithFixture(roster.FixtureMinimal).WithServants(roster.Merlin)
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(roster.Builder) roster.Builder) *TestDB {
	t.Helper()

	builder := roster.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}
	return SetupTestDB(t, builder.Build())
}

// MustGetServant returns the seeded servant with the given name or fails the test.
func (db *TestDB) MustGetServant(name roster.Name) model.Servant {
	db.t.Helper()
	return db.Roster.MustFind(db.t, name)
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Roster         roster.Roster
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Seed servants
	if len(opts.Roster) > 0 {
		if err := store.SaveServants(ctx, opts.Roster); err != nil {
			t.Fatalf("failed to seed servants: %v", err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Roster:  opts.Roster,
		t:       t,
	}
}
