package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/summon-almanac/internal/catalog"
	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/config"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
	"github.com/Veraticus/summon-almanac/internal/service"
	"github.com/Veraticus/summon-almanac/internal/storage"
	"github.com/Veraticus/summon-almanac/internal/wiki"
)

const (
	defaultDBPath      = "$HOME/.local/share/almanac/almanac.db"
	defaultCatalogPath = "$HOME/.local/share/almanac/servant_details.json"
	defaultExportDir   = "./data"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadRules reads `rules.path`, or the embedded tables, and returns the set
// with a digest of its source.
func loadRules() (*rules.Set, string, error) {
	data := rules.DefaultYAML()
	if path := viper.GetString("rules.path"); path != "" {
		var err error
		data, err = os.ReadFile(config.ExpandPath(path)) // #nosec G304
		if err != nil {
			return nil, "", fmt.Errorf("failed to read rules: %w", err)
		}
	}

	set, err := rules.Parse(data)
	if err != nil {
		return nil, "", err
	}
	return set, rulesDigest(data), nil
}

func rulesDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}

// openWiki creates the API client and, when `wiki.snapshot_dir` is set, a
// snapshot that records every page fetched through it.
func openWiki(logger *slog.Logger) (*wiki.Client, service.Wiki, wiki.Config, error) {
	cfg, err := config.LoadWikiConfig()
	if err != nil {
		return nil, nil, cfg, err
	}
	client, err := wiki.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, cfg, err
	}
	if cfg.SnapshotDir == "" {
		return client, client, cfg, nil
	}

	snap, err := wiki.NewSnapshot(cfg.SnapshotDir, client)
	if err != nil {
		return nil, nil, cfg, err
	}
	logger.Debug("using wiki snapshot", "dir", cfg.SnapshotDir)
	return client, snap, cfg, nil
}

// loadServants returns the stored roster, falling back to the catalog file.
func loadServants(ctx context.Context, store service.Storage) ([]model.Servant, error) {
	servants, err := store.GetServants(ctx)
	if err != nil {
		return nil, err
	}
	if len(servants) > 0 {
		return servants, nil
	}

	path := config.ExpandPath(catalogPath())
	cat, err := catalog.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, common.NewUserError("no servants known yet; run `almanac servants` first", err)
	}
	if err != nil {
		return nil, err
	}
	return cat.Servants(), nil
}

func catalogPath() string {
	if p := viper.GetString("catalog.path"); p != "" {
		return p
	}
	return defaultCatalogPath
}

func exportDir(flag string) string {
	if flag != "" {
		return config.ExpandPath(flag)
	}
	if d := viper.GetString("export.dir"); d != "" {
		return config.ExpandPath(d)
	}
	return defaultExportDir
}

// parseRegions converts region flags, keeping the canonical processing order.
func parseRegions(values []string) ([]model.Region, error) {
	want := make(map[model.Region]bool, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			r, err := model.ParseRegion(part)
			if err != nil {
				return nil, err
			}
			want[r] = true
		}
	}

	var regions []model.Region
	for _, r := range model.Regions {
		if want[r] {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return nil, errors.New("at least one region is required")
	}
	return regions, nil
}
