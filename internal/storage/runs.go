package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/model"
)

// RecordRun stores a finished harvest and sets run.ID.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *model.HarvestRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO harvest_runs (region, started_at, finished_at, events, banners, rules_digest)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(run.Region), run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Events, run.Banners, run.RulesDigest,
	)
	if err != nil {
		return fmt.Errorf("failed to record harvest run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}
	run.ID = id
	return nil
}

// GetLatestRun returns the most recently finished harvest of a region.
func (s *SQLiteStorage) GetLatestRun(ctx context.Context, region model.Region) (*model.HarvestRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRegion(region); err != nil {
		return nil, err
	}

	var (
		run    model.HarvestRun
		digest sql.NullString
		name   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, region, started_at, finished_at, events, banners, rules_digest
		FROM harvest_runs
		WHERE region = ?
		ORDER BY finished_at DESC, id DESC
		LIMIT 1`, string(region)).Scan(
		&run.ID, &name, &run.StartedAt, &run.FinishedAt, &run.Events, &run.Banners, &digest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("harvest run for %s: %w", region, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query harvest run: %w", err)
	}

	run.Region = model.Region(name)
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	run.RulesDigest = digest.String
	return &run, nil
}
