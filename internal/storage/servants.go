package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/model"
)

const servantColumns = `id, name, jp_name, aliases, voice_actor, illustrator,
	class_type, attribute, gender, alignment, traits, rarity`

// SaveServants upserts the roster.
func (s *SQLiteStorage) SaveServants(ctx context.Context, servants []model.Servant) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateServants(servants); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO servants (`+servantColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			jp_name = excluded.jp_name,
			aliases = excluded.aliases,
			voice_actor = excluded.voice_actor,
			illustrator = excluded.illustrator,
			class_type = excluded.class_type,
			attribute = excluded.attribute,
			gender = excluded.gender,
			alignment = excluded.alignment,
			traits = excluded.traits,
			rarity = excluded.rarity,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, sv := range servants {
		_, err := stmt.ExecContext(ctx,
			sv.ID, sv.Name, sv.JPName, sv.Aliases, sv.VoiceActor, sv.Illustrator,
			sv.ClassType, sv.Attribute, sv.Gender, sv.Alignment, sv.Traits, sv.Rarity,
		)
		if err != nil {
			return fmt.Errorf("failed to save servant %d: %w", sv.ID, err)
		}
	}

	return tx.Commit()
}

// GetServants returns the whole roster ordered by ID.
func (s *SQLiteStorage) GetServants(ctx context.Context) ([]model.Servant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+servantColumns+` FROM servants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query servants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var servants []model.Servant
	for rows.Next() {
		sv, err := scanServant(rows)
		if err != nil {
			return nil, err
		}
		servants = append(servants, sv)
	}
	return servants, rows.Err()
}

// GetServant returns one servant by ID.
func (s *SQLiteStorage) GetServant(ctx context.Context, id int) (*model.Servant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+servantColumns+` FROM servants WHERE id = ?`, id)
	sv, err := scanServant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("servant %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanServant(row scanner) (model.Servant, error) {
	var (
		sv                                                  model.Servant
		jpName, aliases, voiceActor, illustrator, classType sql.NullString
		attribute, gender, alignment, traits                sql.NullString
	)
	err := row.Scan(&sv.ID, &sv.Name, &jpName, &aliases, &voiceActor, &illustrator,
		&classType, &attribute, &gender, &alignment, &traits, &sv.Rarity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sv, err
		}
		return sv, fmt.Errorf("failed to scan servant: %w", err)
	}
	sv.JPName = jpName.String
	sv.Aliases = aliases.String
	sv.VoiceActor = voiceActor.String
	sv.Illustrator = illustrator.String
	sv.ClassType = classType.String
	sv.Attribute = attribute.String
	sv.Gender = gender.String
	sv.Alignment = alignment.String
	sv.Traits = traits.String
	return sv, nil
}
