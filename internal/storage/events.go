package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/summon-almanac/internal/model"
)

// ReplaceRegion swaps a region's stored events for the given ones in a single
// transaction. Event and banner order is preserved.
func (s *SQLiteStorage) ReplaceRegion(ctx context.Context, region model.Region, events []*model.Event) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRegion(region); err != nil {
		return err
	}
	if err := validateEvents(region, events); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteRegionTx(ctx, tx, region); err != nil {
		return err
	}

	for i, e := range events {
		if err := insertEventTx(ctx, tx, i, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit region %s: %w", region, err)
	}
	return nil
}

func deleteRegionTx(ctx context.Context, q queryable, region model.Region) error {
	queries := []string{
		`DELETE FROM banner_rateups WHERE banner_id IN (
			SELECT b.id FROM banners b JOIN events e ON e.id = b.event_id WHERE e.region = ?
		)`,
		`DELETE FROM banners WHERE event_id IN (SELECT id FROM events WHERE region = ?)`,
		`DELETE FROM events WHERE region = ?`,
	}
	for _, query := range queries {
		if _, err := q.ExecContext(ctx, query, string(region)); err != nil {
			return fmt.Errorf("failed to clear region %s: %w", region, err)
		}
	}
	return nil
}

func insertEventTx(ctx context.Context, q queryable, position int, e *model.Event) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO events (region, position, slug, name, image_file, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.Region), position, e.Slug, e.Name, e.ImageFile,
		nullTime(e.StartDate), nullTime(e.EndDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %q: %w", e.Name, err)
	}
	eventID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get event id: %w", err)
	}

	for i, b := range e.Banners {
		result, err := q.ExecContext(ctx, `
			INSERT INTO banners (event_id, position, slug, name, start_date, end_date, date_origin)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			eventID, i, b.Slug, b.Name,
			nullTime(b.StartDate), nullTime(b.EndDate), string(b.DateOrigin),
		)
		if err != nil {
			return fmt.Errorf("failed to insert banner %q: %w", b.Name, err)
		}
		bannerID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get banner id: %w", err)
		}

		for _, r := range b.Rateups {
			_, err := q.ExecContext(ctx,
				`INSERT INTO banner_rateups (banner_id, servant_id, servant_name) VALUES (?, ?, ?)`,
				bannerID, r.ID, r.Name,
			)
			if err != nil {
				return fmt.Errorf("failed to insert rateup %d on %q: %w", r.ID, b.Name, err)
			}
		}
	}
	return nil
}

// GetEvents rebuilds a region's stored events with their banners and rateups.
func (s *SQLiteStorage) GetEvents(ctx context.Context, region model.Region) ([]*model.Event, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRegion(region); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name, image_file, start_date, end_date
		FROM events
		WHERE region = ?
		ORDER BY position`, string(region))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*model.Event
	byID := make(map[int64]*model.Event)
	for rows.Next() {
		var (
			id         int64
			image      sql.NullString
			start, end sql.NullTime
		)
		e := &model.Event{Region: region}
		if err := rows.Scan(&id, &e.Slug, &e.Name, &image, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.ImageFile = image.String
		e.StartDate = fromNullTime(start)
		e.EndDate = fromNullTime(end)
		events = append(events, e)
		byID[id] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	banners, err := s.getBanners(ctx, region, byID)
	if err != nil {
		return nil, err
	}
	if err := s.getRateups(ctx, region, banners); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *SQLiteStorage) getBanners(ctx context.Context, region model.Region, events map[int64]*model.Event) (map[int64]*model.Banner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.event_id, b.slug, b.name, b.start_date, b.end_date, b.date_origin
		FROM banners b
		JOIN events e ON e.id = b.event_id
		WHERE e.region = ?
		ORDER BY b.event_id, b.position`, string(region))
	if err != nil {
		return nil, fmt.Errorf("failed to query banners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	banners := make(map[int64]*model.Banner)
	for rows.Next() {
		var (
			id, eventID int64
			origin      sql.NullString
			start, end  sql.NullTime
		)
		b := &model.Banner{}
		if err := rows.Scan(&id, &eventID, &b.Slug, &b.Name, &start, &end, &origin); err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		b.StartDate = fromNullTime(start)
		b.EndDate = fromNullTime(end)
		b.DateOrigin = model.DateOrigin(origin.String)
		b.MarkNameNormalized()

		e, ok := events[eventID]
		if !ok {
			return nil, fmt.Errorf("banner %d references unknown event %d", id, eventID)
		}
		e.Banners = append(e.Banners, b)
		banners[id] = b
	}
	return banners, rows.Err()
}

func (s *SQLiteStorage) getRateups(ctx context.Context, region model.Region, banners map[int64]*model.Banner) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.banner_id, r.servant_id, r.servant_name
		FROM banner_rateups r
		JOIN banners b ON b.id = r.banner_id
		JOIN events e ON e.id = b.event_id
		WHERE e.region = ?`, string(region))
	if err != nil {
		return fmt.Errorf("failed to query rateups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			bannerID int64
			ref      model.Rateup
		)
		if err := rows.Scan(&bannerID, &ref.ID, &ref.Name); err != nil {
			return fmt.Errorf("failed to scan rateup: %w", err)
		}
		b, ok := banners[bannerID]
		if !ok {
			return fmt.Errorf("rateup references unknown banner %d", bannerID)
		}
		b.Rateups = b.Rateups.Add(ref)
	}
	return rows.Err()
}

// GetAppearances lists every stored banner featuring the servant, across
// regions, ordered by banner start date.
func (s *SQLiteStorage) GetAppearances(ctx context.Context, servantID int) ([]model.Appearance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.region, e.name, e.slug, b.name, b.slug, b.start_date, b.end_date,
			(SELECT COUNT(*) FROM banner_rateups o WHERE o.banner_id = b.id) - 1
		FROM banner_rateups r
		JOIN banners b ON b.id = r.banner_id
		JOIN events e ON e.id = b.event_id
		WHERE r.servant_id = ?
		ORDER BY b.start_date, e.region, e.position, b.position`, servantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query appearances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var appearances []model.Appearance
	for rows.Next() {
		var (
			a          model.Appearance
			region     string
			start, end sql.NullTime
		)
		err := rows.Scan(&region, &a.EventName, &a.EventSlug, &a.BannerName, &a.BannerSlug,
			&start, &end, &a.CoFeatured)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appearance: %w", err)
		}
		a.Region = model.Region(region)
		a.StartDate = fromNullTime(start)
		a.EndDate = fromNullTime(end)
		appearances = append(appearances, a)
	}
	return appearances, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func fromNullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
