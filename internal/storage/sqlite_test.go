package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/testutil/roster"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// createTestEvents builds two finalized JP events.
func createTestEvents(t *testing.T) []*model.Event {
	t.Helper()

	opening := model.NewBanner("Summer Summoning Campaign 1",
		model.DateRange{Start: model.Date(2024, 8, 1), End: model.Date(2024, 8, 15)},
		model.OriginHeaderNew, roster.Set(t, roster.Tamamo, roster.Jeanne))
	opening.Slug = "summer-summoning-campaign-1-jp"
	second := model.NewBanner("Summer Summoning Campaign 2",
		model.DateRange{Start: model.Date(2024, 8, 8), End: model.Date(2024, 8, 22)},
		model.OriginTab, roster.Set(t, roster.Musashi))
	second.Slug = "summer-summoning-campaign-2-jp"

	summer := model.NewEvent("Summer Event", model.RegionJP, "Summer.png",
		[]*model.Banner{opening, second})
	summer.Slug = "summer-event-jp"
	summer.UpdateDates()

	fp := model.NewBanner("Merlin Pickup",
		model.DateRange{Start: model.Date(2024, 9, 1), End: model.Date(2024, 9, 8)},
		model.OriginHeaderOld, roster.Set(t, roster.Merlin, roster.Musashi))
	fp.Slug = "merlin-pickup-jp"
	pickup := model.NewEvent("Merlin Pickup", model.RegionJP, "", []*model.Banner{fp})
	pickup.Slug = "merlin-pickup-jp"
	pickup.UpdateDates()

	return []*model.Event{summer, pickup}
}

func TestSQLiteStorage_SaveServants(t *testing.T) {
	tests := []struct {
		validate func(*testing.T, *SQLiteStorage, context.Context)
		name     string
		servants []model.Servant
		wantErr  bool
	}{
		{
			name:     "save new servants",
			servants: roster.NewBuilder(t).WithFixture(roster.FixtureMinimal).Build(),
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				got, err := s.GetServants(ctx)
				if err != nil {
					t.Fatalf("Failed to get servants: %v", err)
				}
				if len(got) != 3 {
					t.Errorf("Expected 3 servants, got %d", len(got))
				}
			},
		},
		{
			name: "upsert updates existing servant",
			servants: []model.Servant{
				{ID: 150, Name: "Merlin", Rarity: 5, ClassType: "Caster", Aliases: "Flower Guy"},
			},
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				if err := s.SaveServants(ctx, []model.Servant{{ID: 150, Name: "Merlin", Rarity: 5, ClassType: "Caster"}}); err != nil {
					t.Fatalf("Failed to re-save servant: %v", err)
				}
				got, err := s.GetServant(ctx, 150)
				if err != nil {
					t.Fatalf("Failed to get servant: %v", err)
				}
				if got.Aliases != "" {
					t.Errorf("Expected aliases to be cleared, got %q", got.Aliases)
				}
				all, err := s.GetServants(ctx)
				if err != nil {
					t.Fatalf("Failed to get servants: %v", err)
				}
				if len(all) != 1 {
					t.Errorf("Expected 1 servant after upsert, got %d", len(all))
				}
			},
		},
		{
			name:     "empty roster",
			servants: []model.Servant{},
			wantErr:  true,
		},
		{
			name:     "duplicate id",
			servants: []model.Servant{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}},
			wantErr:  true,
		},
		{
			name:     "missing name",
			servants: []model.Servant{{ID: 1}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()

			err := store.SaveServants(ctx, tt.servants)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SaveServants() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.validate != nil {
				tt.validate(t, store, ctx)
			}
		})
	}
}

func TestSQLiteStorage_GetServant(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	r, err := roster.NewBuilder(t).WithFixture(roster.FixtureLostbelt).Save(ctx, store)
	if err != nil {
		t.Fatalf("Failed to seed roster: %v", err)
	}

	morgan := r.MustFind(t, roster.MorganLeFay)
	got, err := store.GetServant(ctx, morgan.ID)
	if err != nil {
		t.Fatalf("GetServant() error = %v", err)
	}
	if *got != morgan {
		t.Errorf("GetServant() = %+v, want %+v", *got, morgan)
	}

	_, err = store.GetServant(ctx, 9999)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetServant(9999) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_ReplaceRegion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	events := createTestEvents(t)
	if err := store.ReplaceRegion(ctx, model.RegionJP, events); err != nil {
		t.Fatalf("ReplaceRegion() error = %v", err)
	}

	got, err := store.GetEvents(ctx, model.RegionJP)
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}

	summer := got[0]
	if summer.Name != "Summer Event" || summer.Slug != "summer-event-jp" || summer.ImageFile != "Summer.png" {
		t.Errorf("Unexpected event metadata: %+v", summer)
	}
	if summer.Region != model.RegionJP {
		t.Errorf("Expected region JP, got %s", summer.Region)
	}
	if !summer.StartDate.Equal(model.Date(2024, 8, 1)) || !summer.EndDate.Equal(model.Date(2024, 8, 22)) {
		t.Errorf("Unexpected event dates: %v - %v", summer.StartDate, summer.EndDate)
	}
	if len(summer.Banners) != 2 {
		t.Fatalf("Expected 2 banners, got %d", len(summer.Banners))
	}

	first := summer.Banners[0]
	if first.Name != "Summer Summoning Campaign 1" || first.DateOrigin != model.OriginHeaderNew {
		t.Errorf("Unexpected banner: %+v", first)
	}
	if !first.Rateups.Equal(roster.Set(t, roster.Jeanne, roster.Tamamo)) {
		t.Errorf("Unexpected rateups: %v", first.Rateups.IDs())
	}
	if first.Rateups[0].Name != string(roster.Jeanne) {
		t.Errorf("Expected rateup names to round-trip, got %q", first.Rateups[0].Name)
	}
	if summer.Banners[1].DateOrigin != model.OriginTab {
		t.Errorf("Expected tab origin, got %s", summer.Banners[1].DateOrigin)
	}
	if got[1].Name != "Merlin Pickup" {
		t.Errorf("Expected second event Merlin Pickup, got %q", got[1].Name)
	}

	// A second harvest replaces the region wholesale.
	if err := store.ReplaceRegion(ctx, model.RegionJP, events[1:]); err != nil {
		t.Fatalf("ReplaceRegion() second call error = %v", err)
	}
	got, err = store.GetEvents(ctx, model.RegionJP)
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Merlin Pickup" {
		t.Errorf("Expected only Merlin Pickup after replace, got %d events", len(got))
	}
}

func TestSQLiteStorage_ReplaceRegion_Isolation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.ReplaceRegion(ctx, model.RegionJP, createTestEvents(t)); err != nil {
		t.Fatalf("ReplaceRegion(JP) error = %v", err)
	}

	na := model.NewEvent("Summer Event", model.RegionNA, "",
		[]*model.Banner{model.NewBanner("Summer Summoning Campaign",
			model.DateRange{Start: model.Date(2026, 7, 1), End: model.Date(2026, 7, 15)},
			model.OriginHeaderNew, roster.Set(t, roster.Tamamo))})
	na.Slug = "summer-event-na"
	if err := store.ReplaceRegion(ctx, model.RegionNA, []*model.Event{na}); err != nil {
		t.Fatalf("ReplaceRegion(NA) error = %v", err)
	}

	jp, err := store.GetEvents(ctx, model.RegionJP)
	if err != nil {
		t.Fatalf("GetEvents(JP) error = %v", err)
	}
	if len(jp) != 2 {
		t.Errorf("Expected JP events untouched, got %d", len(jp))
	}

	// Invalid input leaves the stored region as it was.
	bad := model.NewEvent("Broken", model.RegionNA, "",
		[]*model.Banner{model.NewBanner("Empty", model.DateRange{}, model.OriginInherited, nil)})
	err = store.ReplaceRegion(ctx, model.RegionNA, []*model.Event{bad})
	if !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("ReplaceRegion() error = %v, want ErrInvalidBanner", err)
	}
	naEvents, err := store.GetEvents(ctx, model.RegionNA)
	if err != nil {
		t.Fatalf("GetEvents(NA) error = %v", err)
	}
	if len(naEvents) != 1 || naEvents[0].Name != "Summer Event" {
		t.Errorf("Expected NA events preserved, got %d", len(naEvents))
	}
}

func TestSQLiteStorage_GetEvents_Empty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.GetEvents(context.Background(), model.RegionNA)
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no events, got %d", len(got))
	}

	if _, err := store.GetEvents(context.Background(), model.Region("EU")); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("GetEvents(EU) error = %v, want ErrInvalidRegion", err)
	}
}

func TestSQLiteStorage_GetAppearances(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.ReplaceRegion(ctx, model.RegionJP, createTestEvents(t)); err != nil {
		t.Fatalf("ReplaceRegion() error = %v", err)
	}

	musashi := roster.Servant(t, roster.Musashi)
	got, err := store.GetAppearances(ctx, musashi.ID)
	if err != nil {
		t.Fatalf("GetAppearances() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 appearances, got %d", len(got))
	}

	if got[0].BannerName != "Summer Summoning Campaign 2" || got[0].EventName != "Summer Event" {
		t.Errorf("Unexpected first appearance: %+v", got[0])
	}
	if got[0].CoFeatured != 0 {
		t.Errorf("Expected solo banner, got %d co-featured", got[0].CoFeatured)
	}
	if got[1].BannerSlug != "merlin-pickup-jp" || got[1].CoFeatured != 1 {
		t.Errorf("Unexpected second appearance: %+v", got[1])
	}
	if !got[1].StartDate.Equal(model.Date(2024, 9, 1)) {
		t.Errorf("Expected start 2024-09-01, got %v", got[1].StartDate)
	}

	none, err := store.GetAppearances(ctx, roster.Servant(t, roster.Mash).ID)
	if err != nil {
		t.Fatalf("GetAppearances() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no appearances, got %d", len(none))
	}
}

func TestSQLiteStorage_HarvestRuns(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetLatestRun(ctx, model.RegionJP)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("GetLatestRun() on empty db error = %v, want ErrNotFound", err)
	}

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	runs := []*model.HarvestRun{
		{Region: model.RegionJP, StartedAt: base, FinishedAt: base.Add(time.Minute), Events: 10, Banners: 20, RulesDigest: "aaa"},
		{Region: model.RegionJP, StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Minute), Events: 11, Banners: 22, RulesDigest: "bbb"},
		{Region: model.RegionNA, StartedAt: base.Add(2 * time.Hour), FinishedAt: base.Add(3 * time.Hour), Events: 5, Banners: 7},
	}
	for _, run := range runs {
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
		if run.ID == 0 {
			t.Error("Expected RecordRun to assign an ID")
		}
	}

	latest, err := store.GetLatestRun(ctx, model.RegionJP)
	if err != nil {
		t.Fatalf("GetLatestRun() error = %v", err)
	}
	if latest.ID != runs[1].ID || latest.Events != 11 || latest.Banners != 22 || latest.RulesDigest != "bbb" {
		t.Errorf("Unexpected latest run: %+v", latest)
	}
	if !latest.FinishedAt.Equal(runs[1].FinishedAt) {
		t.Errorf("Expected finished at %v, got %v", runs[1].FinishedAt, latest.FinishedAt)
	}

	bad := &model.HarvestRun{Region: model.RegionJP, StartedAt: base, FinishedAt: base.Add(-time.Minute)}
	if err := store.RecordRun(ctx, bad); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("RecordRun() error = %v, want ErrInvalidDateRange", err)
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStorage("  "); !errors.Is(err, ErrEmptyString) {
		t.Errorf("NewSQLiteStorage() error = %v, want ErrEmptyString", err)
	}
}
