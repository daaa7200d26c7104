package roster_test

import (
	"context"
	"testing"

	"github.com/Veraticus/summon-almanac/internal/testutil"
	"github.com/Veraticus/summon-almanac/internal/testutil/roster"
)

func TestBuilder_WithServants(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b roster.Builder) roster.Builder {
		return b.WithServants(roster.Merlin)
	})

	ctx := context.Background()
	got, err := db.Storage.GetServant(ctx, 150)
	if err != nil {
		t.Fatalf("failed to get servant: %v", err)
	}
	if got.Name != string(roster.Merlin) {
		t.Errorf("expected name %q, got %q", roster.Merlin, got.Name)
	}
	if got.Rarity != 5 {
		t.Errorf("expected rarity 5, got %d", got.Rarity)
	}
}

func TestBuilder_WithFixture(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b roster.Builder) roster.Builder {
		return b.WithFixture(roster.FixtureMinimal).WithServants(roster.Merlin, roster.Mash)
	})

	ctx := context.Background()
	servants, err := db.Storage.GetServants(ctx)
	if err != nil {
		t.Fatalf("failed to get servants: %v", err)
	}

	// Duplicates collapse and the roster is ordered by ID.
	want := []int{1, 2, 12, 150}
	if len(servants) != len(want) {
		t.Fatalf("expected %d servants, got %d", len(want), len(servants))
	}
	for i, id := range want {
		if servants[i].ID != id {
			t.Errorf("servant %d: expected ID %d, got %d", i, id, servants[i].ID)
		}
	}
}

func TestRoster_Find(t *testing.T) {
	r := roster.NewBuilder(t).WithFixture(roster.FixtureLostbelt).Build()

	if r.Find(roster.MorganLeFay) == nil {
		t.Error("expected Morgan in the Lostbelt fixture")
	}
	if r.Find(roster.Mash) != nil {
		t.Error("did not expect Mash in the Lostbelt fixture")
	}
	if got := r.Catalog().Len(); got != len(roster.FixtureLostbelt.Servants()) {
		t.Errorf("expected catalog of %d, got %d", len(roster.FixtureLostbelt.Servants()), got)
	}
}

func TestSet(t *testing.T) {
	set := roster.Set(t, roster.Merlin, roster.Artoria, roster.Merlin)
	if len(set) != 2 {
		t.Fatalf("expected 2 rateups, got %d", len(set))
	}
	if set[0].ID != 2 || set[1].ID != 150 {
		t.Errorf("expected IDs [2 150], got %v", set.IDs())
	}
}
