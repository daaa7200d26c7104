package finalize

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/summon-almanac/internal/consolidate"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
)

func banner(name string, day int, ids ...int) *model.Banner {
	var set model.RateupSet
	for _, id := range ids {
		set = set.Add(model.Rateup{ID: id, Name: fmt.Sprintf("Servant %d", id)})
	}
	d := model.Date(2024, 3, day)
	return model.NewBanner(name, model.DateRange{Start: d, End: d.AddDate(0, 0, 7)}, model.OriginHeaderNew, set)
}

func store(region model.Region, events ...*model.Event) *consolidate.Store {
	s := consolidate.NewStore(region)
	for _, e := range events {
		e.Region = region
		s.Put(e)
	}
	return s
}

func event(name string, banners ...*model.Banner) *model.Event {
	return model.NewEvent(name, "", name+".png", banners)
}

func bannerNames(e *model.Event) []string {
	out := make([]string, len(e.Banners))
	for i, b := range e.Banners {
		out[i] = b.Name
	}
	return out
}

func newFinalizer(t *testing.T, mutate func(*rules.Set)) *Finalizer {
	t.Helper()
	set := &rules.Set{
		RegionSuffix: " (US)",
		Regions:      map[model.Region]rules.RegionRules{},
	}
	if mutate != nil {
		mutate(set)
	}
	f, err := New(set, nil)
	require.NoError(t, err)
	return f
}

// describe flattens stores into comparable lines.
func describe(stores ...*consolidate.Store) []string {
	var out []string
	for _, s := range stores {
		for _, e := range s.Events() {
			out = append(out, fmt.Sprintf("%s %s %s %s %s",
				e.Slug, e.Name, e.Region, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02")))
			for _, b := range e.Banners {
				out = append(out, fmt.Sprintf("  %s %s %s %s %v",
					b.Slug, b.Name, b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"), b.Rateups.IDs()))
			}
		}
	}
	return out
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Summer 2024-JP", "summer-2024-jp"},
		{"Götterdämmerung Chapter Release-JP", "gotterdammerung-chapter-release-jp"},
		{"Fate/Grand Order ～7th Anniversary～-JP", "fategrand-order-7th-anniversary-jp"},
		{"EMIYA (Alter) Pick Up-NA", "emiya-alter-pick-up-na"},
		{"  --Hello__World--  ", "hello__world"},
		{"Nero Fest: 2018 -- Return", "nero-fest-2018-return"},
		{"Baobhan Sìth", "baobhan-sith"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestFinalize_SuffixAndCollision(t *testing.T) {
	f := newFinalizer(t, nil)
	na := store(model.RegionNA,
		event("Alpha", banner("Alpha", 1, 1)),
		event("Beta (US)", banner("Beta (US) Summoning Campaign", 2, 2)),
		event("Alpha (US)", banner("Alpha (US) Summoning Campaign", 3, 3)),
	)

	f.Finalize(na)

	assert.Equal(t, []string{"Alpha", "Beta"}, na.Names())
	alpha, _ := na.Get("Alpha")
	assert.Equal(t, []string{"Alpha Summoning Campaign"}, bannerNames(alpha))
	beta, _ := na.Get("Beta")
	assert.Equal(t, "beta-na", beta.Slug)
	assert.Equal(t, "beta-summoning-campaign-na", beta.Banners[0].Slug)
}

func TestFinalize_JPKeepsSuffix(t *testing.T) {
	f := newFinalizer(t, nil)
	jp := store(model.RegionJP, event("Odd (US) Name", banner("Odd (US) Name", 1, 1)))

	f.Finalize(jp)
	assert.Equal(t, []string{"Odd (US) Name"}, jp.Names())
}

func TestFinalize_PruneAndMerge(t *testing.T) {
	f := newFinalizer(t, func(s *rules.Set) {
		s.Regions[model.RegionJP] = rules.RegionRules{
			MergeEvents: []rules.EventMerge{
				{Source: "Countdown", Destination: "Anniversary"},
				{Source: "Gone", Destination: "Lonely"},
				{Source: "Orphan", Destination: "Nowhere"},
			},
		}
	})
	jp := store(model.RegionJP,
		event("Empty"),
		event("Anniversary"),
		event("Lonely"),
		event("Orphan", banner("Orphan", 1, 9)),
		event("Countdown", banner("Countdown Late", 20, 1), banner("Countdown Early", 5, 2)),
	)

	f.Finalize(jp)

	assert.Equal(t, []string{"Anniversary", "Orphan"}, jp.Names())
	anniv, _ := jp.Get("Anniversary")
	assert.Equal(t, []string{"Countdown Early", "Countdown Late"}, bannerNames(anniv), "banners sorted by start date")
	assert.Equal(t, model.Date(2024, 3, 5), anniv.StartDate)
	assert.Equal(t, model.Date(2024, 3, 27), anniv.EndDate)
}

func TestNormalizeNames(t *testing.T) {
	set, err := rules.Default()
	require.NoError(t, err)
	f, err := New(set, nil)
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"Foo Summoning", "Foo Summoning Campaign"},
		{"Foo Part I Summoning Campaign", "Foo Summoning Campaign 1"},
		{"Improvements Campaign Part I Summoning Campaign", "Improvements Campaign Part I Summoning Campaign"},
		{"Foo Summoning Campaign II", "Foo Summoning Campaign 2"},
		{"Foo Summon Campaign", "Foo Summoning Campaign"},
		{"Foo Saint Quartz Summon", "Foo Summoning Campaign"},
		{"Foo Campaign", "Foo Summoning Campaign"},
		{"Foo Pick Up", "Foo Pick Up"},
		{"Foo |-| Summoning Campaign", "Foo  Summoning Campaign"},
		{"White Day 2022 Summoning Campaign", "Chaldea Boys Collection 2022 / White Day 2022 Summoning Campaign"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b := banner(tt.in, 1, 1)
			f.applyNameFixes([]*model.Banner{b})
			assert.Equal(t, tt.want, b.Name)
		})
	}
}

func TestNormalizeNames_Skip(t *testing.T) {
	set, err := rules.Default()
	require.NoError(t, err)
	f, err := New(set, nil)
	require.NoError(t, err)

	e := event("Grand Duel",
		banner("Grand Duel Pick Up", 1, 1),
		banner("Grand Duel Saber Summoning Campaign", 2, 2),
		banner("Grand Duel Saber Summoning Campaign", 3, 3),
	)
	f.applyNameFixes(e.Banners)
	assert.Equal(t, []string{
		"Grand Duel Pick Up",
		"Grand Duel Saber Summoning Campaign",
		"Artoria Pendragon (Lily) Friend Point Summoning Campaign",
	}, bannerNames(e))
}

func TestNumberCampaigns(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "first campaign gets numbered",
			in:   []string{"X Summoning Campaign", "X Summoning Campaign 2"},
			want: []string{"X Summoning Campaign 1", "X Summoning Campaign 2"},
		},
		{
			name: "lone first campaign loses its number",
			in:   []string{"X Summoning Campaign 1", "Y Pick Up"},
			want: []string{"X Summoning Campaign", "Y Pick Up"},
		},
		{
			name: "complete numbering untouched",
			in:   []string{"X Summoning Campaign 1", "X Summoning Campaign 2"},
			want: []string{"X Summoning Campaign 1", "X Summoning Campaign 2"},
		},
		{
			name: "different prefix untouched",
			in:   []string{"Y Summoning Campaign", "X Summoning Campaign 2"},
			want: []string{"Y Summoning Campaign", "X Summoning Campaign 2"},
		},
		{
			name: "nearest sibling wins",
			in:   []string{"X Summoning Campaign", "Y Pick Up", "X Summoning Campaign", "X Summoning Campaign 2"},
			want: []string{"X Summoning Campaign", "Y Pick Up", "X Summoning Campaign 1", "X Summoning Campaign 2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := event("E")
			for i, n := range tt.in {
				e.Banners = append(e.Banners, banner(n, i+1, i+1))
			}
			numberCampaigns(e.Banners, func(*model.Banner) bool { return true })
			assert.Equal(t, tt.want, bannerNames(e))
		})
	}
}

func TestFinalize_RenamesAndDateFixes(t *testing.T) {
	f := newFinalizer(t, func(s *rules.Set) {
		s.Regions[model.RegionJP] = rules.RegionRules{
			BannerRenames: []rules.BannerRename{
				{Event: "Fest", Banner: "Fest Pick Up", Name: "Fest Guaranteed Pick Up"},
			},
			DateFixes: []rules.DateFix{
				{Event: "Fest", Banner: "Fest Late", Start: "2024-03-01", End: "2024-04-30"},
				{Event: "Nope", Banner: "Nope", Start: "2024-01-01"},
			},
		}
	})
	jp := store(model.RegionJP, event("Fest",
		banner("Fest Pick Up", 2, 1),
		banner("Fest Late", 10, 2),
	))

	f.Finalize(jp)

	fest, _ := jp.Get("Fest")
	assert.Equal(t, []string{"Fest Late", "Fest Guaranteed Pick Up"}, bannerNames(fest))
	assert.Equal(t, model.Date(2024, 3, 1), fest.StartDate)
	assert.Equal(t, model.Date(2024, 4, 30), fest.EndDate)
}

func TestFinalize_SlugsUniqueAcrossStores(t *testing.T) {
	f := newFinalizer(t, nil)
	jp := store(model.RegionJP,
		event("Summer", banner("Summer Summoning Campaign", 1, 1), banner("Summer Summoning Campaign", 2, 2)),
	)
	na := store(model.RegionNA,
		event("Summer (US)", banner("Summer (US) Summoning Campaign", 1, 1)),
	)

	f.Finalize(jp, na)

	jpSummer, _ := jp.Get("Summer")
	naSummer, _ := na.Get("Summer")
	assert.Equal(t, "summer-jp", jpSummer.Slug)
	assert.Equal(t, "summer-na", naSummer.Slug)
	assert.Equal(t, "summer-summoning-campaign-jp", jpSummer.Banners[0].Slug)
	assert.Equal(t, "summer-summoning-campaign-jp-1", jpSummer.Banners[1].Slug)
	assert.Equal(t, "summer-summoning-campaign-na", naSummer.Banners[0].Slug)
}

func TestFinalize_Idempotent(t *testing.T) {
	set, err := rules.Default()
	require.NoError(t, err)
	set.Regions[model.RegionNA] = rules.RegionRules{
		MergeEvents:   []rules.EventMerge{{Source: "Prelude", Destination: "Main Event"}},
		BannerRenames: []rules.BannerRename{
			{Event: "Main Event", Banner: "Main Event Summoning Campaign 2", Name: "Main Event Encore Campaign"},
			{Event: "Fest", Banner: "Fest Pick Up", Name: "Fest Special"},
		},
	}
	f, err := New(set, nil)
	require.NoError(t, err)

	jp := store(model.RegionJP,
		event("Lostbelt", banner("Lostbelt Campaign", 1, 1), banner("Lostbelt Part II Summoning Campaign", 4, 2)),
		event("Empty"),
	)
	na := store(model.RegionNA,
		event("Prelude (US)", banner("Prelude (US) Summon Campaign", 1, 5)),
		event("Main Event (US)",
			banner("Main Event (US) Summoning Campaign", 3, 3),
			banner("Main Event (US) Summoning Campaign 2", 6, 4)),
		event("Fest (US)",
			banner("Fest (US) Pick Up", 8, 6),
			banner("Fest (US) Pick Up", 9, 7)),
	)

	f.Finalize(jp, na)
	first := describe(jp, na)
	f.Finalize(jp, na)
	second := describe(jp, na)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run changed output (-first +second):\n%s", diff)
	}

	main, ok := na.Get("Main Event")
	require.True(t, ok)
	assert.Equal(t, []string{
		"Prelude Summoning Campaign",
		"Main Event Summoning Campaign 1",
		"Main Event Encore Campaign",
	}, bannerNames(main))

	fest, ok := na.Get("Fest")
	require.True(t, ok)
	assert.Equal(t, []string{"Fest Special", "Fest Pick Up"}, bannerNames(fest))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&rules.Set{Finalize: rules.FinalizeRules{NameFixes: []rules.NameFix{{Pattern: "(?<!"}}}}, nil)
	assert.Error(t, err)

	_, err = New(&rules.Set{Regions: map[model.Region]rules.RegionRules{
		model.RegionNA: {DateFixes: []rules.DateFix{{Event: "E", Banner: "B", Start: "March 1"}}},
	}}, nil)
	assert.Error(t, err)
}
