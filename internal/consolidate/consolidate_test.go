package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/summon-almanac/internal/model"
)

func set(ids ...int) model.RateupSet {
	var s model.RateupSet
	for _, id := range ids {
		s = s.Add(model.Rateup{ID: id, Name: "S"})
	}
	return s
}

func banner(name string, day int, ids ...int) *model.Banner {
	d := model.Date(2020, 1, day)
	return model.NewBanner(name, model.DateRange{Start: d, End: d}, model.OriginInherited, set(ids...))
}

func event(name string, banners ...*model.Banner) *model.Event {
	return model.NewEvent(name, model.RegionNA, "", banners)
}

func TestStore_Basics(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("A"))
	s.Put(event("B"))
	s.Put(event("C"))

	replacement := event("A", banner("x", 1, 1))
	s.Put(replacement)
	assert.Equal(t, []string{"A", "B", "C"}, s.Names(), "upsert keeps position")
	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	last, ok := s.FromEnd(1)
	require.True(t, ok)
	assert.Equal(t, "C", last.Name)
	_, ok = s.FromEnd(4)
	assert.False(t, ok)

	assert.True(t, s.Delete("B"))
	assert.False(t, s.Delete("B"))
	assert.Equal(t, []string{"A", "C"}, s.Names())
	assert.Equal(t, model.RegionNA, s.Region())
}

func TestStore_Rename(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("Foo"))
	s.Put(event("Bar (US)"))
	s.Put(event("Foo (US)", banner("later", 1, 1)))

	s.Rename("Bar (US)", "Bar")
	assert.Equal(t, []string{"Foo", "Bar", "Foo (US)"}, s.Names())

	s.Rename("Foo (US)", "Foo")
	assert.Equal(t, []string{"Foo", "Bar"}, s.Names())
	foo, _ := s.Get("Foo")
	require.Len(t, foo.Banners, 1)
	assert.Equal(t, "later", foo.Banners[0].Name)
}

func TestBackwardAbsorb(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("Old", banner("Old Banner", 1, 9)))
	s.Put(event("Pre Campaign", banner("Pre Banner", 2, 1, 2)))
	s.Put(event("Main", banner("Main Banner", 3, 1, 2), banner("Other", 4, 3)))

	s.BackwardAbsorb()

	assert.Equal(t, []string{"Old", "Main"}, s.Names())
	main, _ := s.Get("Main")
	assert.Equal(t, "Pre Banner", main.Banners[0].Name)
	assert.Equal(t, model.Date(2020, 1, 2), main.Banners[0].StartDate)
	assert.Equal(t, "Other", main.Banners[1].Name)
}

func TestForwardAbsorb(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("Main", banner("Main Banner", 1, 1, 2)))
	s.Put(event("Unrelated", banner("U", 2, 5)))
	s.Put(event("Main Summoning Campaign", banner("Main Summoning Campaign", 3, 1, 2)))

	require.True(t, s.ForwardAbsorb())
	assert.Equal(t, []string{"Main", "Unrelated"}, s.Names())
	main, _ := s.Get("Main")
	assert.Equal(t, "Main Summoning Campaign", main.Banners[0].Name)
	assert.Equal(t, model.Date(2020, 1, 3), main.Banners[0].StartDate)

	s.Put(event("Fresh", banner("F", 4, 7)))
	assert.False(t, s.ForwardAbsorb())
	assert.Equal(t, 3, s.Len())
}

func TestWindowIsThreeDeep(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("Far", banner("Far", 1, 1)))
	s.Put(event("B", banner("B", 2, 2)))
	s.Put(event("C", banner("C", 3, 3)))
	s.Put(event("D", banner("D", 4, 4)))
	s.Put(event("Latest", banner("Latest", 5, 1)))

	assert.False(t, s.ForwardAbsorb(), "a duplicate four events back is out of reach")
	s.BackwardAbsorb()
	assert.Equal(t, 5, s.Len())
}

func TestWindowOnShortStore(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.BackwardAbsorb()
	assert.False(t, s.ForwardAbsorb())

	s.Put(event("A", banner("A", 1, 1)))
	s.Put(event("B", banner("B", 2, 1)))
	assert.True(t, s.ForwardAbsorb())
	assert.Equal(t, []string{"A"}, s.Names())
}

func TestMergePreRelease(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("Lostbelt 6 Pre-Release Campaign (US)", banner("Pre", 1, 1)))
	s.Put(event("Other", banner("O", 2, 2)))
	s.Put(event("Lostbelt 6 (US)", banner("Main", 3, 3)))

	s.MergePreRelease(" (US)")

	assert.Equal(t, []string{"Other", "Lostbelt 6 (US)"}, s.Names())
	main, _ := s.Get("Lostbelt 6 (US)")
	require.Len(t, main.Banners, 2)
	assert.Equal(t, "Pre", main.Banners[1].Name)
}

func TestAttachBanners(t *testing.T) {
	target := event("Fest", banner("Fest", 1, 4), banner("Fest Extra", 1, 5, 6))

	AttachBanners(target, []*model.Banner{
		banner("Fest Summoning Campaign", 3, 4),
		banner("Fest Summoning Campaign", 3, 7),
	})

	require.Len(t, target.Banners, 3)
	assert.Equal(t, "Fest Summoning Campaign", target.Banners[0].Name)
	assert.Equal(t, model.Date(2020, 1, 3), target.Banners[0].StartDate)
	assert.Equal(t, "Fest Extra", target.Banners[1].Name)
	assert.Equal(t, []int{7}, target.Banners[2].Rateups.IDs())

	for i := range target.Banners {
		for j := i + 1; j < len(target.Banners); j++ {
			assert.False(t, target.Banners[i].Rateups.Equal(target.Banners[j].Rateups),
				"banners %d and %d share rateups", i, j)
		}
	}
}

func TestMergePreRelease_SharedRateups(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("Lostbelt 6 Pre-Release Campaign (US)", banner("Pre", 1, 1), banner("Pre 2", 1, 2)))
	s.Put(event("Other", banner("O", 2, 3)))
	s.Put(event("Lostbelt 6 (US)", banner("Main", 3, 1)))

	s.MergePreRelease(" (US)")

	main, _ := s.Get("Lostbelt 6 (US)")
	require.Len(t, main.Banners, 2)
	assert.Equal(t, "Pre", main.Banners[0].Name)
	assert.Equal(t, []int{2}, main.Banners[1].Rateups.IDs())
}

func TestMergePreRelease_RequiresMarker(t *testing.T) {
	s := NewStore(model.RegionNA)
	s.Put(event("Foo", banner("A", 1, 1)))
	s.Put(event("Foo (US)", banner("B", 2, 2)))

	s.MergePreRelease(" (US)")
	assert.Equal(t, 2, s.Len())
}

func TestChapterRelease(t *testing.T) {
	assert.True(t, IsChapterReleaseCampaign("Lostbelt 5 Summoning Campaign 2"))
	assert.False(t, IsChapterReleaseCampaign("Lostbelt 5 Chapter Release"))

	s := NewStore(model.RegionNA)
	s.Put(event("Lostbelt 5 Chapter Release", banner("Bare", 1, 1)))
	s.Put(event("Lostbelt 5 Chapter Release (US)", banner("Launch", 1, 1, 2)))

	target, ok := s.ChapterReleaseTarget("Lostbelt 5 Summoning Campaign 2", " (US)")
	require.True(t, ok)
	assert.Equal(t, "Lostbelt 5 Chapter Release (US)", target.Name)

	AttachBanners(target, []*model.Banner{
		banner("Lostbelt 5 Summoning Campaign 2", 9, 1, 2),
		banner("Lostbelt 5 Summoning Campaign 2", 9, 7),
	})
	require.Len(t, target.Banners, 2)
	assert.Equal(t, "Lostbelt 5 Summoning Campaign 2", target.Banners[0].Name)
	assert.Equal(t, model.Date(2020, 1, 9), target.Banners[0].StartDate)
	assert.Equal(t, []int{7}, target.Banners[1].Rateups.IDs())

	bare, ok := s.ChapterReleaseTarget("Lostbelt 5 Summoning Campaign", "")
	require.True(t, ok)
	assert.Equal(t, "Lostbelt 5 Chapter Release", bare.Name)

	_, ok = s.ChapterReleaseTarget("Lostbelt 9 Summoning Campaign", " (US)")
	assert.False(t, ok)
	_, ok = s.ChapterReleaseTarget("Not A Campaign", " (US)")
	assert.False(t, ok)
}
