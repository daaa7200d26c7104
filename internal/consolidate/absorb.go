package consolidate

import (
	"strings"

	"github.com/Veraticus/summon-almanac/internal/model"
)

const (
	// Window bounds: the passes look at the 2nd- to 4th-most-recent events.
	windowFirst = 2
	windowLast  = 4

	preReleaseMarker     = "Pre-Release"
	summoningMarker      = "Summoning Campaign"
	chapterReleaseSuffix = " Chapter Release"
)

// window returns the trailing events the passes inspect, nearest first.
// It stops at the first offset past the start of the store.
func (s *Store) window() []*model.Event {
	var out []*model.Event
	for k := windowFirst; k <= windowLast; k++ {
		e, ok := s.FromEnd(k)
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// BackwardAbsorb folds recent events whose rateups reappear in the latest
// event into it. The latest banner takes the earlier banner's name and dates
// and the earlier event is dropped.
func (s *Store) BackwardAbsorb() {
	last, ok := s.Last()
	if !ok {
		return
	}
	for _, prev := range s.window() {
		absorbed := false
		for _, b := range prev.Banners {
			if dest := last.BannerIndex(b.Rateups); dest >= 0 {
				src := prev.BannerIndex(b.Rateups)
				last.Banners[dest].CopyMetadata(prev.Banners[src])
				absorbed = true
			}
		}
		if absorbed {
			s.Delete(prev.Name)
		}
	}
}

// ForwardAbsorb drops the latest event when its rateups already exist in a
// recent event, handing its banner names and dates to the matching banners.
// It reports whether the latest event was dropped.
func (s *Store) ForwardAbsorb() bool {
	last, ok := s.Last()
	if !ok {
		return false
	}
	absorbed := false
	for _, prev := range s.window() {
		for _, b := range last.Banners {
			if dest := prev.BannerIndex(b.Rateups); dest >= 0 {
				src := last.BannerIndex(b.Rateups)
				prev.Banners[dest].CopyMetadata(last.Banners[src])
				absorbed = true
			}
		}
	}
	if absorbed {
		s.Delete(last.Name)
	}
	return absorbed
}

// MergePreRelease moves the banners of a recent "X Pre-Release ..." event
// into the latest event when the latest event is X, with or without suffix.
func (s *Store) MergePreRelease(suffix string) {
	last, ok := s.Last()
	if !ok {
		return
	}
	for _, prev := range s.window() {
		parent, _, found := strings.Cut(prev.Name, preReleaseMarker)
		if !found {
			continue
		}
		parent = strings.TrimSpace(parent)
		if parent == last.Name || parent+suffix == last.Name {
			AttachBanners(last, prev.Banners)
			s.Delete(prev.Name)
		}
	}
}

// IsChapterReleaseCampaign reports whether title names a follow-up summoning
// campaign that may belong to a chapter release event.
func IsChapterReleaseCampaign(title string) bool {
	return strings.Contains(title, summoningMarker)
}

// ChapterReleaseTarget finds the chapter release event a follow-up campaign
// belongs to, preferring the region-suffixed name.
func (s *Store) ChapterReleaseTarget(title, suffix string) (*model.Event, bool) {
	if !IsChapterReleaseCampaign(title) {
		return nil, false
	}
	prefix, _, _ := strings.Cut(title, summoningMarker)
	target := strings.TrimSpace(prefix) + chapterReleaseSuffix
	if suffix != "" {
		if e, ok := s.Get(target + suffix); ok {
			return e, true
		}
	}
	return s.Get(target)
}

// AttachBanners files banners under target. A banner whose rateups target
// already features hands its name and dates to that banner; the rest are
// appended, so an event never holds the same rateups twice.
func AttachBanners(target *model.Event, banners []*model.Banner) {
	for _, b := range banners {
		if dest := target.BannerIndex(b.Rateups); dest >= 0 {
			target.Banners[dest].CopyMetadata(b)
			continue
		}
		target.Banners = append(target.Banners, b)
	}
}
