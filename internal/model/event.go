package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Region is the game server an event ran on.
type Region string

// Regions.
const (
	RegionJP Region = "JP"
	RegionNA Region = "NA"
)

// Regions lists every known region in processing order.
var Regions = []Region{RegionJP, RegionNA}

// ParseRegion converts a user-supplied region code.
func ParseRegion(s string) (Region, error) {
	switch Region(strings.ToUpper(strings.TrimSpace(s))) {
	case RegionJP:
		return RegionJP, nil
	case RegionNA:
		return RegionNA, nil
	default:
		return "", fmt.Errorf("unknown region %q", s)
	}
}

// Event is a top-level promotion that owns one or more banners.
// Events are identified by name.
type Event struct {
	StartDate time.Time
	EndDate   time.Time
	Name      string
	ImageFile string
	Slug      string
	Region    Region
	Banners   []*Banner
}

// NewEvent creates an event.
func NewEvent(name string, region Region, imageFile string, banners []*Banner) *Event {
	return &Event{
		Name:      name,
		Region:    region,
		ImageFile: imageFile,
		Banners:   banners,
	}
}

// BannerIndex returns the index of the first banner featuring exactly set, or -1.
func (e *Event) BannerIndex(set RateupSet) int {
	for i, b := range e.Banners {
		if b.Rateups.Equal(set) {
			return i
		}
	}
	return -1
}

// SortBanners orders banners by start date, keeping the existing order on ties.
func (e *Event) SortBanners() {
	sort.SliceStable(e.Banners, func(i, j int) bool {
		return e.Banners[i].StartDate.Before(e.Banners[j].StartDate)
	})
}

// UpdateDates sets the event's dates to the span of its banners.
func (e *Event) UpdateDates() {
	var start, end time.Time
	for _, b := range e.Banners {
		if !b.StartDate.IsZero() && (start.IsZero() || b.StartDate.Before(start)) {
			start = b.StartDate
		}
		if !b.EndDate.IsZero() && (end.IsZero() || b.EndDate.After(end)) {
			end = b.EndDate
		}
	}
	e.StartDate = start
	e.EndDate = end
}
