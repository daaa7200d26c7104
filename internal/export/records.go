// Package export writes finalized stores as the JSON files consumed by the
// almanac site.
package export

import (
	"strings"
	"time"

	"github.com/Veraticus/summon-almanac/internal/consolidate"
	"github.com/Veraticus/summon-almanac/internal/model"
)

// DebugBanner is one banner in the per-region debug dump.
type DebugBanner struct {
	Name       string           `json:"name"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	DateOrigin model.DateOrigin `json:"date_origin"`
	Rateups    model.RateupSet  `json:"rateups"`
	NumRateups int              `json:"num_rateups"`
}

// DebugEvent is one event in the per-region debug dump.
type DebugEvent struct {
	Name      string        `json:"name"`
	Region    model.Region  `json:"region"`
	ImageFile string        `json:"image_file"`
	Banners   []DebugBanner `json:"banners"`
}

// EventRecord is one entry of event_data.json.
type EventRecord struct {
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Slug      string       `json:"slug"`
	Name      string       `json:"name"`
	Region    model.Region `json:"region"`
	ImageFile string       `json:"image_file"`
}

// BannerRecord is one entry of banner_data.json.
type BannerRecord struct {
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Region    model.Region    `json:"region"`
	Rateups   model.RateupSet `json:"rateups"`
	EventID   string          `json:"event_id"`
}

// ServantRecord is one entry of servant_data.json. The rateup fields are
// comma-joined banner slugs in banner order.
type ServantRecord struct {
	Name      string `json:"name"`
	ClassType string `json:"class_type"`
	JPRateups string `json:"jp_rateups"`
	NARateups string `json:"na_rateups"`
	IDNum     int    `json:"id_num"`
	Rarity    int    `json:"rarity"`
}

// DebugEvents builds the debug dump of one store.
func DebugEvents(s *consolidate.Store) []DebugEvent {
	events := s.Events()
	out := make([]DebugEvent, 0, len(events))
	for _, e := range events {
		de := DebugEvent{
			Name:      e.Name,
			Region:    e.Region,
			ImageFile: e.ImageFile,
			Banners:   make([]DebugBanner, 0, len(e.Banners)),
		}
		for _, b := range e.Banners {
			de.Banners = append(de.Banners, DebugBanner{
				Name:       b.Name,
				StartDate:  b.StartDate.Format(model.DebugDateFormat),
				EndDate:    b.EndDate.Format(model.DebugDateFormat),
				DateOrigin: b.DateOrigin,
				Rateups:    b.Rateups,
				NumRateups: len(b.Rateups),
			})
		}
		out = append(out, de)
	}
	return out
}

// EventRecords lists every event of the stores in order.
func EventRecords(stores ...*consolidate.Store) []EventRecord {
	var out []EventRecord
	for _, s := range stores {
		for _, e := range s.Events() {
			out = append(out, EventRecord{
				Slug:      e.Slug,
				Name:      e.Name,
				Region:    e.Region,
				StartDate: e.StartDate,
				EndDate:   e.EndDate,
				ImageFile: e.ImageFile,
			})
		}
	}
	return out
}

// BannerRecords lists every banner of the stores in order.
func BannerRecords(stores ...*consolidate.Store) []BannerRecord {
	var out []BannerRecord
	for _, s := range stores {
		for _, e := range s.Events() {
			for _, b := range e.Banners {
				out = append(out, BannerRecord{
					Slug:      b.Slug,
					Name:      b.Name,
					StartDate: b.StartDate,
					EndDate:   b.EndDate,
					Region:    e.Region,
					Rateups:   b.Rateups,
					EventID:   e.Slug,
				})
			}
		}
	}
	return out
}

// ServantRecords joins the roster with the banners each servant was featured
// on. Servants keep the roster's order.
func ServantRecords(servants []model.Servant, stores ...*consolidate.Store) []ServantRecord {
	slugs := map[model.Region]map[int][]string{}
	for _, s := range stores {
		byID := slugs[s.Region()]
		if byID == nil {
			byID = make(map[int][]string)
			slugs[s.Region()] = byID
		}
		for _, e := range s.Events() {
			for _, b := range e.Banners {
				for _, id := range b.Rateups.IDs() {
					byID[id] = append(byID[id], b.Slug)
				}
			}
		}
	}

	out := make([]ServantRecord, 0, len(servants))
	for _, sv := range servants {
		out = append(out, ServantRecord{
			IDNum:     sv.ID,
			Name:      sv.Name,
			Rarity:    sv.Rarity,
			ClassType: sv.ClassType,
			JPRateups: strings.Join(slugs[model.RegionJP][sv.ID], ","),
			NARateups: strings.Join(slugs[model.RegionNA][sv.ID], ","),
		})
	}
	return out
}
