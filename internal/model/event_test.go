package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDateRange(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "ordinary range",
			start:     Date(2020, time.March, 1),
			end:       Date(2020, time.March, 10),
			wantStart: Date(2020, time.March, 1),
			wantEnd:   Date(2020, time.March, 10),
		},
		{
			name:      "missing end",
			start:     Date(2020, time.March, 1),
			wantStart: Date(2020, time.March, 1),
			wantEnd:   Date(2020, time.March, 1),
		},
		{
			name:      "end before start rolls into next year",
			start:     Date(2020, time.December, 28),
			end:       Date(2020, time.January, 5),
			wantStart: Date(2020, time.December, 28),
			wantEnd:   Date(2021, time.January, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDateRange(tt.start, tt.end)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, tt.wantEnd, r.End)
		})
	}
}

func TestEvent_UpdateDatesAndSort(t *testing.T) {
	late := NewBanner("Late", NewDateRange(Date(2021, time.May, 10), Date(2021, time.May, 20)), OriginTab, nil)
	early := NewBanner("Early", NewDateRange(Date(2021, time.May, 1), Date(2021, time.May, 8)), OriginTab, nil)
	undated := NewBanner("Undated", DateRange{}, OriginInherited, nil)

	event := NewEvent("Spring", RegionJP, "spring.png", []*Banner{late, undated, early})
	event.UpdateDates()
	assert.Equal(t, Date(2021, time.May, 1), event.StartDate)
	assert.Equal(t, Date(2021, time.May, 20), event.EndDate)

	event.SortBanners()
	names := make([]string, 0, len(event.Banners))
	for _, b := range event.Banners {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Undated", "Early", "Late"}, names)
}

func TestBanner_CopyMetadataKeepsRateups(t *testing.T) {
	rateups := NewRateupSet(Rateup{ID: 1, Name: "X"})
	dst := NewBanner("Old", NewDateRange(Date(2019, time.June, 1), time.Time{}), OriginInherited, rateups)
	src := NewBanner("New", NewDateRange(Date(2019, time.July, 1), Date(2019, time.July, 9)), OriginHeaderNew, nil)
	src.MarkNameNormalized()

	dst.CopyMetadata(src)

	assert.Equal(t, "New", dst.Name)
	assert.Equal(t, OriginHeaderNew, dst.DateOrigin)
	assert.Equal(t, Date(2019, time.July, 9), dst.EndDate)
	assert.True(t, dst.Rateups.Equal(rateups))
	assert.True(t, dst.NameNormalized())

	dst.Rename("Renamed")
	assert.False(t, dst.NameNormalized())
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion(" na ")
	assert.NoError(t, err)
	assert.Equal(t, RegionNA, r)

	_, err = ParseRegion("EU")
	assert.Error(t, err)
}
