package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/summon-almanac/internal/model"
)

func TestFormatAppearances(t *testing.T) {
	merlin := model.Servant{ID: 150, Name: "Merlin"}

	tests := []struct {
		name        string
		appearances []model.Appearance
		expected    []string
	}{
		{
			name:     "no rateups",
			expected: []string{"Merlin (#150)", "No rateups recorded yet"},
		},
		{
			name: "table",
			appearances: []model.Appearance{
				{
					Region:     model.RegionJP,
					EventName:  "Camelot Chapter Release",
					BannerName: "Camelot Summoning Campaign",
					StartDate:  model.Date(2016, 7, 29),
					EndDate:    model.Date(2016, 8, 5),
					CoFeatured: 0,
				},
				{
					Region:     model.RegionNA,
					EventName:  "Merlin Pickup",
					BannerName: "Merlin Pickup",
					StartDate:  model.Date(2018, 6, 1),
					CoFeatured: 2,
				},
			},
			expected: []string{
				"Merlin (#150)",
				"Camelot Summoning Campaign",
				"2016-07-29",
				"Merlin Pickup",
				"?",
				"2 rateups, 1 solo",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAppearances(merlin, tt.appearances)
			for _, want := range tt.expected {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestFormatHarvestSummary(t *testing.T) {
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	got := FormatHarvestSummary(&model.HarvestRun{
		Region:     model.RegionNA,
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Events:     120,
		Banners:    340,
	})

	assert.Contains(t, got, "NA harvest complete")
	assert.Contains(t, got, "Events: 120")
	assert.Contains(t, got, "Banners: 340")
	assert.Contains(t, got, "1m30s")
}
