package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/summon-almanac/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test"},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: " \t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateServants(t *testing.T) {
	tests := []struct {
		wantErr  error
		name     string
		servants []model.Servant
	}{
		{name: "valid", servants: []model.Servant{{ID: 1, Name: "Mash"}, {ID: 2, Name: "Artoria"}}},
		{name: "nil", servants: nil, wantErr: ErrNilParameter},
		{name: "empty", servants: []model.Servant{}, wantErr: ErrEmptySlice},
		{name: "zero id", servants: []model.Servant{{Name: "Mash"}}, wantErr: ErrInvalidServant},
		{name: "blank name", servants: []model.Servant{{ID: 1, Name: " "}}, wantErr: ErrInvalidServant},
		{name: "duplicate id", servants: []model.Servant{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}}, wantErr: ErrInvalidServant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServants(tt.servants)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validateServants() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateServants() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEvents(t *testing.T) {
	rateups := model.NewRateupSet(model.Rateup{ID: 150, Name: "Merlin"})
	banner := func(name string, start, end int) *model.Banner {
		dates := model.DateRange{Start: model.Date(2024, 1, start), End: model.Date(2024, 1, end)}
		return model.NewBanner(name, dates, model.OriginHeaderNew, rateups)
	}
	event := func(name string, region model.Region, banners ...*model.Banner) *model.Event {
		return model.NewEvent(name, region, "", banners)
	}

	tests := []struct {
		wantErr error
		name    string
		events  []*model.Event
	}{
		{
			name:   "valid",
			events: []*model.Event{event("A", model.RegionJP, banner("A FP", 1, 7)), event("B", model.RegionJP)},
		},
		{
			name:   "empty region",
			events: []*model.Event{},
		},
		{
			name:    "nil slice",
			events:  nil,
			wantErr: ErrNilParameter,
		},
		{
			name:    "nil event",
			events:  []*model.Event{nil},
			wantErr: ErrNilParameter,
		},
		{
			name:    "wrong region",
			events:  []*model.Event{event("A", model.RegionNA)},
			wantErr: ErrInvalidEvent,
		},
		{
			name:    "duplicate name",
			events:  []*model.Event{event("A", model.RegionJP), event("A", model.RegionJP)},
			wantErr: ErrInvalidEvent,
		},
		{
			name: "banner without rateups",
			events: []*model.Event{event("A", model.RegionJP,
				model.NewBanner("Empty", model.DateRange{}, model.OriginInherited, nil))},
			wantErr: ErrInvalidBanner,
		},
		{
			name:    "banner ends before it starts",
			events:  []*model.Event{event("A", model.RegionJP, banner("Backwards", 9, 2))},
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEvents(model.RegionJP, tt.events)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validateEvents() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateEvents() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
