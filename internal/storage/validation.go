// Package storage provides the data persistence layer for the almanac.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/summon-almanac/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidRegion    = errors.New("invalid region")
	ErrInvalidServant   = errors.New("invalid servant")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrInvalidBanner    = errors.New("invalid banner")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRegion(region model.Region) error {
	if _, err := model.ParseRegion(string(region)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}
	return nil
}

// validateServants validates a roster before it is saved.
func validateServants(servants []model.Servant) error {
	if servants == nil {
		return fmt.Errorf("%w: servants", ErrNilParameter)
	}
	if len(servants) == 0 {
		return fmt.Errorf("%w: servants", ErrEmptySlice)
	}

	seen := make(map[int]bool, len(servants))
	for i, s := range servants {
		if s.ID <= 0 {
			return fmt.Errorf("servant at index %d: %w: id must be positive", i, ErrInvalidServant)
		}
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("servant at index %d: %w: missing name", i, ErrInvalidServant)
		}
		if seen[s.ID] {
			return fmt.Errorf("servant at index %d: %w: duplicate id %d", i, ErrInvalidServant, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// validateEvents validates a region's finalized events. Every banner must
// feature at least one servant.
func validateEvents(region model.Region, events []*model.Event) error {
	if events == nil {
		return fmt.Errorf("%w: events", ErrNilParameter)
	}

	names := make(map[string]bool, len(events))
	for i, e := range events {
		if e == nil {
			return fmt.Errorf("event at index %d: %w", i, ErrNilParameter)
		}
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("event at index %d: %w: missing name", i, ErrInvalidEvent)
		}
		if e.Region != region {
			return fmt.Errorf("event %q: %w: region %q, expected %q", e.Name, ErrInvalidEvent, e.Region, region)
		}
		if names[e.Name] {
			return fmt.Errorf("event %q: %w: duplicate name", e.Name, ErrInvalidEvent)
		}
		names[e.Name] = true

		for j, b := range e.Banners {
			if err := validateBanner(b); err != nil {
				return fmt.Errorf("event %q banner %d: %w", e.Name, j, err)
			}
		}
	}
	return nil
}

func validateBanner(b *model.Banner) error {
	if b == nil {
		return fmt.Errorf("%w: banner", ErrNilParameter)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBanner)
	}
	if len(b.Rateups) == 0 {
		return fmt.Errorf("%w: %q has no rateups", ErrInvalidBanner, b.Name)
	}
	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate) {
		return fmt.Errorf("%w: %q", ErrInvalidDateRange, b.Name)
	}
	return nil
}

// validateRun validates a harvest run record.
func validateRun(run *model.HarvestRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if err := validateRegion(run.Region); err != nil {
		return err
	}
	if run.FinishedAt.Before(run.StartedAt) {
		return fmt.Errorf("%w: run", ErrInvalidDateRange)
	}
	return nil
}
