package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tidyspot/internal/model"
	"tidyspot/internal/persona"
)

// CreateSpot validates and stores a new spot, then registers its schedule.
func (s *Service) CreateSpot(ctx context.Context, spot *model.Spot) (*model.Spot, error) {
	if strings.TrimSpace(spot.Name) == "" {
		return nil, fmt.Errorf("spot name is required: %w", model.ErrValidation)
	}
	if strings.TrimSpace(spot.Definition) == "" {
		return nil, fmt.Errorf("spot definition is required: %w", model.ErrValidation)
	}
	if spot.Voice == "" {
		spot.Voice = "direct"
	}
	if spot.SpotType == "" {
		spot.SpotType = persona.SuggestType(spot.Name, spot.CameraEntity)
	}
	spot.Status = model.StatusUnknown

	created, err := s.store.Spots().Create(ctx, spot)
	if err != nil {
		return nil, err
	}
	s.reschedule(created)
	return created, nil
}

func (s *Service) GetSpot(ctx context.Context, id int64) (*model.Spot, error) {
	return s.store.Spots().Get(ctx, id)
}

func (s *Service) ListSpots(ctx context.Context) ([]*model.Spot, error) {
	return s.store.Spots().List(ctx)
}

// UpdateSpot persists edits and re-registers the schedule, which may have
// changed.
func (s *Service) UpdateSpot(ctx context.Context, spot *model.Spot) (*model.Spot, error) {
	if strings.TrimSpace(spot.Name) == "" {
		return nil, fmt.Errorf("spot name is required: %w", model.ErrValidation)
	}
	updated, err := s.store.Spots().Update(ctx, spot)
	if err != nil {
		return nil, err
	}
	s.reschedule(updated)
	return updated, nil
}

// DeleteSpot removes the spot, its checks (FK cascade) and its cron jobs.
func (s *Service) DeleteSpot(ctx context.Context, id int64) error {
	if err := s.store.Spots().Delete(ctx, id); err != nil {
		return err
	}
	if s.sched != nil {
		s.sched.Remove(id)
	}
	return nil
}

// Snooze pauses automatic and manual checks until now+minutes.
func (s *Service) Snooze(ctx context.Context, id int64, minutes int) (time.Time, error) {
	if minutes <= 0 {
		return time.Time{}, fmt.Errorf("snooze minutes must be positive: %w", model.ErrValidation)
	}
	until := s.now().UTC().Add(time.Duration(minutes) * time.Minute)
	if err := s.store.Spots().Snooze(ctx, id, &until); err != nil {
		return time.Time{}, err
	}
	return until, nil
}

// Unsnooze clears the snooze and returns the spot to unknown status.
func (s *Service) Unsnooze(ctx context.Context, id int64) error {
	return s.store.Spots().Snooze(ctx, id, nil)
}

// SnoozeAll snoozes every spot. Used by the bulk endpoint.
func (s *Service) SnoozeAll(ctx context.Context, minutes int) (int, error) {
	spots, err := s.store.Spots().List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, spot := range spots {
		if _, err := s.Snooze(ctx, spot.ID, minutes); err != nil {
			s.log.Warn().Int64("spot_id", spot.ID).Err(err).Msg("bulk snooze failed for spot")
			continue
		}
		n++
	}
	return n, nil
}

// SetSchedule replaces the spot's schedule entries and cron jobs.
func (s *Service) SetSchedule(ctx context.Context, id int64, entries []model.ScheduleEntry) error {
	spot, err := s.store.Spots().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Spots().SetSchedule(ctx, id, entries); err != nil {
		return err
	}
	spot.Schedule = entries
	s.reschedule(spot)
	return nil
}

func (s *Service) reschedule(spot *model.Spot) {
	if s.sched == nil {
		return
	}
	if err := s.sched.Configure(spot.ID, spot.Schedule); err != nil {
		s.log.Error().Int64("spot_id", spot.ID).Err(err).Msg("schedule registration failed")
	}
}

// ReloadSchedules registers cron jobs for every stored spot. Called once at
// startup after the scheduler is attached.
func (s *Service) ReloadSchedules(ctx context.Context) error {
	spots, err := s.store.Spots().List(ctx)
	if err != nil {
		return err
	}
	for _, spot := range spots {
		s.reschedule(spot)
	}
	return nil
}
