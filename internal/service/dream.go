package service

import (
	"context"
	"fmt"
	"time"

	"tidyspot/internal/model"
)

// dreamTimeout bounds a whole background generation including provider
// fallbacks and retries.
const dreamTimeout = 10 * time.Minute

// GenerateDreamState grabs a fresh snapshot and starts tidy-preview
// generation in the background. Returns ErrConflict while one is running.
func (s *Service) GenerateDreamState(ctx context.Context, spotID int64) error {
	spot, err := s.store.Spots().Get(ctx, spotID)
	if err != nil {
		return err
	}
	if s.dream == nil {
		return fmt.Errorf("dream-state generation is not configured: %w", model.ErrValidation)
	}
	if s.dream.InFlight(spotID) || spot.DreamStateGenerating {
		return fmt.Errorf("generation already running: %w", model.ErrConflict)
	}
	image, err := s.camera.Snapshot(ctx, spot.CameraEntity)
	if err != nil {
		return fmt.Errorf("camera snapshot: %w", err)
	}
	s.generateDreamState(spot, image)
	return nil
}

// generateDreamState runs one generation in the background. The generating
// flag is written around the run so the UI can show progress; failures only
// clear the flag.
func (s *Service) generateDreamState(spot *model.Spot, image []byte) {
	if s.dream == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dreamTimeout)
		defer cancel()

		if err := s.store.Spots().SetDreamState(ctx, spot.ID, spot.DreamStateURL, true); err != nil {
			s.log.Error().Int64("spot_id", spot.ID).Err(err).Msg("dream-state flag update failed")
			return
		}
		url, err := s.dream.Generate(ctx, spot.ID, spot.Name, image)
		if err != nil {
			s.log.Warn().Int64("spot_id", spot.ID).Err(err).Msg("dream-state generation failed")
			url = spot.DreamStateURL
		}
		if err := s.store.Spots().SetDreamState(ctx, spot.ID, url, false); err != nil {
			s.log.Error().Int64("spot_id", spot.ID).Err(err).Msg("dream-state result update failed")
		}
	}()
}
