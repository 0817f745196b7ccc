// Package service orchestrates spots, checks, gamification and dream-state
// generation on top of the store and the camera/vision/dream clients.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tidyspot/internal/memory"
	"tidyspot/internal/model"
	"tidyspot/internal/settings"
	"tidyspot/internal/store"
	"tidyspot/internal/vision"
)

// Upload constraints for photo-backed checks and resets.
const (
	MaxUploadBytes = 10 << 20
	MinUploadBytes = 100
)

const xpPerItemSorted = 10
const xpAllItemsBonus = 25

// Snapshotter fetches one frame for a camera identifier.
type Snapshotter interface {
	Snapshot(ctx context.Context, id string) ([]byte, error)
}

// Analyzer assesses a photo of a spot.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, req vision.Request) model.CheckResult
}

// DreamGenerator produces a tidy-preview image for a spot.
type DreamGenerator interface {
	Generate(ctx context.Context, spotID int64, spotName string, image []byte) (string, error)
	InFlight(spotID int64) bool
}

// Reconfigurer receives schedule changes. The cron scheduler implements it;
// a nil scheduler disables automatic checks.
type Reconfigurer interface {
	Configure(spotID int64, entries []model.ScheduleEntry) error
	Remove(spotID int64)
}

type Service struct {
	store    store.Store
	settings *settings.Service
	camera   Snapshotter
	analyzer Analyzer
	dream    DreamGenerator
	sched    Reconfigurer
	log      zerolog.Logger

	now func() time.Time
}

func New(st store.Store, svc *settings.Service, cam Snapshotter, an Analyzer, dg DreamGenerator, log zerolog.Logger) *Service {
	return &Service{
		store:    st,
		settings: svc,
		camera:   cam,
		analyzer: an,
		dream:    dg,
		log:      log,
		now:      time.Now,
	}
}

// AttachScheduler wires the cron scheduler after construction; the scheduler
// itself calls back into this service, so it cannot exist first.
func (s *Service) AttachScheduler(r Reconfigurer) { s.sched = r }

// ValidateUpload enforces the photo-upload constraints.
func ValidateUpload(contentType string, data []byte) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("file must be an image: %w", model.ErrValidation)
	}
	if len(data) > MaxUploadBytes {
		return fmt.Errorf("image too large (max 10MB): %w", model.ErrValidation)
	}
	if len(data) < MinUploadBytes {
		return fmt.Errorf("image file is empty or truncated: %w", model.ErrValidation)
	}
	return nil
}

// spotMemory computes the trailing-30-day memory for a spot.
func (s *Service) spotMemory(ctx context.Context, spot *model.Spot) (*memory.Memory, error) {
	since := s.now().Add(-memory.Window)
	checks, err := s.store.Checks().ListSince(ctx, spot.ID, since)
	if err != nil {
		return nil, fmt.Errorf("load check history: %w", err)
	}
	return memory.Calculate(checks, spot), nil
}

// Memory exposes the memory report for the API.
func (s *Service) Memory(ctx context.Context, spotID int64) (*memory.Memory, error) {
	spot, err := s.store.Spots().Get(ctx, spotID)
	if err != nil {
		return nil, err
	}
	return s.spotMemory(ctx, spot)
}

// lowEnergy reports whether the current hour is a configured crash time and
// which mode applies ("", "gentle" or "skip").
func (s *Service) lowEnergy(ctx context.Context) string {
	mode, err := s.settings.Get(ctx, settings.KeyLowEnergyMode)
	if err != nil || mode == "" || mode == "off" {
		return ""
	}
	raw, err := s.settings.Get(ctx, settings.KeyCrashTimes)
	if err != nil || raw == "" {
		return ""
	}
	hour := fmt.Sprintf("%d", s.now().Hour())
	for _, h := range parseCrashTimes(raw) {
		if h == hour {
			return mode
		}
	}
	return ""
}

// parseCrashTimes accepts a JSON array of hour strings or a comma list.
func parseCrashTimes(raw string) []string {
	var hours []string
	if err := json.Unmarshal([]byte(raw), &hours); err == nil {
		return hours
	}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			hours = append(hours, p)
		}
	}
	return hours
}
