package store

import (
	"context"
	"time"

	"tidyspot/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., sqlite).
type Store interface {
	Spots() Spots
	Checks() Checks
	Settings() Settings
	Tokens() Tokens
	Cameras() Cameras
	Game() Game

	// HealthPing must return nil when the database is reachable.
	HealthPing(ctx context.Context) error
	Close() error
}

type Spots interface {
	Create(ctx context.Context, s *model.Spot) (*model.Spot, error)
	Get(ctx context.Context, id int64) (*model.Spot, error)
	List(ctx context.Context) ([]*model.Spot, error)
	Update(ctx context.Context, s *model.Spot) (*model.Spot, error)
	Delete(ctx context.Context, id int64) error

	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateStreak(ctx context.Context, id int64, current, longest int) error
	Snooze(ctx context.Context, id int64, until *time.Time) error
	SetSchedule(ctx context.Context, id int64, entries []model.ScheduleEntry) error
	SetDreamState(ctx context.Context, id int64, url string, generating bool) error
}

type Checks interface {
	Create(ctx context.Context, c *model.Check) (*model.Check, error)
	Get(ctx context.Context, spotID int64, checkID string) (*model.Check, error)
	ListBySpot(ctx context.Context, spotID int64, limit, offset int) ([]*model.Check, error)
	// ListSince returns checks for a spot newer than the cutoff, oldest first.
	ListSince(ctx context.Context, spotID int64, since time.Time) ([]*model.Check, error)
	UpdateNotes(ctx context.Context, spotID int64, checkID, notes string) error
	UpdateItems(ctx context.Context, spotID int64, checkID string, items []model.ToSortItem) error
	Delete(ctx context.Context, spotID int64, checkID string) error
	DeleteBySpot(ctx context.Context, spotID int64) (int64, error)
}

type Settings interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
	Delete(ctx context.Context, key string) error
}

type Tokens interface {
	Create(ctx context.Context, t *model.APIToken) (*model.APIToken, error)
	// Verify checks the raw token value and, when valid and active, stamps
	// last_used_at. Returns model.ErrNotFound for unknown or revoked tokens.
	Verify(ctx context.Context, token string) (*model.APIToken, error)
	List(ctx context.Context) ([]*model.APIToken, error)
	Revoke(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int, error)
}

type Cameras interface {
	Create(ctx context.Context, c *model.Camera) (*model.Camera, error)
	Get(ctx context.Context, id string) (*model.Camera, error)
	List(ctx context.Context) ([]*model.Camera, error)
	Delete(ctx context.Context, id string) error
}

type Game interface {
	// Load returns the singleton gamification row, creating it when absent.
	Load(ctx context.Context) (*model.GameState, error)
	Save(ctx context.Context, g *model.GameState) error
}
