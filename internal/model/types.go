package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Spot statuses. Transitions happen only through check, reset and snooze
// operations.
const (
	StatusSorted         = "sorted"
	StatusNeedsAttention = "needs_attention"
	StatusError          = "error"
	StatusUnknown        = "unknown"
	StatusSnoozed        = "snoozed"
)

// Item priorities accepted from the vision API.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// NormalizePriority coerces unknown priority values to "normal".
func NormalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// ScheduleEntry is one automatic-check trigger: a wall-clock time plus the
// weekdays it fires on.
type ScheduleEntry struct {
	Time string   `json:"time"` // "HH:MM"
	Days []string `json:"days"` // subset of mon..sun abbreviations
}

// Spot is a tracked physical location with a defined tidy criterion.
type Spot struct {
	ID                   int64           `json:"id"`
	Name                 string          `json:"name"`
	CameraEntity         string          `json:"camera_entity"`
	Definition           string          `json:"definition"`
	SpotType             string          `json:"spot_type"`
	Voice                string          `json:"voice"`
	CustomVoicePrompt    string          `json:"custom_voice_prompt,omitempty"`
	Personality          string          `json:"personality,omitempty"`
	Status               string          `json:"status"`
	CurrentStreak        int             `json:"current_streak"`
	LongestStreak        int             `json:"longest_streak"`
	SnoozedUntil         *time.Time      `json:"snoozed_until,omitempty"`
	Schedule             []ScheduleEntry `json:"schedule,omitempty"`
	DreamStateURL        string          `json:"dream_state_url,omitempty"`
	DreamStateGenerating bool            `json:"dream_state_generating"`
	CreatedAt            time.Time       `json:"created_at"`
}

// IsSnoozed reports whether the spot is snoozed at the given instant.
func (s *Spot) IsSnoozed(now time.Time) bool {
	return s.SnoozedUntil != nil && now.Before(*s.SnoozedUntil)
}

// ToSortItem is a single object the vision API flagged as out of place.
type ToSortItem struct {
	Item      string `json:"item"`
	Location  string `json:"location,omitempty"`
	Priority  string `json:"priority"`
	QuickFix  string `json:"quick_fix,omitempty"`
	Recurring bool   `json:"recurring,omitempty"`
	SeenCount int    `json:"seen_count,omitempty"`
	Sorted    bool   `json:"sorted,omitempty"`
}

// Check is one assessment cycle for a spot. Immutable once written except
// the notes field and per-item sorted flags.
type Check struct {
	ID          string          `json:"id"`
	SpotID      int64           `json:"spot_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      string          `json:"status"`
	ToSort      []ToSortItem    `json:"to_sort"`
	LookingGood []string        `json:"looking_good"`
	Notes       string          `json:"notes,omitempty"`
	Error       string          `json:"error,omitempty"`
	LatencyMs   int64           `json:"latency_ms"`
	Analysis    json.RawMessage `json:"analysis,omitempty"`
	XPEarned    int             `json:"xp_earned"`
}

// CheckResult is the analyzer's verdict before persistence.
type CheckResult struct {
	Status      string          `json:"status"`
	ToSort      []ToSortItem    `json:"to_sort"`
	LookingGood []string        `json:"looking_good"`
	Notes       string          `json:"notes,omitempty"`
	Error       string          `json:"error,omitempty"`
	LatencyMs   int64           `json:"latency_ms"`
	Analysis    json.RawMessage `json:"analysis,omitempty"`
}

// APIToken is a bearer credential for the HTTP API. Revoked tokens are kept
// with is_active=false so verification history survives.
type APIToken struct {
	ID         string     `json:"id"`
	Token      string     `json:"token,omitempty"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Camera is a user-registered custom camera (rtsp_/mjpeg_/onvif_ prefixed).
type Camera struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	CameraType string `json:"camera_type"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"-"`
	Enabled    bool   `json:"enabled"`
}

// CameraInfo is a listing entry aggregated from the hub and registered
// custom cameras. Ephemeral, never persisted.
type CameraInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Live bool   `json:"live"`
	URL  string `json:"url,omitempty"`
}

// GameState is the singleton gamification row.
type GameState struct {
	TotalXP       int        `json:"total_xp"`
	Unlocked      []string   `json:"unlocked"`
	ChallengeDate string     `json:"challenge_date,omitempty"`
	ChallengeDone bool       `json:"challenge_done"`
	ResetsToday   int        `json:"resets_today"`
	ResetsTotal   int        `json:"resets_total"`
	LastResetAt   *time.Time `json:"last_reset_at,omitempty"`
}
