package service

import (
	"context"
	"fmt"
	"time"

	"tidyspot/internal/gamify"
	"tidyspot/internal/model"
	"tidyspot/internal/settings"
	"tidyspot/internal/vision"
)

// resetAchievements are the achievements evaluated after a successful
// reset. The time-of-day and comeback achievements need facts this path
// does not track.
var resetAchievements = []string{
	"first_blood", "streak_3", "streak_7", "streak_30",
	"speed_demon", "multi_spot", "centurion", "usual_suspect",
}

// CheckOutcome is the full result of a check or reset attempt.
type CheckOutcome struct {
	Check                *model.Check `json:"check,omitempty"`
	Skipped              bool         `json:"skipped,omitempty"`
	Message              string       `json:"message,omitempty"`
	XPEarned             int          `json:"xp_earned"`
	NewStreak            int          `json:"new_streak,omitempty"`
	AchievementsUnlocked []string     `json:"achievements_unlocked,omitempty"`
}

// CheckSpot grabs a camera snapshot and runs a check.
func (s *Service) CheckSpot(ctx context.Context, spotID int64) (*CheckOutcome, error) {
	spot, err := s.store.Spots().Get(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if out, done := s.skipOutcome(ctx, spot); done {
		return out, nil
	}
	image, err := s.camera.Snapshot(ctx, spot.CameraEntity)
	if err != nil {
		return nil, fmt.Errorf("camera snapshot: %w", err)
	}
	return s.runCheck(ctx, spot, image)
}

// CheckSpotWithImage runs a check on an uploaded photo instead of a
// camera snapshot.
func (s *Service) CheckSpotWithImage(ctx context.Context, spotID int64, image []byte) (*CheckOutcome, error) {
	spot, err := s.store.Spots().Get(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if out, done := s.skipOutcome(ctx, spot); done {
		return out, nil
	}
	return s.runCheck(ctx, spot, image)
}

// ScheduledCheck is the cron callback. Snoozed spots are skipped quietly.
func (s *Service) ScheduledCheck(ctx context.Context, spotID int64) error {
	out, err := s.CheckSpot(ctx, spotID)
	if err != nil {
		return err
	}
	if out.Skipped {
		s.log.Info().Int64("spot_id", spotID).Str("reason", out.Message).Msg("scheduled check skipped")
	}
	return nil
}

// skipOutcome short-circuits checks for snoozed spots and skip-mode crash
// times.
func (s *Service) skipOutcome(ctx context.Context, spot *model.Spot) (*CheckOutcome, bool) {
	if spot.IsSnoozed(s.now()) {
		return &CheckOutcome{
			Skipped: true,
			Message: "snoozed",
		}, true
	}
	if s.lowEnergy(ctx) == "skip" {
		return &CheckOutcome{
			Skipped: true,
			Message: "Check skipped - you're in a low energy period. Take care of yourself!",
		}, true
	}
	return nil, false
}

// runCheck is the shared core of camera and upload checks.
func (s *Service) runCheck(ctx context.Context, spot *model.Spot, image []byte) (*CheckOutcome, error) {
	mem, err := s.spotMemory(ctx, spot)
	if err != nil {
		return nil, err
	}
	firstCheck := mem.TotalChecks == 0

	result := s.analyzer.Analyze(ctx, image, vision.Request{
		SpotName:          spot.Name,
		Definition:        spot.Definition,
		Voice:             spot.Voice,
		CustomVoicePrompt: spot.CustomVoicePrompt,
		Personality:       s.personality(ctx, spot),
		Memory:            mem,
		LowEnergy:         s.lowEnergy(ctx) == "gentle",
	})

	xp := 0
	if result.Status == model.StatusSorted {
		xp = gamify.XPForAction(gamify.ActionSorted, spot.CurrentStreak, nil)
		if firstCheck {
			xp += gamify.XPForAction(gamify.ActionFirstCheck, 0, nil)
		}
	}

	check := &model.Check{
		SpotID:      spot.ID,
		Timestamp:   s.now().UTC(),
		Status:      result.Status,
		ToSort:      result.ToSort,
		LookingGood: result.LookingGood,
		Notes:       result.Notes,
		Error:       result.Error,
		LatencyMs:   result.LatencyMs,
		Analysis:    result.Analysis,
		XPEarned:    xp,
	}
	check, err = s.store.Checks().Create(ctx, check)
	if err != nil {
		return nil, fmt.Errorf("save check: %w", err)
	}

	if err := s.store.Spots().UpdateStatus(ctx, spot.ID, result.Status); err != nil {
		return nil, err
	}
	if result.Status == model.StatusNeedsAttention {
		if err := s.store.Spots().UpdateStreak(ctx, spot.ID, 0, spot.LongestStreak); err != nil {
			return nil, err
		}
	}
	if xp > 0 {
		if err := s.addXP(ctx, xp); err != nil {
			return nil, err
		}
	}

	// A spot's first successful check kicks off tidy-preview generation in
	// the background.
	if firstCheck && spot.DreamStateURL == "" && !spot.DreamStateGenerating {
		s.generateDreamState(spot, image)
	}

	return &CheckOutcome{Check: check, XPEarned: xp}, nil
}

// Reset verifies a cleanup photo. XP, streaks and achievements are only
// awarded when the analyzer agrees the spot is sorted.
func (s *Service) Reset(ctx context.Context, spotID int64, image []byte) (*CheckOutcome, error) {
	spot, err := s.store.Spots().Get(ctx, spotID)
	if err != nil {
		return nil, err
	}

	mem, err := s.spotMemory(ctx, spot)
	if err != nil {
		return nil, err
	}
	minutesSince := s.minutesSinceLastCheck(ctx, spotID)

	result := s.analyzer.Analyze(ctx, image, vision.Request{
		SpotName:          spot.Name,
		Definition:        spot.Definition,
		Voice:             spot.Voice,
		CustomVoicePrompt: spot.CustomVoicePrompt,
		Personality:       s.personality(ctx, spot),
		Memory:            mem,
		LowEnergy:         s.lowEnergy(ctx) == "gentle",
	})

	check := &model.Check{
		SpotID:      spot.ID,
		Timestamp:   s.now().UTC(),
		Status:      result.Status,
		ToSort:      result.ToSort,
		LookingGood: result.LookingGood,
		Notes:       result.Notes,
		Error:       result.Error,
		LatencyMs:   result.LatencyMs,
		Analysis:    result.Analysis,
	}
	check, err = s.store.Checks().Create(ctx, check)
	if err != nil {
		return nil, fmt.Errorf("save verification check: %w", err)
	}

	if result.Status != model.StatusSorted {
		if err := s.store.Spots().UpdateStatus(ctx, spot.ID, result.Status); err != nil {
			return nil, err
		}
		if err := s.store.Spots().UpdateStreak(ctx, spot.ID, 0, spot.LongestStreak); err != nil {
			return nil, err
		}
		return &CheckOutcome{
			Check:   check,
			Message: "The space isn't tidy yet. Keep working on it!",
		}, nil
	}

	return s.completeReset(ctx, spot, check, minutesSince, mem)
}

// ResetAll resets every spot currently needing attention without photo
// verification.
func (s *Service) ResetAll(ctx context.Context) (int, error) {
	spots, err := s.store.Spots().List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, spot := range spots {
		if spot.Status != model.StatusNeedsAttention {
			continue
		}
		if _, err := s.completeReset(ctx, spot, nil, nil, nil); err != nil {
			s.log.Warn().Int64("spot_id", spot.ID).Err(err).Msg("bulk reset failed for spot")
			continue
		}
		n++
	}
	return n, nil
}

// completeReset applies the streak, counters, XP and achievement effects of
// a successful reset.
func (s *Service) completeReset(ctx context.Context, spot *model.Spot, check *model.Check, minutesSince *int, mem memoryReport) (*CheckOutcome, error) {
	newStreak := spot.CurrentStreak + 1
	longest := spot.LongestStreak
	if newStreak > longest {
		longest = newStreak
	}
	if err := s.store.Spots().UpdateStreak(ctx, spot.ID, newStreak, longest); err != nil {
		return nil, err
	}
	if err := s.store.Spots().UpdateStatus(ctx, spot.ID, model.StatusSorted); err != nil {
		return nil, err
	}

	game, err := s.recordReset(ctx)
	if err != nil {
		return nil, err
	}

	xp := gamify.XPForAction(gamify.ActionReset, newStreak, minutesSince)

	now := s.now()
	unlockCtx := gamify.UnlockContext{
		StreakDays:          newStreak,
		TotalResets:         game.ResetsTotal,
		ResetTime:           &now,
		MinutesSinceCheck:   minutesSince,
		SpotsResetInSession: game.ResetsToday,
	}
	if mem != nil {
		unlockCtx.RecurringItemCount = mem.MaxSeenCount()
	}

	var unlocked []string
	for _, id := range resetAchievements {
		if containsString(game.Unlocked, id) || !gamify.Unlocked(id, unlockCtx) {
			continue
		}
		a, ok := gamify.AchievementByID(id)
		if !ok {
			continue
		}
		game.Unlocked = append(game.Unlocked, id)
		unlocked = append(unlocked, id)
		xp += a.XPBonus
	}

	game.TotalXP += xp
	if err := s.store.Game().Save(ctx, game); err != nil {
		return nil, err
	}

	return &CheckOutcome{
		Check:                check,
		Message:              "Spot verified as tidy! Great work!",
		XPEarned:             xp,
		NewStreak:            newStreak,
		AchievementsUnlocked: unlocked,
	}, nil
}

// CheckAll runs a check for every spot, skipping snoozed ones. Per-spot
// failures are collected, not fatal.
func (s *Service) CheckAll(ctx context.Context) ([]*CheckOutcome, error) {
	spots, err := s.store.Spots().List(ctx)
	if err != nil {
		return nil, err
	}
	var outcomes []*CheckOutcome
	for _, spot := range spots {
		out, err := s.CheckSpot(ctx, spot.ID)
		if err != nil {
			s.log.Warn().Int64("spot_id", spot.ID).Err(err).Msg("bulk check failed for spot")
			outcomes = append(outcomes, &CheckOutcome{
				Skipped: true,
				Message: err.Error(),
			})
			continue
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// MarkItemsSorted flags items on a check as handled. Checking off the last
// item counts as a reset.
func (s *Service) MarkItemsSorted(ctx context.Context, spotID int64, checkID string, indexes []int) (*CheckOutcome, error) {
	spot, err := s.store.Spots().Get(ctx, spotID)
	if err != nil {
		return nil, err
	}
	check, err := s.store.Checks().Get(ctx, spotID, checkID)
	if err != nil {
		return nil, err
	}
	if len(check.ToSort) == 0 {
		return nil, fmt.Errorf("check has no items to sort: %w", model.ErrValidation)
	}

	marked := 0
	for _, idx := range indexes {
		if idx < 0 || idx >= len(check.ToSort) {
			return nil, fmt.Errorf("item index %d out of range: %w", idx, model.ErrValidation)
		}
		if !check.ToSort[idx].Sorted {
			check.ToSort[idx].Sorted = true
			marked++
		}
	}
	if err := s.store.Checks().UpdateItems(ctx, spotID, checkID, check.ToSort); err != nil {
		return nil, err
	}

	xp := marked * xpPerItemSorted

	allSorted := true
	for _, it := range check.ToSort {
		if !it.Sorted {
			allSorted = false
			break
		}
	}

	if allSorted {
		xp += xpAllItemsBonus
		out, err := s.completeReset(ctx, spot, check, nil, nil)
		if err != nil {
			return nil, err
		}
		out.XPEarned += xp
		out.Message = "All items done!"
		if xp > 0 {
			if err := s.addXP(ctx, xp); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	if xp > 0 {
		if err := s.addXP(ctx, xp); err != nil {
			return nil, err
		}
	}
	return &CheckOutcome{Check: check, XPEarned: xp, Message: "Item marked as sorted!"}, nil
}

// ListChecks pages through a spot's history, newest first.
func (s *Service) ListChecks(ctx context.Context, spotID int64, limit, offset int) ([]*model.Check, error) {
	if _, err := s.store.Spots().Get(ctx, spotID); err != nil {
		return nil, err
	}
	return s.store.Checks().ListBySpot(ctx, spotID, limit, offset)
}

func (s *Service) UpdateCheckNotes(ctx context.Context, spotID int64, checkID, notes string) error {
	return s.store.Checks().UpdateNotes(ctx, spotID, checkID, notes)
}

func (s *Service) DeleteCheck(ctx context.Context, spotID int64, checkID string) error {
	return s.store.Checks().Delete(ctx, spotID, checkID)
}

// ClearHistory deletes all checks for a spot and returns how many went.
func (s *Service) ClearHistory(ctx context.Context, spotID int64) (int64, error) {
	if _, err := s.store.Spots().Get(ctx, spotID); err != nil {
		return 0, err
	}
	return s.store.Checks().DeleteBySpot(ctx, spotID)
}

// minutesSinceLastCheck supports the quick-reset bonus. Nil when the spot
// has no checks yet.
func (s *Service) minutesSinceLastCheck(ctx context.Context, spotID int64) *int {
	recent, err := s.store.Checks().ListBySpot(ctx, spotID, 1, 0)
	if err != nil || len(recent) == 0 {
		return nil
	}
	mins := int(s.now().UTC().Sub(recent[0].Timestamp) / time.Minute)
	return &mins
}

// personality resolves the per-spot personality with the global setting as
// fallback.
func (s *Service) personality(ctx context.Context, spot *model.Spot) string {
	if spot.Personality != "" {
		return spot.Personality
	}
	p, err := s.settings.Get(ctx, settings.KeyPersonality)
	if err != nil {
		return ""
	}
	return p
}

// memoryReport is the slice of the memory engine the reset path needs.
type memoryReport interface {
	MaxSeenCount() int
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
