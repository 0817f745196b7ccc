package gamify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestLevelForXPMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 9000; xp += 50 {
		info := LevelForXP(xp)
		assert.GreaterOrEqual(t, info.Level, prev, "level must never decrease (xp=%d)", xp)
		assert.GreaterOrEqual(t, info.XPToNextLevel, 0)
		prev = info.Level
	}
}

func TestLevelThresholds(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0).Level)
	assert.Equal(t, 1, LevelForXP(249).Level)
	assert.Equal(t, 2, LevelForXP(250).Level)
	assert.Equal(t, 10, LevelForXP(7500).Level)
}

func TestMaxLevelReportsFullProgress(t *testing.T) {
	info := LevelForXP(99999)
	assert.Equal(t, 10, info.Level)
	assert.Equal(t, 0, info.XPToNextLevel)
	assert.Equal(t, 100.0, info.XPProgressPercent)
}

func TestXPForReset(t *testing.T) {
	// Base reset with no streak or timing context.
	assert.Equal(t, 50, XPForAction(ActionReset, 0, nil))

	// Streak bonus is 25/day, capped at 250.
	assert.Equal(t, 50+75, XPForAction(ActionReset, 3, nil))
	assert.Equal(t, 50+250, XPForAction(ActionReset, 20, nil))

	// Speed bonus: +50 within 5 minutes, +25 within 30.
	assert.Equal(t, 50+50, XPForAction(ActionReset, 0, intPtr(5)))
	assert.Equal(t, 50+25, XPForAction(ActionReset, 0, intPtr(30)))
	assert.Equal(t, 50, XPForAction(ActionReset, 0, intPtr(31)))
}

func TestXPTable(t *testing.T) {
	assert.Equal(t, 50, XPForAction(ActionSorted, 0, nil))
	assert.Equal(t, 75, XPForAction(ActionQuickReset, 0, nil))
	assert.Equal(t, 100, XPForAction(ActionFirstCheck, 0, nil))
	assert.Equal(t, 200, XPForAction(ActionPerfectDay, 0, nil))
	assert.Equal(t, 0, XPForAction("bogus", 0, nil))
}

func TestAchievementPredicates(t *testing.T) {
	early := time.Date(2026, 3, 4, 6, 30, 0, 0, time.Local)
	late := time.Date(2026, 3, 4, 23, 10, 0, 0, time.Local)

	assert.True(t, Unlocked("first_blood", UnlockContext{TotalResets: 1}))
	assert.False(t, Unlocked("first_blood", UnlockContext{}))
	assert.True(t, Unlocked("streak_7", UnlockContext{StreakDays: 7}))
	assert.False(t, Unlocked("streak_30", UnlockContext{StreakDays: 29}))
	assert.True(t, Unlocked("early_bird", UnlockContext{ResetTime: &early}))
	assert.False(t, Unlocked("early_bird", UnlockContext{ResetTime: &late}))
	assert.True(t, Unlocked("night_owl", UnlockContext{ResetTime: &late}))
	assert.True(t, Unlocked("speed_demon", UnlockContext{MinutesSinceCheck: intPtr(4)}))
	assert.False(t, Unlocked("speed_demon", UnlockContext{MinutesSinceCheck: intPtr(6)}))
	assert.True(t, Unlocked("centurion", UnlockContext{TotalResets: 100}))
	assert.True(t, Unlocked("usual_suspect", UnlockContext{RecurringItemCount: 10}))
	assert.True(t, Unlocked("multi_spot", UnlockContext{SpotsResetInSession: 3}))
	assert.True(t, Unlocked("comeback", UnlockContext{LostStreakDays: 5, StreakDays: 1}))
	assert.False(t, Unlocked("comeback", UnlockContext{LostStreakDays: 4, StreakDays: 1}))
	assert.False(t, Unlocked("no_such_achievement", UnlockContext{}))
}

func TestDailyChallengeDeterministic(t *testing.T) {
	d := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	a := DailyChallenge(d)
	b := DailyChallenge(d.Add(5 * time.Hour))
	assert.Equal(t, a.ID, b.ID, "same date must yield the same challenge")

	next := DailyChallenge(d.AddDate(0, 0, 1))
	assert.NotEqual(t, a.ID, next.ID, "consecutive days rotate with 7 challenges")
}
