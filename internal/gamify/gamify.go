// Package gamify maps tidiness actions to XP, XP to levels, and exposes
// achievement and daily-challenge predicates. Everything here is pure; the
// unlocked-achievement state lives in the store.
package gamify

import "time"

// Actions that award XP.
const (
	ActionSorted     = "sorted"
	ActionQuickReset = "quick_reset"
	ActionReset      = "reset"
	ActionStreakDay  = "streak_day"
	ActionFirstCheck = "first_check"
	ActionPerfectDay = "perfect_day"
)

var xpRewards = map[string]int{
	ActionSorted:     50,
	ActionQuickReset: 75,
	ActionReset:      50,
	ActionStreakDay:  25,
	ActionFirstCheck: 100,
	ActionPerfectDay: 200,
}

// streakBonusCap limits the per-reset streak bonus to 10 days worth.
const streakBonusCap = 250

// Level is one rung of the XP ladder.
type Level struct {
	Level      int    `json:"level"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji"`
	XPRequired int    `json:"xp_required"`
}

// Levels is the ordered threshold table.
var Levels = []Level{
	{1, "Tidy Novice", "🌱", 0},
	{2, "Clutter Buster", "🧹", 250},
	{3, "Order Apprentice", "📚", 600},
	{4, "Chaos Tamer", "⚔️", 1000},
	{5, "Space Organizer", "🗂️", 1500},
	{6, "Zen Master", "🧘", 2200},
	{7, "Tidiness Sage", "🧙", 3000},
	{8, "Order Keeper", "🛡️", 4000},
	{9, "Harmony Champion", "🏆", 5500},
	{10, "Tidiness Transcended ✨", "✨", 7500},
}

// LevelInfo is the derived progress report for an XP total.
type LevelInfo struct {
	Level             int     `json:"level"`
	Name              string  `json:"name"`
	Emoji             string  `json:"emoji"`
	XPToNextLevel     int     `json:"xp_to_next_level"`
	XPProgressPercent float64 `json:"xp_progress_percent"`
}

// LevelForXP walks the threshold table to find the highest level whose
// requirement is met. Progress reports 100% at the max level.
func LevelForXP(xpTotal int) LevelInfo {
	current := Levels[0]
	var next *Level
	for i := range Levels {
		if xpTotal >= Levels[i].XPRequired {
			current = Levels[i]
			if i+1 < len(Levels) {
				next = &Levels[i+1]
			} else {
				next = nil
			}
		} else {
			break
		}
	}

	info := LevelInfo{
		Level:             current.Level,
		Name:              current.Name,
		Emoji:             current.Emoji,
		XPProgressPercent: 100.0,
	}
	if next != nil {
		span := next.XPRequired - current.XPRequired
		info.XPToNextLevel = next.XPRequired - xpTotal
		if span > 0 {
			info.XPProgressPercent = float64(xpTotal-current.XPRequired) / float64(span) * 100
		}
		if info.XPProgressPercent > 100 {
			info.XPProgressPercent = 100
		}
	}
	return info
}

// XPForAction returns the XP earned for an action. Resets earn a streak
// bonus (25/day, capped at 10 days) and a speed bonus when performed soon
// after the triggering check (+50 within 5 minutes, +25 within 30).
func XPForAction(action string, streakDays int, minutesSinceCheck *int) int {
	xp := xpRewards[action]

	if action == ActionReset && streakDays > 0 {
		bonus := streakDays * xpRewards[ActionStreakDay]
		if bonus > streakBonusCap {
			bonus = streakBonusCap
		}
		xp += bonus
	}
	if action == ActionReset && minutesSinceCheck != nil {
		switch {
		case *minutesSinceCheck <= 5:
			xp += 50
		case *minutesSinceCheck <= 30:
			xp += 25
		}
	}
	return xp
}

// Achievement is a display record; unlock conditions live in Unlocked.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	XPBonus     int    `json:"xp_bonus"`
}

// Achievements in display order.
var Achievements = []Achievement{
	{"first_blood", "First Blood", "Complete your first spot reset", "🩸", 50},
	{"streak_3", "Hat Trick", "Maintain a 3-day streak", "🎩", 75},
	{"streak_7", "Week Warrior", "Maintain a 7-day streak", "⚔️", 150},
	{"streak_30", "Monthly Master", "Maintain a 30-day streak", "📅", 500},
	{"early_bird", "Early Bird", "Complete a reset before 7 AM", "🐦", 50},
	{"night_owl", "Night Owl", "Complete a reset after 11 PM", "🦉", 50},
	{"speed_demon", "Speed Demon", "Reset a spot within 5 minutes of check", "⚡", 100},
	{"perfectionist", "Perfectionist", "Have all spots sorted for a full day", "💎", 200},
	{"centurion", "Centurion", "Complete 100 resets", "💯", 300},
	{"usual_suspect", "Usual Suspect Hunter", "Address an item that appeared 10+ times", "🔍", 75},
	{"multi_spot", "Multi-Tasker", "Reset 3 spots in one session", "🤹", 100},
	{"comeback", "Comeback Kid", "Start a streak after losing one of 5+ days", "🔥", 100},
}

// AchievementByID looks up a display record.
func AchievementByID(id string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// UnlockContext carries the facts achievement predicates evaluate against.
type UnlockContext struct {
	StreakDays          int
	TotalResets         int
	ResetTime           *time.Time
	MinutesSinceCheck   *int
	RecurringItemCount  int
	SpotsResetInSession int
	LostStreakDays      int
	PerfectDay          bool
}

// Unlocked answers whether the achievement's condition currently holds.
// Already-unlocked state is tracked externally.
func Unlocked(id string, ctx UnlockContext) bool {
	switch id {
	case "first_blood":
		return ctx.TotalResets >= 1
	case "streak_3":
		return ctx.StreakDays >= 3
	case "streak_7":
		return ctx.StreakDays >= 7
	case "streak_30":
		return ctx.StreakDays >= 30
	case "early_bird":
		return ctx.ResetTime != nil && ctx.ResetTime.Hour() < 7
	case "night_owl":
		return ctx.ResetTime != nil && ctx.ResetTime.Hour() >= 23
	case "speed_demon":
		return ctx.MinutesSinceCheck != nil && *ctx.MinutesSinceCheck <= 5
	case "perfectionist":
		return ctx.PerfectDay
	case "centurion":
		return ctx.TotalResets >= 100
	case "usual_suspect":
		return ctx.RecurringItemCount >= 10
	case "multi_spot":
		return ctx.SpotsResetInSession >= 3
	case "comeback":
		return ctx.LostStreakDays >= 5 && ctx.StreakDays >= 1
	default:
		return false
	}
}

// Challenge is one rotating daily challenge.
type Challenge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	XPReward    int    `json:"xp_reward"`
}

var Challenges = []Challenge{
	{"speed_run", "Speed Run", "Reset any spot within 10 minutes of check", "⏱️", 100},
	{"morning_routine", "Morning Routine", "Check all spots before noon", "☀️", 150},
	{"zero_items", "Spot Zero", "Have any spot with 0 items to sort", "🎯", 75},
	{"triple_check", "Triple Check", "Check the same spot 3 times today", "3️⃣", 100},
	{"reset_all", "Clean Sweep", "Reset all spots in one day", "🧹", 200},
	{"quick_fix", "Quick Fix", "Address a recurring item", "🔧", 75},
	{"streak_saver", "Streak Saver", "Check and reset before breaking streak", "🛡️", 100},
}

// DailyChallenge returns the challenge for a date. The rotation key
// multiplies the year by a flat 365, so the mapping shifts across years and
// ignores leap days. That matches the shipped behavior and stays until
// product decides otherwise.
func DailyChallenge(date time.Time) Challenge {
	idx := (date.Year()*365 + date.YearDay()) % len(Challenges)
	return Challenges[idx]
}
