package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyspot/internal/model"
)

func checkAt(ts time.Time, status string, items ...string) *model.Check {
	c := &model.Check{SpotID: 1, Status: status, Timestamp: ts}
	for _, it := range items {
		c.ToSort = append(c.ToSort, model.ToSortItem{Item: it, Priority: "normal"})
	}
	return c
}

func TestRecurringThresholdBoundary(t *testing.T) {
	now := time.Now()
	checks := []*model.Check{
		checkAt(now.Add(-1*time.Hour), model.StatusNeedsAttention, "Mug", "cable"),
		checkAt(now.Add(-25*time.Hour), model.StatusNeedsAttention, "mug ", "cable"),
		checkAt(now.Add(-49*time.Hour), model.StatusNeedsAttention, "MUG"),
	}

	m := Calculate(checks, nil)

	// Exactly 3 occurrences is recurring; exactly 2 never is.
	count, ok := m.IsRecurring("mug")
	require.True(t, ok, "mug appeared in 3 checks")
	assert.Equal(t, 3, count)

	_, ok = m.IsRecurring("cable")
	assert.False(t, ok, "cable appeared in only 2 checks")
}

func TestWindowExcludesOldChecks(t *testing.T) {
	now := time.Now()
	checks := []*model.Check{
		checkAt(now.Add(-31*24*time.Hour), model.StatusNeedsAttention, "mug"),
		checkAt(now.Add(-1*time.Hour), model.StatusNeedsAttention, "mug"),
		checkAt(now.Add(-2*time.Hour), model.StatusNeedsAttention, "mug"),
	}

	m := Calculate(checks, nil)
	assert.Equal(t, 2, m.TotalChecks)
	_, ok := m.IsRecurring("mug")
	assert.False(t, ok, "third occurrence was outside the 30-day window")
}

func TestEmptyHistory(t *testing.T) {
	m := Calculate(nil, nil)
	assert.Equal(t, "First check - no history yet.", m.ContextString())
	assert.Empty(t, m.RecurringItems)
	assert.Empty(t, m.Insights)
}

func TestDaypartBuckets(t *testing.T) {
	assert.Equal(t, "morning", Daypart(6))
	assert.Equal(t, "morning", Daypart(11))
	assert.Equal(t, "afternoon", Daypart(12))
	assert.Equal(t, "afternoon", Daypart(16))
	assert.Equal(t, "evening", Daypart(17))
	assert.Equal(t, "evening", Daypart(20))
	assert.Equal(t, "night", Daypart(21))
	assert.Equal(t, "night", Daypart(23))
	assert.Equal(t, "night", Daypart(0))
	assert.Equal(t, "night", Daypart(5))
}

func TestHourLabels(t *testing.T) {
	assert.Equal(t, "midnight", hourLabel(0))
	assert.Equal(t, "noon", hourLabel(12))
	assert.Equal(t, "9am", hourLabel(9))
	assert.Equal(t, "7pm", hourLabel(19))
}

func TestBestWorstDayRequiresSamples(t *testing.T) {
	stats := map[string]WinLoss{
		"Monday":  {Sorted: 3, Messy: 0}, // qualifies, 100%
		"Tuesday": {Sorted: 0, Messy: 3}, // qualifies, 0%
		"Friday":  {Sorted: 0, Messy: 2}, // too few samples
	}
	best, worst := bestWorstDay(stats)
	assert.Equal(t, "Monday", best)
	assert.Equal(t, "Tuesday", worst)
}

func TestTopItemsOrderAndLimit(t *testing.T) {
	counts := map[string]int{}
	for i := 0; i < 30; i++ {
		counts[fmt.Sprintf("item%02d", i)] = i + 1
	}
	top := topItems(counts, 20)
	require.Len(t, top, 20)
	assert.Equal(t, "item29", top[0].Item)
	assert.Equal(t, 30, top[0].Count)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Count, top[i].Count)
	}
}

func TestInsightsCapAndPriority(t *testing.T) {
	now := time.Now()
	base := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.Local)

	var checks []*model.Check
	// Mondays sorted in the morning, Tuesdays messy with a recurring mug.
	monday := base.AddDate(0, 0, -int(base.Weekday())+1)
	for i := 0; i < 3; i++ {
		checks = append(checks, checkAt(monday.AddDate(0, 0, -7*i), model.StatusSorted))
		checks = append(checks, checkAt(monday.AddDate(0, 0, -7*i+1), model.StatusNeedsAttention, "mug"))
	}
	// Push mug to 5 occurrences.
	checks = append(checks,
		checkAt(base.Add(-2*time.Hour), model.StatusNeedsAttention, "mug"),
		checkAt(base.Add(-26*time.Hour), model.StatusNeedsAttention, "mug"))

	m := Calculate(checks, nil)
	require.NotEmpty(t, m.Insights)
	assert.LessOrEqual(t, len(m.Insights), 5)
	assert.Contains(t, m.Insights[0], "mug", "top recurring item leads the insights")
}

func TestContextStringMentionsPatterns(t *testing.T) {
	now := time.Now()
	checks := []*model.Check{
		checkAt(now.Add(-1*time.Hour), model.StatusSorted),
		checkAt(now.Add(-24*time.Hour), model.StatusNeedsAttention, "mug"),
		checkAt(now.Add(-48*time.Hour), model.StatusNeedsAttention, "mug"),
		checkAt(now.Add(-72*time.Hour), model.StatusNeedsAttention, "mug"),
	}
	spot := &model.Spot{CurrentStreak: 2}

	m := Calculate(checks, spot)
	ctx := m.ContextString()
	assert.Contains(t, ctx, "Checks in the last 30 days: 4")
	assert.Contains(t, ctx, "Current streak: 2")
	assert.Contains(t, ctx, "mug (3x)")
}
