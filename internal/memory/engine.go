// Package memory derives tidiness patterns from a spot's check history.
// Everything here is pure computation over the trailing 30-day window; the
// result lives for one request and is never persisted.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tidyspot/internal/model"
)

const (
	// Window is how far back the engine looks.
	Window = 30 * 24 * time.Hour

	// recurringThreshold is the number of distinct checks an item must
	// appear in before it counts as recurring.
	recurringThreshold = 3

	topItemLimit = 20
	maxInsights  = 5
	minDaySample = 3
)

// WinLoss tallies sorted vs needs_attention outcomes for one bucket.
type WinLoss struct {
	Sorted int `json:"sorted"`
	Messy  int `json:"messy"`
}

func (w WinLoss) total() int { return w.Sorted + w.Messy }

func (w WinLoss) ratio() float64 {
	if w.total() == 0 {
		return 0
	}
	return float64(w.Sorted) / float64(w.total())
}

// ItemCount is one entry of the frequency table.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// Memory is the derived pattern summary for one spot.
type Memory struct {
	TotalChecks     int                `json:"total_checks"`
	LastStatus      string             `json:"last_status,omitempty"`
	RecurringItems  map[string]int     `json:"recurring_items"`
	TopItems        []ItemCount        `json:"top_items"`
	WeekdayStats    map[string]WinLoss `json:"weekday_stats"`
	DaypartStats    map[string]WinLoss `json:"daypart_stats"`
	BestDay         string             `json:"best_day,omitempty"`
	WorstDay        string             `json:"worst_day,omitempty"`
	UsualSortedTime string             `json:"usual_sorted_time,omitempty"`
	Insights        []string           `json:"insights"`

	currentStreak int
}

var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var daypartOrder = []string{"morning", "afternoon", "evening", "night"}

// Daypart buckets an hour of day.
func Daypart(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// Calculate derives patterns from the spot's checks. Checks older than the
// window are ignored regardless of what the caller passes in.
func Calculate(checks []*model.Check, spot *model.Spot) *Memory {
	m := &Memory{
		RecurringItems: map[string]int{},
		WeekdayStats:   map[string]WinLoss{},
		DaypartStats:   map[string]WinLoss{},
		Insights:       []string{},
	}
	if spot != nil {
		m.currentStreak = spot.CurrentStreak
	}

	cutoff := time.Now().Add(-Window)
	itemCounts := map[string]int{} // normalized name -> distinct check count
	hourSorted := map[int]int{}

	for _, c := range checks {
		if c.Timestamp.Before(cutoff) {
			continue
		}
		if c.Status != model.StatusSorted && c.Status != model.StatusNeedsAttention {
			continue
		}
		m.TotalChecks++
		m.LastStatus = c.Status

		weekday := c.Timestamp.Weekday().String()
		daypart := Daypart(c.Timestamp.Hour())
		wd := m.WeekdayStats[weekday]
		dp := m.DaypartStats[daypart]
		if c.Status == model.StatusSorted {
			wd.Sorted++
			dp.Sorted++
			hourSorted[c.Timestamp.Hour()]++
		} else {
			wd.Messy++
			dp.Messy++
		}
		m.WeekdayStats[weekday] = wd
		m.DaypartStats[daypart] = dp

		// Count each item once per check.
		seen := map[string]bool{}
		for _, it := range c.ToSort {
			name := normalizeItem(it.Item)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			itemCounts[name]++
		}
	}

	for name, n := range itemCounts {
		if n >= recurringThreshold {
			m.RecurringItems[name] = n
		}
	}
	m.TopItems = topItems(itemCounts, topItemLimit)
	m.BestDay, m.WorstDay = bestWorstDay(m.WeekdayStats)
	m.UsualSortedTime = usualSortedTime(hourSorted)
	m.Insights = m.buildInsights()
	return m
}

// IsRecurring reports whether an item name matches a recurring item and
// returns its occurrence count.
func (m *Memory) IsRecurring(item string) (int, bool) {
	n, ok := m.RecurringItems[normalizeItem(item)]
	return n, ok
}

func normalizeItem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func topItems(counts map[string]int, limit int) []ItemCount {
	out := make([]ItemCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ItemCount{Item: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Item < out[j].Item
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// bestWorstDay picks the weekdays with the highest and lowest sorted ratio.
// Days with fewer than minDaySample checks do not qualify; ties keep the
// first weekday in Monday..Sunday order.
func bestWorstDay(stats map[string]WinLoss) (best, worst string) {
	bestRatio, worstRatio := -1.0, 2.0
	for _, day := range weekdayOrder {
		wl, ok := stats[day]
		if !ok || wl.total() < minDaySample {
			continue
		}
		r := wl.ratio()
		if r > bestRatio {
			bestRatio = r
			best = day
		}
		if r < worstRatio {
			worstRatio = r
			worst = day
		}
	}
	return best, worst
}

// usualSortedTime finds the hour with the most sorted outcomes and renders
// it as a 12-hour label.
func usualSortedTime(hourSorted map[int]int) string {
	bestHour, bestCount := -1, 0
	for h := 0; h < 24; h++ {
		if hourSorted[h] > bestCount {
			bestHour, bestCount = h, hourSorted[h]
		}
	}
	if bestHour < 0 {
		return ""
	}
	return hourLabel(bestHour)
}

func hourLabel(h int) string {
	switch {
	case h == 0:
		return "midnight"
	case h == 12:
		return "noon"
	case h < 12:
		return fmt.Sprintf("%dam", h)
	default:
		return fmt.Sprintf("%dpm", h-12)
	}
}

// buildInsights renders at most maxInsights short observations, highest
// priority first.
func (m *Memory) buildInsights() []string {
	insights := []string{}

	if len(m.TopItems) > 0 {
		top := m.TopItems[0]
		if top.Count >= 5 {
			insights = append(insights, fmt.Sprintf(
				"%q keeps showing up - %d times this month. Maybe it needs a home?",
				top.Item, top.Count))
		}
	}

	if m.BestDay != "" && m.WorstDay != "" && m.BestDay != m.WorstDay {
		insights = append(insights, fmt.Sprintf(
			"%ss are your strongest day; %ss tend to slip.", m.BestDay, m.WorstDay))
	}

	for _, dp := range daypartOrder {
		wl, ok := m.DaypartStats[dp]
		if !ok || wl.total() < minDaySample {
			continue
		}
		if wl.ratio() >= 0.7 {
			insights = append(insights, fmt.Sprintf("You're most tidy in the %s.", dp))
			break
		}
	}

	total := WinLoss{}
	for _, wl := range m.WeekdayStats {
		total.Sorted += wl.Sorted
		total.Messy += wl.Messy
	}
	if total.total() >= 5 {
		switch r := total.ratio(); {
		case r >= 0.8:
			insights = append(insights, "This spot stays sorted most of the time. Great habits!")
		case r <= 0.3:
			insights = append(insights, "This spot is a trouble zone. A smaller definition of done might help.")
		}
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// MaxSeenCount returns the occurrence count of the most frequent item, 0
// with no history.
func (m *Memory) MaxSeenCount() int {
	if len(m.TopItems) == 0 {
		return 0
	}
	return m.TopItems[0].Count
}

// ContextString renders the memory as compact prompt lines for the analyzer.
func (m *Memory) ContextString() string {
	if m.TotalChecks == 0 {
		return "First check - no history yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Checks in the last 30 days: %d\n", m.TotalChecks)
	fmt.Fprintf(&b, "Last status: %s\n", m.LastStatus)
	fmt.Fprintf(&b, "Current streak: %d\n", m.currentStreak)

	if len(m.TopItems) > 0 {
		b.WriteString("Frequent offenders:")
		for i, it := range m.TopItems {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, " %s (%dx)", it.Item, it.Count)
		}
		b.WriteString("\n")
	}
	if m.BestDay != "" {
		fmt.Fprintf(&b, "Best day: %s\n", m.BestDay)
	}
	if m.WorstDay != "" {
		fmt.Fprintf(&b, "Worst day: %s\n", m.WorstDay)
	}
	if m.UsualSortedTime != "" {
		fmt.Fprintf(&b, "Usually sorted around %s\n", m.UsualSortedTime)
	}
	return strings.TrimRight(b.String(), "\n")
}
