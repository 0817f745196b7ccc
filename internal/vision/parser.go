package vision

import (
	"encoding/json"
	"strings"

	"tidyspot/internal/model"
)

// richAnalysis is the detailed breakdown persisted alongside a check.
type richAnalysis struct {
	ItemsOutOfPlace    []model.ToSortItem `json:"items_out_of_place"`
	QuickWins          []quickWin         `json:"quick_wins"`
	TimeEstimate       string             `json:"time_estimate"`
	OneThingFocus      string             `json:"one_thing_focus,omitempty"`
	PersonalityMessage string             `json:"personality_message,omitempty"`
	Notes              analysisNotes      `json:"notes"`
}

type quickWin struct {
	Action       string `json:"action"`
	TimeEstimate string `json:"time_estimate"`
	Impact       string `json:"impact"`
}

type analysisNotes struct {
	Main          string `json:"main"`
	Pattern       string `json:"pattern,omitempty"`
	Encouragement string `json:"encouragement,omitempty"`
}

// strictAnalysis is the schema the model is asked for.
type strictAnalysis struct {
	Status             string             `json:"status"`
	ItemsOutOfPlace    []model.ToSortItem `json:"items_out_of_place"`
	LookingGood        []string           `json:"looking_good"`
	QuickWins          []quickWin         `json:"quick_wins"`
	TimeEstimate       string             `json:"time_estimate"`
	OneThingFocus      string             `json:"one_thing_focus"`
	PersonalityMessage string             `json:"personality_message"`
	Notes              analysisNotes      `json:"notes"`
}

// parseResponse extracts the model's JSON verdict from a raw API response.
// Strict schema first, then the permissive legacy parser; a reply that is
// not JSON at all becomes an error result.
func parseResponse(body []byte) model.CheckResult {
	var env geminiResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return errorResult("Failed to parse API response: "+err.Error(), 0)
	}
	if len(env.Candidates) == 0 {
		return errorResult("No response from API", 0)
	}
	parts := env.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return errorResult("Empty response from API", 0)
	}

	text := stripFences(parts[0].Text)

	if res, ok := parseStrict(text); ok {
		return res
	}
	return parseLegacy(text)
}

// stripFences removes a leading ```json / ``` fence and a trailing ```.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func parseStrict(text string) (model.CheckResult, bool) {
	var a strictAnalysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return model.CheckResult{}, false
	}
	if a.Status != model.StatusSorted && a.Status != model.StatusNeedsAttention {
		return model.CheckResult{}, false
	}
	for _, it := range a.ItemsOutOfPlace {
		if it.Item == "" {
			return model.CheckResult{}, false
		}
		switch it.Priority {
		case model.PriorityHigh, model.PriorityNormal, model.PriorityLow:
		default:
			return model.CheckResult{}, false
		}
	}
	return buildResult(a), true
}

// parseLegacy tolerates missing fields, the old to_sort key, bare-string
// items, and unknown priorities.
func parseLegacy(text string) model.CheckResult {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return errorResult("Failed to parse API response: "+err.Error(), 0)
	}

	a := strictAnalysis{TimeEstimate: "5 min"}

	if status := rawString(raw["status"]); status == model.StatusSorted {
		a.Status = model.StatusSorted
	} else {
		a.Status = model.StatusNeedsAttention
	}

	itemsRaw, ok := raw["items_out_of_place"]
	if !ok {
		itemsRaw = raw["to_sort"]
	}
	a.ItemsOutOfPlace = legacyItems(itemsRaw)

	_ = json.Unmarshal(raw["looking_good"], &a.LookingGood)
	_ = json.Unmarshal(raw["quick_wins"], &a.QuickWins)
	if te := rawString(raw["time_estimate"]); te != "" {
		a.TimeEstimate = te
	}
	a.OneThingFocus = rawString(raw["one_thing_focus"])
	a.PersonalityMessage = rawString(raw["personality_message"])
	if err := json.Unmarshal(raw["notes"], &a.Notes); err != nil {
		// Some replies put a plain string where the notes object goes.
		a.Notes = analysisNotes{Main: rawString(raw["notes"])}
	}
	return buildResult(a)
}

func legacyItems(data json.RawMessage) []model.ToSortItem {
	if len(data) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	var out []model.ToSortItem
	for _, e := range entries {
		var it model.ToSortItem
		if err := json.Unmarshal(e, &it); err == nil && it.Item != "" {
			it.Priority = model.NormalizePriority(it.Priority)
			it.Recurring = false
			it.SeenCount = 0
			out = append(out, it)
			continue
		}
		var s string
		if err := json.Unmarshal(e, &s); err == nil && s != "" {
			out = append(out, model.ToSortItem{Item: s, Priority: model.PriorityNormal})
		}
	}
	return out
}

func rawString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

func buildResult(a strictAnalysis) model.CheckResult {
	if a.ItemsOutOfPlace == nil {
		a.ItemsOutOfPlace = []model.ToSortItem{}
	}
	if a.LookingGood == nil {
		a.LookingGood = []string{}
	}
	blob, _ := json.Marshal(richAnalysis{
		ItemsOutOfPlace:    a.ItemsOutOfPlace,
		QuickWins:          a.QuickWins,
		TimeEstimate:       a.TimeEstimate,
		OneThingFocus:      a.OneThingFocus,
		PersonalityMessage: a.PersonalityMessage,
		Notes:              a.Notes,
	})
	return model.CheckResult{
		Status:      a.Status,
		ToSort:      a.ItemsOutOfPlace,
		LookingGood: a.LookingGood,
		Notes:       a.Notes.Main,
		Analysis:    blob,
	}
}
