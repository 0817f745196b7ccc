package vision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyspot/internal/model"
)

func envelope(t *testing.T, text string) []byte {
	t.Helper()
	env := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return b
}

func TestParseStrictResponse(t *testing.T) {
	text := "```json\n" + `{
		"status": "needs_attention",
		"items_out_of_place": [
			{"item": "coffee mug", "location": "left side of desk", "priority": "high", "quick_fix": "carry to kitchen"}
		],
		"looking_good": ["monitor centered"],
		"quick_wins": [{"action": "move the mug", "time_estimate": "1 min", "impact": "high"}],
		"time_estimate": "3 min",
		"one_thing_focus": "move the mug",
		"personality_message": "Arr, flotsam on the deck!",
		"notes": {"main": "One stray mug."}
	}` + "\n```"

	res := parseResponse(envelope(t, text))
	require.Equal(t, model.StatusNeedsAttention, res.Status)
	require.Len(t, res.ToSort, 1)
	assert.Equal(t, "coffee mug", res.ToSort[0].Item)
	assert.Equal(t, "high", res.ToSort[0].Priority)
	assert.Equal(t, []string{"monitor centered"}, res.LookingGood)
	assert.Equal(t, "One stray mug.", res.Notes)
	assert.NotEmpty(t, res.Analysis)

	var blob richAnalysis
	require.NoError(t, json.Unmarshal(res.Analysis, &blob))
	assert.Equal(t, "3 min", blob.TimeEstimate)
	assert.Equal(t, "Arr, flotsam on the deck!", blob.PersonalityMessage)
}

func TestParseLegacyCoercesPriority(t *testing.T) {
	// "urgent" is not a valid priority; strict parsing must fail and the
	// legacy parser coerces it to normal.
	text := `{"status": "needs_attention", "to_sort": [{"item": "papers", "priority": "urgent"}]}`

	res := parseResponse(envelope(t, text))
	require.Equal(t, model.StatusNeedsAttention, res.Status)
	require.Len(t, res.ToSort, 1)
	assert.Equal(t, model.PriorityNormal, res.ToSort[0].Priority)
}

func TestParseLegacyStringItems(t *testing.T) {
	text := `{"status": "bogus_status", "items_out_of_place": ["socks", "charger"]}`

	res := parseResponse(envelope(t, text))
	// Unknown status coerces to needs_attention.
	assert.Equal(t, model.StatusNeedsAttention, res.Status)
	require.Len(t, res.ToSort, 2)
	assert.Equal(t, "socks", res.ToSort[0].Item)
	assert.Equal(t, model.PriorityNormal, res.ToSort[0].Priority)
}

func TestParseSortedWithNoItems(t *testing.T) {
	text := `{"status": "sorted", "items_out_of_place": [], "looking_good": ["all clear"], "notes": {"main": "Spotless."}}`

	res := parseResponse(envelope(t, text))
	assert.Equal(t, model.StatusSorted, res.Status)
	assert.Empty(t, res.ToSort)
	assert.Equal(t, "Spotless.", res.Notes)
}

func TestParseNoCandidates(t *testing.T) {
	res := parseResponse([]byte(`{"candidates": []}`))
	assert.Equal(t, model.StatusError, res.Status)
	assert.Contains(t, res.Error, "No response")
}

func TestParseNonJSONReply(t *testing.T) {
	res := parseResponse(envelope(t, "I cannot analyze this image."))
	assert.Equal(t, model.StatusError, res.Status)
	assert.Contains(t, res.Error, "Failed to parse API response")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
