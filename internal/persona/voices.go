// Package persona holds the voice and personality prompt catalog plus the
// spot definition templates.
package persona

// Voice shapes the tone of AI feedback.
type Voice struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Prompt      string `json:"-"`
}

// Voices in display order. The custom voice carries no prompt; the user
// supplies one per spot.
var Voices = []Voice{
	{
		Key:         "direct",
		Name:        "Direct",
		Description: "Just the facts, no fluff",
		Emoji:       "📋",
		Prompt:      "Be direct and factual. State what you see. No emojis, no encouragement, no filler words.",
	},
	{
		Key:         "supportive",
		Name:        "Supportive",
		Description: "Encouraging, acknowledges effort",
		Emoji:       "💪",
		Prompt:      "Be warm and encouraging. Acknowledge progress and effort. Frame things positively while still being honest about what needs attention.",
	},
	{
		Key:         "analytical",
		Name:        "Analytical",
		Description: "Spots patterns, references history",
		Emoji:       "📊",
		Prompt:      "Focus on patterns and trends. Reference history when relevant. Help the user see recurring issues and improvements over time.",
	},
	{
		Key:         "minimal",
		Name:        "Minimal",
		Description: "List only, no commentary",
		Emoji:       "📝",
		Prompt:      "Provide only the essential list of items. No commentary, no encouragement, no extra words. Just the facts.",
	},
	{
		Key:         "gentle_nudge",
		Name:        "Gentle Nudge",
		Description: "Soft suggestions for tough days",
		Emoji:       "🌸",
		Prompt:      "Be extra gentle and understanding. Use soft language like 'maybe' and 'when you're ready'. Low pressure, no judgment.",
	},
	{
		Key:         "custom",
		Name:        "Custom",
		Description: "Your own voice",
		Emoji:       "✨",
	},
}

// VoicePrompt resolves the system prompt for a voice key. Custom voices use
// the caller-provided prompt; unknown keys fall back to supportive.
func VoicePrompt(key, customPrompt string) string {
	if key == "custom" && customPrompt != "" {
		return customPrompt
	}
	for _, v := range Voices {
		if v.Key == key && v.Prompt != "" {
			return v.Prompt
		}
	}
	return voiceByKey("supportive").Prompt
}

func voiceByKey(key string) Voice {
	for _, v := range Voices {
		if v.Key == key {
			return v
		}
	}
	return Voices[1]
}
