package vision

import (
	"fmt"
	"strings"
)

// minDefinitionLen is the length below which the user's notes are treated as
// minimal and the model is told to fall back to common sense.
const minDefinitionLen = 50

const commonSenseNote = `
IMPORTANT: The user hasn't provided detailed criteria. Use your COMMON SENSE to assess:
- General cleanliness and organization
- Clutter and items out of place
- Surfaces that should be clear (desks, counters, tables)
- Things that don't belong (dishes, trash, clothes in wrong areas)
- Overall tidiness appropriate for this type of space

Be helpful and identify REAL issues you can see, not just what the user mentioned.
`

const lowEnergyNote = `
ENERGY NOTE: The user is in a low-energy period. Be extra gentle and focus on just ONE
quick win they can do right now. Keep everything shorter and less overwhelming.
`

func buildPrompt(spotName, definition, voicePrompt, memoryContext string, lowEnergy bool) string {
	definition = strings.TrimSpace(definition)

	defText := definition
	if defText == "" {
		defText = "(No specific notes provided - use common sense for this type of space)"
	}
	senseNote := ""
	if len(definition) < minDefinitionLen {
		senseNote = commonSenseNote
	}
	energyNote := ""
	if lowEnergy {
		energyNote = lowEnergyNote
	}

	return fmt.Sprintf(`You are checking if %q matches its Ready State.

THE USER'S NOTES (may be minimal - use common sense if so):
%s
%s
HISTORY:
%s

YOUR PERSONALITY/VOICE:
%s
%s
TASK:
Analyze this space and provide rich, detailed feedback in your personality voice.

REQUIRED OUTPUT - Return ONLY valid JSON (no markdown, no backticks):
{
    "status": "sorted" or "needs_attention",
    "items_out_of_place": [
        {
            "item": "specific item name",
            "location": "where it is now",
            "priority": "high" or "normal" or "low",
            "quick_fix": "10-second action to fix it"
        }
    ],
    "looking_good": ["item1 in correct place", "item2 properly arranged"],
    "quick_wins": [
        {
            "action": "specific quick action",
            "time_estimate": "1 min",
            "impact": "high" or "medium" or "low"
        }
    ],
    "time_estimate": "total time to fix everything (e.g., '5 min')",
    "one_thing_focus": "THE single most important thing to do right now",
    "personality_message": "Your main observation in your full personality voice - be creative, funny, and memorable!",
    "notes": {
        "main": "Your detailed observation",
        "pattern": "Any pattern you noticed from history (or null)",
        "encouragement": "Encouragement in your voice (or null)"
    }
}

RULES:
- Be SPECIFIC. "Coffee mug on left side of desk" not "items out of place"
- STAY IN CHARACTER with your personality voice throughout
- If user provided notes, reference them; otherwise use common sense
- Reference history patterns if relevant
- Make personality_message memorable and delightful - this is what users see first!
- For quick_wins, suggest immediate actions with real time estimates
- one_thing_focus should be THE most impactful single action
- NO generic phrases. NO cliches.
- NEVER say "AI" or mention being an AI
- Do NOT include "recurring" field - that will be calculated separately`,
		spotName, defText, senseNote, memoryContext, voicePrompt, energyNote)
}
