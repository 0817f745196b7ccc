package persona

import "strings"

// SpotTemplates seed the free-text definition per spot type.
var SpotTemplates = map[string]string{
	"work": `This is my work area. I need a clear surface to focus.

Things that should be here:
- Laptop/monitor
- Keyboard and mouse
- Notepad/pen

Things that shouldn't be here:
- Coffee cups or dishes
- Random papers
- Clutter`,

	"chill": `This is where I relax. Should feel calm and uncluttered.

Things that are fine here:
- Remote controls
- Blankets/pillows
- Books I'm reading

Things that shouldn't pile up:
- Empty cups/plates
- Random items
- Clutter`,

	"sleep": `This is my sleep space. Should be calm and ready for rest.

Ready state:
- Bed made
- No clothes on floor
- Nightstand clear except essentials`,

	"kitchen": `This is my kitchen area. Should be clear and ready to use.

Ready state:
- Counters clear
- Dishes put away
- No food left out`,

	"entryway": `This is my entryway. First thing I see coming home.

Ready state:
- Shoes in rack/organised
- No bags on floor
- Keys in place`,

	"storage": `This is a storage area. Things should be organised.

What belongs here:
- Specific items for this space

Signs it needs sorting:
- Items out of place
- Things piling up`,

	"custom": `Describe this space in your own words.

What is it for?
What should it look like when ready?
What shouldn't be here?`,
}

var typeKeywords = []struct {
	spotType string
	terms    []string
}{
	{"work", []string{"desk", "office", "work", "study"}},
	{"kitchen", []string{"kitchen", "cook", "fridge"}},
	{"sleep", []string{"bed", "sleep", "bedroom"}},
	{"chill", []string{"living", "lounge", "couch", "tv", "chill"}},
	{"entryway", []string{"entry", "door", "hall", "foyer"}},
	{"storage", []string{"garage", "storage", "closet", "basement"}},
}

// SuggestType guesses a spot type from a camera name and identifier.
func SuggestType(name, cameraID string) string {
	combined := strings.ToLower(name + " " + cameraID)
	for _, tk := range typeKeywords {
		for _, term := range tk.terms {
			if strings.Contains(combined, term) {
				return tk.spotType
			}
		}
	}
	return "custom"
}
