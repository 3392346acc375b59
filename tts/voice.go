package tts

import "strings"

// voicePresets maps the selectable voice options to name hints.
var voicePresets = map[string]string{
	"default":  "",
	"female-1": "Samantha",
	"female-2": "Victoria",
	"female-3": "Allison",
	"male-1":   "Daniel",
}

// PresetHint returns the voice name hint for a voice option. Unknown options
// have no hint.
func PresetHint(option string) string {
	return voicePresets[option]
}

// femaleNames are voice names known to be female on common platforms.
var femaleNames = []string{"female", "samantha", "victoria"}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func isFemale(v Voice) bool {
	if strings.EqualFold(v.Gender, "female") {
		return true
	}
	for _, name := range femaleNames {
		if containsFold(v.Name, name) {
			return true
		}
	}
	return false
}

// SelectVoice picks the voice to speak with. A voice whose name contains hint
// wins; failing that the first female voice; failing that the zero Voice,
// which asks for the platform default.
func SelectVoice(voices []Voice, hint string) Voice {
	if hint != "" {
		for _, v := range voices {
			if containsFold(v.Name, hint) || strings.EqualFold(v.ID, hint) {
				return v
			}
		}
	}
	for _, v := range voices {
		if isFemale(v) {
			return v
		}
	}
	return Voice{}
}
