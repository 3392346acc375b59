package tts

import "testing"

func TestSelectVoice(t *testing.T) {
	voices := []Voice{
		{ID: "alex", Name: "Alex", Gender: "male"},
		{ID: "daniel", Name: "Daniel (en-GB)"},
		{ID: "vic", Name: "Victoria"},
		{ID: "en_US-amy", Name: "Amy", Gender: "female"},
	}

	tests := []struct {
		name   string
		voices []Voice
		hint   string
		want   string
	}{
		{"hint by name", voices, "Daniel", "daniel"},
		{"hint ignores case", voices, "daniel", "daniel"},
		{"hint by id", voices, "en_US-amy", "en_US-amy"},
		{"no hint prefers female", voices, "", "vic"},
		{"unknown hint prefers female", voices, "Allison", "vic"},
		{"gender flag", []Voice{{ID: "a", Name: "A"}, {ID: "b", Name: "B", Gender: "Female"}}, "", "b"},
		{"name says female", []Voice{{ID: "x", Name: "Google US English Female"}}, "", "x"},
		{"falls back to default", []Voice{{ID: "alex", Name: "Alex"}}, "", ""},
		{"no voices", nil, "Samantha", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectVoice(tt.voices, tt.hint); got.ID != tt.want {
				t.Errorf("SelectVoice() = %+v, want id %q", got, tt.want)
			}
		})
	}
}

func TestPresetHint(t *testing.T) {
	tests := map[string]string{
		"default":  "",
		"female-1": "Samantha",
		"female-2": "Victoria",
		"female-3": "Allison",
		"male-1":   "Daniel",
		"unknown":  "",
	}
	for option, want := range tests {
		if got := PresetHint(option); got != want {
			t.Errorf("PresetHint(%q) = %q, want %q", option, got, want)
		}
	}
}
