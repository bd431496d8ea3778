package multilang

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Utterance is one interpreted input. Raw keeps the caller's casing for
// quote extraction and script inspection; Normalized is what the phrase
// tables and positional patterns scan.
type Utterance struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// IsEmpty reports whether the utterance has no content after trimming.
func (u Utterance) IsEmpty() bool {
	return u.Normalized == ""
}

// Normalize trims and lower-cases text. Input is NFC-composed first so that
// script-level matching sees the same code points the phrase tables use.
// Scripts without case (Devanagari, Gujarati) pass through unchanged.
func Normalize(text string) Utterance {
	raw := strings.TrimSpace(norm.NFC.String(text))
	if raw == "" {
		return Utterance{}
	}
	// A Caser holds state, so each call gets its own.
	lower := cases.Lower(language.Und).String(raw)
	return Utterance{
		Raw:        raw,
		Normalized: strings.TrimSpace(lower),
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
