package multilang

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is the single language tag assigned to an utterance.
type Language string

const (
	English  Language = "en"
	Hindi    Language = "hi"
	Gujarati Language = "gu"
)

// Languages lists the supported languages in phrase-scan order.
var Languages = []Language{English, Hindi, Gujarati}

// Tag returns the BCP 47 tag for l, defaulting to English.
func (l Language) Tag() language.Tag {
	switch l {
	case Hindi:
		return language.Hindi
	case Gujarati:
		return language.Gujarati
	default:
		return language.English
	}
}

// ParseLanguage maps an ISO-639-1 code or language name to a Language.
// Anything unrecognised is English.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hi", "hindi":
		return Hindi
	case "gu", "gujarati":
		return Gujarati
	default:
		return English
	}
}

// languageMarker is an explicit request for a language ("hindi mein").
type languageMarker struct {
	lang    Language
	markers []string
}

// Checked in order: a text naming two languages resolves to the earlier entry.
var languageMarkers = []languageMarker{
	{Hindi, []string{"hindi", "hindi me", "hindi mein", "हिंदी में"}},
	{Gujarati, []string{"gujarati", "gujarati ma", "gujarati me", "ગુજરાતી માં"}},
	{English, []string{"english", "english me", "english mein", "angrezi"}},
}

const (
	devanagariFirst = 0x0900
	devanagariLast  = 0x097F
	gujaratiFirst   = 0x0A80
	gujaratiLast    = 0x0AFF
)

// DetectLanguage assigns exactly one language. Explicit markers win over
// script detection, which wins over the English default. Latin-script
// Hinglish and Gujlish are indistinguishable from English here and come
// out as English.
func DetectLanguage(u Utterance) Language {
	for _, m := range languageMarkers {
		if containsAny(u.Normalized, m.markers) {
			return m.lang
		}
	}

	var hasDevanagari, hasGujarati bool
	for _, r := range u.Raw {
		switch {
		case r >= devanagariFirst && r <= devanagariLast:
			hasDevanagari = true
		case r >= gujaratiFirst && r <= gujaratiLast:
			hasGujarati = true
		}
	}
	if hasDevanagari {
		return Hindi
	}
	if hasGujarati {
		return Gujarati
	}
	return English
}
