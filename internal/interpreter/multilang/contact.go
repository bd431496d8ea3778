package multilang

import (
	"regexp"
	"strings"
)

// word is a Unicode-aware \w so names in Devanagari or Gujarati keep their
// vowel signs.
const word = `([\p{L}\p{M}\p{N}_]+)`

// contactPatterns run in order; the most specific positions come first and
// bare postposition patterns come last.
var contactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^` + word + `\s+(?:whatsapp|message)`),
	regexp.MustCompile(`^` + word + `\s+(?:ko|ne)`),
	regexp.MustCompile(word + `\s+(?:ko|ne)\s+`),
	regexp.MustCompile(`(?:whatsapp|message)\s+(?:par|mein|ma|pe|maa)\s+` + word),
	regexp.MustCompile(`(?:par|mein|ma|pe)\s+` + word + `\s+(?:ko|ne)`),
	regexp.MustCompile(`(?:ko|ne)\s+` + word),
}

var contactStopWords = stopSet(
	"whatsapp", "message", "msg", "bhej", "bhejo", "moklo", "mokalo",
	"send", "par", "mein", "ma", "pe", "do", "karo", "hello", "hi", "maa", "per",
)

// ExtractContact resolves the contact named in u. Registry variations win;
// otherwise the first positional capture that is not a command word is
// returned as-is. Returns "" when nothing qualifies.
func (i *Interpreter) ExtractContact(u Utterance) string {
	if name, ok := matchAlias(u.Normalized, i.contacts); ok {
		return name
	}

	for _, re := range contactPatterns {
		m := re.FindStringSubmatch(u.Normalized)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if _, stop := contactStopWords[name]; stop {
			continue
		}
		return name
	}
	return ""
}

func stopSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
