package multilang

import (
	"regexp"
	"strings"
)

var (
	singleQuoted = regexp.MustCompile(`'([^']+)'`)
	doubleQuoted = regexp.MustCompile(`"([^"]+)"`)
)

// contentPattern isolates a candidate message span; filler tokens are
// dropped from the capture before it is accepted.
type contentPattern struct {
	re     *regexp.Regexp
	filler map[string]struct{}
}

var contentPatterns = []contentPattern{
	{
		// "mummy ko hay bhej do", "mummy ne hay mukhi de"
		re:     regexp.MustCompile(`(?:ko|ne)\s+(.+?)\s+(?:bhej|moklo|send|mukhi|mukho|de|do)`),
		filler: stopSet("karo", "kar", "please", "message", "msg", "whatsapp", "per", "par", "pe", "mein", "ma"),
	},
	{
		// "send hay to mummy"
		re:     regexp.MustCompile(`(?:bhej|bhejo|send|moklo|mokalo|mukhi|mukho)\s+(.+?)(?:\s+(?:ko|ne|to|par|pe|mein|ma)|$)`),
		filler: stopSet("karo", "de", "do", "dena", "message", "msg"),
	},
	{
		// "hay bhej do"
		re: regexp.MustCompile(`(?:^|\s)(.+?)\s+(?:bhej|moklo|send|mukhi|mukho|de|do)(?:\s|$)`),
		filler: stopSet("karo", "kar", "dena", "ko", "ne", "par", "pe", "per", "mein", "ma",
			"whatsapp", "message", "msg", "mummy", "papa", "bhai", "sister"),
	},
}

// ExtractMessage pulls the message body out of a send request. Quoted text
// wins outright: single quotes first, then double quotes, both read from the
// original casing. Returns "" when no pattern yields a non-filler span.
func (i *Interpreter) ExtractMessage(u Utterance) string {
	if m := singleQuoted.FindStringSubmatch(u.Raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := doubleQuoted.FindStringSubmatch(u.Raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	for _, p := range contentPatterns {
		m := p.re.FindStringSubmatch(u.Normalized)
		if m == nil {
			continue
		}
		if msg := dropWords(strings.TrimSpace(m[1]), p.filler); msg != "" {
			return msg
		}
	}
	return ""
}

func dropWords(span string, drop map[string]struct{}) string {
	words := strings.Fields(span)
	kept := words[:0]
	for _, w := range words {
		if _, ok := drop[w]; !ok {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
