package multilang

import "regexp"

// Relative day markers, returned in canonical English form.
const (
	TimeTomorrow = "tomorrow"
	TimeToday    = "today"
	TimeNow      = "now"
)

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*(?:baje|vaagya|o'?clock|pm|am)`),
	regexp.MustCompile(`(?:subah|morning|savare)\s*(\d+)`),
	regexp.MustCompile(`(?:sham|evening|saanje)\s*(\d+)`),
	regexp.MustCompile(`(?:raat|night|raate)\s*(\d+)`),
	regexp.MustCompile(`(\d+:\d+)`),
}

var relativeTimes = []struct {
	canonical string
	markers   []string
}{
	{TimeTomorrow, []string{"kal", "tomorrow", "kale"}},
	{TimeToday, []string{"aaj", "today", "aaje"}},
	{TimeNow, []string{"abhi", "now", "aabhi"}},
}

// ExtractTime returns the first clock expression found (the whole match,
// e.g. "5 baje"), else a canonical relative marker, else "".
func (i *Interpreter) ExtractTime(u Utterance) string {
	for _, re := range timePatterns {
		if m := re.FindString(u.Normalized); m != "" {
			return m
		}
	}
	for _, rel := range relativeTimes {
		if containsAny(u.Normalized, rel.markers) {
			return rel.canonical
		}
	}
	return ""
}
