package scheduler

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nadzzz/vaani/internal/interpreter/multilang"
)

type meridiem int

const (
	ambiguous meridiem = iota // "5 baje", "10:30": the next matching occurrence wins
	exact24
	am
	pm
	night // "raat 10" is 22:00, "raat 2" is 02:00
)

var clockPatterns = []struct {
	re   *regexp.Regexp
	mode meridiem
}{
	{regexp.MustCompile(`(\d{1,2}):(\d{2})`), ambiguous},
	{regexp.MustCompile(`(\d{1,2})\s*am`), am},
	{regexp.MustCompile(`(\d{1,2})\s*pm`), pm},
	{regexp.MustCompile(`(\d{1,2})\s*(?:baje|vaagya|o'?clock)`), ambiguous},
	{regexp.MustCompile(`(?:subah|morning|savare)\s*(\d{1,2})`), am},
	{regexp.MustCompile(`(?:sham|evening|saanje)\s*(\d{1,2})`), pm},
	{regexp.MustCompile(`(?:raat|night|raate)\s*(\d{1,2})`), night},
}

var tomorrowWords = map[string]struct{}{"kal": {}, "kale": {}, "tomorrow": {}}

// Hours used for bare day markers.
const (
	todayHour    = 18
	tomorrowHour = 9
)

// ResolveTime turns a spoken time expression into an absolute time after
// now, in now's location. The utterance is consulted for a "tomorrow"
// marker that the expression itself dropped ("kal 5 baje" yields "5 baje").
// It reports false when the expression names no usable time.
func ResolveTime(expr, utterance string, now time.Time) (time.Time, bool) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	switch expr {
	case "":
		return time.Time{}, false
	case multilang.TimeNow:
		return now, true
	case multilang.TimeToday:
		if t := at(now, todayHour, 0); t.After(now) {
			return t, true
		}
		return now, true
	case multilang.TimeTomorrow:
		return at(now, tomorrowHour, 0).AddDate(0, 0, 1), true
	}

	hour, minute, mode, ok := parseClock(expr)
	if !ok {
		return time.Time{}, false
	}

	if mentionsTomorrow(utterance) {
		return at(now, hour, minute).AddDate(0, 0, 1), true
	}

	candidates := []time.Time{at(now, hour, minute)}
	if mode == ambiguous && hour < 12 {
		candidates = append(candidates, at(now, hour+12, minute))
	}
	for _, c := range candidates {
		if c.After(now) {
			return c, true
		}
	}
	return candidates[0].AddDate(0, 0, 1), true
}

func parseClock(expr string) (hour, minute int, mode meridiem, ok bool) {
	matched := false
	for _, p := range clockPatterns {
		m := p.re.FindStringSubmatch(expr)
		if m == nil {
			continue
		}
		hour, _ = strconv.Atoi(m[1])
		if len(m) > 2 {
			minute, _ = strconv.Atoi(m[2])
		}
		mode = p.mode
		matched = true
		break
	}
	if !matched || minute > 59 {
		return 0, 0, 0, false
	}

	switch mode {
	case ambiguous:
		if hour > 12 {
			mode = exact24
		}
		if hour > 23 {
			return 0, 0, 0, false
		}
	case am, pm, night:
		if hour < 1 || hour > 12 {
			return 0, 0, 0, false
		}
		hour %= 12
		if mode == pm || (mode == night && hour >= 6) {
			hour += 12
		}
	}
	return hour, minute, mode, true
}

func mentionsTomorrow(utterance string) bool {
	for _, w := range strings.Fields(strings.ToLower(utterance)) {
		if _, ok := tomorrowWords[strings.Trim(w, ".,!?")]; ok {
			return true
		}
	}
	return false
}

func at(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}
