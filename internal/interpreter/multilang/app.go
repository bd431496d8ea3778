package multilang

import "strings"

// ExtractApp strips the open_app keywords of every language and matches the
// remainder against the app registry. An unregistered remainder is returned
// verbatim, so the result may be an arbitrary (possibly empty) string.
func (i *Interpreter) ExtractApp(u Utterance) string {
	rest := stripPhrases(u.Normalized, i.phrasesFor(CommandOpenApp))
	if name, ok := matchAlias(rest, i.apps); ok {
		return name
	}
	return rest
}

// ExtractQuery returns what to search for in a play_youtube request.
func (i *Interpreter) ExtractQuery(u Utterance) string {
	rest := stripPhrases(u.Normalized, i.phrasesFor(CommandPlayYouTube))
	return strings.Join(strings.Fields(rest), " ")
}

// stripPhrases removes each phrase in order, trimming after every removal.
// Removal is by substring, so a short phrase can eat part of a longer word.
func stripPhrases(text string, phrases []string) string {
	for _, p := range phrases {
		text = strings.TrimSpace(strings.ReplaceAll(text, p, ""))
	}
	return text
}
