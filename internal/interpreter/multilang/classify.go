package multilang

// Classify assigns exactly one command type to u. The reason is non-empty
// only for CommandNone.
//
// whatsapp_send is tested first: either an explicit WhatsApp marker or a
// postposition ("ko", "ne") together with a send verb. The postposition
// path catches elliptical Hindi/Gujarati requests such as
// "mummy ko hello bhej do" that never name the app.
func (i *Interpreter) Classify(u Utterance) (CommandType, string) {
	text := u.Normalized
	if text == "" {
		return CommandNone, ReasonUnrecognized
	}

	hasSendVerb := containsAny(text, sendVerbs)
	if hasSendVerb && containsAny(text, whatsappMarkers) {
		return CommandWhatsAppSend, ""
	}
	if hasSendVerb && containsAny(text, postpositionMarkers) {
		return CommandWhatsAppSend, ""
	}

	for _, entry := range i.commands {
		if entry.Type == CommandWhatsAppSend {
			continue
		}
		for _, lang := range Languages {
			if containsAny(text, entry.Phrases[lang]) {
				return entry.Type, ""
			}
		}
	}
	return CommandNone, ReasonUnrecognized
}

// phrasesFor returns every phrase registered for cmd across all languages,
// in scan order.
func (i *Interpreter) phrasesFor(cmd CommandType) []string {
	for _, entry := range i.commands {
		if entry.Type != cmd {
			continue
		}
		var out []string
		for _, lang := range Languages {
			out = append(out, entry.Phrases[lang]...)
		}
		return out
	}
	return nil
}
