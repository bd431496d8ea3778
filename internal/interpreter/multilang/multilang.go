// Package multilang interprets free-text commands in English, Hindi,
// Gujarati and code-mixed Latin-script variants.
//
// Interpretation is a pure function of the input text and the lookup tables
// fixed at construction:
//
//	raw text → Normalize → {DetectLanguage, Classify} → extractors → Synthesize
//
// An Interpreter is never mutated after New returns and is safe for
// concurrent use without locking.
package multilang

import (
	"golang.org/x/text/unicode/norm"

	"github.com/nadzzz/vaani/internal/message"
)

// Interpreter holds the read-only phrase tables and registries.
type Interpreter struct {
	commands []CommandPhrases
	contacts []Alias
	apps     []Alias
}

// Option customises an Interpreter at construction.
type Option func(*Interpreter)

// WithContacts appends aliases after the built-in relationship registry.
// An external contact directory uses this to supply a superset of names.
func WithContacts(aliases ...Alias) Option {
	return func(i *Interpreter) {
		i.contacts = append(i.contacts, cloneAliases(aliases)...)
	}
}

// WithApps appends aliases after the built-in app registry.
func WithApps(aliases ...Alias) Option {
	return func(i *Interpreter) {
		i.apps = append(i.apps, cloneAliases(aliases)...)
	}
}

// New builds an Interpreter with the default tables plus any options.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		commands: cloneCommands(defaultCommandTable),
		contacts: DefaultContacts(),
		apps:     DefaultApps(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.contacts = normalizeAliases(i.contacts)
	i.apps = normalizeAliases(i.apps)
	return i
}

// Interpretation is the full outcome of interpreting one utterance.
type Interpretation struct {
	Utterance    Utterance        `json:"utterance"`
	Language     Language         `json:"language"`
	Command      CommandType      `json:"command_type"`
	Reason       string           `json:"reason,omitempty"`
	Entities     Entities         `json:"entities"`
	Actions      []message.Action `json:"actions"`
	Confirmation string           `json:"confirmation"`
}

// Interpret runs the whole pipeline over text. It never fails; unmatched or
// empty input yields CommandNone with a no_action descriptor.
func (i *Interpreter) Interpret(text string) Interpretation {
	u := Normalize(text)
	lang := DetectLanguage(u)
	cmd, reason := i.Classify(u)
	entities := i.Extract(cmd, u)
	actions, confirmation := Synthesize(cmd, entities, lang)

	return Interpretation{
		Utterance:    u,
		Language:     lang,
		Command:      cmd,
		Reason:       reason,
		Entities:     entities,
		Actions:      actions,
		Confirmation: confirmation,
	}
}

// Extract runs the extractor cascade selected by cmd.
func (i *Interpreter) Extract(cmd CommandType, u Utterance) Entities {
	var e Entities
	switch cmd {
	case CommandWhatsAppSend:
		e.Contact = i.ExtractContact(u)
		e.Message = i.ExtractMessage(u)
	case CommandPhoneCall:
		e.Contact = i.ExtractContact(u)
	case CommandOpenApp:
		e.AppName = i.ExtractApp(u)
	case CommandReminder:
		e.Time = i.ExtractTime(u)
		e.Task = u.Raw
	case CommandPlayYouTube:
		e.Query = i.ExtractQuery(u)
	}
	return e
}

func cloneCommands(in []CommandPhrases) []CommandPhrases {
	out := make([]CommandPhrases, len(in))
	for idx, c := range in {
		set := make(PhraseSet, len(c.Phrases))
		for lang, phrases := range c.Phrases {
			nfc := make([]string, len(phrases))
			for j, p := range phrases {
				nfc[j] = norm.NFC.String(p)
			}
			set[lang] = nfc
		}
		out[idx] = CommandPhrases{Type: c.Type, Phrases: set}
	}
	return out
}

// normalizeAliases lower-cases and NFC-composes variations so they compare
// against normalized text. Empty variations are dropped since they would
// match everything.
func normalizeAliases(in []Alias) []Alias {
	out := make([]Alias, 0, len(in))
	for _, a := range in {
		vars := make([]string, 0, len(a.Variations))
		for _, v := range a.Variations {
			if n := Normalize(v).Normalized; n != "" {
				vars = append(vars, n)
			}
		}
		out = append(out, Alias{Name: a.Name, Variations: vars})
	}
	return out
}
