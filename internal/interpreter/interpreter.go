// Package interpreter defines the model-backed collaborators around the
// rule-based multilang interpreter.
//
// Commands are always recognised by multilang. The backends here only turn
// audio into text (Transcriber) and answer utterances no rule matched
// (Responder). Vaani ships with two backends: OpenAI (cloud) and Local
// (self-hosted via Ollama/whisper.cpp).
package interpreter

import "context"

// TranscribeOpts controls transcription behavior.
type TranscribeOpts struct {
	// Language is the ISO-639-1 code ("en", "hi", "gu") to guide transcription.
	Language string

	// Prompt provides context to improve recognition of contact names and
	// code-mixed phrases.
	Prompt string

	// Model overrides the default transcription model.
	Model string
}

// TranscribeResult holds the output of a transcription call.
type TranscribeResult struct {
	Text string

	// Language is the ISO-639-1 code detected by the speech model, if any.
	Language string
}

// Transcriber converts audio to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	Transcribe(ctx context.Context, audio []byte, contentType string, opts TranscribeOpts) (*TranscribeResult, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Responder produces a short conversational answer for an utterance that
// matched no command. lang is the ISO-639-1 code the reply should use.
type Responder interface {
	Name() string
	Respond(ctx context.Context, text, lang string) (string, error)
}

// Backend is a model provider that can both transcribe and respond.
type Backend interface {
	Transcriber
	Responder
}

// LanguageName returns the English name of a supported language code, for
// use in model prompts.
func LanguageName(code string) string {
	switch code {
	case "hi":
		return "Hindi"
	case "gu":
		return "Gujarati"
	default:
		return "English"
	}
}
