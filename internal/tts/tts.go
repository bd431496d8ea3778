// Package tts defines the interface for text-to-speech synthesis.
//
// Vaani speaks its confirmation back in the language the utterance was
// detected in, so a Hindi request gets a Hindi reply.
package tts

import "context"

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code ("en", "hi", "gu") used to pick a voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)
	Close() error
}

// SynthesizeResult holds synthesized audio.
type SynthesizeResult struct {
	Audio       []byte // WAV container
	ContentType string
	SampleRate  int
	Channels    int
}
