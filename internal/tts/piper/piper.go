// Package piper implements the TTS Synthesizer using a Piper Wyoming protocol server.
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200.
package piper

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"strings"
	"time"

	"github.com/nadzzz/vaani/internal/config"
	"github.com/nadzzz/vaani/internal/tts"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
// Piper has no Gujarati voice; responses are romanised, so the Hindi voice
// reads them acceptably.
var defaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"hi": "hi_IN-pratham-medium",
	"gu": "hi_IN-pratham-medium",
}

const (
	dialTimeout    = 10 * time.Second
	requestTimeout = 30 * time.Second
)

// Synthesizer implements tts.Synthesizer using the Wyoming protocol.
type Synthesizer struct {
	endpoint  string            // default host:port of the Piper Wyoming server
	endpoints map[string]string // language -> host:port for per-language Piper instances
	voices    map[string]string // language -> voice name overrides
}

// New creates a new Piper synthesizer from config.
func New(cfg config.PiperConfig) *Synthesizer {
	voices := maps.Clone(defaultVoices)
	maps.Copy(voices, cfg.Voices)

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[lang] = hostPort(ep)
	}
	return &Synthesizer{endpoint: hostPort(cfg.Endpoint), endpoints: endpoints, voices: voices}
}

// hostPort strips a scheme some configs carry; Wyoming is plain TCP.
func hostPort(ep string) string {
	for _, scheme := range []string{"tcp://", "http://"} {
		ep = strings.TrimPrefix(ep, scheme)
	}
	return ep
}

// Synthesize sends text to the Piper server and returns synthesized audio as WAV.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	voice := s.voice(opts)
	endpoint, err := s.endpointFor(opts.Language)
	if err != nil {
		return nil, err
	}
	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "language", opts.Language, "endpoint", endpoint)

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(requestTimeout)
	}
	_ = conn.SetDeadline(deadline)

	req := event{Type: "synthesize", Data: map[string]any{
		"text":  text,
		"voice": map[string]any{"name": voice},
	}}
	if err := writeEvent(conn, req, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}
	return collectAudio(bufio.NewReader(conn))
}

// voice picks the explicit voice, then the language voice, then English.
func (s *Synthesizer) voice(opts tts.SynthesizeOpts) string {
	if opts.Voice != "" {
		return opts.Voice
	}
	if v := s.voices[opts.Language]; v != "" {
		return v
	}
	return s.voices["en"]
}

func (s *Synthesizer) endpointFor(lang string) (string, error) {
	if ep := s.endpoints[lang]; ep != "" {
		return ep, nil
	}
	if s.endpoint != "" {
		return s.endpoint, nil
	}
	return "", fmt.Errorf("no piper endpoint configured for language %q", lang)
}

// audioFormat is announced by audio-start. The defaults match Piper's
// medium-quality voices.
type audioFormat struct {
	rate, channels, width int
}

func (f *audioFormat) update(data map[string]any) {
	for key, dst := range map[string]*int{"rate": &f.rate, "channels": &f.channels, "width": &f.width} {
		if v, ok := data[key].(float64); ok {
			*dst = int(v)
		}
	}
}

// collectAudio reads audio-start, audio-chunk* and audio-stop and returns
// the chunks as one WAV file.
func collectAudio(r *bufio.Reader) (*tts.SynthesizeResult, error) {
	format := audioFormat{rate: 22050, channels: 1, width: 2}
	var pcm bytes.Buffer

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			format.update(evt.Data)
		case "audio-chunk":
			pcm.Write(payload)
		case "audio-stop":
			slog.Debug("piper audio-stop", "pcm_bytes", pcm.Len(), "rate", format.rate)
			return &tts.SynthesizeResult{
				Audio:       pcmToWAV(pcm.Bytes(), format.rate, format.channels, format.width),
				ContentType: "audio/wav",
				SampleRate:  format.rate,
				Channels:    format.channels,
			}, nil
		case "error":
			msg, _ := evt.Data["text"].(string)
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("piper error: %s", msg)
		default:
			slog.Debug("piper event ignored", "type", evt.Type)
		}
	}
}

// Close is a no-op: connections are per-request.
func (s *Synthesizer) Close() error { return nil }
