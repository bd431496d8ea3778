// Package dispatch implements the core message pipeline.
//
// The dispatcher receives messages from transports, runs them through
// transcribe → interpret → validate → execute, then routes the result to
// target services. The sender always receives the response, whatever
// happens to the targets.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/interpreter"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/transport"
	"github.com/nadzzz/vaani/internal/tts"
)

// Dispatcher is the central routing engine.
type Dispatcher struct {
	interp      *multilang.Interpreter
	registry    *executor.Registry
	transcriber interpreter.Transcriber // nil: audio is rejected
	responder   interpreter.Responder   // nil: confirmations only
	synthesizer tts.Synthesizer         // nil if TTS is disabled
	transports  map[string]transport.Transport
	targets     map[string]message.Target // by service name
	limiter     *rate.Limiter // nil: unlimited
	metrics     *Metrics

	// execMu serializes action chains; executors drive one device.
	execMu sync.Mutex
	now    func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTranscriber enables audio messages.
func WithTranscriber(t interpreter.Transcriber) Option {
	return func(d *Dispatcher) { d.transcriber = t }
}

// WithResponder answers utterances that match no command.
func WithResponder(r interpreter.Responder) Option {
	return func(d *Dispatcher) { d.responder = r }
}

// WithSynthesizer enables audio responses.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(d *Dispatcher) { d.synthesizer = s }
}

// WithTransports registers the transports used to reach targets, keyed by
// their Name.
func WithTransports(ts ...transport.Transport) Option {
	return func(d *Dispatcher) {
		for _, t := range ts {
			d.transports[t.Name()] = t
		}
	}
}

// WithTargets registers named targets. An instruction target that names a
// service but leaves out its endpoint or protocol is completed from here.
func WithTargets(targets map[string]message.Target) Option {
	return func(d *Dispatcher) {
		for name, t := range targets {
			if t.ServiceName == "" {
				t.ServiceName = name
			}
			d.targets[name] = t
		}
	}
}

// WithRateLimit bounds action execution to perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(d *Dispatcher) {
		if perSecond <= 0 {
			d.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a Dispatcher around the command interpreter and the executor
// registry.
func New(interp *multilang.Interpreter, registry *executor.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		interp:     interp,
		registry:   registry,
		transports: make(map[string]transport.Transport),
		targets:    make(map[string]message.Target),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// resolveResponseMode determines the effective ResponseMode for a message.
// If the caller didn't specify one, the default depends on whether TTS is available.
func (d *Dispatcher) resolveResponseMode(mode message.ResponseMode) message.ResponseMode {
	switch mode {
	case message.ResponseModeNone, message.ResponseModeText,
		message.ResponseModeAudio, message.ResponseModeTextAudio:
		return mode
	default:
		if d.synthesizer != nil {
			return message.ResponseModeTextAudio
		}
		return message.ResponseModeText
	}
}

// wantText returns true if the response mode includes text output.
func wantText(mode message.ResponseMode) bool {
	return mode == message.ResponseModeText || mode == message.ResponseModeTextAudio
}

// wantAudio returns true if the response mode includes audio output.
func wantAudio(mode message.ResponseMode) bool {
	return mode == message.ResponseModeAudio || mode == message.ResponseModeTextAudio
}

// Interpret parses text without executing anything.
func (d *Dispatcher) Interpret(text string) multilang.Interpretation {
	return d.interp.Interpret(text)
}

// Handle processes a single message through the full pipeline.
// This function is passed as the transport.Handler to each transport.
// Stage failures are reported in DispatchResult.Error, not as an error.
func (d *Dispatcher) Handle(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	start := d.now()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = start
	}
	logger := slog.With("message_id", msg.ID, "source", msg.Source)

	respMode := d.resolveResponseMode(msg.Instruction.ResponseMode)
	logger.Info("dispatch started", "response_mode", respMode, "dry_run", msg.Instruction.DryRun)

	result := &message.DispatchResult{MessageID: msg.ID, Actions: []message.Action{}}
	defer func() {
		d.metrics.observeDispatch(result.CommandType, result.Language, d.now().Sub(start).Seconds())
	}()

	// Step 1: transcribe audio, or take the typed text.
	transcript, err := d.transcript(ctx, msg, logger)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	result.Transcript = transcript

	// Step 2: interpret.
	interp := d.interp.Interpret(transcript)
	lang := interp.Language
	result.Language = string(lang)
	result.CommandType = string(interp.Command)
	result.Actions = interp.Actions
	logger.Info("interpretation complete",
		"command", interp.Command,
		"language", lang,
		"actions", len(interp.Actions),
	)

	responseText := interp.Confirmation
	if interp.Command == multilang.CommandNone && d.responder != nil {
		if answer, err := d.responder.Respond(ctx, transcript, string(lang)); err != nil {
			logger.Warn("responder failed, using confirmation", "error", err)
		} else if answer != "" {
			responseText = answer
		}
	}

	// Step 3: validate, then execute.
	if missing, tool := executor.ValidateAll(interp.Actions); len(missing) > 0 {
		result.Missing = missing
		responseText = executor.Clarification(tool, lang)
		logger.Info("required entities missing", "missing", missing)
	} else if !msg.Instruction.DryRun {
		text, err := d.execute(ctx, interp.Actions, result, logger)
		if err != nil {
			result.Error = err.Error()
		}
		if text != "" {
			responseText = text
		}
	}

	// Step 4: natural-language response.
	if wantText(respMode) {
		result.ResponseText = responseText
	}
	if wantAudio(respMode) && d.synthesizer != nil && responseText != "" {
		logger.Debug("synthesizing response", "language", lang, "text_length", len(responseText))
		synthResult, err := d.synthesizer.Synthesize(ctx, responseText, tts.SynthesizeOpts{Language: string(lang)})
		if err != nil {
			logger.Warn("TTS synthesis failed, continuing without audio", "error", err)
		} else {
			result.SetResponseAudioBytes(synthResult.Audio)
			result.ResponseContentType = synthResult.ContentType
			logger.Info("TTS synthesis complete", "audio_bytes", len(synthResult.Audio))
		}
	}

	// Step 5: route to target services.
	d.route(ctx, msg.Instruction.Targets, result, logger)

	logger.Info("dispatch complete", "duration", d.now().Sub(start), "routed_to", len(result.RoutedTo))
	return result, nil
}

func (d *Dispatcher) transcript(ctx context.Context, msg *message.Message, logger *slog.Logger) (string, error) {
	if msg.HasAudio() {
		if d.transcriber == nil {
			return "", fmt.Errorf("audio received but no transcriber is configured")
		}
		logger.Debug("transcribing audio", "content_type", msg.ContentType, "bytes", len(msg.Audio))
		res, err := d.transcriber.Transcribe(ctx, msg.Audio, msg.ContentType, interpreter.TranscribeOpts{
			Prompt: msg.Instruction.Prompt,
		})
		if err != nil {
			logger.Error("transcription failed", "error", err)
			return "", fmt.Errorf("transcription failed: %w", err)
		}
		logger.Info("transcription complete", "text_length", len(res.Text), "language", res.Language)
		return res.Text, nil
	}
	if strings.TrimSpace(msg.Text) != "" {
		logger.Debug("using text input directly")
		return msg.Text, nil
	}
	return "", fmt.Errorf("message has no audio and no text")
}

// execute runs actions in order. After the first failure the remaining
// actions are recorded as skipped. The returned text is the message of the
// failing action or, if none failed, of the last action that produced one.
func (d *Dispatcher) execute(ctx context.Context, actions []message.Action, result *message.DispatchResult, logger *slog.Logger) (string, error) {
	d.execMu.Lock()
	defer d.execMu.Unlock()

	var text string
	failed := false
	for _, action := range actions {
		if failed {
			result.Results = append(result.Results, message.ActionResult{Tool: action.Tool, Status: message.StatusSkipped})
			d.metrics.observeAction(action.Tool, message.StatusSkipped)
			continue
		}
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				return text, fmt.Errorf("waiting for execution slot: %w", err)
			}
		}

		res := d.registry.Execute(ctx, action)
		result.Results = append(result.Results, res)
		d.metrics.observeAction(action.Tool, res.Status)
		logger.Info("action executed", "tool", action.Tool, "status", res.Status)

		if res.Message != "" {
			text = res.Message
		}
		if res.Status == message.StatusFailed {
			failed = true
		}
	}
	return text, nil
}

func (d *Dispatcher) route(ctx context.Context, targets []message.Target, result *message.DispatchResult, logger *slog.Logger) {
	if len(targets) == 0 {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		result.Error = fmt.Sprintf("marshalling result: %v", err)
		return
	}

	for _, target := range targets {
		target = d.resolveTarget(target)
		t, ok := d.transports[target.Protocol]
		if !ok {
			logger.Warn("no transport for target protocol", "protocol", target.Protocol, "target", target.ServiceName)
			continue
		}
		if err := t.Send(ctx, target, payload); err != nil {
			logger.Error("failed to send to target", "target", target.ServiceName, "error", err)
			continue
		}
		result.RoutedTo = append(result.RoutedTo, target.ServiceName)
		logger.Info("routed to target", "target", target.ServiceName)
	}
}

func (d *Dispatcher) resolveTarget(target message.Target) message.Target {
	known, ok := d.targets[target.ServiceName]
	if !ok {
		return target
	}
	if target.Endpoint == "" {
		target.Endpoint = known.Endpoint
	}
	if target.Protocol == "" {
		target.Protocol = known.Protocol
	}
	return target
}
