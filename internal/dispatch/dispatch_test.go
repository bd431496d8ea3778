package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/interpreter"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/transport"
	grpctransport "github.com/nadzzz/vaani/internal/transport/grpc"
	httptransport "github.com/nadzzz/vaani/internal/transport/http"
	mqtttransport "github.com/nadzzz/vaani/internal/transport/mqtt"
	"github.com/nadzzz/vaani/internal/tts"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Name() string { return "fake" }
func (f *fakeTranscriber) Close() error { return nil }
func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string, _ interpreter.TranscribeOpts) (*interpreter.TranscribeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &interpreter.TranscribeResult{Text: f.text, Language: "hi"}, nil
}

type fakeResponder struct {
	answer string
	err    error
	lang   string
}

func (f *fakeResponder) Name() string { return "fake" }
func (f *fakeResponder) Respond(_ context.Context, _ string, lang string) (string, error) {
	f.lang = lang
	return f.answer, f.err
}

type fakeSynth struct{ lang string }

func (f *fakeSynth) Close() error { return nil }
func (f *fakeSynth) Synthesize(_ context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	f.lang = opts.Language
	return &tts.SynthesizeResult{Audio: []byte("RIFF" + text), ContentType: "audio/wav"}, nil
}

type fakeTransport struct {
	mu       sync.Mutex
	name      string
	err       error
	payloads  [][]byte
	endpoints []string
}

func (f *fakeTransport) Name() string { return f.name }
func (f *fakeTransport) Listen(context.Context, transport.Handler) error { return nil }
func (f *fakeTransport) Close() error { return nil }
func (f *fakeTransport) Send(_ context.Context, target message.Target, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	f.endpoints = append(f.endpoints, target.Endpoint)
	return f.err
}

type recorder struct {
	mu    sync.Mutex
	tools []string
}

func (r *recorder) exec(tool string, err error, msg string) executor.Executor {
	return executor.Func{Name: tool, Fn: func(context.Context, message.Action) (*executor.Result, error) {
		r.mu.Lock()
		r.tools = append(r.tools, tool)
		r.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return &executor.Result{Message: msg}, nil
	}}
}

func TestHandle_TextExecutesChain(t *testing.T) {
	rec := &recorder{}
	reg := executor.NewRegistry(
		rec.exec(message.ToolOpenApp, nil, "Opened WhatsApp"),
		rec.exec(message.ToolSendWhatsAppMessage, nil, "WhatsApp message sent to Mummy: 'Hello Beta'"),
	)
	d := New(multilang.New(), reg)

	msg := &message.Message{Source: "desk", Text: "mummy ko 'Hello Beta' bhej do"}
	res, err := d.Handle(context.Background(), msg)
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID, "an ID is assigned")
	assert.Equal(t, msg.ID, res.MessageID)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Empty(t, res.Error)
	assert.Equal(t, "whatsapp_send", res.CommandType)
	assert.Equal(t, "en", res.Language)
	require.Len(t, res.Actions, 2)
	require.Len(t, res.Results, 2)
	assert.Equal(t, message.StatusOK, res.Results[1].Status)
	assert.Equal(t, []string{message.ToolOpenApp, message.ToolSendWhatsAppMessage}, rec.tools)
	assert.Equal(t, "WhatsApp message sent to Mummy: 'Hello Beta'", res.ResponseText)
}

func TestHandle_FirstFailureSkipsRest(t *testing.T) {
	rec := &recorder{}
	reg := executor.NewRegistry(
		rec.exec(message.ToolOpenApp, executor.Fail(executor.ErrAutomationFailed, "Could not open WhatsApp", nil), ""),
		rec.exec(message.ToolSendWhatsAppMessage, nil, "sent"),
	)
	d := New(multilang.New(), reg)

	res, err := d.Handle(context.Background(), &message.Message{Text: "mummy ko 'Hello Beta' bhej do"})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, message.StatusFailed, res.Results[0].Status)
	assert.Equal(t, message.StatusSkipped, res.Results[1].Status)
	assert.Equal(t, []string{message.ToolOpenApp}, rec.tools)
	assert.Equal(t, "Could not open WhatsApp", res.ResponseText)
}

func TestHandle_MissingEntityAsksForClarification(t *testing.T) {
	rec := &recorder{}
	reg := executor.NewRegistry(rec.exec(message.ToolOpenApp, nil, ""), rec.exec(message.ToolSendWhatsAppMessage, nil, ""))
	d := New(multilang.New(), reg)

	res, err := d.Handle(context.Background(), &message.Message{Text: "mummy ko message bhejo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"send_whatsapp_message.message"}, res.Missing)
	assert.Empty(t, res.Results)
	assert.Empty(t, rec.tools, "nothing runs when entities are missing")
	assert.Equal(t, "Contact name or message is missing", res.ResponseText)
}

func TestHandle_DryRun(t *testing.T) {
	rec := &recorder{}
	d := New(multilang.New(), executor.NewRegistry(rec.exec(message.ToolMakePhoneCall, nil, "dialing")))

	res, err := d.Handle(context.Background(), &message.Message{
		Text:        "bhai ko call karo",
		Instruction: message.Instruction{DryRun: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "phone_call", res.CommandType)
	assert.Empty(t, rec.tools)
	assert.Empty(t, res.Results)
	assert.Equal(t, "Calling Krish", res.ResponseText)
}

func TestHandle_UnhandledToolKeepsConfirmation(t *testing.T) {
	d := New(multilang.New(), executor.NewRegistry())

	res, err := d.Handle(context.Background(), &message.Message{Text: "take screenshot"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, message.StatusUnhandled, res.Results[0].Status)
	assert.Equal(t, "Taking a screenshot", res.ResponseText)
}

func TestHandle_Responder(t *testing.T) {
	responder := &fakeResponder{answer: "I can send messages and make calls."}
	d := New(multilang.New(), executor.NewRegistry(), WithResponder(responder))

	res, err := d.Handle(context.Background(), &message.Message{Text: "xyz random text"})
	require.NoError(t, err)
	assert.Equal(t, "none", res.CommandType)
	assert.Equal(t, "I can send messages and make calls.", res.ResponseText)
	assert.Equal(t, "en", responder.lang)

	responder.err = errors.New("rate limited")
	res, err = d.Handle(context.Background(), &message.Message{Text: "xyz random text"})
	require.NoError(t, err)
	assert.Equal(t, multilang.DefaultResponse, res.ResponseText)
}

func TestHandle_Audio(t *testing.T) {
	d := New(multilang.New(), executor.NewRegistry(), WithTranscriber(&fakeTranscriber{text: "bhai ko call karo"}))

	res, err := d.Handle(context.Background(), &message.Message{Audio: []byte{1, 2}, ContentType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "bhai ko call karo", res.Transcript)
	assert.Equal(t, "phone_call", res.CommandType)
}

func TestHandle_StageErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		msg     *message.Message
		wantErr string
	}{
		{"empty", nil, &message.Message{Text: "  "}, "message has no audio and no text"},
		{"no transcriber", nil, &message.Message{Audio: []byte{1}}, "no transcriber"},
		{"transcriber fails", []Option{WithTranscriber(&fakeTranscriber{err: errors.New("timeout")})}, &message.Message{Audio: []byte{1}}, "transcription failed: timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(multilang.New(), executor.NewRegistry(), tt.opts...).Handle(context.Background(), tt.msg)
			require.NoError(t, err)
			assert.Contains(t, res.Error, tt.wantErr)
			assert.NotEmpty(t, res.MessageID)
		})
	}
}

func TestHandle_ResponseModes(t *testing.T) {
	synth := &fakeSynth{}
	d := New(multilang.New(), executor.NewRegistry(), WithSynthesizer(synth))

	res, err := d.Handle(context.Background(), &message.Message{Text: "papa ko call karo अभी"})
	require.NoError(t, err)
	assert.Equal(t, "Papa ko call kar raha hoon", res.ResponseText)
	assert.NotEmpty(t, res.ResponseAudio)
	assert.Equal(t, "audio/wav", res.ResponseContentType)
	assert.Equal(t, "hi", synth.lang)

	res, err = d.Handle(context.Background(), &message.Message{
		Text:        "papa ko call karo",
		Instruction: message.Instruction{ResponseMode: message.ResponseModeNone},
	})
	require.NoError(t, err)
	assert.Empty(t, res.ResponseText)
	assert.Empty(t, res.ResponseAudio)
}

func TestHandle_RoutesToTargets(t *testing.T) {
	good := &fakeTransport{name: "http"}
	bad := &fakeTransport{name: "mqtt", err: errors.New("broker down")}
	d := New(multilang.New(), executor.NewRegistry(), WithTransports(good, bad))

	res, err := d.Handle(context.Background(), &message.Message{
		Text: "namaste",
		Instruction: message.Instruction{Targets: []message.Target{
			{ServiceName: "display", Protocol: "http", Endpoint: "http://display"},
			{ServiceName: "hub", Protocol: "mqtt", Endpoint: "home/hub"},
			{ServiceName: "pager", Protocol: "pigeon"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"display"}, res.RoutedTo)
	require.Len(t, good.payloads, 1)

	var routed message.DispatchResult
	require.NoError(t, json.Unmarshal(good.payloads[0], &routed))
	assert.Equal(t, res.MessageID, routed.MessageID)
	assert.Equal(t, "greeting", routed.CommandType)
}

func TestHandle_NamedTargets(t *testing.T) {
	mq := &fakeTransport{name: "mqtt"}
	d := New(multilang.New(), executor.NewRegistry(),
		WithTransports(mq),
		WithTargets(map[string]message.Target{
			"kitchen": {Protocol: "mqtt", Endpoint: "home/kitchen/display"},
		}),
	)

	res, err := d.Handle(context.Background(), &message.Message{
		Text: "namaste",
		Instruction: message.Instruction{Targets: []message.Target{
			{ServiceName: "kitchen"},
			{ServiceName: "kitchen", Endpoint: "home/kitchen/speaker"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen", "kitchen"}, res.RoutedTo)
	assert.Equal(t, []string{"home/kitchen/display", "home/kitchen/speaker"}, mq.endpoints)
}

func TestWithTransports_KeyedByProtocol(t *testing.T) {
	d := New(multilang.New(), executor.NewRegistry(), WithTransports(
		grpctransport.New(0),
		httptransport.New(0),
		mqtttransport.New(mqtttransport.Options{Broker: "tcp://127.0.0.1:1"}),
	))

	for _, proto := range []string{transport.GRPC, transport.HTTP, transport.MQTT} {
		tr, ok := d.transports[proto]
		require.True(t, ok, proto)
		assert.Equal(t, proto, tr.Name())
	}
}

func TestHandle_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	rec := &recorder{}
	d := New(multilang.New(), executor.NewRegistry(rec.exec(message.ToolMakePhoneCall, nil, "ok")),
		WithMetrics(m), WithRateLimit(100, 1))

	for i := 0; i < 2; i++ {
		_, err := d.Handle(context.Background(), &message.Message{Text: "bhai ko call karo"})
		require.NoError(t, err)
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Dispatches.WithLabelValues("phone_call", "en")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Actions.WithLabelValues(message.ToolMakePhoneCall, message.StatusOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestHandle_DurationUsesInjectedClock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	d := New(multilang.New(), executor.NewRegistry(), WithMetrics(m))

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	d.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(1500 * time.Millisecond)
	}

	_, err := d.Handle(context.Background(), &message.Message{Text: "namaste"})
	require.NoError(t, err)

	expected := `
# HELP vaani_dispatch_duration_seconds End-to-end dispatch latency in seconds.
# TYPE vaani_dispatch_duration_seconds histogram
vaani_dispatch_duration_seconds_bucket{le="0.005"} 0
vaani_dispatch_duration_seconds_bucket{le="0.01"} 0
vaani_dispatch_duration_seconds_bucket{le="0.025"} 0
vaani_dispatch_duration_seconds_bucket{le="0.05"} 0
vaani_dispatch_duration_seconds_bucket{le="0.1"} 0
vaani_dispatch_duration_seconds_bucket{le="0.25"} 0
vaani_dispatch_duration_seconds_bucket{le="0.5"} 0
vaani_dispatch_duration_seconds_bucket{le="1"} 0
vaani_dispatch_duration_seconds_bucket{le="2.5"} 1
vaani_dispatch_duration_seconds_bucket{le="5"} 1
vaani_dispatch_duration_seconds_bucket{le="10"} 1
vaani_dispatch_duration_seconds_bucket{le="+Inf"} 1
vaani_dispatch_duration_seconds_sum 1.5
vaani_dispatch_duration_seconds_count 1
`
	assert.NoError(t, testutil.CollectAndCompare(m.Duration, strings.NewReader(expected)))
}

func TestHandle_RateLimitHonoursContext(t *testing.T) {
	rec := &recorder{}
	d := New(multilang.New(), executor.NewRegistry(rec.exec(message.ToolMakePhoneCall, nil, "ok")),
		WithRateLimit(0.001, 1))

	_, err := d.Handle(context.Background(), &message.Message{Text: "bhai ko call karo"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := d.Handle(ctx, &message.Message{Text: "bhai ko call karo"})
	require.NoError(t, err)
	assert.Contains(t, res.Error, "waiting for execution slot")
	assert.Len(t, rec.tools, 1)
}
