// Package message defines the core data types flowing through the vaani pipeline.
package message

import (
	"encoding/base64"
	"time"
)

// ResponseMode controls what natural-language output the caller wants.
// The caller declares the desired output in the request body and the server
// populates or omits response fields accordingly.
type ResponseMode string

const (
	// ResponseModeNone suppresses all natural-language output.
	// Only action results are returned.
	ResponseModeNone ResponseMode = "none"

	// ResponseModeText returns a natural-language text response.
	ResponseModeText ResponseMode = "text"

	// ResponseModeAudio returns TTS-synthesized audio only (no text).
	ResponseModeAudio ResponseMode = "audio"

	// ResponseModeTextAudio returns both text and synthesized audio.
	ResponseModeTextAudio ResponseMode = "text+audio"
)

// Message represents an incoming request from any transport.
type Message struct {
	// ID is a unique identifier for this message (UUID). Assigned by the
	// dispatcher when the sender leaves it empty.
	ID string `json:"id"`

	// Source identifies the sender (e.g., "phone-krish", "desk-mic").
	Source string `json:"source"`

	// Audio is the raw audio payload. Nil if the message is text-only.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of the audio (e.g., "audio/wav", "audio/ogg").
	ContentType string `json:"content_type,omitempty"`

	// Text is an optional typed or pre-transcribed utterance (bypasses transcription).
	Text string `json:"text,omitempty"`

	// Instruction tells vaani how to respond and where to route the result.
	Instruction Instruction `json:"instruction"`

	// Timestamp is when the message was received by vaani.
	Timestamp time.Time `json:"timestamp"`
}

// HasAudio returns true if the message contains an audio payload.
func (m *Message) HasAudio() bool {
	return len(m.Audio) > 0
}

// Instruction describes how to process and route a message.
type Instruction struct {
	// Targets lists the services that should receive the dispatch result.
	// The original sender always receives the response regardless of this list.
	Targets []Target `json:"targets,omitempty"`

	// ResponseMode controls the natural-language response output:
	//   "none"        no NL response (action results only)
	//   "text"        text response only
	//   "audio"       TTS-synthesized audio only
	//   "text+audio"  both text and audio
	// Defaults to "text" when TTS is disabled, "text+audio" when TTS is enabled.
	ResponseMode ResponseMode `json:"response_mode,omitempty"`

	// DryRun interprets the utterance without executing any action.
	DryRun bool `json:"dry_run,omitempty"`

	// Prompt is a transcription hint (names, app words) passed to the transcriber.
	Prompt string `json:"prompt,omitempty"`
}

// Target defines a downstream service that should receive dispatch results.
type Target struct {
	// ServiceName is a human-readable identifier (e.g., "phone-app", "home-display").
	ServiceName string `json:"service_name"`

	// Endpoint is the address to reach this target (URL, host:port or MQTT topic).
	Endpoint string `json:"endpoint"`

	// Protocol is the protocol to use ("http", "grpc", "mqtt").
	Protocol string `json:"protocol"`
}

// Tool identifiers emitted by the interpreter. This is the complete set;
// anything else is rejected by IsKnownTool.
const (
	ToolOpenApp             = "open_app"
	ToolSendWhatsAppMessage = "send_whatsapp_message"
	ToolMakePhoneCall       = "make_phone_call"
	ToolScheduleTask        = "schedule_task"
	ToolGreet               = "greet"
	ToolTellTime            = "tell_time"
	ToolTellDate            = "tell_date"
	ToolGetWeather          = "get_weather"
	ToolPlayYouTube         = "play_youtube"
	ToolGetNews             = "get_news"
	ToolTellJoke            = "tell_joke"
	ToolVolumeUp            = "volume_up"
	ToolVolumeDown          = "volume_down"
	ToolTakeScreenshot      = "take_screenshot"
	ToolExit                = "exit"
	ToolNoAction            = "no_action"
)

var knownTools = map[string]struct{}{
	ToolOpenApp: {}, ToolSendWhatsAppMessage: {}, ToolMakePhoneCall: {},
	ToolScheduleTask: {}, ToolGreet: {}, ToolTellTime: {}, ToolTellDate: {},
	ToolGetWeather: {}, ToolPlayYouTube: {}, ToolGetNews: {}, ToolTellJoke: {},
	ToolVolumeUp: {}, ToolVolumeDown: {}, ToolTakeScreenshot: {}, ToolExit: {},
	ToolNoAction: {},
}

// IsKnownTool reports whether tool belongs to the fixed tool set.
func IsKnownTool(tool string) bool {
	_, ok := knownTools[tool]
	return ok
}

// Action is a single self-contained action descriptor produced by the
// interpreter. It holds no references back into interpreter state.
type Action struct {
	// Tool is the executor identifier (e.g., "send_whatsapp_message").
	Tool string `json:"tool"`

	// Params holds tool-specific parameters. Keys the tool defines are always
	// present; missing entities are empty strings.
	Params map[string]string `json:"params"`

	// Language is the detected utterance language ("en", "hi", "gu").
	Language string `json:"language"`
}

// Param returns the named parameter, or "" when absent.
func (a Action) Param(key string) string {
	if a.Params == nil {
		return ""
	}
	return a.Params[key]
}

// Action result statuses.
const (
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusUnhandled = "unhandled" // no executor is registered for the tool
	StatusSkipped   = "skipped"   // an earlier action in the chain failed
)

// ActionResult is the outcome of executing one action.
type ActionResult struct {
	Tool    string            `json:"tool"`
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// DispatchResult is the outcome of processing a message through the pipeline.
type DispatchResult struct {
	// MessageID is the original message ID.
	MessageID string `json:"message_id"`

	// Transcript is the utterance that was interpreted (transcribed or typed).
	Transcript string `json:"transcript,omitempty"`

	// Language is the detected language ("en", "hi", "gu").
	Language string `json:"language,omitempty"`

	// CommandType is the interpreter classification (e.g., "whatsapp_send", "none").
	CommandType string `json:"command_type,omitempty"`

	// Actions is the list of synthesized action descriptors.
	Actions []Action `json:"actions"`

	// Missing lists required action parameters that were empty. When set,
	// no action was executed and ResponseText asks for clarification.
	Missing []string `json:"missing,omitempty"`

	// Results holds per-action execution outcomes, in order.
	Results []ActionResult `json:"results,omitempty"`

	// RoutedTo lists the targets that received the result.
	RoutedTo []string `json:"routed_to"`

	// ResponseText is a natural-language confirmation (in the detected language).
	// Populated when response_mode is "text" or "text+audio".
	ResponseText string `json:"response_text,omitempty"`

	// ResponseAudio is the TTS-synthesized audio as a base64-encoded string.
	// Populated when response_mode is "audio" or "text+audio".
	ResponseAudio string `json:"response_audio,omitempty"`

	// ResponseContentType is the MIME type of ResponseAudio (e.g., "audio/wav").
	ResponseContentType string `json:"response_content_type,omitempty"`

	// Error is set if processing failed at any stage.
	Error string `json:"error,omitempty"`
}

// SetResponseAudioBytes base64-encodes raw audio bytes into ResponseAudio.
func (r *DispatchResult) SetResponseAudioBytes(audio []byte) {
	if len(audio) > 0 {
		r.ResponseAudio = base64.StdEncoding.EncodeToString(audio)
	}
}
