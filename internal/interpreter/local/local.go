// Package local implements the interpreter backends using self-hosted models.
//
// It supports any Whisper-compatible transcription endpoint (e.g., whisper.cpp
// server, faster-whisper) and any OpenAI-compatible chat endpoint (e.g., Ollama,
// vLLM, llama.cpp server).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/vaani/internal/config"
	"github.com/nadzzz/vaani/internal/interpreter"
)

// Backend uses self-hosted models for transcription and conversational replies.
type Backend struct {
	whisperEndpoint string
	whisperType     string // "openai" or "asr"
	llmEndpoint     string
	llmModel        string
	vadFilter       bool
	defaultLanguage string
	client          *http.Client
}

var _ interpreter.Backend = (*Backend)(nil)

// New creates a new local backend from config.
func New(cfg config.LocalConfig) *Backend {
	wt := cfg.WhisperType
	if wt == "" {
		wt = "openai"
	}
	model := cfg.LLMModel
	if model == "" {
		model = "llama3"
	}
	return &Backend{
		whisperEndpoint: cfg.WhisperEndpoint,
		whisperType:     wt,
		llmEndpoint:     cfg.LLMEndpoint,
		llmModel:        model,
		vadFilter:       cfg.VADFilter,
		defaultLanguage: cfg.Language,
		client:          &http.Client{},
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "local" }

// Transcribe sends audio to the local Whisper-compatible endpoint.
// Supports two flavors:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
func (b *Backend) Transcribe(ctx context.Context, audio []byte, contentType string, opts interpreter.TranscribeOpts) (*interpreter.TranscribeResult, error) {
	lang := opts.Language
	if lang == "" {
		lang = b.defaultLanguage
	}

	var (
		endpoint = b.whisperEndpoint
		form     *audioForm
		err      error
	)
	switch b.whisperType {
	case "asr":
		// Options travel in the query string; the body only carries audio_file.
		q := make(url.Values)
		q.Set("task", "transcribe")
		q.Set("output", "json")
		q.Set("encode", "true")
		if lang != "" {
			q.Set("language", lang)
		}
		if opts.Prompt != "" {
			q.Set("initial_prompt", opts.Prompt)
		}
		if b.vadFilter {
			q.Set("vad_filter", "true")
		}
		endpoint += "?" + q.Encode()
		form, err = newAudioForm("audio_file", audio, contentType, nil)
	default:
		fields := map[string]string{"response_format": "verbose_json"}
		if opts.Model != "" {
			fields["model"] = opts.Model
		}
		if lang != "" {
			fields["language"] = lang
		}
		if opts.Prompt != "" {
			fields["prompt"] = opts.Prompt
		}
		form, err = newAudioForm("file", audio, contentType, fields)
	}
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, form.body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.contentType)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s transcription request: %w", b.whisperType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%s transcription failed (status %d): %s", b.whisperType, resp.StatusCode, respBody)
	}

	// Both flavors answer {"text": "...", "language": "..."}.
	var result interpreter.TranscribeResult
	var raw struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}
	result.Text = strings.TrimSpace(raw.Text)
	result.Language = raw.Language
	if result.Language == "" {
		result.Language = lang
	}

	slog.Debug("local transcription complete", "flavor", b.whisperType, "text_length", len(result.Text), "language", result.Language)
	return &result, nil
}

type audioForm struct {
	body        *bytes.Buffer
	contentType string
}

func newAudioForm(field string, audio []byte, contentType string, fields map[string]string) (*audioForm, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, "audio"+extFromContentType(contentType))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}
	return &audioForm{body: body, contentType: writer.FormDataContentType()}, nil
}

// Respond asks the local LLM for a short reply in lang.
// Supports Ollama's /api/generate and OpenAI-compatible /v1/chat/completions.
func (b *Backend) Respond(ctx context.Context, text, lang string) (string, error) {
	system := systemPrompt(lang)

	var reqBody map[string]any
	if strings.HasSuffix(b.llmEndpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  b.llmModel,
			"system": system,
			"prompt": text,
			"stream": false,
		}
	} else {
		reqBody = map[string]any{
			"model": b.llmModel,
			"messages": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": text},
			},
			"temperature": 0.7,
			"stream":      false,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.llmEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	reply := strings.TrimSpace(extractContent(respData))
	if reply == "" {
		return "", fmt.Errorf("empty response from local LLM")
	}

	slog.Debug("local reply complete", "reply_length", len(reply), "language", lang)
	return reply, nil
}

// Close is a no-op for the local backend.
func (b *Backend) Close() error { return nil }

// --- Internal helpers ---

func extractContent(data []byte) string {
	// Try OpenAI-compatible format: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Try Ollama format: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return string(data)
}

func systemPrompt(lang string) string {
	return "You are Vaani, a voice assistant. Answer in one or two short sentences. " +
		"Reply in " + interpreter.LanguageName(lang) + "."
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
