package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/vaani/internal/config"
	"github.com/nadzzz/vaani/internal/interpreter"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.OpenAIConfig{
		APIKey:             "sk-test",
		BaseURL:            srv.URL,
		TranscriptionModel: "whisper-1",
		CompletionModel:    "gpt-test",
	})
}

func TestTranscribe(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "hi", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.ogg", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("RIFF"), data)

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "mummy ko call karo", "language": "hindi"})
	})

	res, err := b.Transcribe(context.Background(), []byte("RIFF"), "audio/ogg", interpreter.TranscribeOpts{Language: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "mummy ko call karo", res.Text)
	assert.Equal(t, "hi", res.Language)
}

func TestTranscribe_HTTPError(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	_, err := b.Transcribe(context.Background(), []byte("x"), "audio/wav", interpreter.TranscribeOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRespond(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[0].Content, "Gujarati")
		assert.Equal(t, "tame kem cho", req.Messages[1].Content)

		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"  Hu majama chu!  "}}]}`)
	})

	reply, err := b.Respond(context.Background(), "tame kem cho", "gu")
	require.NoError(t, err)
	assert.Equal(t, "Hu majama chu!", reply)
}

func TestRespond_NoChoices(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	})

	_, err := b.Respond(context.Background(), "hmm", "en")
	assert.Error(t, err)
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "gu", normalizeLanguage("Gujarati"))
	assert.Equal(t, "hi", normalizeLanguage("HI"))
	assert.Equal(t, "swahili", normalizeLanguage("Swahili"))
}
