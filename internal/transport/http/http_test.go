package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
)

// echoHandler reports what it received instead of interpreting it.
func echoHandler(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	if msg.Text == "boom" {
		return nil, errors.New("pipeline exploded")
	}
	return &message.DispatchResult{
		MessageID:   "id-1",
		Transcript:  msg.Text,
		CommandType: msg.Source + "|" + msg.ContentType + "|" + string(msg.Instruction.ResponseMode),
		Error:       strings.Repeat("a", len(msg.Audio)),
	}, nil
}

func newServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(0, opts...).Routes(echoHandler))
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, r io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r).Decode(v))
}

func TestDispatch_JSON(t *testing.T) {
	srv := newServer(t)

	body := `{"source":"phone","text":"bhai ko call karo","instruction":{"response_mode":"text"}}`
	resp, err := http.Post(srv.URL+"/dispatch", "application/json; charset=utf-8", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res message.DispatchResult
	decode(t, resp.Body, &res)
	assert.Equal(t, "bhai ko call karo", res.Transcript)
	assert.Equal(t, "phone||text", res.CommandType)
}

func TestDispatch_RawAudio(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/dispatch", bytes.NewReader([]byte{1, 2, 3}))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "audio/ogg")
	req.Header.Set("X-Vaani-Source", "desk-mic")
	req.Header.Set("X-Vaani-Instruction", `{"response_mode":"audio"}`)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res message.DispatchResult
	decode(t, resp.Body, &res)
	assert.Equal(t, "desk-mic|audio/ogg|audio", res.CommandType)
	assert.Equal(t, "aaa", res.Error)
}

func TestDispatch_BadRequests(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/dispatch", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/dispatch", strings.NewReader("x"))
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("X-Vaani-Instruction", "not json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/dispatch", "application/json", strings.NewReader(`{"text":"boom"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestDispatch_BodyLimits(t *testing.T) {
	interp := multilang.New()
	srv := newServer(t, WithMaxAudioBytes(8), WithInterpreter(interp.Interpret))

	post := func(path, contentType string, body []byte) *http.Response {
		t.Helper()
		resp, err := http.Post(srv.URL+path, contentType, bytes.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post("/dispatch", "audio/wav", bytes.Repeat([]byte{1}, 8))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res message.DispatchResult
	decode(t, resp.Body, &res)
	assert.Equal(t, "aaaaaaaa", res.Error, "audio at the limit is passed through whole")

	resp = post("/dispatch", "audio/wav", bytes.Repeat([]byte{1}, 9))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	big := []byte(`{"text":"` + strings.Repeat("a", maxTextBytes+16) + `"}`)
	resp = post("/dispatch", "application/json", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = post("/interpret", "application/json", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestInterpret(t *testing.T) {
	interp := multilang.New()
	srv := newServer(t, WithInterpreter(interp.Interpret))

	resp, err := http.Post(srv.URL+"/interpret", "application/json", strings.NewReader(`{"text":"bhai ko call karo"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var in multilang.Interpretation
	decode(t, resp.Body, &in)
	assert.Equal(t, multilang.CommandPhoneCall, in.Command)
	assert.Equal(t, "Krish", in.Entities.Contact)
}

func TestInterpret_DisabledWithoutInterpreter(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Post(srv.URL+"/interpret", "application/json", strings.NewReader(`{"text":"x"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocket(t *testing.T) {
	srv := newServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?source=tablet&content_type=audio/webm"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("namaste")))
	var res message.DispatchResult
	require.NoError(t, conn.ReadJSON(&res))
	assert.Equal(t, "namaste", res.Transcript)
	assert.Equal(t, "tablet||", res.CommandType)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{9, 9}))
	require.NoError(t, conn.ReadJSON(&res))
	assert.Equal(t, "tablet|audio/webm|", res.CommandType)
	assert.Equal(t, "aa", res.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("boom")))
	res = message.DispatchResult{}
	require.NoError(t, conn.ReadJSON(&res))
	assert.Equal(t, "pipeline exploded", res.Error)
}

func TestSwagger(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/swagger/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "swagger is opt-in")

	srv = newServer(t, WithSwagger(true))
	resp, err = http.Get(srv.URL + "/swagger/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSend(t *testing.T) {
	var got []byte
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got, _ = io.ReadAll(r.Body)
		if strings.HasSuffix(r.URL.Path, "/fail") {
			http.Error(w, "nope", http.StatusBadGateway)
		}
	}))
	defer target.Close()

	tr := New(0)
	require.NoError(t, tr.Send(context.Background(), message.Target{Endpoint: target.URL + "/ok"}, []byte(`{"a":1}`)))
	assert.JSONEq(t, `{"a":1}`, string(got))

	err := tr.Send(context.Background(), message.Target{Endpoint: target.URL + "/fail"}, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
