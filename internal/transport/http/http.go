// Package http implements the HTTP/WebSocket transport for vaani.
//
// This transport exposes a REST API for command dispatch, a parse-only
// endpoint, and a WebSocket endpoint where every frame is one utterance.
// It is best suited for web clients, phones, and services that prefer
// HTTP-based communication.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/transport"
)

const (
	// defaultMaxAudio bounds raw audio uploads and WebSocket frames.
	defaultMaxAudio = 25 << 20
	// maxTextBytes bounds bodies that carry no audio.
	maxTextBytes = 64 << 10
)

// Interpreter parses an utterance without executing it.
type Interpreter func(text string) multilang.Interpretation

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port      int
	interpret Interpreter
	swagger   bool
	maxAudio  int64
	client    *http.Client
	upgrader  websocket.Upgrader
	server    *http.Server
}

// Option configures the transport.
type Option func(*Transport)

// WithInterpreter enables POST /interpret.
func WithInterpreter(fn Interpreter) Option {
	return func(t *Transport) { t.interpret = fn }
}

// WithSwagger serves Swagger UI under /swagger/.
func WithSwagger(enabled bool) Option {
	return func(t *Transport) { t.swagger = enabled }
}

// WithMaxAudioBytes bounds audio uploads. Larger bodies get 413.
func WithMaxAudioBytes(n int64) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxAudio = n
		}
	}
}

// New creates a new HTTP transport on the given port.
func New(port int, opts ...Option) *Transport {
	t := &Transport{
		port:     port,
		maxAudio: defaultMaxAudio,
		client:   &http.Client{Timeout: 10 * time.Second},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients are local devices, not browsers on other origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return transport.HTTP }

// Routes builds the request mux around handler.
func (t *Transport) Routes(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /dispatch", func(w http.ResponseWriter, r *http.Request) {
		t.handleDispatch(w, r, handler)
	})
	if t.interpret != nil {
		mux.HandleFunc("POST /interpret", t.handleInterpret)
	}
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		t.handleWebSocket(w, r, handler)
	})
	if t.swagger {
		mux.Handle("GET /swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}
	return mux
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Routes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port, "swagger", t.swagger)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleDispatch processes a POST /dispatch request.
//
// @Summary     Dispatch a voice or text command
// @Description Accepts a JSON message (with typed text or base64 audio) or raw audio bytes.
// @Description The utterance is transcribed if needed, interpreted, executed, and the
// @Description result is routed to the requested targets.
// @Tags        dispatch
// @Accept      json
// @Accept      audio/wav
// @Accept      audio/ogg
// @Produce     json
// @Param       message  body      message.Message  true  "Dispatch request (JSON). For raw audio, POST the bytes directly with the appropriate Content-Type."
// @Param       X-Vaani-Source       header  string  false  "Sender identifier (used with raw audio uploads)"
// @Param       X-Vaani-Instruction  header  string  false  "JSON-encoded Instruction (used with raw audio uploads)"
// @Success     200  {object}  message.DispatchResult  "Interpretation and action results"
// @Failure     400  {string}  string  "Invalid request body or headers"
// @Failure     413  {string}  string  "Body too large"
// @Failure     500  {string}  string  "Internal processing error"
// @Router      /dispatch [post]
func (t *Transport) handleDispatch(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var msg message.Message

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		// JSON audio is base64, a third larger than the raw bytes.
		body := http.MaxBytesReader(w, r.Body, t.maxAudio/3*4+maxTextBytes)
		if err := json.NewDecoder(body).Decode(&msg); err != nil {
			bodyError(w, "invalid json", err)
			return
		}
	default:
		// Treat body as raw audio; read instruction from headers.
		audioData, err := io.ReadAll(http.MaxBytesReader(w, r.Body, t.maxAudio))
		if err != nil {
			bodyError(w, "reading audio", err)
			return
		}
		msg.Audio = audioData
		msg.ContentType = contentType
		msg.Source = r.Header.Get("X-Vaani-Source")

		if instrHeader := r.Header.Get("X-Vaani-Instruction"); instrHeader != "" {
			if err := json.Unmarshal([]byte(instrHeader), &msg.Instruction); err != nil {
				http.Error(w, "invalid instruction header: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	result, err := handler(r.Context(), &msg)
	if err != nil {
		slog.Error("dispatch failed", "error", err)
		http.Error(w, "dispatch error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

// InterpretRequest is the body of POST /interpret.
type InterpretRequest struct {
	Text string `json:"text" example:"mummy ko 'khana ready hai' bhej do"`
}

// handleInterpret parses an utterance without executing anything.
//
// @Summary     Interpret an utterance
// @Description Runs language detection, classification and entity extraction only.
// @Tags        interpret
// @Accept      json
// @Produce     json
// @Param       request  body      InterpretRequest  true  "Utterance"
// @Success     200  {object}  multilang.Interpretation
// @Failure     400  {string}  string  "Invalid request body"
// @Failure     413  {string}  string  "Body too large"
// @Router      /interpret [post]
func (t *Transport) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBytes)).Decode(&req); err != nil {
		bodyError(w, "invalid json", err)
		return
	}
	writeJSON(w, t.interpret(req.Text))
}

// handleWebSocket serves GET /ws. Text frames are utterances, binary
// frames are audio in the content type given by the "content_type" query
// parameter. Each frame gets one DispatchResult back.
func (t *Transport) handleWebSocket(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(t.maxAudio)

	source := r.URL.Query().Get("source")
	contentType := r.URL.Query().Get("content_type")
	if contentType == "" {
		contentType = "audio/wav"
	}
	logger := slog.With("source", source, "remote", r.RemoteAddr)
	logger.Info("websocket client connected")
	defer logger.Info("websocket client disconnected")

	for {
		frameType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		msg := &message.Message{Source: source}
		switch frameType {
		case websocket.TextMessage:
			msg.Text = string(data)
		case websocket.BinaryMessage:
			msg.Audio = data
			msg.ContentType = contentType
		default:
			continue
		}

		result, err := handler(r.Context(), msg)
		if err != nil {
			result = &message.DispatchResult{MessageID: msg.ID, Error: err.Error()}
		}
		if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			return
		}
		if err := conn.WriteJSON(result); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// Send delivers a payload to an HTTP target via POST.
func (t *Transport) Send(ctx context.Context, target message.Target, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("http send: status %d: %s", resp.StatusCode, body)
	}

	slog.Debug("http send success", "target", target.Endpoint, "status", resp.StatusCode)
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// bodyError answers 413 for a body over its limit and 400 otherwise.
func bodyError(w http.ResponseWriter, what string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, fmt.Sprintf("%s: body exceeds %d bytes", what, tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, what+": "+err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
