// Package mqtt implements the MQTT transport for vaani.
//
// MQTT is well-suited for IoT devices and lightweight pub/sub messaging.
// This transport subscribes to a request topic and publishes each result to
// <response prefix>/<source>, falling back to the message ID when the
// sender did not identify itself.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/transport"
)

const opTimeout = 10 * time.Second

// Options configures the MQTT transport.
type Options struct {
	Broker         string
	Topic          string
	ResponsePrefix string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
}

// Transport implements transport.Transport over MQTT.
type Transport struct {
	opts      Options
	newClient func(*paho.ClientOptions) paho.Client

	mu     sync.Mutex
	client paho.Client // one per transport; paho reconnects it
}

// New creates a new MQTT transport.
func New(opts Options) *Transport {
	if opts.ClientID == "" {
		opts.ClientID = "vaani-" + uuid.NewString()[:8]
	}
	if opts.Topic == "" {
		opts.Topic = "vaani/requests/#"
	}
	if opts.ResponsePrefix == "" {
		opts.ResponsePrefix = "vaani/responses"
	}
	return &Transport{opts: opts, newClient: paho.NewClient}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return transport.MQTT }

// connect returns the transport's client, creating and connecting it on
// first use. A client that lost its connection is left to paho's
// auto-reconnect; a second client with the same ID would make the broker
// drop the first session.
func (t *Transport) connect() (paho.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		if !t.client.IsConnected() {
			return nil, fmt.Errorf("mqtt %s: not connected", t.opts.Broker)
		}
		return t.client, nil
	}

	co := paho.NewClientOptions().
		AddBroker(t.opts.Broker).
		SetClientID(t.opts.ClientID).
		SetUsername(t.opts.Username).
		SetPassword(t.opts.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(opTimeout).
		// Handlers dispatch and publish; each must run on its own goroutine.
		SetOrderMatters(false).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost", "broker", t.opts.Broker, "error", err)
		})

	client := t.newClient(co)
	if err := wait(client.Connect()); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", t.opts.Broker, err)
	}
	t.client = client
	return client, nil
}

// Listen connects to the MQTT broker and subscribes to the configured topic.
// It blocks until the context is cancelled.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	client, err := t.connect()
	if err != nil {
		return err
	}

	token := client.Subscribe(t.opts.Topic, t.opts.QoS, func(c paho.Client, m paho.Message) {
		t.handleMessage(ctx, c, m, handler)
	})
	if err := wait(token); err != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", t.opts.Topic, err)
	}
	slog.Info("mqtt transport listening", "broker", t.opts.Broker, "topic", t.opts.Topic)

	<-ctx.Done()
	slog.Info("mqtt transport shutting down")
	return t.Close()
}

// handleMessage decodes one request. A payload that is not a JSON object is
// taken as a plain-text utterance.
func (t *Transport) handleMessage(ctx context.Context, client paho.Client, m paho.Message, handler transport.Handler) {
	var msg message.Message
	payload := m.Payload()
	if trimmed := strings.TrimSpace(string(payload)); strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Warn("mqtt: invalid request", "topic", m.Topic(), "error", err)
			return
		}
	} else {
		msg.Text = trimmed
	}
	if msg.Source == "" {
		msg.Source = lastSegment(m.Topic())
	}

	result, err := handler(ctx, &msg)
	if err != nil {
		result = &message.DispatchResult{MessageID: msg.ID, Error: err.Error()}
	}
	data, err := json.Marshal(result)
	if err != nil {
		slog.Error("mqtt: marshalling result", "error", err)
		return
	}

	replyTo := msg.Source
	if replyTo == "" {
		replyTo = result.MessageID
	}
	topic := strings.TrimSuffix(t.opts.ResponsePrefix, "/") + "/" + replyTo
	if err := wait(client.Publish(topic, t.opts.QoS, false, data)); err != nil {
		slog.Error("mqtt: publishing result", "topic", topic, "error", err)
	}
}

// Send publishes a payload to the target's topic (its Endpoint).
func (t *Transport) Send(ctx context.Context, target message.Target, payload []byte) error {
	client, err := t.connect()
	if err != nil {
		return err
	}
	token := client.Publish(target.Endpoint, t.opts.QoS, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", target.Endpoint, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish %s: %w", target.Endpoint, ctx.Err())
	}
	slog.Debug("mqtt send success", "topic", target.Endpoint, "bytes", len(payload))
	return nil
}

// Close disconnects from the MQTT broker.
func (t *Transport) Close() error {
	t.mu.Lock()
	client := t.client
	t.client = nil
	t.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(250)
	}
	return nil
}

func wait(token paho.Token) error {
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("timed out after %s", opTimeout)
	}
	return token.Error()
}

func lastSegment(topic string) string {
	if i := strings.LastIndex(topic, "/"); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
