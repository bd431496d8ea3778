package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// ClientSender sends through a linked WhatsApp device. The device session
// lives in a sqlite store; an unlinked device prints pairing QR codes to the
// log until it is scanned.
type ClientSender struct {
	client *whatsmeow.Client

	mu        sync.Mutex
	connected chan struct{}
}

// NewClientSender opens the session store at dsn and prepares a client. It
// does not connect; call Connect.
func NewClientSender(ctx context.Context, dsn string) (*ClientSender, error) {
	container, err := sqlstore.New(ctx, "sqlite3", dsn, waLog.Stdout("Database", "WARN", false))
	if err != nil {
		return nil, fmt.Errorf("opening whatsapp session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading whatsapp device: %w", err)
	}

	s := &ClientSender{
		client:    whatsmeow.NewClient(device, waLog.Stdout("Client", "WARN", false)),
		connected: make(chan struct{}),
	}
	s.client.AddEventHandler(s.handleEvent)
	return s, nil
}

func (s *ClientSender) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		s.mu.Lock()
		select {
		case <-s.connected:
		default:
			close(s.connected)
		}
		s.mu.Unlock()
		slog.Info("whatsapp connected")
	case *events.Disconnected:
		slog.Warn("whatsapp disconnected")
	case *events.LoggedOut:
		slog.Error("whatsapp session logged out", "reason", v.Reason, "on_connect", v.OnConnect)
	}
}

// Connect opens the websocket and waits until the session is usable or ctx
// is done. An unlinked device logs QR codes for pairing.
func (s *ClientSender) Connect(ctx context.Context) error {
	if s.client.Store.ID == nil {
		qrChan, err := s.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("getting QR channel: %w", err)
		}
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("connecting: %w", err)
		}
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					slog.Info("scan this code with WhatsApp > Linked devices", "qr", evt.Code)
				} else {
					slog.Info("whatsapp pairing event", "event", evt.Event)
				}
			}
		}()
	} else if err := s.client.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	select {
	case <-s.connected:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for whatsapp connection: %w", ctx.Err())
	}
}

// Send implements Sender.
func (s *ClientSender) Send(ctx context.Context, phone, text string) error {
	if !s.client.IsConnected() {
		return fmt.Errorf("whatsapp client is not connected")
	}
	jid := types.NewJID(strings.TrimPrefix(phone, "+"), types.DefaultUserServer)
	msg := &waE2E.Message{Conversation: proto.String(text)}

	resp, err := s.client.SendMessage(ctx, jid, msg)
	if err != nil {
		return fmt.Errorf("sending to %s: %w", jid, err)
	}
	slog.Debug("whatsapp message delivered to server", "id", resp.ID, "timestamp", resp.Timestamp.Format(time.RFC3339))
	return nil
}

// Close disconnects the client. The session is kept for the next start.
func (s *ClientSender) Close() error {
	s.client.Disconnect()
	return nil
}
