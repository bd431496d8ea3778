// Package transport is the boundary between vaani's listeners and the
// command pipeline.
//
// A transport accepts utterances (typed text or recorded audio) over its
// protocol, hands each one to a Handler and answers the caller with the
// resulting DispatchResult. The dispatcher also uses transports in the other
// direction: a result addressed to a named target is sent out over the
// transport whose Name matches the target's protocol.
package transport

import (
	"context"

	"github.com/nadzzz/vaani/internal/message"
)

// Protocol names. A Target's Protocol selects the transport by Name.
const (
	GRPC = "grpc"
	HTTP = "http"
	MQTT = "mqtt"
)

// Handler runs one utterance through interpretation and execution.
// Failures inside the pipeline are reported in the result; a non-nil error
// means the message could not be handled at all.
type Handler func(ctx context.Context, msg *message.Message) (*message.DispatchResult, error)

// Transport is implemented by the gRPC, HTTP and MQTT listeners.
type Transport interface {
	// Name is the protocol name targets use to pick this transport.
	Name() string

	// Listen serves until ctx is cancelled or Close is called.
	Listen(ctx context.Context, handler Handler) error

	// Send pushes an encoded DispatchResult to target.Endpoint.
	Send(ctx context.Context, target message.Target, payload []byte) error

	// Close stops accepting new messages. Handlers already running may
	// still call Send on any transport until they return.
	Close() error
}
