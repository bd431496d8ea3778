// Package grpc implements the gRPC transport for vaani.
//
// The service is described by hand instead of generated from a .proto: the
// messages are the JSON types in package message, carried with a "json"
// codec. Clients select it with the content-subtype, e.g.
// grpc.CallContentSubtype("json"). It is the preferred transport for
// low-latency communication with robots and edge devices.
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/transport"
)

// Service and method names.
const (
	ServiceName    = "vaani.v1.Vaani"
	DispatchMethod = "/" + ServiceName + "/Dispatch"
	DeliverMethod  = "/" + ServiceName + "/Deliver"
)

// Codec marshals messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(Codec{})
}

// DeliverAck acknowledges a delivered result.
type DeliverAck struct {
	Received bool `json:"received"`
}

// VaaniServer is the server API of the Vaani service.
type VaaniServer interface {
	Dispatch(ctx context.Context, msg *message.Message) (*message.DispatchResult, error)
	Deliver(ctx context.Context, result *message.DispatchResult) (*DeliverAck, error)
}

// ServiceDesc describes the Vaani service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaaniServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dispatch", Handler: dispatchHandler},
		{MethodName: "Deliver", Handler: deliverHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vaani/v1/vaani.proto",
}

func dispatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.Message)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaaniServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DispatchMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaaniServer).Dispatch(ctx, req.(*message.Message))
	}
	return interceptor(ctx, in, info, handler)
}

func deliverHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.DispatchResult)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaaniServer).Deliver(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeliverMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaaniServer).Deliver(ctx, req.(*message.DispatchResult))
	}
	return interceptor(ctx, in, info, handler)
}

// server adapts a transport.Handler to VaaniServer.
type server struct {
	handler transport.Handler
}

func (s *server) Dispatch(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	res, err := s.handler(ctx, msg)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "dispatch: %v", err)
	}
	return res, nil
}

func (s *server) Deliver(_ context.Context, result *message.DispatchResult) (*DeliverAck, error) {
	slog.Info("result delivered",
		"message_id", result.MessageID,
		"command", result.CommandType,
		"response", result.ResponseText,
	)
	return &DeliverAck{Received: true}, nil
}

// UnaryLoggingInterceptor logs every unary call with its duration and code.
func UnaryLoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		st, _ := status.FromError(err)

		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "grpc call",
			"method", info.FullMethod,
			"code", st.Code().String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port     int
	dialOpts []grpc.DialOption

	mu     sync.Mutex
	server *grpc.Server
	health *health.Server
	conns  map[string]*grpc.ClientConn
}

// Option configures the transport.
type Option func(*Transport)

// WithDialOptions adds options used when connecting to targets.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(t *Transport) { t.dialOpts = append(t.dialOpts, opts...) }
}

// New creates a new gRPC transport on the given port.
func New(port int, opts ...Option) *Transport {
	t := &Transport{port: port, conns: make(map[string]*grpc.ClientConn)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return transport.GRPC }

// Listen starts the gRPC server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	slog.Info("grpc transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		_ = t.Close()
	}()

	return t.Serve(lis, handler)
}

// Serve registers the Vaani and health services and serves on lis.
func (t *Transport) Serve(lis net.Listener, handler transport.Handler) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor()))
	srv.RegisterService(&ServiceDesc, &server{handler: handler})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	t.mu.Lock()
	t.server, t.health = srv, hs
	t.mu.Unlock()

	if err := srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Send delivers a payload to the Deliver method of a gRPC target.
func (t *Transport) Send(ctx context.Context, target message.Target, payload []byte) error {
	conn, err := t.conn(target.Endpoint)
	if err != nil {
		return fmt.Errorf("grpc send: %w", err)
	}

	var ack DeliverAck
	raw := json.RawMessage(payload)
	if err := conn.Invoke(ctx, DeliverMethod, &raw, &ack, grpc.CallContentSubtype(Codec{}.Name())); err != nil {
		return fmt.Errorf("grpc send to %s: %w", target.Endpoint, err)
	}
	slog.Debug("grpc send success", "target", target.Endpoint, "received", ack.Received)
	return nil
}

func (t *Transport) conn(endpoint string) (*grpc.ClientConn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.conns[endpoint]; ok {
		return c, nil
	}
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, t.dialOpts...)
	c, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	t.conns[endpoint] = c
	return c, nil
}

// Close gracefully stops the gRPC server and closes client connections.
// Calls still draining may Send, so the lock is not held across
// GracefulStop.
func (t *Transport) Close() error {
	t.mu.Lock()
	srv, hs := t.server, t.health
	t.server, t.health = nil, nil
	t.mu.Unlock()

	if hs != nil {
		hs.Shutdown()
	}
	if srv != nil {
		srv.GracefulStop()
	}

	t.mu.Lock()
	conns := t.conns
	t.conns = make(map[string]*grpc.ClientConn)
	t.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	return nil
}
