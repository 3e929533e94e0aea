package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	mdwlog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/pkg/core/logging"
)

// Context keys for request metadata
type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader string     = "x-request-id"
)

// Interceptors builds the server and client interceptor chains around one
// logger
type Interceptors struct {
	logger *logging.Logger
}

// NewInterceptors returns interceptors that log to logger. A nil logger
// falls back to a "grpc" logger with the process defaults.
func NewInterceptors(logger *logging.Logger) *Interceptors {
	if logger == nil {
		logger = logging.New("grpc")
	}
	return &Interceptors{logger: logger}
}

// Unary returns the server chain: request ID, recovery, logging, then error
// mapping closest to the handler
func (i *Interceptors) Unary() []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		i.RequestID(),
		i.Recovery(),
		i.Logging(),
		i.Errors(),
	}
}

// Stream returns the server chain for streaming calls such as health Watch
func (i *Interceptors) Stream() []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{i.StreamRecovery(), i.StreamLogging()}
}

// RequestID stores the caller's x-request-id, or a fresh UUID, in the
// context and echoes it as a response header
func (i *Interceptors) RequestID() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := extractRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = WithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))
		return handler(ctx, req)
	}
}

// Recovery turns a handler panic into codes.Internal
func (i *Interceptors) Recovery() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = i.recovered(info.FullMethod, GetRequestID(ctx), r)
			}
		}()
		return handler(ctx, req)
	}
}

// StreamRecovery is Recovery for streaming handlers
func (i *Interceptors) StreamRecovery() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = i.recovered(info.FullMethod, GetRequestID(ss.Context()), r)
			}
		}()
		return handler(srv, ss)
	}
}

func (i *Interceptors) recovered(method, requestID string, r interface{}) error {
	i.logger.Error("gRPC panic recovered",
		"method", method,
		"request_id", requestID,
		"panic", r,
		"stack", string(debug.Stack()))
	return status.Errorf(codes.Internal, "internal server error")
}

// Logging logs one line per call. Rejected input is logged at info level,
// server-side failures at error level.
func (i *Interceptors) Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		i.logCall("gRPC request", info.FullMethod, GetRequestID(ctx), status.Code(err), time.Since(start))
		return resp, err
	}
}

// StreamLogging is Logging for streaming calls
func (i *Interceptors) StreamLogging() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		i.logCall("gRPC stream", info.FullMethod, GetRequestID(ss.Context()), status.Code(err), time.Since(start))
		return err
	}
}

func (i *Interceptors) logCall(msg, method, requestID string, code codes.Code, d time.Duration) {
	kv := []interface{}{
		"request_id", requestID,
		"method", method,
		"status", code.String(),
		"duration", d,
	}
	if isServerFault(code) {
		i.logger.Error(msg, kv...)
		return
	}
	i.logger.Info(msg, kv...)
}

// isServerFault reports whether code blames the server rather than the input
func isServerFault(code codes.Code) bool {
	switch code {
	case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss, codes.Unimplemented:
		return true
	}
	return false
}

// Errors maps foundation errors returned by handlers to status errors
func (i *Interceptors) Errors() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		return resp, ToStatus(err)
	}
}

// ClientRequestID forwards the context's request ID, generating one if absent
func (i *Interceptors) ClientRequestID() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		requestID := GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ClientLogging logs outgoing calls at debug level
func (i *Interceptors) ClientLogging() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if !i.logger.IsLevelEnabled(mdwlog.LevelDebug) {
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		i.logger.Debug("gRPC client request",
			"method", method,
			"target", cc.Target(),
			"status", status.Code(err).String(),
			"duration", time.Since(start))
		return err
	}
}

// GetRequestID returns the request ID stored in ctx, or the one in the
// incoming metadata
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return extractRequestID(ctx)
}

func extractRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
