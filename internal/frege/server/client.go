package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	coreGrpc "github.com/msto63/frege/pkg/core/grpc"
)

// Client calls a remote frege.v1.ParserService
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// Dial connects to target and waits up to timeout for the connection
func Dial(target string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	cfg := coreGrpc.DefaultClientConfig(target)
	cfg.Timeout = timeout
	cfg.Block = timeout > 0

	conn, err := coreGrpc.Dial(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn, health: healthpb.NewHealthClient(conn)}
}

// Parse calls ParserService.Parse
func (c *Client) Parse(ctx context.Context, req service.Request) (*service.Response, error) {
	return c.call(ctx, methodParse, req)
}

// Evaluate calls ParserService.Evaluate
func (c *Client) Evaluate(ctx context.Context, req service.Request) (*service.Response, error) {
	return c.call(ctx, methodEvaluate, req)
}

// History calls ParserService.History
func (c *Client) History(ctx context.Context, limit int) ([]*store.Entry, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"limit": structpb.NewNumberValue(float64(limit)),
	}}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodHistory, in, out); err != nil {
		return nil, coreGrpc.FromStatus(err)
	}
	return decodeHistory(out)
}

// Healthy reports whether the remote service is serving
func (c *Client) Healthy(ctx context.Context) bool {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, req service.Request) (*service.Response, error) {
	if req.RequestID != "" {
		ctx = coreGrpc.WithRequestID(ctx, req.RequestID)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, encodeRequest(req), out); err != nil {
		return nil, coreGrpc.FromStatus(err)
	}
	return decodeResponse(out)
}
