package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/msto63/frege/internal/frege/service"
	coreGrpc "github.com/msto63/frege/pkg/core/grpc"
	"github.com/msto63/frege/pkg/core/health"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/msto63/frege/pkg/core/version"
)

// defaultHistoryLimit applies when a History request has no limit
const defaultHistoryLimit = 50

// Server is the frege gRPC server
type Server struct {
	service    *service.Service
	grpc       *coreGrpc.Server
	health     *health.Registry
	grpcHealth *grpchealth.Server
	logger     *logging.Logger
	config     Config
	startTime  time.Time
}

// Config holds server configuration
type Config struct {
	Host              string
	Port              int
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	ConnectionTimeout time.Duration
	EnableReflection  bool
	Logger            *logging.Logger // interceptor logger, "grpc" when nil
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	d := coreGrpc.DefaultServerConfig()
	return Config{
		Host:              d.Host,
		Port:              d.Port,
		MaxRecvMsgSize:    d.MaxRecvMsgSize,
		MaxSendMsgSize:    d.MaxSendMsgSize,
		ConnectionTimeout: d.ConnectionTimeout,
		EnableReflection:  d.EnableReflection,
	}
}

// New creates a new frege server around svc
func New(cfg Config, svc *service.Service) *Server {
	logger := logging.New("frege-server")

	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.Port
	if cfg.MaxRecvMsgSize > 0 {
		grpcCfg.MaxRecvMsgSize = cfg.MaxRecvMsgSize
	}
	if cfg.MaxSendMsgSize > 0 {
		grpcCfg.MaxSendMsgSize = cfg.MaxSendMsgSize
	}
	if cfg.ConnectionTimeout > 0 {
		grpcCfg.ConnectionTimeout = cfg.ConnectionTimeout
	}
	grpcCfg.EnableReflection = cfg.EnableReflection
	grpcCfg.Logger = cfg.Logger

	grpcServer := coreGrpc.NewServer(grpcCfg, nil)

	server := &Server{
		service:    svc,
		grpc:       grpcServer,
		health:     NewHealthRegistry(svc),
		grpcHealth: grpchealth.NewServer(),
		logger:     logger,
		config:     cfg,
		startTime:  time.Now(),
	}

	RegisterParserServiceServer(grpcServer.GRPCServer(), server)
	healthpb.RegisterHealthServer(grpcServer.GRPCServer(), server.grpcHealth)
	server.grpcHealth.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return server
}

// NewHealthRegistry creates the health checks shared by the gRPC server and
// the HTTP gateway
func NewHealthRegistry(svc *service.Service) *health.Registry {
	registry := health.NewRegistry("frege", version.Server)
	registry.Register("engine", 50*time.Millisecond, func(ctx context.Context) error {
		_, err := svc.Engine().Evaluate("1 + 1")
		return err
	})
	registry.Register("history", 250*time.Millisecond, func(ctx context.Context) error {
		_, err := svc.History(ctx, 1)
		return err
	})
	return registry
}

// Ensure Server implements ParserServiceServer
var _ ParserServiceServer = (*Server)(nil)

// Parse implements ParserServiceServer.Parse
func (s *Server) Parse(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, in, s.service.Parse)
}

// Evaluate implements ParserServiceServer.Evaluate
func (s *Server) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, in, s.service.Evaluate)
}

// History implements ParserServiceServer.History
func (s *Server) History(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	limit := int(in.GetFields()["limit"].GetNumberValue())
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.service.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	return encodeHistory(entries), nil
}

func (s *Server) handle(ctx context.Context, in *structpb.Struct, call func(context.Context, service.Request) (*service.Response, error)) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = coreGrpc.GetRequestID(ctx)
	}

	resp, err := call(ctx, req)
	if err != nil {
		return nil, err
	}
	return encodeResponse(resp)
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting frege server", "host", s.config.Host, "port", s.config.Port)
	return s.grpc.Start()
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	s.logger.Info("Starting frege server (async)", "host", s.config.Host, "port", s.config.Port)
	return s.grpc.StartAsync()
}

// Stop stops the server. The service is owned by the caller and stays open.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Stopping frege server")
	s.grpcHealth.Shutdown()
	s.grpc.StopWithTimeout(ctx)
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// Core returns the wrapped core server
func (s *Server) Core() *coreGrpc.Server {
	return s.grpc
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// Uptime returns how long the server has existed
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
