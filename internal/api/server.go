package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/xtding233/gacha-arena/internal/session"
)

// Server hosts ArenaService and the standard health service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	logger     *log.Logger
}

type serverOptions struct {
	limit  rate.Limit
	burst  int
	logger *log.Logger
}

// ServerOption customizes a Server.
type ServerOption func(*serverOptions)

// WithRateLimit caps unary calls per second across all clients. A limit
// of zero or less disables limiting.
func WithRateLimit(perSecond float64, burst int) ServerOption {
	return func(o *serverOptions) {
		o.limit = rate.Limit(perSecond)
		o.burst = burst
	}
}

// WithServerLogger routes server logs to l.
func WithServerLogger(l *log.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = l }
}

// Listen opens a TCP listener on addr and builds a Server on it.
func Listen(addr string, svc *session.Service, opts ...ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return NewServer(lis, svc, opts...), nil
}

// NewServer builds a Server on an existing listener.
func NewServer(lis net.Listener, svc *session.Service, opts ...ServerOption) *Server {
	o := serverOptions{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	var interceptors []grpc.UnaryServerInterceptor
	if o.limit > 0 {
		burst := o.burst
		if burst < 1 {
			burst = 1
		}
		interceptors = append(interceptors, RateLimitInterceptor(rate.NewLimiter(o.limit, burst)))
	}
	interceptors = append(interceptors, logInterceptor(o.logger))

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	)
	RegisterArenaServer(grpcServer, NewHandler(svc))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   lis,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     o.logger,
	}
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve blocks until the server stops or ctx ends, then stops gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Printf("[api] listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		s.logger.Printf("[api] stopped")
		return handleErr(err)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// RateLimitInterceptor rejects calls with ResourceExhausted once limiter is
// out of tokens.
func RateLimitInterceptor(limiter *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !limiter.Allow() {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}

func logInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if code := status.Code(err); code == codes.Internal || code == codes.Unknown {
			logger.Printf("[api] %s failed: %v", info.FullMethod, err)
		}
		return resp, err
	}
}
