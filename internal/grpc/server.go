// Package grpcserver serves the gRPC surface: standard health checking and
// the ledger balance lookup.
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"aiContentStudio/internal/auth"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// Server wraps the grpc.Server and its health state.
type Server struct {
	srv    *grpc.Server
	health *health.Server
}

// NewServer builds a server with health and LedgerService registered. Every
// method except the health check requires a bearer token.
func NewServer(authn *auth.Authenticator, users UserReader) *Server {
	logger := slog.Default().With("component", "grpc")
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		logUnary(logger),
		auth.NewUnaryAuthInterceptor(authn, healthCheckMethod),
	))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	RegisterLedgerServiceServer(srv, &LedgerServer{Users: users})
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(LedgerServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{srv: srv, health: hs}
}

// Serve blocks serving lis.
func (s *Server) Serve(lis net.Listener) error { return s.srv.Serve(lis) }

// Shutdown marks the server not serving and stops it gracefully, forcing a
// stop when ctx ends first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() { s.srv.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.srv.Stop()
		return ctx.Err()
	}
}

// StartGRPC starts the gRPC server on addr and returns a shutdown function.
func StartGRPC(addr string, authn *auth.Authenticator, users UserReader) (func(context.Context) error, error) {
	if addr == "" {
		addr = ":50051"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	// Plaintext; terminate TLS in front of the process.
	s := NewServer(authn, users)
	go func() {
		if err := s.Serve(lis); err != nil {
			slog.Error("grpc serve", "component", "grpc", "error", err)
		}
	}()
	return s.Shutdown, nil
}

func logUnary(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed", time.Since(start),
		)
		return resp, err
	}
}
