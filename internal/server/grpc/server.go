package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/authn"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/metrics"
)

// GRPCServer hosts the gRPC listener: the Sessions service and health.
// Every unary call except health passes through the same authentication
// pipeline as the HTTP API.
type GRPCServer struct {
	address       string
	authenticator *authn.Authenticator
	revoker       SessionRevoker
	metrics       *metrics.AuthMetrics
	logger        logging.Logger
	health        *health.Server
}

func NewGRPCServer(a string, l logging.Logger, an *authn.Authenticator, rv SessionRevoker, am *metrics.AuthMetrics) *GRPCServer {
	if l == nil {
		l = logging.Nop{}
	}
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		authenticator: an,
		revoker:       rv,
		metrics:       am,
		health:        health.NewServer(),
	}
}

// Run serves until ctx is canceled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	srv.RegisterService(&sessionsServiceDesc, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(sessionsServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
