package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/authn"
)

const authorizationKey = "authorization"

// healthPrefix marks methods that are served without authentication.
const healthPrefix = "/grpc.health.v1.Health/"

// accessTokenInterceptor runs the authentication pipeline on unary calls.
// Calls without a token continue anonymously; handlers that need a caller
// use authn.PrincipalFromContext.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if strings.HasPrefix(info.FullMethod, healthPrefix) {
		return handler(ctx, req)
	}

	var raw string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(authorizationKey); len(values) > 0 {
			raw, _ = authn.BearerToken(values[0])
		}
	}

	p, err := s.authenticator.Authenticate(ctx, raw)
	if err != nil {
		return nil, s.statusFor(ctx, info.FullMethod, err)
	}
	if p != nil {
		ctx = authn.ContextWithPrincipal(ctx, p)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) statusFor(ctx context.Context, method string, err error) error {
	kind, ok := auth.KindOf(err)
	if !ok {
		s.logger.Error(ctx, "authentication failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}

	s.metrics.Rejected(kind.String())
	s.logger.Info(ctx, "call rejected", "method", method, "kind", kind.String())

	switch kind {
	case auth.KindStoreUnavailable:
		return status.Error(codes.Unavailable, kind.String())
	case auth.KindMisconfiguredKey:
		return status.Error(codes.Internal, "internal error")
	default:
		return status.Error(codes.Unauthenticated, kind.String())
	}
}
