package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/authn"
)

const (
	sessionsServiceName = "secondbrain.auth.v1.Sessions"
	methodMe            = "/" + sessionsServiceName + "/Me"
	methodRevokeAll     = "/" + sessionsServiceName + "/RevokeAll"
)

// SessionRevoker ends every refresh session of a user.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID int64) (int, error)
}

// sessionsServer answers for the authenticated caller. Messages are protobuf
// well-known types, so no generated code is needed.
type sessionsServer interface {
	Me(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	RevokeAll(ctx context.Context, req *emptypb.Empty) (*wrapperspb.Int64Value, error)
}

var sessionsServiceDesc = grpc.ServiceDesc{
	ServiceName: sessionsServiceName,
	HandlerType: (*sessionsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Me", Handler: meHandler},
		{MethodName: "RevokeAll", Handler: revokeAllHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func meHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sessionsServer).Me(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodMe}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(sessionsServer).Me(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func revokeAllHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sessionsServer).RevokeAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRevokeAll}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(sessionsServer).RevokeAll(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func principal(ctx context.Context) (*authn.Principal, error) {
	p, ok := authn.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "UNAUTHORIZED")
	}
	return p, nil
}

// Me returns the authenticated user.
func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"id":        p.UserID,
		"email":     p.User.Email,
		"name":      p.User.Name,
		"avatarUrl": p.User.AvatarURL,
		"role":      p.Role,
	})
	if err != nil {
		s.logger.Error(ctx, "encode principal", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// RevokeAll ends every refresh session of the caller and returns the count.
func (s *GRPCServer) RevokeAll(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.revoker.RevokeAll(ctx, p.UserID)
	if err != nil {
		if kind, ok := auth.KindOf(err); ok && kind == auth.KindStoreUnavailable {
			return nil, status.Error(codes.Unavailable, kind.String())
		}
		s.logger.Error(ctx, "revoke all failed", "user_id", p.UserID, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "all sessions revoked", "user_id", p.UserID, "count", n)
	return wrapperspb.Int64(int64(n)), nil
}
