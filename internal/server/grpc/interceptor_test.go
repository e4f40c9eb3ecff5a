package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/common"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/authn"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/metrics"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/models"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) FindUser(_ context.Context, email string) (*models.User, error) {
	if u, ok := f[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type unavailableUsers struct{}

func (unavailableUsers) FindUser(context.Context, string) (*models.User, error) {
	return nil, auth.NewError(auth.KindStoreUnavailable, errors.New("down"))
}

type fakeRevoker struct {
	calls []int64
	n     int
	err   error
}

func (f *fakeRevoker) RevokeAll(_ context.Context, userID int64) (int, error) {
	f.calls = append(f.calls, userID)
	return f.n, f.err
}

var alice = &models.User{ID: 7, Email: "a@x.com", Name: "Alice", Role: common.DefaultRole}

func newTestServer(t *testing.T, users authn.UserLookup) (*GRPCServer, *auth.Issuer) {
	t.Helper()
	key, err := auth.NewSigningKey([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewSigningKey: %v", err)
	}
	codec := auth.NewCodec(key)
	issuer := auth.NewIssuer(codec, time.Minute, time.Hour)
	a := authn.NewAuthenticator(auth.NewValidator(codec, nil), users, nil)
	return NewGRPCServer("127.0.0.1:0", nil, a, &fakeRevoker{}, metrics.NewAuthMetrics()), issuer
}

func withBearer(raw string) context.Context {
	md := metadata.New(map[string]string{authorizationKey: "Bearer " + raw})
	return metadata.NewIncomingContext(context.Background(), md)
}

var protected = &grpc.UnaryServerInfo{FullMethod: methodMe}

func TestInterceptor_NoToken_IsAnonymous(t *testing.T) {
	s, _ := newTestServer(t, fakeUsers{})

	var hadPrincipal bool
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		_, hadPrincipal = authn.PrincipalFromContext(ctx)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, protected, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if hadPrincipal {
		t.Fatal("anonymous call carried a principal")
	}
}

func TestInterceptor_ValidToken_SetsPrincipal(t *testing.T) {
	s, issuer := newTestServer(t, fakeUsers{alice.Email: alice})

	tok, err := issuer.IssueAccess(auth.Identity{Subject: alice.Email, UserID: alice.ID, Role: alice.Role})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	var got *authn.Principal
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = authn.PrincipalFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(withBearer(tok.Raw), nil, protected, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.UserID != alice.ID || got.Role != common.DefaultRole {
		t.Fatalf("principal not propagated: %+v", got)
	}
}

func TestInterceptor_Rejections(t *testing.T) {
	s, issuer := newTestServer(t, fakeUsers{alice.Email: alice})

	refresh, err := issuer.IssueRefresh(auth.Identity{Subject: alice.Email, UserID: alice.ID})
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	ghost, err := issuer.IssueAccess(auth.Identity{Subject: "ghost@x.com", UserID: 99, Role: common.DefaultRole})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	tests := []struct {
		name string
		raw  string
		msg  string
	}{
		{"malformed", "not-a-jwt", "MALFORMED"},
		{"refresh token", refresh.Raw, "WRONG_TOKEN_KIND"},
		{"deleted user", ghost.Raw, "PRINCIPAL_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := func(ctx context.Context, req interface{}) (interface{}, error) {
				t.Fatal("handler should not be called")
				return nil, nil
			}
			_, err := s.accessTokenInterceptor(withBearer(tt.raw), nil, protected, h)
			if status.Code(err) != codes.Unauthenticated {
				t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
			}
			if status.Convert(err).Message() != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, status.Convert(err).Message())
			}
		})
	}
}

func TestInterceptor_StoreUnavailable(t *testing.T) {
	s, issuer := newTestServer(t, unavailableUsers{})

	tok, err := issuer.IssueAccess(auth.Identity{Subject: alice.Email, UserID: alice.ID, Role: alice.Role})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	h := func(ctx context.Context, req interface{}) (interface{}, error) { return nil, nil }
	_, err = s.accessTokenInterceptor(withBearer(tok.Raw), nil, protected, h)
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", status.Code(err))
	}
}

func TestInterceptor_HealthSkipsAuth(t *testing.T) {
	s, _ := newTestServer(t, fakeUsers{})

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	called := false
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(withBearer("garbage"), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler was not called")
	}
}
