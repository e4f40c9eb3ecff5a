// Package services contains server-side business logic. This file implements
// AuthService, which completes external logins, rotates refresh tokens, and
// revokes refresh sessions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/common"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/dbx"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/metrics"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/models"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/repositories/repomanager"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/sessions"
)

// ErrSessionRevoked means the refresh token is genuine but its session is
// gone: logged out, revoked, or expired in the store.
var ErrSessionRevoked = errors.New("refresh session revoked")

// ExternalIdentity is a verified login reported by the identity provider.
type ExternalIdentity struct {
	Email     string
	Name      string
	AvatarURL string
}

// TokenPair bundles a short-lived access token and a long-lived refresh token
// together with the user they were issued to.
type TokenPair struct {
	Access  auth.Issued
	Refresh auth.Issued
	User    *models.User
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	validator   *auth.Validator
	store       sessions.Store
	checker     *sessions.Checker
	metrics     *metrics.AuthMetrics
	logger      logging.Logger
}

func NewAuthService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	issuer *auth.Issuer,
	validator *auth.Validator,
	store sessions.Store,
	checker *sessions.Checker,
	am *metrics.AuthMetrics,
	logger logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		validator:   validator,
		store:       store,
		checker:     checker,
		metrics:     am,
		logger:      logger.With("module", "auth_service"),
	}
}

// CompleteExternalLogin resolves or creates the local user for id, issues an
// access and a refresh token, and records the refresh session. The user
// upsert runs in a transaction that rolls back when the session cannot be
// stored, so a failed login leaves nothing behind.
func (s *AuthService) CompleteExternalLogin(ctx context.Context, id ExternalIdentity) (*TokenPair, error) {
	if id.Email == "" {
		s.metrics.Login(false)
		return nil, common.ErrorInvalidIdentity
	}

	var pair *TokenPair
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).SaveOrUpdate(ctx, &models.User{
			Email:     id.Email,
			Name:      id.Name,
			AvatarURL: id.AvatarURL,
		})
		if err != nil {
			return fmt.Errorf("error saving user: %w", err)
		}

		pair, err = s.issuePair(ctx, user)
		return err
	})
	if err != nil {
		s.metrics.Login(false)
		s.logger.Error(ctx, "external login failed", "error", err)
		return nil, err
	}

	s.metrics.Login(true)
	s.logger.Info(ctx, "external login completed", "user_id", pair.User.ID, "token_id", pair.Refresh.TokenID)
	return pair, nil
}

// Refresh exchanges a live refresh token for a new pair. Deleting the
// presented session is the claim on it: only the caller whose delete removed
// the record gets a new pair, so a token is redeemed at most once and a
// concurrent revoke-all always wins.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	pair, err := s.refresh(ctx, rawRefresh)
	s.metrics.Refresh(err == nil)
	return pair, err
}

func (s *AuthService) refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	tok, err := s.validator.Verify(rawRefresh)
	if err != nil {
		return nil, err
	}
	if tok.Type != auth.TypeRefresh {
		return nil, auth.NewError(auth.KindWrongTokenKind, fmt.Errorf("got %s token", tok.Type))
	}

	live, err := s.checker.IsLive(ctx, tok.UserID, tok.TokenID)
	if err != nil {
		return nil, err
	}
	if !live {
		s.logger.Warn(ctx, "refresh with revoked session", "user_id", tok.UserID, "token_id", tok.TokenID)
		return nil, ErrSessionRevoked
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, auth.NewError(auth.KindPrincipalNotFound, err)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	claimed, err := s.store.RevokeOne(ctx, tok.UserID, tok.TokenID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.logger.Warn(ctx, "refresh lost the session claim", "user_id", tok.UserID, "token_id", tok.TokenID)
		return nil, ErrSessionRevoked
	}

	return s.issuePair(ctx, user)
}

// Logout revokes the session named by rawRefresh. Tokens that do not decode
// (expired, forged, garbage) or are not refresh tokens are ignored: there is
// nothing to revoke, and the store TTL reclaims expired sessions.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	if rawRefresh == "" {
		return nil
	}
	tok, ok := s.validator.VerifySoft(ctx, rawRefresh)
	if !ok || tok.Type != auth.TypeRefresh {
		return nil
	}

	if _, err := s.store.RevokeOne(ctx, tok.UserID, tok.TokenID); err != nil {
		return err
	}

	s.metrics.RevokedOne()
	s.logger.Info(ctx, "logged out", "user_id", tok.UserID, "token_id", tok.TokenID)
	return nil
}

// RevokeAll ends every refresh session of the user. Access tokens already
// handed out stay valid until they expire.
func (s *AuthService) RevokeAll(ctx context.Context, userID int64) (int, error) {
	n, err := s.store.RevokeAll(ctx, userID)
	if err != nil {
		return n, err
	}

	s.metrics.RevokedAll(n)
	s.logger.Info(ctx, "all sessions revoked", "user_id", userID, "count", n)
	return n, nil
}

// FindUser looks up the account named by a token subject.
func (s *AuthService) FindUser(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).FindByEmail(ctx, email)
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	role := user.Role
	if role == "" {
		role = common.DefaultRole
	}
	id := auth.Identity{Subject: user.Email, UserID: user.ID, Role: role}

	access, err := s.issuer.IssueAccess(id)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefresh(id)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}

	if err := s.store.Store(ctx, user.ID, refresh.TokenID, refresh.Lifetime()); err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh, User: user}, nil
}
