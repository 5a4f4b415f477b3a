// Package service holds the token lifecycle: issuing access/refresh pairs,
// verifying presented tokens and minting new pairs from a refresh token.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/blog-backend/internal/logging"
	"github.com/iliyamo/blog-backend/internal/model"
	"github.com/iliyamo/blog-backend/internal/repository"
	"github.com/iliyamo/blog-backend/internal/utils"
)

// ErrInvalidToken is the only failure callers need to act on.  Every
// verification error wraps it together with one internal reason below.
var ErrInvalidToken = errors.New("invalid or expired token")

// Internal reasons, logged but never shown to clients.
var (
	ErrTokenMalformed = utils.ErrTokenMalformed
	ErrTokenSignature = utils.ErrTokenSignature
	ErrTokenExpired   = utils.ErrTokenExpired
	ErrTokenType      = errors.New("wrong token type")
	ErrUnknownUser    = errors.New("token subject does not resolve to a user")
)

// UserLookup resolves the user id embedded in a token.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenConfig is the immutable signing configuration, loaded once at startup.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenPair is what clients receive after register, login and refresh.
type TokenPair struct {
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// TokenService issues and verifies tokens.  It holds no mutable state and is
// safe for concurrent use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	users      UserLookup
	now        func() time.Time
}

// Option customizes a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService constructs a TokenService.  It panics on an empty secret
// or nil lookup because both are startup wiring errors.
func NewTokenService(cfg TokenConfig, users UserLookup, opts ...Option) *TokenService {
	if cfg.Secret == "" || users == nil {
		panic("service: NewTokenService requires a secret and a user lookup")
	}
	s := &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		users:      users,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Issue signs a fresh access/refresh pair for userID.
func (s *TokenService) Issue(userID uint64) (TokenPair, error) {
	now := s.now()
	access, err := utils.SignToken(s.secret, userID, utils.TokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.SignToken(s.secret, userID, utils.TokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess returns the user an access token was issued to.
func (s *TokenService) VerifyAccess(ctx context.Context, raw string) (*model.User, error) {
	return s.verify(ctx, raw, utils.TokenTypeAccess)
}

// VerifyRefresh returns the user a refresh token was issued to.
func (s *TokenService) VerifyRefresh(ctx context.Context, raw string) (*model.User, error) {
	return s.verify(ctx, raw, utils.TokenTypeRefresh)
}

// Refresh verifies a refresh token and issues a new pair for the same user.
// The presented refresh token stays valid until its own expiry; there is no
// revocation store.
func (s *TokenService) Refresh(ctx context.Context, raw string) (TokenPair, *model.User, error) {
	u, err := s.VerifyRefresh(ctx, raw)
	if err != nil {
		return TokenPair{}, nil, err
	}
	pair, err := s.Issue(u.ID)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, u, nil
}

func (s *TokenService) verify(ctx context.Context, raw, typ string) (*model.User, error) {
	claims, err := utils.ParseToken(s.secret, raw, s.now)
	if err != nil {
		return nil, s.reject(ctx, typ, err)
	}
	if claims.TokenType != typ {
		return nil, s.reject(ctx, typ, ErrTokenType)
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, s.reject(ctx, typ, ErrUnknownUser)
		}
		// A store failure is not a verdict on the token.
		return nil, fmt.Errorf("resolve token user: %w", err)
	}
	return u, nil
}

func (s *TokenService) reject(ctx context.Context, typ string, reason error) error {
	logging.From(ctx).Debug("token rejected", "typ", typ, "reason", reason.Error())
	return fmt.Errorf("%w: %w", ErrInvalidToken, reason)
}
