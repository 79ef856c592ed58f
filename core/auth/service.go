package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Tunelist/logger"
	"Tunelist/model"
	"Tunelist/repository"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// MaxPasswordLength is the bcrypt input limit in bytes.
const MaxPasswordLength = 72

var (
	// ErrWeakPassword is returned by Register for passwords shorter than MinPasswordLength.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	// ErrPasswordTooLong is returned by Register for passwords bcrypt cannot hash.
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
)

// Revoker tracks token IDs that were logged out before their expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Service is the identity half of the backing data service: accounts, sessions and
// bearer token verification.
type Service struct {
	users   repository.UserRepository
	tokens  *TokenIssuer
	revoker Revoker // nil disables logout revocation
}

// NewService 创建认证服务
func NewService(users repository.UserRepository, tokens *TokenIssuer, revoker Revoker) *Service {
	return &Service{users: users, tokens: tokens, revoker: revoker}
}

// Register creates an account and signs it in. A taken email yields repository.ErrDuplicateUser.
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if len(password) < MinPasswordLength {
		return nil, nil, ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return nil, nil, ErrPasswordTooLong
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("[Auth] 用户注册成功", logger.String("userId", user.ID))
	return user, session, nil
}

// Login checks the password and issues a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout revokes the token until it would have expired anyway. Tokens that are already
// invalid need no revocation and are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.revoker == nil || token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logger.Info("[Auth] token 已注销", logger.String("userId", claims.Subject))
	return nil
}

// VerifyToken resolves a bearer token to the caller's identity. Rejections wrap
// ErrInvalidToken; any other error means a dependency failed.
func (s *Service) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
		}
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
	}
	return &model.Identity{ID: user.ID, Email: user.Email}, nil
}
