package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAuthRequired       = errors.New("authentication required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailInvalid       = errors.New("invalid email format")
)

// UserStore is the user persistence the service needs. users.Repository
// implements it.
type UserStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*entities.User, error)
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// Session is the result of a successful login.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

// Service handles registration, login and token verification.
type Service struct {
	users   UserStore
	tokens  *TokenManager
	revoked RevocationStore
	config  config.Auth
}

// NewService creates a new authentication service. revoked may be nil, in
// which case logout is a no-op beyond the client discarding the token.
func NewService(users UserStore, tokens *TokenManager, revoked RevocationStore, cfg config.Auth) *Service {
	return &Service{users: users, tokens: tokens, revoked: revoked, config: cfg}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.Wrap(apperrors.KindValidation, ErrEmailRequired, ErrEmailRequired.Error())
	}
	// RFC 5321 limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, apperrors.Wrap(apperrors.KindValidation, ErrEmailInvalid, ErrEmailInvalid.Error())
	}
	if password == "" {
		return nil, apperrors.Wrap(apperrors.KindValidation, ErrPasswordRequired, ErrPasswordRequired.Error())
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooShort) || errors.Is(err, ErrPasswordTooLong) {
			return nil, apperrors.Wrap(apperrors.KindValidation, err, err.Error())
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.CreateUser(ctx, email, name, hash)
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if s.tokens == nil {
		return nil, ErrNoSecret
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Verify parses the token and rejects it if it has been revoked.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	if s.tokens == nil {
		return nil, ErrNoSecret
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}
	if s.revoked == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, token, s.tokens.Remaining(claims))
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeJWT
}
