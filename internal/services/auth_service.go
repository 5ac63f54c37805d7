package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
)

// TokenIssuer signs access tokens. auth.JWTManager satisfies it.
type TokenIssuer interface {
	GenerateToken(userID int64, username, role string) (string, time.Time, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hash, password string) bool

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
	Home      string      `json:"home"`
}

// AuthService exchanges credentials for an access token.
type AuthService interface {
	// Login returns ErrUnauthenticated for an unknown user or a wrong password,
	// without telling the two apart.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	verify PasswordVerifier
	log    *logger.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, verify PasswordVerifier, log *logger.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		verify: verify,
		log:    log.WithComponent("auth"),
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !s.verify(user.PasswordHash, password) {
		s.log.Warn("Login failed", map[string]interface{}{"username": username})
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	home, err := HomeFor(Actor{UserID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		s.log.Error("Failed to issue token", err, map[string]interface{}{"user_id": user.ID})
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    string(user.Role),
	})
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
		Home:      home,
	}, nil
}
