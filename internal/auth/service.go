package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roomtalk/roomtalk-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering an existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when the username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when the password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service is the identity collaborator: it establishes who a connection
// belongs to before a chat session is constructed. The core trusts the
// identity it produces and never re-checks credentials.
type Service struct {
	store  store.UserStore
	tokens *TokenConfig
}

// NewService creates an authentication service.
func NewService(userStore store.UserStore, tokens *TokenConfig) *Service {
	return &Service{store: userStore, tokens: tokens}
}

// Register creates a user with a hashed password and returns a signed token.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return "", ErrInvalidUsername
	}
	if len(password) < 6 {
		return "", ErrInvalidPassword
	}

	if existing, err := s.store.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return "", ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	user, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		// The exists-check above can race a concurrent registration; the
		// store's unique constraint is the authority.
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.token(user)
}

// Login validates credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.token(user)
}

// GuestLogin creates a temporary guest user and returns its token and
// session id.
func (s *Service) GuestLogin(ctx context.Context) (token, sessionID string, err error) {
	sessionID = uuid.NewString()

	user, err := s.store.CreateGuestUser(ctx, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("create guest user: %w", err)
	}

	token, err = s.token(user)
	if err != nil {
		return "", "", err
	}
	return token, sessionID, nil
}

// ValidateToken validates a token string and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ParseToken(s.tokens, tokenString)
}

func (s *Service) token(user *store.User) (string, error) {
	token, err := GenerateToken(s.tokens, user.ID, user.Username, user.IsGuest)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
