package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"outreach-service/internal/domain"
	"outreach-service/internal/validator"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	tokenBytes        = 32
)

type UserEnsurer interface {
	EnsureUser(ctx context.Context, email, name string) (*domain.User, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, token, email string, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

// Sessions issues and resolves opaque sign-in tokens.
type Sessions struct {
	users UserEnsurer
	store SessionStore
	ttl   time.Duration
}

func NewSessions(users UserEnsurer, store SessionStore, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{users: users, store: store, ttl: ttl}
}

// Login creates the user on first authentication and binds a new token to it.
func (s *Sessions) Login(ctx context.Context, email, name string) (*domain.Session, *domain.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validator.ValidateName(name); err != nil {
		return nil, nil, err
	}

	user, err := s.users.EnsureUser(ctx, email, name)
	if err != nil {
		return nil, nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.SaveSession(ctx, token, user.Email, s.ttl); err != nil {
		return nil, nil, err
	}

	log.WithField("email", user.Email).Info("User signed in")
	return &domain.Session{Token: token, Email: user.Email}, user, nil
}

// Resolve returns the session for token, or domain.ErrNotAuthenticated.
func (s *Sessions) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	email, err := s.store.GetSession(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, Email: email}, nil
}

func (s *Sessions) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrNotAuthenticated
	}
	return s.store.DeleteSession(ctx, session.Token)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
