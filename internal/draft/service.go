// Package draft keeps composed messages per user until they are sent or deleted.
package draft

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"outreach-service/internal/domain"
	"outreach-service/internal/validator"

	"github.com/oklog/ulid/v2"
)

type Store interface {
	SaveDraft(ctx context.Context, email string, d domain.Draft) error
	GetDraft(ctx context.Context, email, id string) (*domain.Draft, error)
	ListDrafts(ctx context.Context, email string) ([]domain.Draft, error)
	DeleteDraft(ctx context.Context, email, id string) error
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newID returns a ULID for t that sorts after every earlier ID minted in the
// same millisecond.
func newID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func owner(session *domain.Session) (string, error) {
	if session == nil || session.Email == "" {
		return "", domain.ErrNotAuthenticated
	}
	return session.Email, nil
}

// Save stores a new immutable draft. IDs sort in save order.
func (s *Service) Save(ctx context.Context, session *domain.Session, subject, body string) (*domain.Draft, error) {
	email, err := owner(session)
	if err != nil {
		return nil, err
	}
	if err := validator.Required("subject", subject, "body", body); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d := domain.Draft{
		ID:      newID(now),
		Subject: strings.TrimSpace(subject),
		Body:    body,
		SavedAt: now,
	}
	if err := s.store.SaveDraft(ctx, email, d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) List(ctx context.Context, session *domain.Session) ([]domain.Draft, error) {
	email, err := owner(session)
	if err != nil {
		return nil, err
	}
	return s.store.ListDrafts(ctx, email)
}

func (s *Service) Get(ctx context.Context, session *domain.Session, id string) (*domain.Draft, error) {
	email, err := owner(session)
	if err != nil {
		return nil, err
	}
	d, err := s.store.GetDraft(ctx, email, id)
	if err != nil {
		return nil, fmt.Errorf("draft %s: %w", id, err)
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, session *domain.Session, id string) error {
	email, err := owner(session)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDraft(ctx, email, id); err != nil {
		return fmt.Errorf("draft %s: %w", id, err)
	}
	return nil
}
