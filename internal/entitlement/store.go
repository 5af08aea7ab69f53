// Package entitlement gates extraction behind the free-tier quota and the
// premium flag.
package entitlement

import (
	"context"
	"fmt"

	"outreach-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

// UserRepository is the persistence the store needs.
type UserRepository interface {
	GetUser(ctx context.Context, email string) (*domain.User, error)
	// IncrementSearches adds one to searches_used only while the user is not
	// premium and below limit. It reports whether a row changed.
	IncrementSearches(ctx context.Context, email string, limit int) (bool, error)
	SetPremium(ctx context.Context, email string, premium bool) error
}

type Store struct {
	users UserRepository
	limit int
	locks *keyedMutex
}

func NewStore(users UserRepository) *Store {
	return &Store{users: users, limit: domain.FreeSearchLimit, locks: newKeyedMutex()}
}

// Limit returns the free-tier allowance.
func (s *Store) Limit() int {
	return s.limit
}

// Status loads the session user.
func (s *Store) Status(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil || session.Email == "" {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.users.GetUser(ctx, session.Email)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", session.Email, err)
	}
	return user, nil
}

// CheckQuota returns nil when the session user may run another extraction.
func (s *Store) CheckQuota(ctx context.Context, session *domain.Session) error {
	user, err := s.Status(ctx, session)
	if err != nil {
		return err
	}
	return s.allowed(user)
}

func (s *Store) allowed(user *domain.User) error {
	if !user.Premium && user.SearchesUsed >= s.limit {
		return fmt.Errorf("%w (%d of %d used)", domain.ErrQuotaExceeded, user.SearchesUsed, s.limit)
	}
	return nil
}

// RecordUsage counts one completed extraction. Premium users are not counted.
func (s *Store) RecordUsage(ctx context.Context, session *domain.Session) error {
	user, err := s.Status(ctx, session)
	if err != nil {
		return err
	}
	if user.Premium {
		return nil
	}

	changed, err := s.users.IncrementSearches(ctx, user.Email, s.limit)
	if err != nil {
		return fmt.Errorf("record usage for %s: %w", user.Email, err)
	}
	if !changed {
		// Either the user became premium or another request took the last slot.
		fresh, err := s.users.GetUser(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("reload user %s: %w", user.Email, err)
		}
		if fresh.Premium {
			return nil
		}
		return fmt.Errorf("%w (%d of %d used)", domain.ErrQuotaExceeded, fresh.SearchesUsed, s.limit)
	}
	return nil
}

// Guard runs action as one quota-checked unit for the session user: the check,
// the action and the usage increment hold the user's lock together, and a failed
// action is not counted.
func (s *Store) Guard(ctx context.Context, session *domain.Session, action func(ctx context.Context) error) error {
	if session == nil || session.Email == "" {
		return domain.ErrNotAuthenticated
	}

	unlock := s.locks.Lock(session.Email)
	defer unlock()

	if err := s.CheckQuota(ctx, session); err != nil {
		return err
	}
	if err := action(ctx); err != nil {
		return err
	}
	if err := s.RecordUsage(ctx, session); err != nil {
		log.WithError(err).WithField("email", session.Email).Error("Failed to record search usage")
		return err
	}
	return nil
}

func (s *Store) GrantPremium(ctx context.Context, email string) error {
	if err := s.users.SetPremium(ctx, email, true); err != nil {
		return fmt.Errorf("grant premium to %s: %w", email, err)
	}
	log.WithField("email", email).Info("Premium granted")
	return nil
}

func (s *Store) RevokePremium(ctx context.Context, email string) error {
	if err := s.users.SetPremium(ctx, email, false); err != nil {
		return fmt.Errorf("revoke premium from %s: %w", email, err)
	}
	log.WithField("email", email).Info("Premium revoked")
	return nil
}
