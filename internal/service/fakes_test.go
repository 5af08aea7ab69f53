package service

import (
	"context"
	"sync"
	"time"

	"outreach-service/internal/domain"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUsers(users ...domain.User) *memoryUsers {
	m := &memoryUsers{users: map[string]*domain.User{}}
	for i := range users {
		u := users[i]
		m.users[u.Email] = &u
	}
	return m
}

func (m *memoryUsers) GetUser(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) IncrementSearches(_ context.Context, email string, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok || u.Premium || u.SearchesUsed >= limit {
		return false, nil
	}
	u.SearchesUsed++
	return true, nil
}

func (m *memoryUsers) SetPremium(_ context.Context, email string, premium bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return domain.ErrNotFound
	}
	u.Premium = premium
	return nil
}

type memoryPayments struct {
	mu       sync.Mutex
	payments []domain.Payment
}

func (m *memoryPayments) CreatePayment(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = int64(len(m.payments) + 1)
	m.payments = append(m.payments, *p)
	return nil
}

func (m *memoryPayments) GetPayment(_ context.Context, id int64) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || int(id) > len(m.payments) {
		return nil, domain.ErrNotFound
	}
	p := m.payments[id-1]
	return &p, nil
}

func (m *memoryPayments) DecidePayment(_ context.Context, id int64, status domain.PaymentStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || int(id) > len(m.payments) || m.payments[id-1].Status != domain.PaymentPending {
		return false, nil
	}
	m.payments[id-1].Status = status
	m.payments[id-1].DecidedAt = &at
	return true, nil
}

func (m *memoryPayments) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memoryPayments) ListPayments(context.Context) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Payment(nil), m.payments...), nil
}

type stubFetcher struct {
	pages map[string]string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}
