package draft

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"outreach-service/internal/domain"
)

type memoryStore struct {
	drafts map[string]map[string]domain.Draft
}

func newMemoryStore() *memoryStore {
	return &memoryStore{drafts: map[string]map[string]domain.Draft{}}
}

func (m *memoryStore) SaveDraft(_ context.Context, email string, d domain.Draft) error {
	if m.drafts[email] == nil {
		m.drafts[email] = map[string]domain.Draft{}
	}
	m.drafts[email][d.ID] = d
	return nil
}

func (m *memoryStore) GetDraft(_ context.Context, email, id string) (*domain.Draft, error) {
	d, ok := m.drafts[email][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *memoryStore) ListDrafts(_ context.Context, email string) ([]domain.Draft, error) {
	out := []domain.Draft{}
	for _, d := range m.drafts[email] {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) DeleteDraft(_ context.Context, email, id string) error {
	if _, ok := m.drafts[email][id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.drafts[email], id)
	return nil
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewService(newMemoryStore())
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	sess := &domain.Session{Token: "t", Email: "a@x.com"}

	first, err := s.Save(ctx, sess, "Proposal for X", "Dear Y")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := s.Save(ctx, sess, "Story Pitch: Z", "Dear W")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	drafts, err := s.List(ctx, sess)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(drafts) != 2 || drafts[0].ID != first.ID || drafts[1].ID != second.ID {
		t.Errorf("drafts not in save order: %+v", drafts)
	}

	got, err := s.Get(ctx, sess, first.ID)
	if err != nil || got.Subject != "Proposal for X" {
		t.Errorf("Get: %+v, %v", got, err)
	}

	if err := s.Delete(ctx, sess, first.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, sess, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, sess, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

// Not parallel: the ID entropy is shared package state and other tests mint IDs
// at different timestamps.
func TestService_SameMillisecondIDsSortInSaveOrder(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemoryStore())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	session := &domain.Session{Email: "a@x.com"}

	var prev string
	for i := 0; i < 200; i++ {
		d, err := s.Save(ctx, session, "subject", "body")
		if err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		if d.ID <= prev {
			t.Fatalf("save %d: ID %s does not sort after %s", i, d.ID, prev)
		}
		prev = d.ID
	}

	drafts, err := s.List(ctx, session)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(drafts) != 200 {
		t.Errorf("expected 200 drafts, got %d", len(drafts))
	}
}

func TestService_RequiresSession(t *testing.T) {
	t.Parallel()

	s := NewService(newMemoryStore())
	if _, err := s.Save(context.Background(), nil, "s", "b"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := s.List(context.Background(), nil); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestService_Validation(t *testing.T) {
	t.Parallel()

	s := NewService(newMemoryStore())
	sess := &domain.Session{Token: "t", Email: "a@x.com"}
	if _, err := s.Save(context.Background(), sess, "", "b"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
