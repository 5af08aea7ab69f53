package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"outreach-service/internal/dispatch"
	"outreach-service/internal/domain"
)

type flakyTransport struct {
	mu       sync.Mutex
	failures int
	sent     []domain.Message
}

func (f *flakyTransport) Deliver(_ context.Context, msg domain.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return "", errors.New("421 try again later")
	}
	f.sent = append(f.sent, msg)
	return "<ok>", nil
}

func approvedDecision() domain.PaymentDecision {
	return domain.PaymentDecision{
		PaymentID:     3,
		Email:         "u@x.com",
		TransactionID: "TX-3",
		Amount:        domain.PremiumFee,
		Currency:      domain.PremiumCurrency,
		Status:        domain.PaymentApproved,
		DecidedAt:     time.Now(),
	}
}

func TestProcessPaymentDecision_RetriesThenSends(t *testing.T) {
	t.Parallel()

	transport := &flakyTransport{failures: 2}
	svc := NewNotificationService(dispatch.NewEngine(dispatch.Options{}), transport, "noreply@outreach.io")
	svc.initialDelay = time.Millisecond

	if err := svc.ProcessPaymentDecision(context.Background(), approvedDecision()); err != nil {
		t.Fatalf("ProcessPaymentDecision failed: %v", err)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("expected one delivered message, got %d", len(transport.sent))
	}
	msg := transport.sent[0]
	if msg.Subject != "Your Premium upgrade is active" || !strings.Contains(msg.Body, "PKR 499") {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestProcessPaymentDecision_GivesUp(t *testing.T) {
	t.Parallel()

	transport := &flakyTransport{failures: 10}
	svc := NewNotificationService(dispatch.NewEngine(dispatch.Options{}), transport, "noreply@outreach.io")
	svc.initialDelay = time.Millisecond

	err := svc.ProcessPaymentDecision(context.Background(), approvedDecision())
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Errorf("expected ErrTransportFailure, got %v", err)
	}
	if transport.failures != 10-notifyMaxAttempts {
		t.Errorf("expected %d attempts, %d failures left", notifyMaxAttempts, transport.failures)
	}
}

func TestProcessPaymentDecision_Invalid(t *testing.T) {
	t.Parallel()

	svc := NewNotificationService(dispatch.NewEngine(dispatch.Options{}), &flakyTransport{}, "noreply@outreach.io")
	d := approvedDecision()
	d.Status = domain.PaymentPending

	if err := svc.ProcessPaymentDecision(context.Background(), d); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDecisionMessage_Rejected(t *testing.T) {
	t.Parallel()

	d := approvedDecision()
	d.Status = domain.PaymentRejected
	msg := decisionMessage(d)
	if msg.Recipient != "u@x.com" || !strings.Contains(msg.Body, "TX-3") || !strings.Contains(msg.Subject, "could not be confirmed") {
		t.Errorf("unexpected rejection message: %+v", msg)
	}
}
