// Package payment records premium payment claims and moves them through the
// pending -> approved | rejected state machine.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"outreach-service/internal/domain"
	"outreach-service/internal/validator"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// CreatePayment stores p and assigns its ID.
	CreatePayment(ctx context.Context, p *domain.Payment) error
	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	// DecidePayment sets status only if the payment is still pending and reports
	// whether it did.
	DecidePayment(ctx context.Context, id int64, status domain.PaymentStatus, decidedAt time.Time) (bool, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	// WithinTx runs fn in one transaction. Writes made through the ctx passed to
	// fn, including the granter's, commit or roll back together.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type PremiumGranter interface {
	GrantPremium(ctx context.Context, email string) error
}

type DecisionPublisher interface {
	PublishDecision(ctx context.Context, decision domain.PaymentDecision) error
}

type Workflow struct {
	repo      Repository
	granter   PremiumGranter
	publisher DecisionPublisher
	now       func() time.Time
}

// NewWorkflow builds a workflow. publisher may be nil.
func NewWorkflow(repo Repository, granter PremiumGranter, publisher DecisionPublisher) *Workflow {
	return &Workflow{repo: repo, granter: granter, publisher: publisher, now: time.Now}
}

// Submit records a pending claim for the fixed premium fee. It never grants premium.
func (w *Workflow) Submit(ctx context.Context, email, transactionID string) (*domain.Payment, error) {
	email = strings.TrimSpace(email)
	transactionID = strings.TrimSpace(transactionID)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validator.ValidateTransactionID(transactionID); err != nil {
		return nil, err
	}

	p := &domain.Payment{
		Email:         email,
		TransactionID: transactionID,
		Amount:        domain.PremiumFee,
		Currency:      domain.PremiumCurrency,
		Status:        domain.PaymentPending,
		SubmittedAt:   w.now().UTC(),
	}
	if err := w.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	log.WithFields(log.Fields{
		"payment_id":     p.ID,
		"email":          p.Email,
		"transaction_id": p.TransactionID,
	}).Info("Payment submitted")
	return p, nil
}

// Approve accepts a pending payment. Premium is granted only when the payer is
// the actor's own signed-in user, in the same transaction as the status change,
// so a failed grant leaves the payment pending and the approval can be retried.
func (w *Workflow) Approve(ctx context.Context, actor domain.Actor, id int64) (*domain.Payment, error) {
	p, err := w.decide(ctx, actor, id, domain.PaymentApproved, func(ctx context.Context, p *domain.Payment) error {
		if actor.Session == nil || actor.Session.Email != p.Email {
			log.WithFields(log.Fields{"payment_id": p.ID, "email": p.Email}).
				Warn("Payment approved for a user without the active session; premium flag left unchanged")
			return nil
		}
		if err := w.granter.GrantPremium(ctx, p.Email); err != nil {
			return fmt.Errorf("grant premium for payment %d: %w", p.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"payment_id": p.ID, "email": p.Email}).Info("Payment approved")
	return p, nil
}

// Reject declines a pending payment. Entitlements are never touched.
func (w *Workflow) Reject(ctx context.Context, actor domain.Actor, id int64) (*domain.Payment, error) {
	p, err := w.decide(ctx, actor, id, domain.PaymentRejected, nil)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"payment_id": p.ID, "email": p.Email}).Info("Payment rejected")
	return p, nil
}

// decide moves a pending payment to status to and runs effect inside the same
// transaction. The decision is published only once that transaction commits.
func (w *Workflow) decide(ctx context.Context, actor domain.Actor, id int64, to domain.PaymentStatus,
	effect func(ctx context.Context, p *domain.Payment) error) (*domain.Payment, error) {
	if !actor.Approver {
		return nil, domain.ErrForbidden
	}

	p, err := w.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("payment %d: %w", id, err)
	}
	if p.Status != domain.PaymentPending {
		return nil, fmt.Errorf("%w: payment %d is already %s", domain.ErrInvalidTransition, id, p.Status)
	}

	decidedAt := w.now().UTC()
	err = w.repo.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := w.repo.DecidePayment(ctx, id, to, decidedAt)
		if err != nil {
			return fmt.Errorf("decide payment %d: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("%w: payment %d was decided concurrently", domain.ErrInvalidTransition, id)
		}
		if effect == nil {
			return nil
		}
		return effect(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	p.Status = to
	p.DecidedAt = &decidedAt

	if w.publisher != nil {
		decision := domain.PaymentDecision{
			PaymentID:     p.ID,
			Email:         p.Email,
			TransactionID: p.TransactionID,
			Amount:        p.Amount,
			Currency:      p.Currency,
			Status:        to,
			DecidedAt:     decidedAt,
		}
		if err := w.publisher.PublishDecision(ctx, decision); err != nil {
			log.WithError(err).WithField("payment_id", p.ID).Error("Failed to publish payment decision")
		}
	}
	return p, nil
}

// List returns the whole ledger to an approver.
func (w *Workflow) List(ctx context.Context, actor domain.Actor) ([]domain.Payment, error) {
	if !actor.Approver {
		return nil, domain.ErrForbidden
	}
	payments, err := w.repo.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

type Summary struct {
	DistinctEmails int             `json:"distinctEmails"`
	PendingCount   int             `json:"pendingCount"`
	ApprovedCount  int             `json:"approvedCount"`
	RejectedCount  int             `json:"rejectedCount"`
	Revenue        decimal.Decimal `json:"revenue"`
	Currency       string          `json:"currency"`
}

// Summarize counts the ledger. Revenue only includes approved payments.
func Summarize(payments []domain.Payment) Summary {
	emails := make(map[string]struct{}, len(payments))
	s := Summary{Revenue: decimal.Zero, Currency: domain.PremiumCurrency}
	for _, p := range payments {
		emails[p.Email] = struct{}{}
		switch p.Status {
		case domain.PaymentPending:
			s.PendingCount++
		case domain.PaymentApproved:
			s.ApprovedCount++
			s.Revenue = s.Revenue.Add(p.Amount)
		case domain.PaymentRejected:
			s.RejectedCount++
		}
	}
	s.DistinctEmails = len(emails)
	return s
}
