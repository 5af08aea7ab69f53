// Package dispatch sends a prepared message to many recipients, one delivery
// each, and reports every outcome without letting one failure stop the batch.
package dispatch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"outreach-service/internal/domain"
	"outreach-service/internal/validator"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Transport attempts exactly one delivery and returns the provider message id.
type Transport interface {
	Deliver(ctx context.Context, msg domain.Message) (string, error)
}

type TransportFunc func(ctx context.Context, msg domain.Message) (string, error)

func (f TransportFunc) Deliver(ctx context.Context, msg domain.Message) (string, error) {
	return f(ctx, msg)
}

// LogRepository receives one entry per attempted delivery.
type LogRepository interface {
	SaveLog(ctx context.Context, log domain.EmailLog) error
}

const (
	DefaultConcurrency = 4
	DefaultSendTimeout = 30 * time.Second
)

type Options struct {
	Concurrency int
	SendTimeout time.Duration
	Logs        LogRepository
}

type Engine struct {
	concurrency int
	sendTimeout time.Duration
	logs        LogRepository
}

func NewEngine(opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	return &Engine{concurrency: opts.Concurrency, sendTimeout: opts.SendTimeout, logs: opts.Logs}
}

// Send delivers messages in input order through transport. The returned outcome
// has exactly one result per message, at the same index. An error is returned
// only for malformed input.
func (e *Engine) Send(ctx context.Context, from string, messages []domain.Message, transport Transport) (*domain.CampaignOutcome, error) {
	if err := validateBatch(from, messages, transport); err != nil {
		return nil, err
	}

	campaignID := uuid.NewString()
	logCtx := log.WithFields(log.Fields{
		"campaign_id": campaignID,
		"sender":      from,
		"recipients":  len(messages),
	})
	logCtx.Info("Dispatching campaign")

	results := make([]domain.DispatchResult, len(messages))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range messages {
		i := i
		g.Go(func() error {
			results[i] = e.deliverOne(ctx, campaignID, messages[i], transport)
			return nil
		})
	}
	_ = g.Wait()

	outcome := &domain.CampaignOutcome{Results: results}
	for _, r := range results {
		if r.Status == domain.DispatchSent {
			outcome.TotalSent++
		} else {
			outcome.TotalFailed++
		}
	}

	logCtx.WithFields(log.Fields{
		"total_sent":   outcome.TotalSent,
		"total_failed": outcome.TotalFailed,
	}).Info("Campaign dispatched")
	return outcome, nil
}

func validateBatch(from string, messages []domain.Message, transport Transport) error {
	if err := validator.Required("senderEmail", from); err != nil {
		return err
	}
	if transport == nil {
		return fmt.Errorf("%w: transport is required", domain.ErrValidation)
	}
	if len(messages) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", domain.ErrValidation)
	}
	for i, m := range messages {
		if err := validator.Required("recipient", m.Recipient, "subject", m.Subject, "body", m.Body); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

func (e *Engine) deliverOne(ctx context.Context, campaignID string, msg domain.Message, transport Transport) (result domain.DispatchResult) {
	result.Recipient = msg.Recipient

	defer func() {
		if rvr := recover(); rvr != nil {
			result.Status = domain.DispatchFailed
			result.Detail = fmt.Sprintf("%v: transport panic: %v", domain.ErrTransportFailure, rvr)
		}
		e.record(ctx, campaignID, msg, result)
	}()

	if err := validator.ValidateEmail(strings.TrimSpace(msg.Recipient)); err != nil {
		result.Status = domain.DispatchFailed
		result.Detail = err.Error()
		return result
	}

	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	id, err := transport.Deliver(sendCtx, msg)
	if err != nil {
		result.Status = domain.DispatchFailed
		result.Detail = fmt.Errorf("%w: %v", domain.ErrTransportFailure, err).Error()
		return result
	}
	result.Status = domain.DispatchSent
	result.Detail = id
	return result
}

func (e *Engine) record(ctx context.Context, campaignID string, msg domain.Message, result domain.DispatchResult) {
	fields := log.Fields{"campaign_id": campaignID, "email": msg.Recipient}
	entry := domain.EmailLog{
		CampaignID:     campaignID,
		RecipientEmail: msg.Recipient,
		Subject:        msg.Subject,
	}
	if result.Status == domain.DispatchSent {
		log.WithFields(fields).Info("Email sent successfully")
		entry.Status = domain.StatusSent
		entry.MessageID = sql.NullString{String: result.Detail, Valid: result.Detail != ""}
	} else {
		log.WithFields(fields).WithField("error", result.Detail).Warn("Failed to send email")
		entry.Status = domain.StatusFailed
		entry.ErrorMessage = sql.NullString{String: result.Detail, Valid: true}
	}

	if e.logs == nil {
		return
	}
	if err := e.logs.SaveLog(context.WithoutCancel(ctx), entry); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to save email log to database")
	}
}
