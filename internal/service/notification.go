package service

import (
	"context"
	"fmt"
	"time"

	"outreach-service/internal/dispatch"
	"outreach-service/internal/domain"
	"outreach-service/internal/validator"

	log "github.com/sirupsen/logrus"
)

const (
	notifyMaxAttempts  = 3
	notifyInitialDelay = 1 * time.Second
)

type notificationService struct {
	dispatcher   Dispatcher
	transport    dispatch.Transport
	from         string
	initialDelay time.Duration
}

// NewNotificationService sends payment decision mail from the system account.
func NewNotificationService(dispatcher Dispatcher, transport dispatch.Transport, from string) *notificationService {
	return &notificationService{dispatcher: dispatcher, transport: transport, from: from, initialDelay: notifyInitialDelay}
}

func (s *notificationService) ProcessPaymentDecision(ctx context.Context, decision domain.PaymentDecision) error {
	if err := validator.ValidatePaymentDecision(decision); err != nil {
		log.WithFields(log.Fields{
			"error":      err,
			"payment_id": decision.PaymentID,
		}).Error("Payment decision validation failed")
		return err
	}

	msg := decisionMessage(decision)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Notification mail is retried as a whole; campaign sends never are.
	delay := s.initialDelay
	var last domain.DispatchResult
	for attempt := 1; attempt <= notifyMaxAttempts; attempt++ {
		outcome, err := s.dispatcher.Send(ctx, s.from, []domain.Message{msg}, s.transport)
		if err != nil {
			return err
		}
		last = outcome.Results[0]
		if last.Status == domain.DispatchSent {
			if attempt > 1 {
				log.WithFields(log.Fields{
					"attempt":      attempt,
					"max_attempts": notifyMaxAttempts,
					"email":        decision.Email,
				}).Info("Email sent successfully after retry")
			}
			return nil
		}

		if attempt < notifyMaxAttempts {
			log.WithFields(log.Fields{
				"attempt":      attempt,
				"max_attempts": notifyMaxAttempts,
				"error":        last.Detail,
				"email":        decision.Email,
			}).Warn("Failed to send email, retrying...")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%w: %s", domain.ErrTransportFailure, last.Detail)
}

func decisionMessage(d domain.PaymentDecision) domain.Message {
	if d.Status == domain.PaymentApproved {
		return domain.Message{
			Recipient: d.Email,
			Subject:   "Your Premium upgrade is active",
			Body: fmt.Sprintf(
				"Hello!\n\nYour payment of %s %s (transaction %s) has been approved.\nUnlimited searches are now unlocked for your account.\n\nThank you for upgrading!",
				d.Currency, d.Amount.StringFixed(0), d.TransactionID,
			),
		}
	}
	return domain.Message{
		Recipient: d.Email,
		Subject:   "Your payment could not be confirmed",
		Body: fmt.Sprintf(
			"Hello!\n\nWe could not confirm your payment of %s %s (transaction %s).\nPlease check the transaction ID and submit it again, or reply to this email.\n",
			d.Currency, d.Amount.StringFixed(0), d.TransactionID,
		),
	}
}
