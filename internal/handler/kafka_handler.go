package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"outreach-service/internal/domain"
)

// NotificationService turns payment decisions into user-facing mail.
type NotificationService interface {
	ProcessPaymentDecision(ctx context.Context, decision domain.PaymentDecision) error
}

type paymentDecisionHandler struct {
	notificationService NotificationService
}

func NewPaymentDecisionHandler(notificationService NotificationService) *paymentDecisionHandler {
	return &paymentDecisionHandler{notificationService: notificationService}
}

func (h *paymentDecisionHandler) HandleMessage(ctx context.Context, message []byte) error {
	var decision domain.PaymentDecision
	if err := json.Unmarshal(message, &decision); err != nil {
		return fmt.Errorf("decode payment decision: %w", err)
	}
	return h.notificationService.ProcessPaymentDecision(ctx, decision)
}
