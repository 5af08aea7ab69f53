package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"outreach-service/internal/auth"
	"outreach-service/internal/domain"
	"outreach-service/internal/payment"
	"outreach-service/internal/validator"

	"github.com/go-chi/chi/v5"
)

type submitPaymentRequest struct {
	Email         string `json:"email"`
	TransactionID string `json:"transactionId"`
}

// SubmitPayment records a pending claim. A signed-in caller may omit email.
//
// POST /api/payments
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req submitPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		if session := auth.SessionFromContext(r.Context()); session != nil {
			req.Email = session.Email
		}
	}

	p, err := h.payments.Submit(r.Context(), req.Email, req.TransactionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type adminPaymentsResponse struct {
	Payments []domain.Payment `json:"payments"`
	Summary  payment.Summary  `json:"summary"`
}

// ListPayments returns the ledger and its summary.
//
// GET /api/admin/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.List(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	writeJSON(w, http.StatusOK, adminPaymentsResponse{Payments: payments, Summary: payment.Summarize(payments)})
}

// POST /api/admin/payments/{id}/approve
func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	h.decidePayment(w, r, h.payments.Approve)
}

// POST /api/admin/payments/{id}/reject
func (h *Handler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	h.decidePayment(w, r, h.payments.Reject)
}

type decideFunc func(ctx context.Context, actor domain.Actor, id int64) (*domain.Payment, error)

func (h *Handler) decidePayment(w http.ResponseWriter, r *http.Request, decide decideFunc) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, validator.ErrInvalidPaymentID)
		return
	}

	p, err := decide(r.Context(), auth.ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
