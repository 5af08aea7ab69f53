// Package handler provides HTTP request handlers and the Kafka message handler.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"outreach-service/internal/domain"
	"outreach-service/internal/payment"
	"outreach-service/internal/service"
	"outreach-service/internal/template"

	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type SessionService interface {
	Login(ctx context.Context, email, name string) (*domain.Session, *domain.User, error)
	Logout(ctx context.Context, session *domain.Session) error
}

type EntitlementReader interface {
	Status(ctx context.Context, session *domain.Session) (*domain.User, error)
	Limit() int
}

type CampaignService interface {
	ScrapeEmails(ctx context.Context, session *domain.Session, url string) ([]string, error)
	SendCampaign(ctx context.Context, in service.SendCampaignInput) (*domain.CampaignOutcome, error)
	GenerateEmail(category string, fields template.Fields) (template.Rendered, error)
}

type DraftService interface {
	Save(ctx context.Context, session *domain.Session, subject, body string) (*domain.Draft, error)
	List(ctx context.Context, session *domain.Session) ([]domain.Draft, error)
	Get(ctx context.Context, session *domain.Session, id string) (*domain.Draft, error)
	Delete(ctx context.Context, session *domain.Session, id string) error
}

type PaymentService interface {
	Submit(ctx context.Context, email, transactionID string) (*domain.Payment, error)
	Approve(ctx context.Context, actor domain.Actor, id int64) (*domain.Payment, error)
	Reject(ctx context.Context, actor domain.Actor, id int64) (*domain.Payment, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Payment, error)
}

var _ PaymentService = (*payment.Workflow)(nil)

// Handler wraps application dependencies for HTTP handlers.
type Handler struct {
	sessions     SessionService
	entitlements EntitlementReader
	campaigns    CampaignService
	drafts       DraftService
	payments     PaymentService
}

func New(sessions SessionService, entitlements EntitlementReader, campaigns CampaignService, drafts DraftService, payments PaymentService) *Handler {
	return &Handler{
		sessions:     sessions,
		entitlements: entitlements,
		campaigns:    campaigns,
		drafts:       drafts,
		payments:     payments,
	}
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "resource not found"})
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps err onto its HTTP status. Unclassified errors are logged and
// reported as 500 without their detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, domain.ErrCollaboratorFailure) {
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body", domain.ErrValidation)
	}
	return nil
}
