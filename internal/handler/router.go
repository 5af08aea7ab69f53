package handler

import (
	"net/http"

	"outreach-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Handler   *Handler
	Health    *HealthHandler
	Sessions  middleware.SessionResolver
	Approvers middleware.ApproverChecker
	Logger    log.FieldLogger
}

// NewRouter mounts the JSON API under /api and the probes at the root.
func NewRouter(deps RouterDeps) http.Handler {
	h := deps.Handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(deps.Sessions))

		r.Post("/auth/login", h.Login)
		r.Post("/send-email", h.SendEmail)
		r.Post("/generate-email", h.GenerateEmail)
		r.Get("/templates", h.Templates)
		r.Post("/payments", h.SubmitPayment)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Post("/auth/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Post("/scrape", h.Scrape)

			r.Route("/drafts", func(r chi.Router) {
				r.Post("/", h.SaveDraft)
				r.Get("/", h.ListDrafts)
				r.Get("/{id}", h.GetDraft)
				r.Delete("/{id}", h.DeleteDraft)
			})
		})

		r.Route("/admin/payments", func(r chi.Router) {
			r.Use(middleware.Approver(deps.Approvers))

			r.Get("/", h.ListPayments)
			r.Post("/{id}/approve", h.ApprovePayment)
			r.Post("/{id}/reject", h.RejectPayment)
		})
	})

	return r
}
