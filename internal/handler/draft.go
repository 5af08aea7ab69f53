package handler

import (
	"net/http"

	"outreach-service/internal/auth"
	"outreach-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

type saveDraftRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// POST /api/drafts
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var req saveDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.drafts.Save(r.Context(), auth.SessionFromContext(r.Context()), req.Subject, req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GET /api/drafts
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.drafts.List(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if drafts == nil {
		drafts = []domain.Draft{}
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Draft{"drafts": drafts})
}

// GET /api/drafts/{id}
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Get(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DELETE /api/drafts/{id}
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Delete(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
