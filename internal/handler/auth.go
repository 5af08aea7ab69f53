package handler

import (
	"net/http"

	"outreach-service/internal/auth"
	"outreach-service/internal/domain"
)

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login signs the user in, creating the account on first use.
//
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, user, err := h.sessions.Login(r.Context(), req.Email, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: session.Token, User: user})
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), auth.SessionFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Premium      bool   `json:"premium"`
	SearchesUsed int    `json:"searchesUsed"`
	FreeLimit    int    `json:"freeLimit"`
	// Remaining is null for premium users.
	Remaining *int `json:"remaining"`
}

// Me reports the caller's entitlement.
//
// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.entitlements.Status(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := meResponse{
		Email:        user.Email,
		Name:         user.Name,
		Premium:      user.Premium,
		SearchesUsed: user.SearchesUsed,
		FreeLimit:    h.entitlements.Limit(),
	}
	if !user.Premium {
		remaining := max(h.entitlements.Limit()-user.SearchesUsed, 0)
		resp.Remaining = &remaining
	}
	writeJSON(w, http.StatusOK, resp)
}
