package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"outreach-service/internal/auth"
	"outreach-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

const (
	AuthorizationHeader = "Authorization"
	ApproverTokenHeader = "X-Approver-Token"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

type ApproverChecker interface {
	IsApprover(token string) bool
}

// Session attaches the signed-in session when a valid bearer token is present.
// Requests without a token, or with an unknown or expired one, pass through
// anonymously so public routes keep working; RequireSession turns them away
// where a session is needed.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.Resolve(r.Context(), token)
			if errors.Is(err, domain.ErrNotAuthenticated) {
				log.WithField("request_id", GetRequestID(r.Context())).Debug("Ignoring unknown or expired session token")
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				log.WithError(err).WithField("request_id", GetRequestID(r.Context())).Error("Session lookup failed")
				writeAuthError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), session)))
		})
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFromContext(r.Context()) == nil {
			writeAuthError(w, http.StatusUnauthorized, domain.ErrNotAuthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Approver records whether the X-Approver-Token header carries approver rights.
// It never rejects; the payment workflow decides what a non-approver may do.
func Approver(checker ApproverChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok := checker.IsApprover(r.Header.Get(ApproverTokenHeader))
			next.ServeHTTP(w, r.WithContext(auth.ContextWithApprover(r.Context(), ok)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(AuthorizationHeader)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
