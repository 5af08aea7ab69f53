package domain

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrQuotaExceeded       = errors.New("free search limit reached")
	ErrForbidden           = errors.New("approver privileges required")
	ErrUnknownCategory     = errors.New("unknown template category")
	ErrMissingField        = errors.New("missing required field")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTransportFailure    = errors.New("delivery failed")
	ErrCollaboratorFailure = errors.New("upstream service unavailable")
)
