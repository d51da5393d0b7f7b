package domain

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated    = errors.New("not signed in")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrRoleNotHeld        = errors.New("role not held by user")
	ErrSwitchRejected     = errors.New("role switch rejected")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrMalformedSession   = errors.New("malformed session data")
	ErrInvalidUser        = errors.New("invalid user record")
)

// APIError is a non-2xx answer from the backend. Message carries the
// server-provided text when there was one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// Unwrap maps the status onto the sentinel errors so callers can use
// errors.Is without knowing HTTP.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status >= http.StatusInternalServerError:
		return ErrBackendUnavailable
	}
	return nil
}

// ServerMessage returns the backend-provided message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
