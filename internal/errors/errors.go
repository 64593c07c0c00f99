package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common error types for the dashboard client
var (
	// Authentication errors
	ErrLoginFailed        = errors.New("login failed")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Transport errors
	ErrConnectivity = errors.New("backend unreachable")

	// Resource errors
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBackend    = errors.New("backend error")
)

// APIError is a non-2xx response from the backend. Fields holds the per-field messages DRF returns
// on validation failures, e.g. {"username": ["A user with that username already exists."]}.
type APIError struct {
	Status int
	Detail string
	Fields map[string][]string
	kind   error
}

func NewAPIError(status int, detail string, fields map[string][]string, kind error) *APIError {
	return &APIError{Status: status, Detail: detail, Fields: fields, kind: kind}
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error %d", e.Status)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	for _, msg := range e.Messages() {
		b.WriteString("\n")
		b.WriteString(msg)
	}
	return b.String()
}

// Messages flattens Fields into "field: message" lines in a stable order.
func (e *APIError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var msgs []string
	for _, k := range keys {
		for _, m := range e.Fields[k] {
			msgs = append(msgs, k+": "+m)
		}
	}
	return msgs
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
