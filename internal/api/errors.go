package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes endpoint errors
type ErrorType string

const (
	// ErrTypeNetwork indicates the request never produced a response
	ErrTypeNetwork ErrorType = "network"

	// ErrTypeDecode indicates the response body was not usable JSON
	ErrTypeDecode ErrorType = "decode"

	// ErrTypeConfiguration indicates a missing or malformed endpoint URL
	ErrTypeConfiguration ErrorType = "configuration"

	// ErrTypeCanceled indicates the caller gave up on the request
	ErrTypeCanceled ErrorType = "canceled"

	// ErrTypeInput indicates the upload itself could not be read
	ErrTypeInput ErrorType = "input"
)

// Error is returned by every Client operation
type Error struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Op names the operation, "predict" or "metrics"
	Op string `json:"op"`

	// URL is the endpoint that was called
	URL string `json:"url,omitempty"`

	// StatusCode is set when a response arrived
	StatusCode int `json:"status_code,omitempty"`

	// Message provides human-readable error description
	Message string `json:"message"`

	// Cause is the underlying error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("op=%s", e.Op), fmt.Sprintf("type=%s", e.Type)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same type
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Type == t.Type
	}
	return false
}

// Sentinels for errors.Is
var (
	ErrNetwork       = &Error{Type: ErrTypeNetwork}
	ErrDecode        = &Error{Type: ErrTypeDecode}
	ErrConfiguration = &Error{Type: ErrTypeConfiguration}
	ErrCanceled      = &Error{Type: ErrTypeCanceled}
)

func newError(errType ErrorType, op, url, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Op:      op,
		URL:     url,
		Message: message,
		Cause:   cause,
	}
}

// transportError classifies an http.Client failure
func transportError(ctx context.Context, op, url string, err error) *Error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return newError(ErrTypeCanceled, op, url, "request canceled", err)
	}
	return newError(ErrTypeNetwork, op, url, "request failed", err)
}

// IsCanceled reports whether err came from a canceled request
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}
