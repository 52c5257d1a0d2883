package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrMissingID is returned when a detail operation is called without an identifier.
	ErrMissingID = errors.New("identifier is required")

	// ErrMissingToken is returned when an admin operation is called without a token.
	ErrMissingToken = errors.New("admin token is required")

	// ErrInvalidParams is returned when request parameters fail validation.
	ErrInvalidParams = errors.New("invalid request parameters")
)

// DefaultApplicationMessage is used when the envelope reports failure without a message.
const DefaultApplicationMessage = "request failed"

// bodyPreviewLimit bounds the body excerpt carried by FormatError.
const bodyPreviewLimit = 200

// ErrorClass classifies transport failures for observability.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents failures before a status was received.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUnexpected represents non-2xx statuses outside 4xx/5xx.
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// classifyStatus maps a status code to its ErrorClass.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == 0:
		return ErrorClassNetwork
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}

// TransportError is returned when the API answers with a non-success status
// or could not be reached at all (StatusCode 0).
type TransportError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transport %s error: %v", e.Endpoint, e.Class(), e.Err)
	}
	return fmt.Sprintf("%s: transport %s error (status %d): %s",
		e.Endpoint, e.Class(), e.StatusCode, strings.TrimSpace(e.Body))
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Class returns the failure classification.
func (e *TransportError) Class() ErrorClass {
	return classifyStatus(e.StatusCode)
}

// FormatError is returned when a response is not the JSON the API promises.
type FormatError struct {
	Endpoint     string
	DeclaredType string
	BodyPrefix   string
	Err          error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid response body (content-type %q): %v: %s",
			e.Endpoint, e.DeclaredType, e.Err, e.BodyPrefix)
	}
	return fmt.Sprintf("%s: expected JSON response, got content-type %q: %s",
		e.Endpoint, e.DeclaredType, e.BodyPrefix)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// ApplicationError is returned when the envelope is well formed but reports failure.
type ApplicationError struct {
	Endpoint string
	Message  string
}

// Error returns the server-supplied message verbatim.
func (e *ApplicationError) Error() string {
	return e.Message
}

// CallerError is returned for invalid input, before any request is issued.
type CallerError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *CallerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *CallerError) Unwrap() error {
	return e.Err
}

// errorKind labels an error for the content_errors_total metric.
func errorKind(err error) string {
	var (
		transportErr   *TransportError
		formatErr      *FormatError
		applicationErr *ApplicationError
		callerErr      *CallerError
	)
	switch {
	case errors.As(err, &transportErr):
		return "transport_" + string(transportErr.Class())
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &applicationErr):
		return "application"
	case errors.As(err, &callerErr):
		return "caller"
	default:
		return "unknown"
	}
}

// previewBody truncates body to bodyPreviewLimit bytes without splitting a rune.
func previewBody(body []byte) string {
	if len(body) <= bodyPreviewLimit {
		return string(body)
	}
	cut := bodyPreviewLimit
	// Step back over UTF-8 continuation bytes
	for cut > 0 && body[cut]&0xC0 == 0x80 {
		cut--
	}
	return string(body[:cut]) + "..."
}

// errorPayload is the shape of structured error bodies returned with non-2xx statuses.
type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UserMessage turns err into text fit for display. It prefers a structured
// error field from a transport error payload, then the error's own message,
// then fallback. Returns "" for a nil error.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Body != "" {
		var payload errorPayload
		if json.Unmarshal([]byte(transportErr.Body), &payload) == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
