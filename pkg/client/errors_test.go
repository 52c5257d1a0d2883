package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected ErrorClass
	}{
		{name: "no status is network", status: 0, expected: ErrorClassNetwork},
		{name: "404 is client", status: 404, expected: ErrorClassClient},
		{name: "401 is client", status: 401, expected: ErrorClassClient},
		{name: "500 is server", status: 500, expected: ErrorClassServer},
		{name: "503 is server", status: 503, expected: ErrorClassServer},
		{name: "304 is unexpected", status: 304, expected: ErrorClassUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransportError
		expected string
	}{
		{
			name:     "status with body",
			err:      &TransportError{Endpoint: "/videos", StatusCode: 500, Body: "boom\n"},
			expected: "/videos: transport server error (status 500): boom",
		},
		{
			name:     "network failure",
			err:      &TransportError{Endpoint: "/stats", Err: errors.New("connection refused")},
			expected: "/stats: transport network error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	err := &TransportError{Endpoint: "/videos", Err: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCallerError_Unwrap(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &CallerError{Op: "get video", Err: ErrMissingID})

	if !errors.Is(err, ErrMissingID) {
		t.Error("errors.Is should find ErrMissingID")
	}

	var callerErr *CallerError
	if !errors.As(err, &callerErr) {
		t.Fatal("errors.As should find *CallerError")
	}
	if callerErr.Op != "get video" {
		t.Errorf("Op = %q, want %q", callerErr.Op, "get video")
	}
}

func TestApplicationError_MessageVerbatim(t *testing.T) {
	err := &ApplicationError{Endpoint: "/videos", Message: "Video not found"}
	if err.Error() != "Video not found" {
		t.Errorf("Error() = %q, want server message", err.Error())
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "transport client", err: &TransportError{StatusCode: 404}, expected: "transport_client"},
		{name: "transport network", err: &TransportError{Err: errors.New("x")}, expected: "transport_network"},
		{name: "format", err: &FormatError{}, expected: "format"},
		{name: "application", err: &ApplicationError{Message: "x"}, expected: "application"},
		{name: "caller", err: &CallerError{Err: ErrMissingID}, expected: "caller"},
		{name: "wrapped application", err: fmt.Errorf("ctx: %w", &ApplicationError{Message: "x"}), expected: "application"},
		{name: "other", err: errors.New("other"), expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorKind(tt.err); got != tt.expected {
				t.Errorf("errorKind() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPreviewBody(t *testing.T) {
	short := []byte("<html>short</html>")
	if got := previewBody(short); got != string(short) {
		t.Errorf("previewBody(short) = %q, want unchanged", got)
	}

	long := []byte(strings.Repeat("a", 500))
	got := previewBody(long)
	if len(got) != bodyPreviewLimit+len("...") {
		t.Errorf("previewBody(long) length = %d, want %d", len(got), bodyPreviewLimit+3)
	}

	// A multi-byte rune straddling the limit must not be split
	multi := []byte(strings.Repeat("a", bodyPreviewLimit-1) + "é" + strings.Repeat("b", 50))
	got = previewBody(multi)
	if !utf8.ValidString(got) {
		t.Errorf("previewBody split a rune: %q", got[len(got)-8:])
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "structured error field",
			err:      &TransportError{Endpoint: "/videos", StatusCode: 401, Body: `{"success":false,"error":"Unauthorized"}`},
			expected: "Unauthorized",
		},
		{
			name:     "structured message field",
			err:      &TransportError{Endpoint: "/videos", StatusCode: 400, Body: `{"message":"Bad filter"}`},
			expected: "Bad filter",
		},
		{
			name:     "unstructured body falls back to error message",
			err:      &TransportError{Endpoint: "/videos", StatusCode: 502, Body: "Bad Gateway"},
			expected: "/videos: transport server error (status 502): Bad Gateway",
		},
		{
			name:     "application error",
			err:      &ApplicationError{Message: "Video not found"},
			expected: "Video not found",
		},
		{
			name:     "empty message uses fallback",
			err:      errors.New(""),
			expected: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, "fallback"); got != tt.expected {
				t.Errorf("UserMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}
