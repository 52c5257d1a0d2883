package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestOptions describe one logical API call.
type RequestOptions struct {
	// Method defaults to GET
	Method string

	// Query is appended to the endpoint URL
	Query url.Values

	// Header values override the executor defaults
	Header http.Header

	// Body is JSON-encoded when non-nil
	Body any
}

// Executor issues single API requests and validates their responses.
// It never caches and never retries.
type Executor struct {
	baseURL   string
	userAgent string
	http      Doer
	logger    zerolog.Logger
}

// NewExecutor creates an executor for the API rooted at baseURL.
func NewExecutor(baseURL, userAgent string, doer Doer, logger zerolog.Logger) *Executor {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Executor{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      doer,
		logger:    logger,
	}
}

// Execute performs the request and returns the validated envelope.
//
// Validation runs in order and stops at the first failure:
//  1. non-2xx status -> *TransportError
//  2. non-JSON content type -> *FormatError
//  3. undecodable body -> *FormatError
//  4. success flag missing or false -> *ApplicationError
//
// Every failure is logged with its endpoint before it is returned.
func (e *Executor) Execute(ctx context.Context, endpoint string, opts RequestOptions) (*Response, error) {
	resp, err := e.execute(ctx, endpoint, opts)
	if err != nil {
		errorsTotal.WithLabelValues(errorKind(err)).Inc()
		e.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Str("method", methodOf(opts)).
			Str("error_kind", errorKind(err)).
			Msg("Content API request failed")
		return nil, err
	}
	return resp, nil
}

func (e *Executor) execute(ctx context.Context, endpoint string, opts RequestOptions) (*Response, error) {
	// Step 1: Build request
	req, err := e.newRequest(ctx, endpoint, opts)
	if err != nil {
		return nil, err
	}

	route := routeLabel(endpoint)
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(route).Observe(time.Since(startTime).Seconds())
	}()

	e.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing content API request")

	httpResp, err := e.http.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(route, "network_error").Inc()
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer httpResp.Body.Close()

	requestsTotal.WithLabelValues(route, strconv.Itoa(httpResp.StatusCode)).Inc()

	// Body is read even on failure so diagnostics carry it. A broken body
	// is a network failure whatever the status line said.
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("read response body (status %d): %w", httpResp.StatusCode, err),
		}
	}

	// Step 2: Status
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &TransportError{
			Endpoint:   endpoint,
			StatusCode: httpResp.StatusCode,
			Body:       string(body),
		}
	}

	// Step 3: Content type
	declared := httpResp.Header.Get("Content-Type")
	if !isJSONContentType(declared) {
		return nil, &FormatError{
			Endpoint:     endpoint,
			DeclaredType: declared,
			BodyPrefix:   previewBody(body),
		}
	}

	// Step 4: Envelope
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &FormatError{
			Endpoint:     endpoint,
			DeclaredType: declared,
			BodyPrefix:   previewBody(body),
			Err:          err,
		}
	}
	if !env.OK() {
		msg := env.Error
		if msg == "" {
			msg = DefaultApplicationMessage
		}
		return nil, &ApplicationError{Endpoint: endpoint, Message: msg}
	}

	// Step 5: Payload
	return &Response{Envelope: env, Raw: body}, nil
}

// newRequest builds the HTTP request with merged headers.
func (e *Executor) newRequest(ctx context.Context, endpoint string, opts RequestOptions) (*http.Request, error) {
	target := e.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, &CallerError{Op: endpoint, Err: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, methodOf(opts), target, body)
	if err != nil {
		return nil, &CallerError{Op: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	for name, values := range opts.Header {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	return req, nil
}

func methodOf(opts RequestOptions) string {
	if opts.Method == "" {
		return http.MethodGet
	}
	return opts.Method
}

// isJSONContentType accepts application/json and any +json media type.
func isJSONContentType(value string) bool {
	if value == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// routeLabel reduces an endpoint to its route template for metric labels,
// e.g. "/videos/abc" -> "/videos/{id}", so identifiers never become series.
func routeLabel(endpoint string) string {
	trimmed := strings.Trim(endpoint, "/")
	if trimmed == "" {
		return "/"
	}
	collection, rest, found := strings.Cut(trimmed, "/")
	if !found || rest == "" {
		return "/" + collection
	}
	return "/" + collection + "/{id}"
}
