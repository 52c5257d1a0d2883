package cli

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sternrassler/content-client/pkg/client"
	"github.com/Sternrassler/content-client/pkg/hooks"
	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/Sternrassler/content-client/pkg/metrics"
	"github.com/rs/zerolog"
)

// DefaultRequestTimeout bounds each proxied request.
const DefaultRequestTimeout = 30 * time.Second

// maxBodyBytes limits request bodies accepted by POST routes.
const maxBodyBytes = 1 << 20

// errForbidden rejects admin routes called without the admin bearer token.
var errForbidden = errors.New("admin token required")

// Server exposes the caching client over HTTP. Responses use the same
// envelope as the upstream API, so the proxy can stand in for it.
type Server struct {
	client         *client.Client
	reporter       *hooks.Reporter
	adminToken     string
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// NewServer creates a proxy server. Analytics events are forwarded
// through reporter without waiting for delivery.
//
// Creating resources and clearing the cache require the caller to send
// "Authorization: Bearer <adminToken>". With an empty adminToken those
// routes always answer 403.
func NewServer(c *client.Client, reporter *hooks.Reporter, adminToken string) *Server {
	return &Server{
		client:         c,
		reporter:       reporter,
		adminToken:     adminToken,
		requestTimeout: DefaultRequestTimeout,
		logger:         logging.NewLogger("proxy"),
	}
}

// Handler returns the proxy routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/health", s.handle(s.upstreamHealth))
	mux.HandleFunc("GET /api/videos", s.handle(s.listVideos))
	mux.HandleFunc("GET /api/videos/{id}", s.handle(s.getVideo))
	mux.HandleFunc("POST /api/videos", s.handle(s.admin(s.createVideo)))
	mux.HandleFunc("GET /api/articles", s.handle(s.listArticles))
	mux.HandleFunc("GET /api/articles/{id}", s.handle(s.getArticle))
	mux.HandleFunc("POST /api/articles", s.handle(s.admin(s.createArticle)))
	mux.HandleFunc("GET /api/categories", s.handle(s.categories))
	mux.HandleFunc("GET /api/stats", s.handle(s.stats))
	mux.HandleFunc("POST /api/analytics", s.handle(s.analytics))
	mux.HandleFunc("DELETE /api/cache", s.handle(s.admin(s.clearCache)))

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// reply is a successful proxy response.
type reply struct {
	status     int
	data       any
	pagination *client.PageInfo
	filters    client.FilterInfo
}

// envelope mirrors the upstream response wrapper.
type envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Pagination *client.PageInfo  `json:"pagination,omitempty"`
	Filters    client.FilterInfo `json:"filters,omitempty"`
}

func (s *Server) handle(fn func(ctx context.Context, r *http.Request) (*reply, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()

		res, err := fn(ctx, r)
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				s.logger.Warn().
					Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status_code", status).
					Msg("Proxy request failed")
			}
			writeJSON(w, status, envelope{
				Success: false,
				Error:   client.UserMessage(err, hooks.DefaultErrorMessage),
			})
			return
		}

		status := res.status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, envelope{
			Success:    true,
			Data:       res.data,
			Pagination: res.pagination,
			Filters:    res.filters,
		})
	}
}

// admin rejects requests that do not carry the admin bearer token.
func (s *Server) admin(fn func(ctx context.Context, r *http.Request) (*reply, error)) func(ctx context.Context, r *http.Request) (*reply, error) {
	return func(ctx context.Context, r *http.Request) (*reply, error) {
		if !s.authorized(r) {
			s.logger.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("Rejected unauthenticated admin request")
			return nil, errForbidden
		}
		return fn(ctx, r)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.adminToken == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps client errors to proxy status codes. Upstream 4xx
// statuses pass through; other upstream failures become 502.
func statusFor(err error) int {
	var (
		callerErr    *client.CallerError
		transportErr *client.TransportError
		formatErr    *client.FormatError
		appErr       *client.ApplicationError
	)

	switch {
	case errors.Is(err, errForbidden), errors.Is(err, client.ErrMissingToken):
		return http.StatusForbidden
	case errors.As(err, &callerErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr):
		if transportErr.Class() == client.ErrorClassClient {
			return transportErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.As(err, &formatErr), errors.As(err, &appErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &client.CallerError{
			Op:  "decode request body",
			Err: fmt.Errorf("%w: %v", client.ErrInvalidParams, err),
		}
	}
	return nil
}

func listParams(r *http.Request) (client.ListParams, error) {
	params, err := client.ParseListParams(r.URL.Query())
	if err != nil {
		return params, &client.CallerError{Op: "parse query", Err: err}
	}
	return params, nil
}

func (s *Server) listVideos(ctx context.Context, r *http.Request) (*reply, error) {
	params, err := listParams(r)
	if err != nil {
		return nil, err
	}
	page, err := s.client.ListVideos(ctx, params)
	if err != nil {
		return nil, err
	}
	return &reply{data: page.Items, pagination: page.Pagination, filters: page.Filters}, nil
}

func (s *Server) listArticles(ctx context.Context, r *http.Request) (*reply, error) {
	params, err := listParams(r)
	if err != nil {
		return nil, err
	}
	page, err := s.client.ListArticles(ctx, params)
	if err != nil {
		return nil, err
	}
	return &reply{data: page.Items, pagination: page.Pagination, filters: page.Filters}, nil
}

func (s *Server) getVideo(ctx context.Context, r *http.Request) (*reply, error) {
	video, err := s.client.GetVideo(ctx, r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	return &reply{data: video}, nil
}

func (s *Server) getArticle(ctx context.Context, r *http.Request) (*reply, error) {
	article, err := s.client.GetArticle(ctx, r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	return &reply{data: article}, nil
}

func (s *Server) categories(ctx context.Context, r *http.Request) (*reply, error) {
	categories, err := s.client.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &reply{data: categories}, nil
}

func (s *Server) stats(ctx context.Context, r *http.Request) (*reply, error) {
	stats, err := s.client.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	return &reply{data: stats}, nil
}

func (s *Server) upstreamHealth(ctx context.Context, r *http.Request) (*reply, error) {
	status, err := s.client.Health(ctx)
	if err != nil {
		return nil, err
	}
	return &reply{data: status}, nil
}

func (s *Server) createVideo(ctx context.Context, r *http.Request) (*reply, error) {
	var input client.CreateVideoInput
	if err := decodeBody(r, &input); err != nil {
		return nil, err
	}
	video, err := s.client.CreateVideo(ctx, input)
	if err != nil {
		return nil, err
	}
	return &reply{status: http.StatusCreated, data: video}, nil
}

func (s *Server) createArticle(ctx context.Context, r *http.Request) (*reply, error) {
	var input client.CreateArticleInput
	if err := decodeBody(r, &input); err != nil {
		return nil, err
	}
	article, err := s.client.CreateArticle(ctx, input)
	if err != nil {
		return nil, err
	}
	return &reply{status: http.StatusCreated, data: article}, nil
}

// analytics accepts the event and forwards it in the background.
func (s *Server) analytics(ctx context.Context, r *http.Request) (*reply, error) {
	var event client.AnalyticsEvent
	if err := decodeBody(r, &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, &client.CallerError{
			Op:  "report analytics",
			Err: fmt.Errorf("%w: event type is required", client.ErrInvalidParams),
		}
	}
	s.reporter.Report(event)
	return &reply{status: http.StatusAccepted}, nil
}

func (s *Server) clearCache(ctx context.Context, r *http.Request) (*reply, error) {
	if err := s.client.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return &reply{}, nil
}
