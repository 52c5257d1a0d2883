package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Sternrassler/content-client/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(mock *testutil.MockAPI) *Executor {
	return NewExecutor(mock.URL()+"/api", "TestApp/1.0.0", http.DefaultClient, zerolog.Nop())
}

func TestExecute_Success(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse("/api/videos", testutil.NewEnvelopeResponse(
		[]map[string]any{{"id": "a"}, {"id": "b"}},
		map[string]any{"page": 1, "limit": 12, "total": 2},
		map[string]any{"categories": []string{"ai"}},
	))

	resp, err := newTestExecutor(mock).Execute(context.Background(), "/videos", RequestOptions{})
	require.NoError(t, err)

	assert.True(t, resp.Envelope.OK())
	assert.JSONEq(t, `[{"id":"a"},{"id":"b"}]`, string(resp.Envelope.Data))
	require.NotNil(t, resp.Envelope.Pagination)
	assert.Equal(t, 1, resp.Envelope.Pagination.Page)
	assert.Equal(t, 2, resp.Envelope.Pagination.Total)
	assert.Contains(t, resp.Envelope.Filters, "categories")
	assert.NotEmpty(t, resp.Raw)
}

func TestExecute_HeadersMerged(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/api/stats", testutil.NewEnvelopeResponse(map[string]any{}, nil, nil))

	_, err := newTestExecutor(mock).Execute(context.Background(), "/stats", RequestOptions{
		Header: http.Header{
			"Content-Type": []string{"application/vnd.custom+json"},
			"X-Trace":      []string{"abc"},
		},
	})
	require.NoError(t, err)

	req, ok := mock.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "application/vnd.custom+json", req.Header.Get("Content-Type"), "caller override wins")
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "abc", req.Header.Get("X-Trace"))
	assert.Equal(t, "TestApp/1.0.0", req.Header.Get("User-Agent"))
}

func TestExecute_PostBody(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/api/analytics", testutil.NewEnvelopeResponse(nil, nil, nil))

	_, err := newTestExecutor(mock).Execute(context.Background(), "/analytics", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"type": "view"},
	})
	require.NoError(t, err)

	req, _ := mock.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"type":"view"}`, string(req.Body))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestExecute_Failures(t *testing.T) {
	tests := []struct {
		name   string
		resp   testutil.MockResponse
		assert func(t *testing.T, err error)
	}{
		{
			name: "server error",
			resp: testutil.NewServerErrorResponse(),
			assert: func(t *testing.T, err error) {
				var transportErr *TransportError
				require.ErrorAs(t, err, &transportErr)
				assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
				assert.Contains(t, transportErr.Body, "Internal server error")
				assert.Equal(t, ErrorClassServer, transportErr.Class())
			},
		},
		{
			name: "not found",
			resp: testutil.NewFailureResponse(http.StatusNotFound, "Video not found"),
			assert: func(t *testing.T, err error) {
				var transportErr *TransportError
				require.ErrorAs(t, err, &transportErr)
				assert.Equal(t, ErrorClassClient, transportErr.Class())
				assert.Equal(t, "Video not found", UserMessage(err, "fallback"))
			},
		},
		{
			name: "html instead of json",
			resp: testutil.NewHTMLResponse("<!doctype html>" + strings.Repeat("x", 1000)),
			assert: func(t *testing.T, err error) {
				var formatErr *FormatError
				require.ErrorAs(t, err, &formatErr)
				assert.Equal(t, "text/html; charset=utf-8", formatErr.DeclaredType)
				assert.True(t, strings.HasPrefix(formatErr.BodyPrefix, "<!doctype html>"))
				assert.LessOrEqual(t, len(formatErr.BodyPrefix), bodyPreviewLimit+3)
			},
		},
		{
			name: "missing content type",
			resp: testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"success":true}`, Headers: map[string]string{"Content-Type": ""}},
			assert: func(t *testing.T, err error) {
				var formatErr *FormatError
				require.ErrorAs(t, err, &formatErr)
			},
		},
		{
			name: "invalid json",
			resp: testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"success":tru`, Headers: map[string]string{"Content-Type": "application/json"}},
			assert: func(t *testing.T, err error) {
				var formatErr *FormatError
				require.ErrorAs(t, err, &formatErr)
				var syntaxErr *json.SyntaxError
				assert.True(t, errors.As(err, &syntaxErr))
			},
		},
		{
			name: "success false with message",
			resp: testutil.NewApplicationErrorResponse("X"),
			assert: func(t *testing.T, err error) {
				var appErr *ApplicationError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, "X", err.Error())
			},
		},
		{
			name: "success missing",
			resp: testutil.NewMissingSuccessResponse(),
			assert: func(t *testing.T, err error) {
				var appErr *ApplicationError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, DefaultApplicationMessage, err.Error())
			},
		},
		{
			name: "success false without message",
			resp: testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"success":false}`, Headers: map[string]string{"Content-Type": "application/json"}},
			assert: func(t *testing.T, err error) {
				assert.EqualError(t, err, DefaultApplicationMessage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockAPI()
			defer mock.Close()
			mock.SetResponse("/api/videos", tt.resp)

			resp, err := newTestExecutor(mock).Execute(context.Background(), "/videos", RequestOptions{})
			require.Error(t, err)
			assert.Nil(t, resp)
			tt.assert(t, err)
		})
	}
}

func TestExecute_NetworkError(t *testing.T) {
	mock := testutil.NewMockAPI()
	url := mock.URL()
	mock.Close()

	exec := NewExecutor(url, "TestApp/1.0.0", http.DefaultClient, zerolog.Nop())
	_, err := exec.Execute(context.Background(), "/videos", RequestOptions{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 0, transportErr.StatusCode)
	assert.Equal(t, ErrorClassNetwork, transportErr.Class())
	assert.Error(t, transportErr.Unwrap())
}

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestExecute_BodyReadFailure(t *testing.T) {
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(io.MultiReader(strings.NewReader(`{"success":`), failingBody{})),
			Request:    req,
		}, nil
	})

	exec := NewExecutor("http://content.test/api", "TestApp/1.0.0", doer, zerolog.Nop())
	_, err := exec.Execute(context.Background(), "/videos", RequestOptions{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 0, transportErr.StatusCode)
	assert.Equal(t, ErrorClassNetwork, transportErr.Class())
	assert.Contains(t, transportErr.Error(), "connection reset")
}

func TestExecute_MetricsUseRouteTemplate(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	for _, id := range []string{"metrics-a", "metrics-b"} {
		mock.SetResponse("/api/videos/"+id, testutil.NewEnvelopeResponse(map[string]any{"id": id}, nil, nil))
	}

	exec := newTestExecutor(mock)
	counter := requestsTotal.WithLabelValues("/videos/{id}", "200")
	start := promtest.ToFloat64(counter)

	_, err := exec.Execute(context.Background(), "/videos/metrics-a", RequestOptions{})
	require.NoError(t, err)
	before := promtest.CollectAndCount(requestDuration)

	_, err = exec.Execute(context.Background(), "/videos/metrics-b", RequestOptions{})
	require.NoError(t, err)

	assert.Equal(t, before, promtest.CollectAndCount(requestDuration), "new id created a new series")
	assert.Equal(t, 2.0, promtest.ToFloat64(counter)-start)
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{endpoint: "/videos", want: "/videos"},
		{endpoint: "/videos/", want: "/videos"},
		{endpoint: "/videos/abc", want: "/videos/{id}"},
		{endpoint: "/articles/a%2Fb/extra", want: "/articles/{id}"},
		{endpoint: "stats", want: "/stats"},
		{endpoint: "", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, routeLabel(tt.endpoint))
		})
	}
}

func TestExecute_FailureLogged(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/api/videos", testutil.NewApplicationErrorResponse("nope"))

	var buf strings.Builder
	logger := zerolog.New(&buf)
	exec := NewExecutor(mock.URL()+"/api", "", http.DefaultClient, logger)

	_, err := exec.Execute(context.Background(), "/videos", RequestOptions{})
	require.Error(t, err)

	assert.Contains(t, buf.String(), `"endpoint":"/videos"`)
	assert.Contains(t, buf.String(), `"error_kind":"application"`)
	assert.Contains(t, buf.String(), "nope")
}

func TestIsJSONContentType(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"APPLICATION/JSON", true},
		{"text/html", false},
		{"text/plain; charset=utf-8", false},
		{"", false},
		{";;;", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, isJSONContentType(tt.value))
		})
	}
}
