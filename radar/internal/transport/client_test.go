package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/fr24.feed.api.v1.Feed/LiveFeed", r.URL.Path)
		assert.Equal(t, "1", r.Header.Get("X-Grpc-Web"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 0, 1, 8}, body)

		w.Header().Set("Content-Type", "application/grpc-web+proto")
		w.Write([]byte{0, 0, 0, 0, 2, 8, 1})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/api", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), Envelope{
		Method: "LiveFeed",
		Path:   "/fr24.feed.api.v1.Feed/LiveFeed",
		Header: http.Header{"X-Grpc-Web": {"1"}},
		Body:   []byte{0, 0, 0, 0, 1, 8},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte{0, 0, 0, 0, 2, 8, 1}, resp.Body)
	assert.Equal(t, "application/grpc-web+proto", resp.Header.Get("Content-Type"))
}

func TestDoStatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   codes.Code
	}{
		{name: "BadRequest", status: http.StatusBadRequest, code: codes.Internal},
		{name: "Unauthorized", status: http.StatusUnauthorized, code: codes.Unauthenticated},
		{name: "Forbidden", status: http.StatusForbidden, code: codes.PermissionDenied},
		{name: "NotFound", status: http.StatusNotFound, code: codes.Unimplemented},
		{name: "TooManyRequests", status: http.StatusTooManyRequests, code: codes.ResourceExhausted},
		{name: "ServiceUnavailable", status: http.StatusServiceUnavailable, code: codes.Unavailable},
		{name: "Teapot", status: http.StatusTeapot, code: codes.Unknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, strings.Repeat("x", 2048), tc.status)
			}))
			defer srv.Close()

			c, err := New(srv.URL, WithHTTPClient(srv.Client()))
			require.NoError(t, err)

			_, err = c.Do(context.Background(), Envelope{Method: "TopFlights", Path: "/x"})
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tc.status, statusErr.StatusCode)
			assert.Equal(t, tc.code, statusErr.Code)
			assert.Equal(t, "TopFlights", statusErr.Method)
			assert.Len(t, statusErr.Body, maxErrorBody)
		})
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "reg", r.URL.Query().Get("fetchBy"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := New("https://unused.example", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), "FlightList", srv.URL+"/list.json?fetchBy=reg", http.Header{"Accept": {"application/json"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestStream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("first"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	body, err := c.Stream(context.Background(), Envelope{Method: "FollowFlight", Path: "/follow"})
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = io.ReadFull(body, buf)
	require.NoError(t, err)
	assert.Equal(t, "first", string(buf))
	require.NoError(t, body.Close())
}

func TestStreamCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	body, err := c.Stream(ctx, Envelope{Method: "FollowFlight", Path: "/follow"})
	require.NoError(t, err)
	defer body.Close()

	cancel()
	_, err = io.ReadAll(body)
	assert.Error(t, err)
}

func TestStreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Stream(context.Background(), Envelope{Method: "FollowFlight", Path: "/follow"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, statusErr.Temporary())
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithRateLimit(0.001, 1))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), Envelope{Method: "TopFlights", Path: "/"})
	require.NoError(t, err)

	// The second token is far away, so a short deadline fails fast.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Do(ctx, Envelope{Method: "TopFlights", Path: "/"})
	assert.Error(t, err)
}

func TestNewInvalidBaseURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}

func TestNewHTTPClient(t *testing.T) {
	c, err := NewHTTPClient(HTTPConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Timeout)

	_, err = NewHTTPClient(HTTPConfig{Proxy: "socks5://127.0.0.1:1080"})
	require.NoError(t, err)

	_, err = NewHTTPClient(HTTPConfig{Proxy: "http://proxy.internal:3128"})
	require.NoError(t, err)
}
