package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/signalkit/pkg/httpserver"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "unable to get free port")
	return l
}

func startServer(t *testing.T, ctx context.Context, srv *httpserver.Server, h http.Handler) (string, <-chan error) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, h) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 5*time.Millisecond)
	return "http://" + srv.Addr().String(), done
}

func TestRunAndCancel(t *testing.T) {
	t.Parallel()

	bound := make(chan net.Addr, 1)
	srv := httpserver.New(
		httpserver.WithListener(listen(t)),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithReadyHook(func(a net.Addr) { bound <- a }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url, done := startServer(t, ctx, srv, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))

	resp, err := http.Get(url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, srv.Addr(), <-bound)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown after run is a no-op")
}

func TestManualShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithListener(listen(t)))
	_, done := startServer(t, context.Background(), srv, nil)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	t.Parallel()
	assert.NoError(t, httpserver.New().Shutdown(context.Background()))
	assert.Nil(t, httpserver.New().Addr())
}

func TestStartError(t *testing.T) {
	t.Parallel()

	occupied := listen(t)
	defer occupied.Close()

	srv := httpserver.New(httpserver.WithAddr(occupied.Addr().String()))
	err := srv.Run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithListener(listen(t)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, done := startServer(t, ctx, srv, nil)

	err := srv.Run(ctx, nil)
	assert.True(t, errors.Is(err, httpserver.ErrAlreadyRunning))
	assert.ErrorIs(t, err, httpserver.ErrStart)

	cancel()
	require.NoError(t, <-done)
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithListener(nil) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(0) })
	assert.Panics(t, func() { httpserver.WithReadyHook(nil) })
	assert.NotPanics(t, func() { httpserver.New(httpserver.WithLogger(nil)) })
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	l := listen(t)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	srv := httpserver.NewFromConfig(httpserver.Config{Addr: addr, ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	url, done := startServer(t, ctx, srv, nil)

	assert.Equal(t, "http://"+addr, url)
	cancel()
	require.NoError(t, <-done)
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		checks []func(context.Context) error
		code   int
		body   string
	}{
		{name: "liveness", code: http.StatusOK, body: "ALIVE"},
		{
			name:   "ready",
			checks: []func(context.Context) error{func(context.Context) error { return nil }},
			code:   http.StatusOK,
			body:   "READY",
		},
		{
			name: "not ready",
			checks: []func(context.Context) error{
				func(context.Context) error { return nil },
				func(context.Context) error { return errors.New("hub closed") },
			},
			code: http.StatusServiceUnavailable,
			body: "NOT_READY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			httpserver.HealthCheckHandler(nil, tt.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}
