package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/signalkit/pkg/logger"
)

type config struct {
	addr            string
	listener        net.Listener
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	readyHooks      []func(net.Addr)
}

func defaultConfig() *config {
	return &config{
		addr:            ":9464",
		readTimeout:     10 * time.Second,
		writeTimeout:    10 * time.Second,
		shutdownTimeout: 5 * time.Second,
	}
}

// Server serves one handler until its run context is cancelled.
type Server struct {
	cfg  *config
	log  *slog.Logger
	once sync.Once

	mu   sync.Mutex
	srv  *http.Server
	addr net.Addr
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{
		cfg: cfg,
		log: logger.OrDiscard(cfg.logger).With(logger.Component("httpserver")),
	}
}

// Addr returns the bound address, or nil before the server is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens, serves handler and blocks until ctx is cancelled, Shutdown is
// called or serving fails. A nil handler responds 404 to everything.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}

	ln := s.cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", s.cfg.addr); err != nil {
			s.mu.Unlock()
			return errors.Join(ErrStart, err)
		}
	}
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelError),
	}
	s.srv, s.addr = srv, ln.Addr()
	s.mu.Unlock()

	s.log.Info("http server listening", slog.String("addr", ln.Addr().String()))
	for _, h := range s.cfg.readyHooks {
		h(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var runErr error
	select {
	case <-ctx.Done():
		if err := s.Shutdown(context.Background()); err != nil {
			s.log.Error("graceful shutdown failed", logger.Error(err))
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	s.log.Info("http server stopped")
	return nil
}

// Shutdown stops the server gracefully within the configured shutdown
// timeout. It is safe to call repeatedly and before Run.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	var err error
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
