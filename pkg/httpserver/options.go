package httpserver

import (
	"log/slog"
	"net"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

// WithAddr sets the address the server listens on.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("WithAddr: addr cannot be empty")
	}
	return func(c *config) { c.addr = addr }
}

// WithListener serves on l instead of listening on the configured address.
func WithListener(l net.Listener) Option {
	if l == nil {
		panic("WithListener: nil listener")
	}
	return func(c *config) { c.listener = l }
}

// WithTimeouts sets the read and write timeouts. Non-positive values leave
// the corresponding timeout unchanged.
func WithTimeouts(read, write time.Duration) Option {
	return func(c *config) {
		if read > 0 {
			c.readTimeout = read
		}
		if write > 0 {
			c.writeTimeout = write
		}
	}
}

// WithShutdownTimeout sets the time allowed for graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithShutdownTimeout: duration must be > 0")
	}
	return func(c *config) { c.shutdownTimeout = d }
}

// WithLogger sets the server logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReadyHook registers a callback invoked with the bound address once the
// server is listening.
func WithReadyHook(h func(net.Addr)) Option {
	if h == nil {
		panic("WithReadyHook: nil hook")
	}
	return func(c *config) {
		c.readyHooks = append(c.readyHooks, h)
	}
}
