package httpserver

import "errors"

var (
	// ErrStart indicates that the server failed to start or stopped serving
	// unexpectedly.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
	// ErrAlreadyRunning is returned by a second Run on the same server.
	ErrAlreadyRunning = errors.New("server already running")
)
