package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/signalkit/pkg/logger"
)

// HealthCheckHandler serves liveness and readiness probes.
//
//   - Without checks the handler answers 200 OK with body "ALIVE".
//   - With checks each one runs against the request context; the handler
//     answers 200 "READY" when all pass and 503 "NOT_READY" otherwise.
func HealthCheckHandler(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	log = logger.OrDiscard(log)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.WarnContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
