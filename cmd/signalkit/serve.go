package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/signalkit/pkg/httpserver"
	"github.com/dmitrymomot/signalkit/pkg/logger"
	"github.com/dmitrymomot/signalkit/pkg/signal"
	"github.com/dmitrymomot/signalkit/pkg/signal/signalmetrics"
)

const (
	tickSignal = "tick"
	echoSignal = "echo"
	maxPayload = 64 << 10
)

func serveCmd() *cobra.Command {
	var (
		addr string
		tick time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo hub and expose its metrics over HTTP",
		Long: `Run a hub with a producer emitting on the "tick" signal and a logging
subscriber on the "echo" signal, and serve:

  GET  /metrics               Prometheus metrics for the hub
  GET  /signals               JSON snapshot of registered signals
  POST /signals/{name}/emit   emit the request body on a string signal
  GET  /healthz               liveness probe

Examples:
  signalkit serve
  signalkit serve --addr=127.0.0.1:9464 --tick=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			if tick > 0 {
				cfg.Tick = tick
			}
			return runServe(cmd.Context(), cfg, newLogger(cmd.ErrOrStderr(), cfg, uuid.NewString()))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from SIGNALKIT_HTTP_ADDR)")
	cmd.Flags().DurationVarP(&tick, "tick", "t", 0, "Producer interval (default from SIGNALKIT_TICK)")

	return cmd
}

func runServe(ctx context.Context, cfg appConfig, log *slog.Logger, opts ...httpserver.Option) error {
	log = logger.OrDiscard(log)
	hub := signal.NewHub(hubOptions(cfg, log)...)
	defer hub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		signalmetrics.New(hub),
		collectors.NewGoCollector(),
	)

	// Both demo signals keep a subscriber for the lifetime of the server so
	// they stay visible in snapshots.
	conn := signal.ConnectScoped(hub, tickSignal, func(t time.Time) {
		log.Debug("tick", logger.Signal(tickSignal), slog.Time("at", t))
	})
	defer conn.Close()
	ticks := signal.Get[time.Time](hub, tickSignal)

	echoConn := signal.ConnectScoped(hub, echoSignal, func(payload string) {
		log.Info("echo", logger.Signal(echoSignal), slog.Int("bytes", len(payload)))
	})
	defer echoConn.Close()

	srv := httpserver.NewFromConfig(cfg.HTTP, append([]httpserver.Option{httpserver.WithLogger(log)}, opts...)...)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return srv.Run(ctx, newRouter(hub, reg, log)) })
	eg.Go(func() error {
		produce(ctx, ticks, cfg.Tick)
		return nil
	})
	return eg.Wait()
}

// produce emits the current time on s every interval until ctx is done.
func produce(ctx context.Context, s *signal.Signal[time.Time], interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case t := <-ticker.C:
			s.Emit(t)
		case <-ctx.Done():
			return
		}
	}
}

func newRouter(hub *signal.Hub, reg *prometheus.Registry, log *slog.Logger) http.Handler {
	log = logger.OrDiscard(log)
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/signals", func(r chi.Router) {
		r.Get("/", snapshotHandler(hub))
		r.Post("/{name}/emit", emitHandler(hub, log))
	})
	return r
}

func snapshotHandler(hub *signal.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.Snapshot())
	}
}

type emitResponse struct {
	Signal      string `json:"signal"`
	Subscribers int    `json:"subscribers"`
}

func emitHandler(hub *signal.Hub, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayload))
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		s, ok := signal.Lookup[string](hub, name)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "signal not found"})
			return
		}
		s.Emit(string(body))

		log.DebugContext(r.Context(), "payload emitted",
			logger.Signal(name),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeJSON(w, http.StatusAccepted, emitResponse{Signal: name, Subscribers: s.Size()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
