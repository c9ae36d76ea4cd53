// Package httpserver runs the diagnostics endpoint of a signal hub: an
// http.Server bound to its listener up front, so the final address is known
// before serving starts, and shut down gracefully when the run context ends.
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//	r.Handle("/metrics", promhttp.Handler())
//
//	srv := httpserver.New(
//		httpserver.WithAddr(":9464"),
//		httpserver.WithLogger(log),
//	)
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("diagnostics server stopped", logger.Error(err))
//	}
//
// Run wraps listen and serve errors with ErrStart; Shutdown wraps shutdown
// errors with ErrShutdown.
package httpserver
