// Package logger builds the *slog.Logger instances used across signalkit and
// provides attribute helpers that keep key names consistent between the
// signal engine, the hub and the command line tool.
//
// New assembles a logger from functional options:
//
//	log := logger.New(
//		logger.WithEnvironment("production", "signalkit"),
//		logger.WithAttr(logger.Component("hub")),
//	)
//
// Library code never falls back to slog.Default. When no logger is supplied it
// uses Discard, so embedding signalkit into an application produces no output
// unless the application asks for it.
//
// # Attributes
//
// Helpers such as Signal, Slot, Panic and Error return slog.Attr values.
// Error and Panic return an empty Attr for nil input, so they can be passed
// unconditionally:
//
//	log.Error("slot panicked", logger.Signal(name), logger.Slot(id), logger.Panic(v))
package logger
