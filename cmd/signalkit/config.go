package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/signalkit/pkg/config"
	"github.com/dmitrymomot/signalkit/pkg/httpserver"
	"github.com/dmitrymomot/signalkit/pkg/logger"
	"github.com/dmitrymomot/signalkit/pkg/signal"
)

type appConfig struct {
	Env  string        `env:"SIGNALKIT_ENV" envDefault:"development"`
	Tick time.Duration `env:"SIGNALKIT_TICK" envDefault:"1s"`

	HTTP   httpserver.Config `envPrefix:"SIGNALKIT_"`
	Signal signal.Config
}

func loadConfig() (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	if err := cfg.Signal.Validate(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

// newLogger builds the command logger. The run id ties every line of one
// invocation together.
func newLogger(w io.Writer, cfg appConfig, runID string) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env, "signalkit"),
		logger.WithOutput(w),
		logger.WithAttr(logger.RunID(runID)),
	)
}

// hubOptions layers the command logger over the environment configured hub
// options.
func hubOptions(cfg appConfig, log *slog.Logger) []signal.HubOption {
	return append(cfg.Signal.HubOptions(),
		signal.WithHubLogger(log),
		signal.WithSignalOptions(signal.WithLogger(log)),
	)
}
