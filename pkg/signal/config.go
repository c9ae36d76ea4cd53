package signal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/signalkit/pkg/logger"
)

// Config holds environment driven defaults for signals and hubs.
type Config struct {
	CleanupThreshold   int           `env:"SIGNAL_CLEANUP_THRESHOLD" envDefault:"16"`
	HubCleanupInterval time.Duration `env:"SIGNAL_HUB_CLEANUP_INTERVAL" envDefault:"0s"`
	LogLevel           string        `env:"SIGNAL_LOG_LEVEL" envDefault:"warn"`
	LogFormat          string        `env:"SIGNAL_LOG_FORMAT" envDefault:"json"`
	LogEnabled         bool          `env:"SIGNAL_LOG_ENABLED" envDefault:"false"`
}

// Validate reports settings that would make Logger or HubOptions panic.
func (c Config) Validate() error {
	switch logger.Format(strings.ToLower(c.LogFormat)) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("%w: SIGNAL_LOG_FORMAT %q must be %q or %q",
			ErrInvalidConfig, c.LogFormat, logger.FormatJSON, logger.FormatText)
	}
	return nil
}

// Logger builds the logger described by the config, or a discarding logger
// when logging is disabled. It panics on an unknown LogFormat; call Validate
// first when the config comes from untrusted input.
func (c Config) Logger() *slog.Logger {
	if !c.LogEnabled {
		return logger.Discard()
	}
	opts := []logger.Option{
		logger.WithLevelName(c.LogLevel),
		logger.WithAttr(logger.Component("signalkit")),
	}
	if c.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(c.LogFormat)))
	}
	return logger.New(opts...)
}

// HubOptions converts the config into options for NewHub.
func (c Config) HubOptions() []HubOption {
	log := c.Logger()
	return []HubOption{
		WithHubLogger(log),
		WithCleanupInterval(c.HubCleanupInterval),
		WithSignalOptions(
			WithCleanupThreshold(c.CleanupThreshold),
			WithLogger(log),
		),
	}
}
