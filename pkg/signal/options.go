package signal

import "log/slog"

// DefaultCleanupThreshold is the number of accumulated disconnects after which
// the next emission compacts the slot table.
const DefaultCleanupThreshold = 16

// Option configures a Signal.
type Option func(*options)

type options struct {
	name      string
	threshold uint32
	logger    *slog.Logger
	onPanic   func(*PanicError)
}

// WithName sets the name reported in logs, panic errors and hub snapshots.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithCleanupThreshold sets how many disconnects are batched before dead slots
// are physically removed. Non-positive values are ignored.
func WithCleanupThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.threshold = uint32(n)
		}
	}
}

// WithLogger sets the logger used to report slot panics recovered by
// BlockingEmit. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPanicHandler registers a function receiving every slot panic recovered
// by BlockingEmit. It runs while the signal's write lock is held and must not
// call back into the same signal.
func WithPanicHandler(fn func(*PanicError)) Option {
	return func(o *options) { o.onPanic = fn }
}
