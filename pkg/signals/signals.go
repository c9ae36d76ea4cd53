// Package signals exposes a process-wide signal hub.
//
// The global hub is a convenience for code that cannot easily pass a
// *signal.Hub around. Anything that needs deterministic teardown, isolated
// tests or its own configuration should construct a hub with signal.NewHub
// and own it explicitly.
//
// The hub is created on first use and configured from the environment through
// signal.Config (SIGNAL_CLEANUP_THRESHOLD, SIGNAL_HUB_CLEANUP_INTERVAL and the
// SIGNAL_LOG_* variables). If the environment cannot be parsed or fails
// signal.Config.Validate the hub falls back to built-in defaults.
package signals

import (
	"sync"

	"github.com/dmitrymomot/signalkit/pkg/config"
	"github.com/dmitrymomot/signalkit/pkg/signal"
)

var global = sync.OnceValue(newHub)

// newHub builds a hub from the environment, falling back to defaults when the
// environment cannot be parsed or holds an invalid value.
func newHub() *signal.Hub {
	var cfg signal.Config
	if err := config.Load(&cfg); err != nil || cfg.Validate() != nil {
		cfg = signal.Config{}
	}
	return signal.NewHub(cfg.HubOptions()...)
}

// Global returns the process-wide hub.
func Global() *signal.Hub {
	return global()
}

// Get returns the global signal for name and payload type T, creating it on
// first use.
func Get[T any](name string) *signal.Signal[T] {
	return signal.Get[T](global(), name)
}

// Lookup returns the global signal for name and type T without creating it.
func Lookup[T any](name string) (*signal.Signal[T], bool) {
	return signal.Lookup[T](global(), name)
}

// Has reports whether the global hub holds a signal for name and type T.
func Has[T any](name string) bool {
	return signal.Has[T](global(), name)
}

// Remove deletes the global signal for name and type T.
func Remove[T any](name string) {
	signal.Remove[T](global(), name)
}

// Clear removes every global signal.
func Clear() {
	global().Clear()
}

// CleanupEmpty removes global signals without subscribers and returns how
// many were removed.
func CleanupEmpty() int {
	return global().CleanupEmpty()
}

// Connect subscribes fn to the global signal for name and type T.
func Connect[T any](name string, fn func(T)) signal.SlotID {
	return signal.Connect(global(), name, fn)
}

// Subscribe is Connect returning a Scoped handle.
func Subscribe[T any](name string, fn func(T)) *signal.Scoped[T] {
	return signal.ConnectScoped(global(), name, fn)
}

// Emit delivers v to the global signal for name and type T.
func Emit[T any](name string, v T) {
	Get[T](name).Emit(v)
}

// NewScoped connects fn to s and returns the scoped handle owning it.
func NewScoped[T any](s *signal.Signal[T], fn func(T)) *signal.Scoped[T] {
	return s.ConnectScoped(fn)
}
