package logger

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Signal records a signal name under the key "signal".
func Signal(name string) slog.Attr {
	return slog.String("signal", name)
}

// Slot records a subscription id under the key "slot".
func Slot(id uint64) slog.Attr {
	return slog.Uint64("slot", id)
}

// Type records a payload type under the key "type".
// A nil type is rendered as "<nil>".
func Type(t reflect.Type) slog.Attr {
	if t == nil {
		return slog.String("type", "<nil>")
	}
	return slog.String("type", t.String())
}

// Panic records a recovered panic value under the key "panic".
// If v is nil, it returns an empty Attr.
func Panic(v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.String("panic", fmt.Sprint(v))
}

// Count records a number of affected items under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// RunID records a run identifier under the key "run_id".
func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}
