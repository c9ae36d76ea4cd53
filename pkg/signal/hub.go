package signal

import (
	"cmp"
	"context"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/signalkit/pkg/logger"
)

// key scopes a signal name by its payload type, so unrelated packages that
// pick the same name with different payloads never share a signal.
type key struct {
	name string
	typ  reflect.Type
}

// entry is what the hub needs from a signal regardless of its payload type.
type entry interface {
	stats() Stats
	reset()
}

// HubOption configures a Hub.
type HubOption func(*hubOptions)

type hubOptions struct {
	logger          *slog.Logger
	signalOpts      []Option
	cleanupInterval time.Duration
	onCreate        func(name string, typ reflect.Type)
}

// WithHubLogger sets the hub logger. Nil loggers are ignored.
func WithHubLogger(l *slog.Logger) HubOption {
	return func(o *hubOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSignalOptions sets options applied to every signal the hub creates.
// The signal name is always the name passed to Get.
func WithSignalOptions(opts ...Option) HubOption {
	return func(o *hubOptions) {
		o.signalOpts = append(o.signalOpts, opts...)
	}
}

// WithCleanupInterval starts a background janitor that removes signals
// without subscribers every d. Non-positive durations disable it.
func WithCleanupInterval(d time.Duration) HubOption {
	return func(o *hubOptions) {
		o.cleanupInterval = max(d, 0)
	}
}

// WithCreateHook registers fn to be called after Get creates a new signal.
// It runs outside the hub lock.
func WithCreateHook(fn func(name string, typ reflect.Type)) HubOption {
	return func(o *hubOptions) { o.onCreate = fn }
}

// Hub is a registry of signals keyed by name and payload type. Signals are
// created on first Get and owned by the hub until removed.
//
// Prefer an explicitly constructed Hub passed to the code that needs it; the
// signals package offers a process-wide one for convenience.
type Hub struct {
	mu      sync.RWMutex
	signals map[key]entry
	opts    hubOptions
	log     *slog.Logger

	stop      context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewHub creates a hub configured by opts.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{signals: make(map[key]entry)}
	for _, opt := range opts {
		opt(&h.opts)
	}
	h.log = logger.OrDiscard(h.opts.logger).With(logger.Component("signal_hub"))

	if h.opts.cleanupInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		h.stop = cancel
		h.wg.Add(1)
		go h.cleanupLoop(ctx, h.opts.cleanupInterval)
	}
	return h
}

// Get returns the signal registered under name for payload type T, creating
// it if needed. Concurrent callers always receive the same signal.
func Get[T any](h *Hub, name string) *Signal[T] {
	k := key{name: name, typ: reflect.TypeFor[T]()}

	h.mu.RLock()
	e, ok := h.signals[k]
	h.mu.RUnlock()
	if ok {
		return e.(*Signal[T])
	}

	h.mu.Lock()
	// Another goroutine may have created it between the two locks.
	if e, ok := h.signals[k]; ok {
		h.mu.Unlock()
		return e.(*Signal[T])
	}
	if h.signals == nil {
		h.signals = make(map[key]entry)
	}
	opts := append(slices.Clone(h.opts.signalOpts), WithName(name))
	s := New[T](opts...)
	h.signals[k] = s
	h.mu.Unlock()

	if h.log != nil {
		h.log.Debug("signal created", logger.Signal(name), logger.Type(k.typ))
	}
	if h.opts.onCreate != nil {
		h.opts.onCreate(name, k.typ)
	}
	return s
}

// Lookup returns the signal registered under name for payload type T without
// creating it.
func Lookup[T any](h *Hub, name string) (*Signal[T], bool) {
	k := key{name: name, typ: reflect.TypeFor[T]()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.signals[k]
	if !ok {
		return nil, false
	}
	return e.(*Signal[T]), true
}

// Connect subscribes fn to the signal registered under name for payload type
// T, creating the signal if needed. Unlike Get followed by Signal.Connect, the
// subscription always lands on the signal the hub holds: if CleanupEmpty or
// Remove drops the signal before fn is attached, the slot is moved to the
// current one.
func Connect[T any](h *Hub, name string, fn func(T)) SlotID {
	_, id := attach(h, name, fn)
	return id
}

// ConnectScoped is Connect returning a Scoped handle bound to the signal that
// received the subscription.
func ConnectScoped[T any](h *Hub, name string, fn func(T)) *Scoped[T] {
	return NewScoped(attach(h, name, fn))
}

func attach[T any](h *Hub, name string, fn func(T)) (*Signal[T], SlotID) {
	if fn == nil {
		return nil, InvalidSlot
	}
	for {
		s := Get[T](h, name)
		id := s.Connect(fn)
		// A signal with an active slot is never reaped, so once the hub
		// still holds s after connecting the subscription is safe.
		if cur, ok := Lookup[T](h, name); ok && cur == s {
			return s, id
		}
		s.Disconnect(id)
	}
}

// Has reports whether a signal exists for name and payload type T.
func Has[T any](h *Hub, name string) bool {
	_, ok := Lookup[T](h, name)
	return ok
}

// Remove deletes the signal for name and payload type T and drops its slots,
// so a reference kept past removal no longer delivers to anyone. Scoped
// handles bound to it become harmless no-ops.
func Remove[T any](h *Hub, name string) {
	k := key{name: name, typ: reflect.TypeFor[T]()}

	h.mu.Lock()
	e, ok := h.signals[k]
	delete(h.signals, k)
	h.mu.Unlock()

	if ok {
		e.reset()
	}
}

// Clear removes every signal and drops their slots.
func (h *Hub) Clear() {
	h.mu.Lock()
	removed := make([]entry, 0, len(h.signals))
	for _, e := range h.signals {
		removed = append(removed, e)
	}
	clear(h.signals)
	h.mu.Unlock()

	for _, e := range removed {
		e.reset()
	}
}

// CleanupEmpty removes every signal without active subscribers and returns how
// many were removed.
func (h *Hub) CleanupEmpty() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for k, e := range h.signals {
		if e.stats().Active == 0 {
			delete(h.signals, k)
			removed++
		}
	}
	if removed > 0 && h.log != nil {
		h.log.Debug("empty signals removed", logger.Count(removed))
	}
	return removed
}

// Size returns the number of registered signals.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.signals)
}

// Info describes one registered signal.
type Info struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Subscribers int    `json:"subscribers" yaml:"subscribers"`
	Stored      int    `json:"stored" yaml:"stored"`
}

// Snapshot lists registered signals ordered by name, then type.
func (h *Hub) Snapshot() []Info {
	h.mu.RLock()
	infos := make([]Info, 0, len(h.signals))
	for k, e := range h.signals {
		st := e.stats()
		infos = append(infos, Info{
			Name:        k.name,
			Type:        k.typ.String(),
			Subscribers: st.Active,
			Stored:      st.Stored,
		})
	}
	h.mu.RUnlock()

	slices.SortFunc(infos, func(a, b Info) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Type, b.Type))
	})
	return infos
}

// Close stops the cleanup janitor, if any. The hub remains usable. Close is
// safe to call multiple times.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		if h.stop != nil {
			h.stop()
			h.wg.Wait()
		}
	})
	return nil
}

func (h *Hub) cleanupLoop(ctx context.Context, interval time.Duration) {
	defer h.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.CleanupEmpty()
		case <-ctx.Done():
			return
		}
	}
}
