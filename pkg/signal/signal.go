package signal

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/signalkit/pkg/logger"
)

// SlotID identifies one subscription within one Signal.
type SlotID uint64

// InvalidSlot is the reserved id. Connect never returns it for a real
// subscription.
const InvalidSlot SlotID = 0

// Notifier is a signal without payload.
type Notifier = Signal[struct{}]

type slot[T any] struct {
	// call reports false when the slot's target is gone and the slot should
	// be retired instead of being called again.
	call   func(T) bool
	id     SlotID
	active atomic.Bool
}

// Signal is an ordered, thread-safe broadcaster for payloads of type T.
//
// Connect, Disconnect, DisconnectAll, Clear, ForceCleanup and BlockingEmit
// take the write lock. Emit, Size, Empty and Stats take the read lock, so any
// number of Emit calls may run concurrently.
//
// The zero value is ready to use.
type Signal[T any] struct {
	mu      sync.RWMutex
	slots   []*slot[T]
	nextID  SlotID
	wrapped bool

	// Atomic because weak slots retire themselves under the read lock.
	disconnects  atomic.Uint32
	needsCleanup atomic.Bool

	opts options
}

// New creates a signal configured by opts.
func New[T any](opts ...Option) *Signal[T] {
	s := &Signal[T]{}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Name returns the name set with WithName.
func (s *Signal[T]) Name() string {
	return s.opts.name
}

// Connect registers fn and returns its subscription id. Slots are invoked in
// connection order. A nil fn is not registered and yields InvalidSlot.
//
// To bind a method, pass the method value: sig.Connect(recv.OnResize). The
// signal keeps recv reachable until the slot is disconnected; use ConnectWeak
// when the subscription must not extend the receiver's lifetime.
func (s *Signal[T]) Connect(fn func(T)) SlotID {
	if fn == nil {
		return InvalidSlot
	}
	return s.connect(func(v T) bool {
		fn(v)
		return true
	})
}

// ConnectScoped connects fn and wraps the id in a Scoped handle.
func (s *Signal[T]) ConnectScoped(fn func(T)) *Scoped[T] {
	return NewScoped(s, s.Connect(fn))
}

func (s *Signal[T]) connect(call func(T) bool) SlotID {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &slot[T]{call: call, id: s.allocateID()}
	sl.active.Store(true)
	s.slots = append(s.slots, sl)
	return sl.id
}

// allocateID must be called with the write lock held.
func (s *Signal[T]) allocateID() SlotID {
	for {
		s.nextID++
		if s.nextID == InvalidSlot {
			s.nextID++
			s.wrapped = true
		}
		// Before the counter wraps every id is fresh; afterwards an old slot
		// may still hold the candidate.
		if !s.wrapped || !s.holds(s.nextID) {
			return s.nextID
		}
	}
}

func (s *Signal[T]) holds(id SlotID) bool {
	for _, sl := range s.slots {
		if sl.id == id {
			return true
		}
	}
	return false
}

// Disconnect deactivates the slot registered under id. Unknown and already
// disconnected ids are ignored. The slot is removed from the table lazily,
// once enough disconnects have accumulated.
func (s *Signal[T]) Disconnect(id SlotID) {
	if id == InvalidSlot {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.slots {
		if sl.id == id && sl.active.CompareAndSwap(true, false) {
			s.countDisconnect()
			return
		}
	}
}

// DisconnectAll deactivates every slot. The next emission compacts the table.
func (s *Signal[T]) DisconnectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.slots {
		sl.active.Store(false)
	}
	s.disconnects.Store(uint32(len(s.slots)))
	s.needsCleanup.Store(true)
}

// Emit calls every active slot with v, in connection order, on the calling
// goroutine.
//
// If a slot panics the panic propagates to the caller and the remaining slots
// are skipped for this call. Pending compaction still runs. BlockingEmit
// recovers slot panics instead; the two policies are intentionally different.
//
// A slot must not call Connect, Disconnect or any other write operation on the
// same signal, nor emit it recursively: the read lock held during delivery is
// not re-entrant and doing so deadlocks.
func (s *Signal[T]) Emit(v T) {
	defer s.cleanupIfNeeded()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sl := range s.slots {
		if sl.active.Load() && !sl.call(v) {
			s.retire(sl)
		}
	}
}

// Call is an alias for Emit.
func (s *Signal[T]) Call(v T) {
	s.Emit(v)
}

// BlockingEmit calls every active slot with v while holding the write lock, so
// no emission, connect or disconnect interleaves with delivery. A panicking
// slot is recovered, logged, reported to the panic handler, and delivery
// continues with the next slot. Nothing escapes to the caller.
func (s *Signal[T]) BlockingEmit(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.slots {
		if sl.active.Load() {
			s.deliver(sl, v)
		}
	}

	if s.needsCleanup.Load() {
		s.compact()
	}
}

func (s *Signal[T]) deliver(sl *slot[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			s.reportPanic(sl.id, r)
		}
	}()
	if !sl.call(v) {
		s.retire(sl)
	}
}

func (s *Signal[T]) reportPanic(id SlotID, v any) {
	perr := &PanicError{
		Signal: s.opts.name,
		Slot:   id,
		Value:  v,
		Stack:  debug.Stack(),
	}
	logger.OrDiscard(s.opts.logger).Error("slot panicked during blocking emit",
		logger.Signal(s.opts.name),
		logger.Slot(uint64(id)),
		logger.Panic(v),
	)
	if s.opts.onPanic != nil {
		s.opts.onPanic(perr)
	}
}

// Size returns the number of active slots.
func (s *Signal[T]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sl := range s.slots {
		if sl.active.Load() {
			n++
		}
	}
	return n
}

// Empty reports whether the signal has no active slots.
func (s *Signal[T]) Empty() bool {
	return s.Size() == 0
}

// Clear drops every slot and resets the cleanup bookkeeping. Ids are not
// reused afterwards.
func (s *Signal[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.slots)
	s.slots = nil
	s.disconnects.Store(0)
	s.needsCleanup.Store(false)
}

// ForceCleanup removes inactive slots now, regardless of the threshold.
func (s *Signal[T]) ForceCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.compact()
}

// Stats is a point-in-time view of a signal's slot table.
type Stats struct {
	Active             int  `json:"active" yaml:"active"`
	Stored             int  `json:"stored" yaml:"stored"`
	PendingDisconnects int  `json:"pending_disconnects" yaml:"pending_disconnects"`
	NeedsCleanup       bool `json:"needs_cleanup" yaml:"needs_cleanup"`
}

// Stats reports active and stored slot counts. Stored includes disconnected
// slots that have not been compacted yet.
func (s *Signal[T]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Stored:             len(s.slots),
		PendingDisconnects: int(s.disconnects.Load()),
		NeedsCleanup:       s.needsCleanup.Load(),
	}
	for _, sl := range s.slots {
		if sl.active.Load() {
			st.Active++
		}
	}
	return st
}

// retire deactivates a slot whose target is gone. Safe under the read lock.
func (s *Signal[T]) retire(sl *slot[T]) {
	if sl.active.CompareAndSwap(true, false) {
		s.countDisconnect()
	}
}

func (s *Signal[T]) countDisconnect() {
	if s.disconnects.Add(1) >= s.threshold() {
		s.needsCleanup.Store(true)
	}
}

func (s *Signal[T]) threshold() uint32 {
	if s.opts.threshold == 0 {
		return DefaultCleanupThreshold
	}
	return s.opts.threshold
}

func (s *Signal[T]) cleanupIfNeeded() {
	if !s.needsCleanup.Load() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another emitter may have compacted while we waited for the lock.
	if s.needsCleanup.Load() {
		s.compact()
	}
}

// compact must be called with the write lock held. It keeps the relative order
// of surviving slots.
func (s *Signal[T]) compact() {
	live := s.slots[:0]
	for _, sl := range s.slots {
		if sl.active.Load() {
			live = append(live, sl)
		}
	}
	clear(s.slots[len(live):])
	s.slots = live
	s.disconnects.Store(0)
	s.needsCleanup.Store(false)
}

// stats and reset let the hub treat signals of any payload type uniformly.
func (s *Signal[T]) stats() Stats { return s.Stats() }

func (s *Signal[T]) reset() { s.Clear() }
