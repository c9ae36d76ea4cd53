package signal

import "sync"

// Scoped owns the obligation to disconnect one subscription. Close or
// Disconnect releases it; both are idempotent. Go has no destructors, so tie
// the handle to a scope with defer:
//
//	conn := sig.ConnectScoped(onResize)
//	defer conn.Close()
//
// A Scoped must not be copied; pass *Scoped and use Move to hand the
// obligation to another owner. Handles are safe for concurrent use.
type Scoped[T any] struct {
	mu  sync.Mutex
	sig *Signal[T]
	id  SlotID
}

// NewScoped wraps an existing subscription. A nil signal or InvalidSlot
// produces an empty handle.
func NewScoped[T any](s *Signal[T], id SlotID) *Scoped[T] {
	if s == nil || id == InvalidSlot {
		return &Scoped[T]{}
	}
	return &Scoped[T]{sig: s, id: id}
}

// Connected reports whether the handle still owns a subscription.
func (h *Scoped[T]) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sig != nil
}

// ID returns the owned subscription id, or InvalidSlot for an empty handle.
func (h *Scoped[T]) ID() SlotID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id
}

// Disconnect releases the subscription. Calling it again is a no-op.
func (h *Scoped[T]) Disconnect() {
	sig, id := h.take()
	if sig != nil {
		sig.Disconnect(id)
	}
}

// Close implements io.Closer. It never fails.
func (h *Scoped[T]) Close() error {
	h.Disconnect()
	return nil
}

// Move transfers the subscription to a new handle and leaves h empty.
func (h *Scoped[T]) Move() *Scoped[T] {
	sig, id := h.take()
	return &Scoped[T]{sig: sig, id: id}
}

// Assign disconnects the subscription owned by h, if any, and takes over the
// one owned by other, leaving other empty. Assigning a handle to itself does
// nothing.
func (h *Scoped[T]) Assign(other *Scoped[T]) {
	if other == h {
		return
	}

	var sig *Signal[T]
	var id SlotID
	if other != nil {
		sig, id = other.take()
	}

	h.mu.Lock()
	oldSig, oldID := h.sig, h.id
	h.sig, h.id = sig, id
	h.mu.Unlock()

	if oldSig != nil {
		oldSig.Disconnect(oldID)
	}
}

func (h *Scoped[T]) take() (*Signal[T], SlotID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sig, id := h.sig, h.id
	h.sig, h.id = nil, InvalidSlot
	return sig, id
}

// With connects fn for the duration of body and disconnects it on every exit
// path, including a panic in body.
func With[T any](s *Signal[T], fn func(T), body func()) {
	id := s.Connect(fn)
	defer s.Disconnect(id)
	body()
}
