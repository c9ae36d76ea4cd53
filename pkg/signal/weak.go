package signal

import "weak"

// ConnectWeak binds method to obj without keeping obj alive. Before every call
// the slot checks that obj has not been garbage collected; once it has, the
// slot retires itself and is never invoked again.
//
// method should be a method expression such as (*Window).OnResize. A closure
// that captures obj keeps it reachable and defeats the weak reference.
// A nil obj or method is not registered and yields InvalidSlot.
func ConnectWeak[T, O any](s *Signal[T], obj *O, method func(*O, T)) SlotID {
	if obj == nil || method == nil {
		return InvalidSlot
	}
	ref := weak.Make(obj)
	return s.connect(func(v T) bool {
		target := ref.Value()
		if target == nil {
			return false
		}
		method(target, v)
		return true
	})
}

// ConnectWeakScoped is ConnectWeak wrapped in a Scoped handle.
func ConnectWeakScoped[T, O any](s *Signal[T], obj *O, method func(*O, T)) *Scoped[T] {
	return NewScoped(s, ConnectWeak(s, obj, method))
}
