// Package signal provides thread-safe, in-process signals: ordered
// broadcasters that call every connected function synchronously on the
// emitting goroutine.
//
// # Signals
//
// A Signal[T] delivers one payload of type T. Signals without payload use
// Notifier (Signal[struct{}]); several values travel as a struct.
//
//	var resized signal.Signal[Size]
//
//	id := resized.Connect(func(s Size) { layout(s) })
//	resized.Emit(Size{W: 800, H: 600})
//	resized.Disconnect(id)
//
// Emit holds a read lock while slots run, so many goroutines may emit the same
// signal at once. BlockingEmit holds the write lock instead: every slot active
// at call time runs before it returns and no connect or disconnect interleaves.
//
// The two differ on panics. A panicking slot aborts Emit and the panic reaches
// the caller; slots after it are skipped for that call. BlockingEmit recovers
// each slot's panic, reports it through the configured logger and panic
// handler, and keeps delivering.
//
// Disconnect only marks a slot inactive. Dead slots are removed in batches once
// DefaultCleanupThreshold disconnects have accumulated (see
// WithCleanupThreshold), on the next emission or on ForceCleanup, which keeps
// disconnect bursts cheap.
//
// # Scoped subscriptions
//
// Scoped owns the duty to disconnect one subscription:
//
//	conn := resized.ConnectScoped(onResize)
//	defer conn.Close()
//
// ConnectWeak binds a method without keeping its receiver alive; the slot
// retires itself once the receiver is garbage collected.
//
// # Hub
//
// A Hub lets packages rendezvous on a signal by name without importing each
// other. Signals are keyed by name and payload type, so Get[int](h, "x") and
// Get[float64](h, "x") are different signals:
//
//	hub := signal.NewHub(signal.WithCleanupInterval(time.Minute))
//	defer hub.Close()
//
//	signal.Get[string](hub, "log").Connect(func(msg string) { fmt.Println(msg) })
//	signal.Get[string](hub, "log").Emit("hello")
//
// Picking the same name with a different type silently creates a separate
// signal; it is not an error.
package signal
