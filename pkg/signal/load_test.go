package signal_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/signalkit/pkg/signal"
)

func TestLoad_ManyEmittersAndSubscribers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	t.Parallel()

	const (
		subscribers = 100
		emitters    = 8
		emits       = 10_000
	)

	var sig signal.Signal[int]
	var total atomic.Int64
	for range subscribers {
		sig.Connect(func(v int) { total.Add(int64(v)) })
	}

	var wg sync.WaitGroup
	for range emitters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range emits {
				sig.Emit(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(subscribers*emitters*emits), total.Load())
}

func TestLoad_ChurnWithBlockingEmit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	t.Parallel()

	var sig signal.Signal[int]
	var emitter, churners sync.WaitGroup
	stop := make(chan struct{})

	emitter.Add(1)
	go func() {
		defer emitter.Done()
		for {
			select {
			case <-stop:
				return
			default:
				sig.BlockingEmit(1)
			}
		}
	}()

	for range 4 {
		churners.Add(1)
		go func() {
			defer churners.Done()
			for range 5_000 {
				sig.Disconnect(sig.Connect(func(int) {}))
			}
		}()
	}

	churners.Wait()
	close(stop)
	emitter.Wait()

	sig.ForceCleanup()
	st := sig.Stats()
	assert.Equal(t, 0, st.Active)
	assert.Equal(t, 0, st.Stored)
}
