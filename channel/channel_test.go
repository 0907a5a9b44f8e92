package channel

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffered_SendReceive(t *testing.T) {
	c := Buffered[int](5)

	require.NoError(t, c.Send(42))
	assert.Equal(t, 42, c.Receive())
}

func TestBuffered_PanicsOnNonPositiveCapacity(t *testing.T) {
	assert.Panics(t, func() { Buffered[int](0) })
	assert.Panics(t, func() { Buffered[int](-1) })
}

func TestBuffered_CapacitySendsNeverBlock(t *testing.T) {
	const capacity = 4
	c := Buffered[int](capacity)

	for i := 0; i < capacity; i++ {
		require.True(t, c.TrySend(i), "send %d within capacity must not block", i)
	}

	// The (C+1)-th send blocks until a receive frees space.
	assert.False(t, c.TrySend(capacity))

	unblocked := make(chan error, 1)
	go func() {
		unblocked <- c.Send(capacity)
	}()

	select {
	case <-unblocked:
		t.Fatal("send beyond capacity completed without a receive")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 0, c.Receive())

	select {
	case err := <-unblocked:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("send did not unblock after a receive freed space")
	}
}

func TestChannel_FIFO(t *testing.T) {
	c := Buffered[int](10)
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Send(i))
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, c.Receive())
	}
}

func TestReceive_ClosedEmptyReturnsZero(t *testing.T) {
	c := Buffered[string](2)
	require.NoError(t, c.Send("last"))
	c.Close()

	// Buffered values remain receivable after close.
	assert.Equal(t, "last", c.Receive())

	done := make(chan string, 1)
	go func() {
		done <- c.Receive()
	}()

	select {
	case v := <-done:
		assert.Equal(t, "", v)
	case <-time.After(time.Second):
		t.Fatal("receive on a closed, empty channel blocked")
	}
}

func TestSend_OnClosedChannel(t *testing.T) {
	c := Buffered[int](1)
	c.Close()

	assert.ErrorIs(t, c.Send(1), ErrClosed)
	assert.False(t, c.TrySend(1))
}

func TestSend_UnblockedByClose(t *testing.T) {
	c := Buffered[int](1)
	require.NoError(t, c.Send(1)) // fill the buffer

	errc := make(chan error, 1)
	go func() {
		errc <- c.Send(2) // blocks: buffer full
	}()

	time.Sleep(20 * time.Millisecond)
	c.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked send was not unblocked by Close")
	}
}

func TestClose_ConcurrentWithBlockedSend(t *testing.T) {
	// A sender parked mid-send must never touch runtime channel
	// teardown, no matter how Close interleaves with it. Repeated
	// iterations give the race detector interleavings to chew on.
	for i := 0; i < 200; i++ {
		c := Buffered[int](1)
		require.NoError(t, c.Send(1)) // fill the buffer

		errc := make(chan error, 1)
		go func() {
			errc <- c.Send(2) // blocks: buffer full
		}()

		runtime.Gosched()
		c.Close()

		select {
		case err := <-errc:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("blocked send was not unblocked by Close")
		}
	}
}

func TestUnbuffered_Rendezvous(t *testing.T) {
	c := New[int]()

	// Without a receiver, an unbuffered send cannot proceed.
	assert.False(t, c.TrySend(7))

	var wg sync.WaitGroup
	wg.Add(1)
	got := 0
	go func() {
		defer wg.Done()
		got = c.Receive()
	}()

	require.NoError(t, c.Send(7))
	wg.Wait()
	assert.Equal(t, 7, got)
}

func TestTryReceive(t *testing.T) {
	c := Buffered[int](1)

	_, ok := c.TryReceive()
	assert.False(t, ok, "empty channel must not yield a value")

	require.NoError(t, c.Send(9))
	v, ok := c.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 9, v)

	c.Close()
	_, ok = c.TryReceive()
	assert.False(t, ok, "closed drained channel must report no value")
}

func TestReceiveTimeout(t *testing.T) {
	c := Buffered[int](1)

	start := time.Now()
	_, ok := c.ReceiveTimeout(30 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = c.Send(5)
	}()
	v, ok := c.ReceiveTimeout(time.Second)
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestReceiveTimeout_ZeroChecksOnce(t *testing.T) {
	c := Buffered[int](1)

	_, ok := c.ReceiveTimeout(0)
	assert.False(t, ok)

	require.NoError(t, c.Send(3))
	v, ok := c.ReceiveTimeout(0)
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestReceiveTimeout_NegativeIsNoOp(t *testing.T) {
	c := Buffered[int](1)
	require.NoError(t, c.Send(3))

	start := time.Now()
	_, ok := c.ReceiveTimeout(-time.Second)
	assert.False(t, ok, "negative timeout must not receive")
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	// The buffered value is still there.
	assert.Equal(t, 3, c.Receive())
}

func TestClose_Idempotent(t *testing.T) {
	c := Buffered[int](1)
	assert.False(t, c.IsClosed())

	c.Close()
	assert.True(t, c.IsClosed())
	assert.NotPanics(t, func() { c.Close() })
	assert.True(t, c.IsClosed())
}

func TestLenCap(t *testing.T) {
	c := Buffered[int](3)
	assert.Equal(t, 3, c.Cap())
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Send(1))
	require.NoError(t, c.Send(2))
	assert.Equal(t, 2, c.Len())

	u := New[int]()
	assert.Equal(t, 0, u.Cap())
}

func TestSendContext_Cancel(t *testing.T) {
	c := Buffered[int](1)
	require.NoError(t, c.Send(1)) // fill the buffer

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- c.SendContext(ctx, 2)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("blocked SendContext was not unblocked by cancellation")
	}
}

func TestConcurrentProducersConsumers(t *testing.T) {
	const (
		producers = 4
		consumers = 4
		perWorker = 250
	)
	c := Buffered[int](16)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := c.Send(i); err != nil {
					t.Errorf("send: %v", err)
					return
				}
			}
		}()
	}

	var mu sync.Mutex
	received := 0
	var cwg sync.WaitGroup
	for r := 0; r < consumers; r++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				if _, ok := c.ReceiveTimeout(time.Second); !ok {
					return
				}
				mu.Lock()
				received++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	c.Close()
	cwg.Wait()

	assert.Equal(t, producers*perWorker, received)
}
