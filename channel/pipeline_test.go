package channel

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_TransformsAndCloses(t *testing.T) {
	ctx := context.Background()

	in := Buffered[int](4)
	for i := 1; i <= 4; i++ {
		require.NoError(t, in.Send(i))
	}
	in.Close()

	out := Pipeline(ctx, in, func(v int) int { return v * 10 })

	for i := 1; i <= 4; i++ {
		v, ok := out.ReceiveTimeout(time.Second)
		require.True(t, ok, "missing value %d", i)
		assert.Equal(t, i*10, v)
	}

	assert.Eventually(t, out.IsClosed, time.Second, 5*time.Millisecond,
		"output must close once the input is closed and drained")
}

func TestPipeline_ContextCancelStopsWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	in := New[int]()
	out := Pipeline(ctx, in, func(v int) int { return v })
	cancel()

	assert.Eventually(t, out.IsClosed, time.Second, 5*time.Millisecond)
}

func TestPipeline_PanicsOnNilInput(t *testing.T) {
	assert.Panics(t, func() {
		Pipeline(context.Background(), nil, func(v int) int { return v })
	})
}

func TestFanOut_RoundRobin(t *testing.T) {
	ctx := context.Background()

	in := Buffered[int](6)
	for i := 0; i < 6; i++ {
		require.NoError(t, in.Send(i))
	}
	in.Close()

	outs := FanOut(ctx, in, 3)
	require.Len(t, outs, 3)

	got := make([][]int, 3)
	var wg sync.WaitGroup
	for i, out := range outs {
		i, out := i, out
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, ok := out.ReceiveTimeout(time.Second)
				if !ok {
					return
				}
				got[i] = append(got[i], v)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{0, 3}, got[0])
	assert.Equal(t, []int{1, 4}, got[1])
	assert.Equal(t, []int{2, 5}, got[2])

	for i, out := range outs {
		assert.True(t, out.IsClosed(), "output %d must be closed", i)
	}
}

func TestFanOut_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { FanOut(context.Background(), New[int](), 0) })
	assert.Panics(t, func() { FanOut[int](context.Background(), nil, 2) })
}

func TestFanIn_MergesAllSources(t *testing.T) {
	ctx := context.Background()

	a := Buffered[int](2)
	b := Buffered[int](2)
	require.NoError(t, a.Send(1))
	require.NoError(t, a.Send(2))
	require.NoError(t, b.Send(3))
	require.NoError(t, b.Send(4))
	a.Close()
	b.Close()

	out := FanIn(ctx, a, b)

	var got []int
	for {
		v, ok := out.ReceiveTimeout(time.Second)
		if !ok {
			break
		}
		got = append(got, v)
	}

	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
	assert.True(t, out.IsClosed(), "merged channel must close after all sources drain")
}

func TestFanIn_StaysOpenWhileAnySourceOpen(t *testing.T) {
	ctx := context.Background()

	a := Buffered[int](1)
	b := Buffered[int](1)
	a.Close()

	out := FanIn(ctx, a, b)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, out.IsClosed())

	b.Close()
	assert.Eventually(t, out.IsClosed, time.Second, 5*time.Millisecond)
}

func TestFanIn_PanicsOnNilChannel(t *testing.T) {
	assert.Panics(t, func() { FanIn(context.Background(), New[int](), nil) })
}

func TestDrain_UnblocksProducer(t *testing.T) {
	c := Buffered[int](1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			if err := c.Send(i); err != nil {
				return
			}
		}
		c.Close()
	}()

	Drain(c)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer stayed blocked while draining")
	}
}
