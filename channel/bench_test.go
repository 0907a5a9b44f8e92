package channel

import (
	"context"
	"testing"
)

func BenchmarkBufferedSendReceive(b *testing.B) {
	c := Buffered[int](128)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Send(i)
		_ = c.Receive()
	}
}

func BenchmarkTrySendTryReceive(b *testing.B) {
	c := Buffered[int](128)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.TrySend(i)
		c.TryReceive()
	}
}

func BenchmarkPipeline(b *testing.B) {
	ctx := context.Background()
	in := Buffered[int](128)
	out := Pipeline(ctx, in, func(v int) int { return v + 1 })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = in.Send(i)
		_ = out.Receive()
	}
	b.StopTimer()
	in.Close()
}
