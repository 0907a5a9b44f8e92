package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sardorbk/tandem"
	"github.com/sardorbk/tandem/channel"
)

func main() {
	ctx := context.Background()

	// A pipeline over backpressured channels: produce, square, fan-in.
	in := channel.Buffered[int](4)
	squares := channel.Pipeline(ctx, in, func(v int) int { return v * v })

	go func() {
		for i := 1; i <= 5; i++ {
			if err := in.Send(i); err != nil {
				return
			}
		}
		in.Close()
	}()

	for {
		v, ok := squares.ReceiveTimeout(time.Second)
		if !ok {
			break
		}
		fmt.Println("square:", v)
	}

	// Futures with combinators.
	sum := tandem.Map(
		tandem.Run(func() (int, error) { return 40, nil }),
		func(v int) int { return v + 2 },
	)
	fmt.Println("future:", sum.Await())

	// Single flight: ten callers, one execution.
	g := tandem.NewGroup()
	futures := make([]*tandem.Future[string], 10)
	for i := range futures {
		futures[i] = tandem.DoFuture(g, "token", func() (string, error) {
			time.Sleep(50 * time.Millisecond)
			return "tok-123", nil
		})
	}
	fmt.Println("token:", tandem.All(futures).Await()[0])

	// Circuit breaking around a flaky dependency.
	b := tandem.NewBreaker("flaky").
		WithFailureThreshold(2).
		WithOpenTimeout(100 * time.Millisecond)
	b.OnStateChange(func(from, to tandem.BreakerState) {
		fmt.Printf("breaker: %v -> %v\n", from, to)
	})

	attempt := 0
	call := func() tandem.Result[string] {
		return tandem.Call(b, func() tandem.Result[string] {
			attempt++
			if attempt <= 2 {
				return tandem.Err[string](errors.New("connection refused"))
			}
			return tandem.Ok("recovered")
		})
	}

	call()
	call() // trips the breaker
	if res := call(); !res.IsOk() {
		fmt.Println("short-circuited:", errors.Is(res.Err(), tandem.ErrOpen))
	}

	time.Sleep(120 * time.Millisecond)
	fmt.Println("probe:", call().Value())
}
