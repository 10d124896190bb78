package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	assert.Equal(t, "hello", <-ch)
	bus.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	_, ok := <-ch1
	assert.False(t, ok)
	_, ok = <-ch2
	assert.False(t, ok)

	late := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing after close yields a closed channel")
	bus.Publish("ignored")
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	assert.NotPanics(t, func() { bus.Unsubscribe(ch) })
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New(WithBuffer(2))
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	assert.Len(t, ch, 2)
	assert.Equal(t, uint64(3), bus.Dropped())
	assert.Equal(t, 0, <-ch)
}

type ping struct{ n int }

func TestForwardFiltersByType(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan int, 4)
	done := Forward(ctx, bus, func(p ping) { got <- p.n })

	bus.Publish("noise")
	bus.Publish(ping{n: 1})
	bus.Publish(ping{n: 2})

	for _, want := range []int{1, 2} {
		select {
		case n := <-got:
			assert.Equal(t, want, n)
		case <-time.After(time.Second):
			require.FailNow(t, "event not forwarded")
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "forwarder did not stop")
	}
}

func TestForwardStopsOnClose(t *testing.T) {
	bus := New()
	done := Forward(context.Background(), bus, func(ping) {})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "forwarder did not stop")
	}
}
