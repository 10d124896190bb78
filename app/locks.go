package app

import (
	"context"
	"sync"
	"time"
)

// periodLocks serializes callers whose [from, to) windows overlap. Callers
// on disjoint windows proceed in parallel.
type periodLocks struct {
	mu   sync.Mutex
	held []*heldPeriod
}

type heldPeriod struct {
	from, to time.Time
	done     chan struct{}
}

// acquire blocks until no held window overlaps [from, to) and returns the
// release function.
func (l *periodLocks) acquire(ctx context.Context, from, to time.Time) (func(), error) {
	for {
		l.mu.Lock()
		var wait chan struct{}
		for _, h := range l.held {
			if from.Before(h.to) && h.from.Before(to) {
				wait = h.done
				break
			}
		}
		if wait == nil {
			h := &heldPeriod{from: from, to: to, done: make(chan struct{})}
			l.held = append(l.held, h)
			l.mu.Unlock()
			var once sync.Once
			return func() { once.Do(func() { l.release(h) }) }, nil
		}
		l.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *periodLocks) release(h *heldPeriod) {
	l.mu.Lock()
	for i, x := range l.held {
		if x == h {
			l.held = append(l.held[:i], l.held[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
	close(h.done)
}
