package tables

import (
	"context"
	"sync"
	"time"
)

// Tickable is driven by a Ticker. Tick must finish before it returns; the
// next tick is never started while one is running.
type Tickable interface {
	Tick(ctx context.Context, now time.Time)
}

// Ticker fires Tick on a fixed period from a single goroutine, so ticks
// never overlap. A late tick simply observes a fresher now.
type Ticker struct {
	interval time.Duration
	target   Tickable

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTicker(interval time.Duration, target Tickable) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval, target: target}
}

// Start runs an immediate tick and then one per interval until Stop or ctx
// cancellation. Calling Start on a running ticker does nothing.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(ctx, t.done)
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	t.target.Tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.target.Tick(ctx, now)
		}
	}
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
