package jobs

import (
	"context"
	"sync"
)

// drainGroup tracks detached continuations so shutdown can wait for them.
// It is a WaitGroup with a context-aware Wait; nothing ever observes an
// individual task's completion, only the whole set's.
type drainGroup struct {
	wg sync.WaitGroup
}

// Go runs fn on its own goroutine and registers it with the group.
func (g *drainGroup) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until all registered tasks finish or ctx expires.
func (g *drainGroup) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
