package httpmsg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// NewSemaphoreGate creates a gate backed by a weighted semaphore.
func NewSemaphoreGate(capacity int) (Gate, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("httpmsg: gate capacity must be > 0, got %d", capacity)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &semaphoreGate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		closeCtx: ctx,
		close:    cancel,
		stats:    newGateStatsCollector(capacity),
	}, nil
}

type semaphoreGate struct {
	sem      *semaphore.Weighted
	closeCtx context.Context
	close    context.CancelFunc
	stats    *gateStatsCollector
}

func (g *semaphoreGate) Acquire(ctx context.Context) (Token, error) {
	g.stats.recordAcquire()

	if g.closeCtx.Err() != nil {
		g.stats.recordAcquireError()
		return nil, ErrGateClosed
	}

	if g.sem.TryAcquire(1) {
		g.stats.recordActivate()
		return &semaphoreToken{gate: g}, nil
	}

	// Closing the gate cancels every pending Acquire.
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(g.closeCtx, cancel)
	defer stop()

	start := time.Now()
	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		g.stats.recordAcquireError()
		if ctx.Err() == nil && g.closeCtx.Err() != nil {
			return nil, ErrGateClosed
		}
		return nil, err
	}
	g.stats.recordAcquireWait(time.Since(start))
	g.stats.recordActivate()
	return &semaphoreToken{gate: g}, nil
}

func (g *semaphoreGate) Stats() GateStats {
	return g.stats.snapshot()
}

func (g *semaphoreGate) Close() {
	g.close()
}

type semaphoreToken struct {
	gate *semaphoreGate
	once sync.Once
}

func (t *semaphoreToken) Release() {
	t.once.Do(func() {
		t.gate.stats.recordRelease()
		t.gate.sem.Release(1)
	})
}
