package httpmsg

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// NewChannelGate creates a gate backed by a buffered channel of tokens.
// This is the default gate implementation.
func NewChannelGate(capacity int) (Gate, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("httpmsg: gate capacity must be > 0, got %d", capacity)
	}

	g := &channelGate{
		tokens: make(chan struct{}, capacity),
		closed: make(chan struct{}),
		stats:  newGateStatsCollector(capacity),
	}
	for range capacity {
		g.tokens <- struct{}{}
	}
	return g, nil
}

type channelGate struct {
	tokens    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	stats     *gateStatsCollector
}

func (g *channelGate) Acquire(ctx context.Context) (Token, error) {
	g.stats.recordAcquire()

	select {
	case <-g.closed:
		g.stats.recordAcquireError()
		return nil, ErrGateClosed
	default:
	}

	// Fast path: a token is free
	select {
	case <-g.tokens:
		g.stats.recordActivate()
		return &channelToken{gate: g}, nil
	default:
	}

	start := time.Now()
	select {
	case <-g.tokens:
		g.stats.recordAcquireWait(time.Since(start))
		g.stats.recordActivate()
		return &channelToken{gate: g}, nil
	case <-g.closed:
		g.stats.recordAcquireError()
		return nil, ErrGateClosed
	case <-ctx.Done():
		g.stats.recordAcquireError()
		return nil, ctx.Err()
	}
}

func (g *channelGate) Stats() GateStats {
	return g.stats.snapshot()
}

func (g *channelGate) Close() {
	g.closeOnce.Do(func() { close(g.closed) })
}

type channelToken struct {
	gate *channelGate
	once sync.Once
}

func (t *channelToken) Release() {
	t.once.Do(func() {
		t.gate.stats.recordRelease()
		t.gate.tokens <- struct{}{}
	})
}
