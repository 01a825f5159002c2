package httpmsg

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/puddle/v2"
)

// NewPuddleGate creates a gate whose tokens are resources of a puddle pool
// capped at capacity. Acquire blocks once every resource is checked out.
func NewPuddleGate(capacity int) (Gate, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("httpmsg: gate capacity must be > 0, got %d", capacity)
	}

	poolConfig := &puddle.Config[struct{}]{
		Constructor: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		},
		Destructor: func(struct{}) {},
		MaxSize:    int32(capacity),
	}

	pool, err := puddle.NewPool(poolConfig)
	if err != nil {
		return nil, err
	}
	return &puddleGate{pool: pool, capacity: capacity}, nil
}

// puddleGate wraps puddle.Pool to implement our Gate interface.
type puddleGate struct {
	pool     *puddle.Pool[struct{}]
	capacity int
}

func (g *puddleGate) Acquire(ctx context.Context) (Token, error) {
	res, err := g.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, puddle.ErrClosedPool) {
			return nil, ErrGateClosed
		}
		return nil, err
	}
	return &puddleToken{res: res}, nil
}

// Stats returns a snapshot of gate statistics by converting puddle's stats to our format.
func (g *puddleGate) Stats() GateStats {
	s := g.pool.Stat()

	return GateStats{
		Capacity:          int32(g.capacity),
		Active:            s.AcquiredResources(),
		AcquireCount:      uint64(s.AcquireCount() + s.CanceledAcquireCount()),
		AcquireWaitCount:  uint64(s.EmptyAcquireCount()),
		AcquireErrors:     uint64(s.CanceledAcquireCount()),
		AcquireWaitTimeNs: uint64(s.EmptyAcquireWaitTime().Nanoseconds()),
	}
}

// Close closes the pool. puddle waits for held resources to be released
// before Close returns, so it runs in the background.
func (g *puddleGate) Close() {
	go g.pool.Close()
}

type puddleToken struct {
	res  *puddle.Resource[struct{}]
	once sync.Once
}

func (t *puddleToken) Release() {
	t.once.Do(t.res.Release)
}
