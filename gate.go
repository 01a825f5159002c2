package httpmsg

import (
	"context"
)

// DefaultWorkers is the default capacity of the server admission gate.
const DefaultWorkers = 10

// Gate is a counting admission gate of fixed capacity. At most capacity
// tokens are held at any time. Waiting acquirers are served in no
// particular order.
type Gate interface {
	// Acquire blocks until a token is available, ctx is done or the gate
	// is closed.
	Acquire(ctx context.Context) (Token, error)

	// Stats returns a snapshot of gate statistics.
	Stats() GateStats

	// Close wakes up every waiting acquirer with ErrGateClosed. Tokens
	// already held stay valid and may still be released.
	Close()
}

// Token is a held admission slot. Release returns it to the gate and
// wakes one waiter; releasing more than once has no further effect.
type Token interface {
	Release()
}

// GateFactory builds a gate of the given capacity.
type GateFactory func(capacity int) (Gate, error)
