package httpmsg

import (
	"errors"
	"fmt"
)

var (
	ErrServerClosed = errors.New("httpmsg: server closed")
	ErrGateClosed   = errors.New("httpmsg: gate closed")
)

// SetupError reports a failure to establish the transport: resolving,
// dialing or listening. It is fatal to the side that attempted it.
type SetupError struct {
	Op   string // dial or listen
	Addr string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("httpmsg: %s %s: %v", e.Op, e.Addr, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *SetupError) Unwrap() error {
	return e.Err
}
