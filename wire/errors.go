package wire

import (
	"errors"
	"fmt"
)

// Error types returned while framing or writing a message.
// Every one of them ends the exchange: the caller closes the connection.

// ErrPrematureClose is matched by errors.Is for every PrematureCloseError.
var ErrPrematureClose = errors.New("wire: stream closed before message was complete")

// PrematureCloseError is returned when the stream ends before the framer
// reached StateComplete.
//
// Common causes:
//   - Peer closed the connection before sending the start line
//   - Peer closed the connection in the middle of the header block
//   - Peer closed the connection before the declared Content-Length arrived
//   - Peer closed the connection before the terminal zero-size chunk
type PrematureCloseError struct {
	State    State // State the framer was in when the stream ended
	Received int   // Bytes received before the stream ended
}

func (e *PrematureCloseError) Error() string {
	return fmt.Sprintf("wire: stream closed while %s after %d bytes", e.State, e.Received)
}

func (e *PrematureCloseError) Is(target error) bool {
	return target == ErrPrematureClose
}

// ParseError represents a message the framer refuses to assemble.
// Malformed input is handled on a best-effort basis only: most defects
// degrade into an odd-looking but successful parse instead of a ParseError.
//
// Common causes:
//   - Start line or header block exceeds its limit
//   - Body exceeds its limit
//   - Content-Length is not a non-negative integer
//   - Chunk size line is not hexadecimal or not followed by CRLF
//   - Chunk payload is not followed by CRLF
type ParseError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "wire: parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "wire: parse error: " + e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConnectionError wraps I/O errors of the underlying stream.
//
// Common causes:
//   - Connection reset by peer
//   - Broken pipe while sending the response
//   - Deadline exceeded
type ConnectionError struct {
	Op  string // Operation that failed (read, write status line, ...)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("wire: connection error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
