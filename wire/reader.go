package wire

import (
	"errors"
	"io"
)

// ReadMessage reads r in chunks of at most ReadChunkSize bytes and feeds
// them to f until the message is complete. Nothing is read from r once the
// message is complete.
//
// Go errors returned:
//   - PrematureCloseError: r hit io.EOF before the message was complete
//   - ParseError: the framer refused the message
//   - ConnectionError: any other read error
func ReadMessage(r io.Reader, f *Framer) (*Message, error) {
	buf := make([]byte, ReadChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			done, ferr := f.Feed(buf[:n])
			if ferr != nil {
				return nil, ferr
			}
			if done {
				return f.Message(), nil
			}
		}

		if errors.Is(err, io.EOF) {
			if err := f.CloseRead(); err != nil {
				return nil, err
			}
			return f.Message(), nil
		}
		if err != nil {
			return nil, f.fail(&ConnectionError{Op: "read", Err: err})
		}
	}
}

// ReadRequest reads a request start line and header block from r.
// Anything after the header block is left unread or discarded.
func ReadRequest(r io.Reader) (*Message, error) {
	return ReadMessage(r, NewRequestFramer())
}

// ReadResponse reads a complete response from r, body included.
func ReadResponse(r io.Reader) (*Message, error) {
	return ReadMessage(r, NewResponseFramer())
}
