// Package wire implements HTTP/1.1 message framing over a raw byte stream.
//
// The package reads one message per connection and writes the handful of
// messages a minimal GET client and file server exchange. It makes no
// decisions about connections, workers or files.
//
// # Framing
//
// A Framer consumes chunks of a stream in arrival order and walks through
// StateStartLine, StateHeaders, StateBody and StateComplete. Chunk
// boundaries carry no meaning: each chunk is appended to the buffer of the
// current state and every transition the buffered bytes allow is taken
// before the next chunk is requested.
//
// On the response side the body mode is picked once, from the header
// block:
//
//   - status 1xx, 204 and 304: no body, the message completes after the headers
//   - Transfer-Encoding: chunked: BodyChunked, decoded by ChunkedDecoder
//   - Content-Length: n: BodyContentLength, complete after n bytes
//   - neither: BodyNone, the body runs until the stream ends
//
// On the request side the message completes right after the header block.
//
// ReadRequest and ReadResponse drive a Framer from an io.Reader:
//
//	msg, err := wire.ReadResponse(conn)
//	if err != nil {
//	    if errors.Is(err, wire.ErrPrematureClose) {
//	        // peer went away mid-message
//	    }
//	    return err
//	}
//	fmt.Println(msg.StatusCode(), len(msg.Body))
//
// # Writing
//
// WriteRequest writes "GET <path> HTTP/1.1" with a Host header.
// WriteResponse writes a status line, an optional Content-Length header
// and the body, checking every write.
//
// # Error Handling
//
// All errors end the exchange:
//
//   - PrematureCloseError: stream ended before the message was complete
//   - ParseError: the message exceeded a limit or its framing is unusable
//   - ConnectionError: the stream failed
package wire
