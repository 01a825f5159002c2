package wire

import (
	"bytes"
	"strconv"
	"strings"
)

// State is the position of a Framer within a message.
// States only move forward.
type State int

const (
	StateStartLine State = iota
	StateHeaders
	StateBody
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStartLine:
		return "scanning start line"
	case StateHeaders:
		return "scanning headers"
	case StateBody:
		return "accumulating body"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "unknown state " + strconv.Itoa(int(s))
}

// BodyMode selects how the end of a body is found. It is decided once,
// from the header block, and never revisited.
type BodyMode int

const (
	// BodyNone has no explicit length: the body runs until the stream ends.
	BodyNone BodyMode = iota
	// BodyContentLength ends after the number of bytes in Content-Length.
	BodyContentLength
	// BodyChunked ends with the zero-size chunk.
	BodyChunked
)

func (m BodyMode) String() string {
	switch m {
	case BodyNone:
		return "none"
	case BodyContentLength:
		return "content-length"
	case BodyChunked:
		return "chunked"
	}
	return "unknown mode " + strconv.Itoa(int(m))
}

// Side tells a Framer which kind of message it is assembling.
type Side int

const (
	// SideRequest stops right after the header block. Request bodies are
	// never read.
	SideRequest Side = iota
	// SideResponse decodes the body according to the framing headers.
	SideResponse
)

// Message is a message assembled by a Framer. It must not be modified by
// the Framer once the Framer is complete.
type Message struct {
	// StartLine is the request line or status line without its CRLF.
	StartLine string

	// Header is the raw header block. Every header line keeps its CRLF;
	// the blank line that ends the block is not included.
	Header []byte

	// Body is the decoded body. Always nil on the request side.
	Body []byte

	// Received counts every byte read from the stream for this message.
	Received int
}

// HeaderValue looks up a header by name. See the package-level HeaderValue.
func (m *Message) HeaderValue(name string) (string, bool) {
	return HeaderValue(m.Header, name)
}

// StatusCode parses the status code out of a response start line.
func (m *Message) StatusCode() int {
	return ParseStatusCode(m.StartLine)
}

// RequestLine parses a request start line.
func (m *Message) RequestLine() RequestLine {
	return ParseRequestLine(m.StartLine)
}

// BodyLength returns the length of the decoded body.
func (m *Message) BodyLength() int {
	return len(m.Body)
}

// Framer assembles one message out of raw chunks of a byte stream.
//
// Chunks are handed to Feed in arrival order and may be cut anywhere: a
// single chunk can finish the start line, hold the whole header block and
// begin the body. Every transition the buffered bytes allow is taken before
// Feed returns. The end of the stream is reported with CloseRead.
//
// A Framer is not safe for concurrent use.
type Framer struct {
	side   Side
	limits Limits
	state  State
	err    error

	line   []byte // start line buffer
	header []byte // header buffer
	msg    Message

	statusCode    int
	noBody        bool
	mode          BodyMode
	contentLength int
	chunks        *ChunkedDecoder
}

// NewFramer returns a Framer for the given side and limits.
func NewFramer(side Side, limits Limits) *Framer {
	return &Framer{side: side, limits: limits}
}

// NewRequestFramer returns a request-side Framer with DefaultLimits.
func NewRequestFramer() *Framer {
	return NewFramer(SideRequest, DefaultLimits())
}

// NewResponseFramer returns a response-side Framer with DefaultLimits.
func NewResponseFramer() *Framer {
	return NewFramer(SideResponse, DefaultLimits())
}

// State returns the current state.
func (f *Framer) State() State {
	return f.state
}

// Mode returns the body mode. Only meaningful once the header block is done.
func (f *Framer) Mode() BodyMode {
	return f.mode
}

// StatusCode returns the status code parsed from a response start line.
func (f *Framer) StatusCode() int {
	return f.statusCode
}

// Err returns the error that moved the Framer to StateFailed.
func (f *Framer) Err() error {
	return f.err
}

// Message returns the assembled message, or nil until StateComplete.
func (f *Framer) Message() *Message {
	if f.state != StateComplete {
		return nil
	}
	return &f.msg
}

// Feed consumes the next chunk of the stream. It returns true once the
// message is complete; chunks fed after that are ignored.
func (f *Framer) Feed(p []byte) (bool, error) {
	switch f.state {
	case StateComplete:
		return true, nil
	case StateFailed:
		return false, f.err
	}

	f.msg.Received += len(p)

	switch f.state {
	case StateStartLine:
		f.line = append(f.line, p...)
	case StateHeaders:
		f.header = append(f.header, p...)
	case StateBody:
		if err := f.appendBody(p); err != nil {
			return false, f.fail(err)
		}
	}

	if f.state == StateStartLine {
		if err := f.scanStartLine(); err != nil {
			return false, f.fail(err)
		}
	}
	if f.state == StateHeaders {
		if err := f.scanHeaders(); err != nil {
			return false, f.fail(err)
		}
	}
	if f.state == StateBody {
		f.checkBody()
	}

	return f.state == StateComplete, nil
}

// CloseRead reports the end of the stream. A body in BodyNone mode is
// complete at this point; in every other unfinished state the message is
// incomplete and a PrematureCloseError is returned.
func (f *Framer) CloseRead() error {
	switch f.state {
	case StateComplete:
		return nil
	case StateFailed:
		return f.err
	case StateBody:
		if f.mode == BodyNone {
			f.complete()
			return nil
		}
	}
	return f.fail(&PrematureCloseError{State: f.state, Received: f.msg.Received})
}

func (f *Framer) fail(err error) error {
	f.state = StateFailed
	f.err = err
	return err
}

func (f *Framer) complete() {
	f.state = StateComplete
	if f.mode == BodyChunked {
		f.msg.Body = f.chunks.Body()
	}
	f.line = nil
	f.header = nil
	f.chunks = nil
}

func (f *Framer) scanStartLine() error {
	i := FindLineEnd(f.line)
	if i < 0 {
		if f.limits.StartLine > 0 && len(f.line) > f.limits.StartLine {
			return &ParseError{Message: "start line exceeds " + strconv.Itoa(f.limits.StartLine) + " bytes"}
		}
		return nil
	}

	f.header = append(f.header, f.line[i+len(CRLF):]...)
	f.msg.StartLine = string(f.line[:i])
	f.line = nil

	if f.side == SideResponse {
		f.statusCode = ParseStatusCode(f.msg.StartLine)
		f.noBody = NoBody(f.statusCode)
	}
	f.state = StateHeaders
	return nil
}

func (f *Framer) scanHeaders() error {
	var block, rest []byte
	if bytes.HasPrefix(f.header, crlfBytes) {
		// No header lines at all: the start line CRLF is followed by the blank line.
		block, rest = f.header[:0], f.header[len(CRLF):]
	} else if i := FindHeaderEnd(f.header); i >= 0 {
		block, rest = f.header[:i+len(CRLF)], f.header[i+len(CRLFCRLF):]
	} else {
		if f.limits.Header > 0 && len(f.header) > f.limits.Header {
			return &ParseError{Message: "header block exceeds " + strconv.Itoa(f.limits.Header) + " bytes"}
		}
		return nil
	}

	f.msg.Header = block[:len(block):len(block)]

	if f.side == SideRequest || f.noBody {
		f.complete()
		return nil
	}

	if te, ok := HeaderValue(block, HeaderTransferEncoding); ok {
		if !strings.EqualFold(te, EncodingChunked) {
			f.mode = BodyNone
			f.state = StateBody
			return f.appendBody(rest)
		}
		f.mode = BodyChunked
		f.chunks = NewChunkedDecoder(f.limits.Body)
		f.state = StateBody
		_, err := f.chunks.Write(rest)
		return err
	}

	if cl, ok := HeaderValue(block, HeaderContentLength); ok {
		n, err := strconv.Atoi(cl)
		if err != nil {
			return &ParseError{Message: "invalid Content-Length", Err: err}
		}
		if n < 0 {
			return &ParseError{Message: "negative Content-Length"}
		}
		if f.limits.Body > 0 && n > f.limits.Body {
			return &ParseError{Message: "Content-Length exceeds " + strconv.Itoa(f.limits.Body) + " bytes"}
		}
		f.mode = BodyContentLength
		f.contentLength = n
		f.state = StateBody
		return f.appendBody(rest)
	}

	f.mode = BodyNone
	f.state = StateBody
	return f.appendBody(rest)
}

func (f *Framer) appendBody(p []byte) error {
	if f.mode == BodyChunked {
		_, err := f.chunks.Write(p)
		return err
	}
	if f.mode == BodyNone && f.limits.Body > 0 && len(f.msg.Body)+len(p) > f.limits.Body {
		return &ParseError{Message: "body exceeds " + strconv.Itoa(f.limits.Body) + " bytes"}
	}
	f.msg.Body = append(f.msg.Body, p...)
	return nil
}

func (f *Framer) checkBody() {
	switch f.mode {
	case BodyContentLength:
		if len(f.msg.Body) >= f.contentLength {
			// Bytes past the declared length do not belong to this message.
			f.msg.Body = f.msg.Body[:f.contentLength:f.contentLength]
			f.complete()
		}
	case BodyChunked:
		if f.chunks.Done() {
			f.complete()
		}
	}
}
