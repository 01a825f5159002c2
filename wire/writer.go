package wire

import (
	"io"
	"strconv"

	"github.com/pior/httpmsg/internal"
)

var bufferPool = internal.NewByteBufferPool(256)

// Request is a bodyless GET request.
type Request struct {
	Host string
	Path string
}

// Response is a response produced by the server.
type Response struct {
	StatusCode int

	// HasBody sends a Content-Length header and Body, even when Body is empty.
	HasBody bool
	Body    []byte
}

// NewResponse returns a response without a body.
func NewResponse(code int) *Response {
	return &Response{StatusCode: code}
}

// NewResponseWithBody returns a response carrying body.
func NewResponseWithBody(code int, body []byte) *Response {
	return &Response{StatusCode: code, HasBody: true, Body: body}
}

// WriteRequest writes a request in wire format:
//
//	GET <path> HTTP/1.1\r\nHost: <host>\r\n\r\n
func WriteRequest(w io.Writer, req *Request) error {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	buf.WriteString(MethodGet)
	buf.WriteByte(' ')
	buf.WriteString(req.Path)
	buf.WriteByte(' ')
	buf.WriteString(Version)
	buf.WriteString(CRLF)
	buf.WriteString(HeaderHost)
	buf.WriteString(": ")
	buf.WriteString(req.Host)
	buf.WriteString(CRLFCRLF)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return &ConnectionError{Op: "write request", Err: err}
	}
	return nil
}

// WriteResponse writes the status line, the header block and the body as
// three separate writes. The first failing write aborts the response.
// Returns the number of bytes written.
func WriteResponse(w io.Writer, resp *Response) (int, error) {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	total := 0

	buf.WriteString(Version)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(resp.StatusCode))
	buf.WriteByte(' ')
	buf.WriteString(StatusText(resp.StatusCode))
	buf.WriteString(CRLF)
	n, err := w.Write(buf.Bytes())
	total += n
	if err != nil {
		return total, &ConnectionError{Op: "write status line", Err: err}
	}

	buf.Reset()
	if resp.HasBody {
		buf.WriteString(HeaderContentLength)
		buf.WriteString(": ")
		buf.WriteString(strconv.Itoa(len(resp.Body)))
		buf.WriteString(CRLF)
	}
	buf.WriteString(CRLF)
	n, err = w.Write(buf.Bytes())
	total += n
	if err != nil {
		return total, &ConnectionError{Op: "write header", Err: err}
	}

	if !resp.HasBody || len(resp.Body) == 0 {
		return total, nil
	}
	n, err = w.Write(resp.Body)
	total += n
	if err != nil {
		return total, &ConnectionError{Op: "write body", Err: err}
	}
	return total, nil
}
