package wire

// Protocol delimiters
const (
	// CRLF terminates the start line and every header line.
	CRLF = "\r\n"

	// CRLFCRLF terminates the header block. The body begins right after it.
	CRLFCRLF = "\r\n\r\n"
)

// Version is the only protocol version this package speaks.
const Version = "HTTP/1.1"

// MethodGet is the only request method served.
const MethodGet = "GET"

// Header names inspected by the framer and written by the server.
const (
	HeaderHost             = "Host"
	HeaderContentLength    = "Content-Length"
	HeaderTransferEncoding = "Transfer-Encoding"

	// EncodingChunked is the Transfer-Encoding value that selects chunked framing.
	EncodingChunked = "chunked"
)

// Status codes produced by the file server.
const (
	StatusOK                      = 200
	StatusNotFound                = 404
	StatusMethodNotAllowed        = 405
	StatusHTTPVersionNotSupported = 505

	// Codes that never carry a body, in addition to the whole 1xx range.
	StatusNoContent   = 204
	StatusNotModified = 304
)

// Buffer sizes and limits.
//
// A read never asks the transport for more than ReadChunkSize bytes. The
// remaining limits bound how much a single message may buffer before the
// framer gives up with a ParseError.
const (
	ReadChunkSize    = 4 * 1024
	MaxStartLineSize = 4 * 1024
	MaxHeaderSize    = 8 * 1024
	MaxBodySize      = 10 * 1024 * 1024
)

// Limits bounds the buffers of a single Framer. Zero fields mean no limit.
type Limits struct {
	StartLine int
	Header    int
	Body      int
}

// DefaultLimits returns the limits used by ReadRequest and ReadResponse.
func DefaultLimits() Limits {
	return Limits{
		StartLine: MaxStartLineSize,
		Header:    MaxHeaderSize,
		Body:      MaxBodySize,
	}
}

var (
	crlfBytes     = []byte(CRLF)
	crlfcrlfBytes = []byte(CRLFCRLF)
)
