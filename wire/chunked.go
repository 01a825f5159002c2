package wire

import (
	"strconv"
)

// maxChunkSizeDigits keeps a chunk size within an int on every platform.
const maxChunkSizeDigits = 15

// ChunkedDecoder incrementally decodes a chunked transfer-encoded body.
//
// Bytes are appended with Write as they arrive. Every call decodes as many
// complete chunks as the buffer holds and keeps the rest for the next call;
// a chunk is never reported partially. Decoding stops at the zero-size
// chunk. Whatever follows it (trailers, final CRLF) is ignored.
type ChunkedDecoder struct {
	buf   []byte
	pos   int // start of the unconsumed suffix of buf
	body  []byte
	done  bool
	limit int
}

// NewChunkedDecoder returns a decoder whose decoded body may grow up to
// limit bytes. Zero means no limit.
func NewChunkedDecoder(limit int) *ChunkedDecoder {
	return &ChunkedDecoder{limit: limit}
}

// Write appends p to the chunk buffer and decodes what it can.
// Writes after the terminal chunk are discarded.
func (d *ChunkedDecoder) Write(p []byte) (int, error) {
	if d.done {
		return len(p), nil
	}
	d.buf = append(d.buf, p...)
	return len(p), d.decode()
}

// Done reports whether the terminal zero-size chunk has been consumed.
func (d *ChunkedDecoder) Done() bool {
	return d.done
}

// Body returns the payload decoded so far.
func (d *ChunkedDecoder) Body() []byte {
	return d.body
}

// Buffered returns the number of received bytes not yet decoded.
func (d *ChunkedDecoder) Buffered() int {
	return len(d.buf) - d.pos
}

func (d *ChunkedDecoder) decode() error {
	for !d.done {
		rest := d.buf[d.pos:]

		digits := 0
		for digits < len(rest) && isHex(rest[digits]) {
			digits++
		}
		if digits == 0 {
			if len(rest) == 0 {
				break
			}
			return &ParseError{Message: "invalid chunk size " + strconv.Quote(string(rest[:1]))}
		}
		if digits > maxChunkSizeDigits {
			return &ParseError{Message: "chunk size too large"}
		}

		size, err := strconv.ParseInt(string(rest[:digits]), 16, 64)
		if err != nil {
			return &ParseError{Message: "invalid chunk size", Err: err}
		}
		// More digits can only grow the size, so the limit holds for a partial size too.
		if d.limit > 0 && int64(len(d.body))+size > int64(d.limit) {
			return &ParseError{Message: "body exceeds " + strconv.Itoa(d.limit) + " bytes"}
		}
		if digits == len(rest) {
			// The size may still be growing.
			break
		}

		if size == 0 {
			d.done = true
			d.buf, d.pos = nil, 0
			break
		}

		// <size>CRLF<payload>CRLF must be fully buffered.
		if len(rest) < digits+len(CRLF) {
			break
		}
		if string(rest[digits:digits+len(CRLF)]) != CRLF {
			return &ParseError{Message: "chunk size not followed by CRLF"}
		}
		start := digits + len(CRLF)
		if int64(len(rest)-start) < size+int64(len(CRLF)) {
			break
		}
		end := start + int(size)
		if string(rest[end:end+len(CRLF)]) != CRLF {
			return &ParseError{Message: "chunk payload not followed by CRLF"}
		}
		d.body = append(d.body, rest[start:end]...)
		d.pos += end + len(CRLF)
	}

	if d.pos == len(d.buf) {
		d.buf = d.buf[:0]
		d.pos = 0
	}
	return nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// AppendChunked appends body to dst in chunked transfer-encoding, split into
// chunks of at most chunkSize bytes, followed by the terminal chunk and the
// final CRLF. A chunkSize <= 0 writes the body as a single chunk.
func AppendChunked(dst, body []byte, chunkSize int) []byte {
	if chunkSize <= 0 {
		chunkSize = len(body)
	}
	for len(body) > 0 {
		n := min(chunkSize, len(body))
		dst = strconv.AppendInt(dst, int64(n), 16)
		dst = append(dst, CRLF...)
		dst = append(dst, body[:n]...)
		dst = append(dst, CRLF...)
		body = body[n:]
	}
	dst = append(dst, '0')
	return append(dst, CRLFCRLF...)
}
