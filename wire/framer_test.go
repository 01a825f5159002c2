package wire

import (
	"errors"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/pior/httpmsg/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(t *testing.T, f *Framer, chunks ...string) bool {
	t.Helper()
	var done bool
	for _, c := range chunks {
		var err error
		done, err = f.Feed([]byte(c))
		require.NoError(t, err)
	}
	return done
}

func TestFramer_ContentLengthSplitBody(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhe")
	assert.False(t, done)
	assert.Equal(t, StateBody, f.State())
	assert.Equal(t, BodyContentLength, f.Mode())

	done = feedAll(t, f, "llo")
	require.True(t, done)

	msg := f.Message()
	require.NotNil(t, msg)
	assert.Equal(t, "HTTP/1.1 200 OK", msg.StartLine)
	assert.Equal(t, "Content-Length: 5\r\n", string(msg.Header))
	assert.Equal(t, "hello", string(msg.Body))
	assert.Equal(t, 5, msg.BodyLength())
	assert.Equal(t, 200, msg.StatusCode())
}

func TestFramer_ContentLengthDoesNotWaitForClose(t *testing.T) {
	conn := testutils.NewConnectionMock(
		"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhe",
		"llo",
		"never read",
	).FailReadWith(errors.New("read past the end of the message"))

	msg, err := ReadResponse(conn)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(msg.Body))
	assert.Equal(t, 1, conn.Remaining())
}

func TestFramer_ContentLengthTruncatesExtraBytes(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f, "HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nabcdef")
	require.True(t, done)
	assert.Equal(t, "abc", string(f.Message().Body))
}

func TestFramer_ContentLengthZero(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")
	require.True(t, done)
	assert.Empty(t, f.Message().Body)
}

func TestFramer_NoBodyStatusCodes(t *testing.T) {
	for _, line := range []string{
		"HTTP/1.1 100 Continue",
		"HTTP/1.1 101 Switching Protocols",
		"HTTP/1.1 204 No Content",
		"HTTP/1.1 304 Not Modified",
	} {
		t.Run(line, func(t *testing.T) {
			conn := testutils.NewConnectionMock(
				line+"\r\nContent-Length: 10\r\nTransfer-Encoding: chunked\r\n\r\n",
				"0123456789",
			)

			msg, err := ReadResponse(conn)
			require.NoError(t, err)
			assert.Nil(t, msg.Body)
			assert.Equal(t, 1, conn.Remaining(), "declared length must be ignored")
		})
	}
}

func TestFramer_Chunked(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f,
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n",
		"5\r\nhel",
		"lo\r\n0\r",
		"\n\r\n",
	)
	require.True(t, done)
	assert.Equal(t, BodyChunked, f.Mode())
	assert.Equal(t, "hello", string(f.Message().Body))
}

func TestFramer_ChunkedWinsOverContentLength(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f, "HTTP/1.1 200 OK\r\nContent-Length: 100\r\nTransfer-Encoding: Chunked\r\n\r\n3\r\nabc\r\n0\r\n\r\n")
	require.True(t, done)
	assert.Equal(t, BodyChunked, f.Mode())
	assert.Equal(t, "abc", string(f.Message().Body))
}

func TestFramer_ChunkedSplitAtEveryOffset(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		string(AppendChunked(nil, []byte("hello, chunked world"), 6))

	for i := 1; i < len(raw); i++ {
		conn := testutils.NewConnectionMock(raw[:i], raw[i:])

		msg, err := ReadResponse(conn)
		require.NoError(t, err, "offset %d", i)
		assert.Equal(t, "hello, chunked world", string(msg.Body), "offset %d", i)
		// The zero chunk ends the message: a first piece holding "0\r" is never followed by a read.
		assert.Contains(t, []int{i, len(raw)}, msg.Received, "offset %d", i)
	}
}

func TestFramer_UntilClose(t *testing.T) {
	conn := testutils.NewConnectionMock(
		"HTTP/1.0 200 OK\r\nServer: legacy\r\n\r\nfirst ",
		"second ",
		"third",
	)

	f := NewResponseFramer()
	msg, err := ReadMessage(conn, f)
	require.NoError(t, err)
	assert.Equal(t, BodyNone, f.Mode())
	assert.Equal(t, "first second third", string(msg.Body))
	assert.Equal(t, "Server: legacy\r\n", string(msg.Header))
}

func TestFramer_UnknownTransferEncodingReadsUntilClose(t *testing.T) {
	conn := testutils.NewConnectionMock(
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: gzip\r\nContent-Length: 2\r\n\r\nabc",
		"def",
	)

	f := NewResponseFramer()
	msg, err := ReadMessage(conn, f)
	require.NoError(t, err)
	assert.Equal(t, BodyNone, f.Mode())
	assert.Equal(t, "abcdef", string(msg.Body))
}

func TestFramer_SingleChunkCrossesEveryBoundary(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f, "HTTP/1.1 200 OK\r\nA: 1\r\nContent-Length: 4\r\n\r\nbody")
	require.True(t, done)

	msg := f.Message()
	assert.Equal(t, "HTTP/1.1 200 OK", msg.StartLine)
	assert.Equal(t, "A: 1\r\nContent-Length: 4\r\n", string(msg.Header))
	assert.Equal(t, "body", string(msg.Body))
}

func TestFramer_ByteByByte(t *testing.T) {
	raw := "HTTP/1.1 404 Not Found\r\nContent-Length: 9\r\nX-Test: yes\r\n\r\nnot found"

	f := NewResponseFramer()
	var done bool
	for i := range len(raw) {
		require.False(t, done, "completed early at byte %d", i)
		var err error
		done, err = f.Feed([]byte{raw[i]})
		require.NoError(t, err)
	}
	require.True(t, done)

	msg := f.Message()
	assert.Equal(t, 404, msg.StatusCode())
	assert.Equal(t, "not found", string(msg.Body))
	v, ok := msg.HeaderValue("x-test")
	assert.True(t, ok)
	assert.Equal(t, "yes", v)
}

func TestFramer_EmptyHeaderBlock(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f, "HTTP/1.1 404 Not Found\r\n", "\r\n")
	assert.False(t, done, "no framing header: body runs until close")
	require.NoError(t, f.CloseRead())

	msg := f.Message()
	require.NotNil(t, msg)
	assert.Empty(t, msg.Header)
	assert.Empty(t, msg.Body)
}

func TestFramer_HeaderAndBodyDoNotShareBytes(t *testing.T) {
	f := NewResponseFramer()

	done := feedAll(t, f, "HTTP/1.1 200 OK\r\nContent-Length: 6\r\n\r\n", "abcdef")
	require.True(t, done)

	msg := f.Message()
	msg.Header = append(msg.Header, "Extra: 1\r\n"...)
	assert.Equal(t, "abcdef", string(msg.Body))
}

func TestFramer_FeedAfterComplete(t *testing.T) {
	f := NewResponseFramer()

	require.True(t, feedAll(t, f, "HTTP/1.1 204 No Content\r\n\r\n"))

	done, err := f.Feed([]byte("HTTP/1.1 200 OK\r\n\r\n"))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "HTTP/1.1 204 No Content", f.Message().StartLine)
	assert.Equal(t, len("HTTP/1.1 204 No Content\r\n\r\n"), f.Message().Received)
}

func TestFramer_PrematureClose(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		state  State
	}{
		{"nothing received", nil, StateStartLine},
		{"inside start line", []string{"HTTP/1.1 20"}, StateStartLine},
		{"inside headers", []string{"HTTP/1.1 200 OK\r\nContent-Le"}, StateHeaders},
		{"short content-length body", []string{"HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc"}, StateBody},
		{"missing terminal chunk", []string{"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nabc\r\n"}, StateBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := testutils.NewConnectionMock(tt.chunks...)

			f := NewResponseFramer()
			msg, err := ReadMessage(conn, f)
			assert.Nil(t, msg)
			require.ErrorIs(t, err, ErrPrematureClose)

			var perr *PrematureCloseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.state, perr.State)
			assert.Equal(t, StateFailed, f.State())
			assert.Nil(t, f.Message())
		})
	}
}

func TestFramer_TransportError(t *testing.T) {
	conn := testutils.NewConnectionMock("HTTP/1.1 200 OK\r\n").FailReadWith(syscall.ECONNRESET)

	f := NewResponseFramer()
	_, err := ReadMessage(conn, f)

	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "read", cerr.Op)
	assert.ErrorIs(t, err, syscall.ECONNRESET)
	assert.Equal(t, StateFailed, f.State())
	assert.Equal(t, err, f.Err())

	done, err2 := f.Feed([]byte("\r\n"))
	assert.False(t, done)
	assert.Equal(t, err, err2)
}

func TestFramer_Limits(t *testing.T) {
	limits := Limits{StartLine: 16, Header: 32, Body: 8}

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"start line", strings.Repeat("x", 17), "start line exceeds 16 bytes"},
		{"header", "HTTP/1.1 200 OK\r\n" + strings.Repeat("h", 33), "header block exceeds 32 bytes"},
		{"content-length", "HTTP/1.1 200 OK\r\nContent-Length: 9\r\n\r\n", "Content-Length exceeds 8 bytes"},
		{"until close", "HTTP/1.1 200 OK\r\n\r\n123456789", "body exceeds 8 bytes"},
		{"chunked", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n9\r\n123456789\r\n", "body exceeds 8 bytes"},
		{"declared chunk size before payload", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nFFFFFFFFFF\r\n", "body exceeds 8 bytes"},
		{"second chunk over limit", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\n1234\r\n5;", "body exceeds 8 bytes"},
		{"chunk size still growing", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nFFF", "body exceeds 8 bytes"},
		{"bad content-length", "HTTP/1.1 200 OK\r\nContent-Length: ten\r\n\r\n", "invalid Content-Length"},
		{"negative content-length", "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n", "negative Content-Length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFramer(SideResponse, limits)
			_, err := f.Feed([]byte(tt.input))

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.message, perr.Message)
			assert.Equal(t, StateFailed, f.State())
		})
	}
}

func TestFramer_ChunkedLimitBoundsBuffering(t *testing.T) {
	f := NewResponseFramer()

	done, err := f.Feed([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nFFFFFFFFFF\r\n"))
	assert.False(t, done)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "body exceeds 10485760 bytes", perr.Message)

	// Later pieces are refused instead of buffered.
	_, err = f.Feed(make([]byte, ReadChunkSize))
	assert.Equal(t, perr, err)
}

func TestFramer_Request(t *testing.T) {
	conn := testutils.NewConnectionMock(
		"GET /index.html HT",
		"TP/1.1\r\nHost: localhost\r\n",
		"\r\nignored body bytes",
		"never read",
	)

	msg, err := ReadRequest(conn)
	require.NoError(t, err)
	assert.Equal(t, "GET /index.html HTTP/1.1", msg.StartLine)
	assert.Equal(t, "Host: localhost\r\n", string(msg.Header))
	assert.Nil(t, msg.Body)
	assert.Equal(t, RequestLine{Method: "GET", URI: "/index.html", Version: "HTTP/1.1"}, msg.RequestLine())
	assert.Equal(t, 1, conn.Remaining())
}

func TestFramer_RequestIgnoresFramingHeaders(t *testing.T) {
	f := NewRequestFramer()

	done := feedAll(t, f, "GET / HTTP/1.1\r\nContent-Length: 100\r\n\r\n")
	require.True(t, done)
	assert.Nil(t, f.Message().Body)
}

func TestFramer_RequestPrematureClose(t *testing.T) {
	conn := testutils.NewConnectionMock("GET / HTTP/1.1\r\nHost: x\r\n")

	_, err := ReadRequest(conn)
	require.ErrorIs(t, err, ErrPrematureClose)
}

func TestReadMessage_EOFWithData(t *testing.T) {
	// Readers may return data together with io.EOF.
	r := &eofReader{data: []byte("HTTP/1.1 200 OK\r\n\r\ntail")}

	msg, err := ReadResponse(r)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(msg.Body))
}

type eofReader struct {
	data []byte
}

func (r *eofReader) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	r.data = r.data[n:]
	if len(r.data) == 0 {
		return n, io.EOF
	}
	return n, nil
}
