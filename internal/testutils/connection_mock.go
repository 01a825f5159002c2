package testutils

import (
	"bytes"
	"io"
	"net"
	"time"
)

// ConnectionMock is a mock implementation of net.Conn for testing.
// Every Read returns exactly one of the scripted chunks, so tests control
// where the stream is cut.
type ConnectionMock struct {
	chunks   [][]byte
	readErr  error
	writeErr error
	writeBuf *bytes.Buffer
	reads    int
	closed   bool
}

// NewConnectionMock creates a mock connection that delivers chunks one Read
// at a time and then reports io.EOF.
func NewConnectionMock(chunks ...string) *ConnectionMock {
	m := &ConnectionMock{
		readErr:  io.EOF,
		writeBuf: &bytes.Buffer{},
	}
	for _, c := range chunks {
		m.chunks = append(m.chunks, []byte(c))
	}
	return m
}

// FailReadWith makes the mock return err instead of io.EOF once the chunks
// are exhausted.
func (m *ConnectionMock) FailReadWith(err error) *ConnectionMock {
	m.readErr = err
	return m
}

// FailWriteWith makes every Write fail with err.
func (m *ConnectionMock) FailWriteWith(err error) *ConnectionMock {
	m.writeErr = err
	return m
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	m.reads++
	if len(m.chunks) == 0 {
		return 0, m.readErr
	}
	n = copy(b, m.chunks[0])
	if n < len(m.chunks[0]) {
		m.chunks[0] = m.chunks[0][n:]
	} else {
		m.chunks = m.chunks[1:]
	}
	return n, nil
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.closed = true
	return nil
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// Written returns the raw bytes written to the mock connection.
func (m *ConnectionMock) Written() string {
	return m.writeBuf.String()
}

// Reads returns how many times Read was called.
func (m *ConnectionMock) Reads() int {
	return m.reads
}

// Remaining returns the number of chunks not yet read.
func (m *ConnectionMock) Remaining() int {
	return len(m.chunks)
}

// IsClosed reports whether Close was called.
func (m *ConnectionMock) IsClosed() bool {
	return m.closed
}
