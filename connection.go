package httpmsg

import (
	"context"
	"net"
	"time"

	"github.com/pior/httpmsg/wire"
)

// Connection is a single stream carrying exactly one request and one
// response. It is owned by one goroutine and not safe for concurrent use.
type Connection struct {
	conn net.Conn
}

// NewConnection wraps an established network connection.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{conn: conn}
}

// RemoteAddr returns the address of the peer.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SendRequest writes a GET request for path with the given Host header.
func (c *Connection) SendRequest(ctx context.Context, host, path string) error {
	c.setDeadline(ctx)
	return wire.WriteRequest(c.conn, &wire.Request{Host: host, Path: path})
}

// Receive feeds the stream to f until its message is complete.
func (c *Connection) Receive(ctx context.Context, f *wire.Framer) (*wire.Message, error) {
	c.setDeadline(ctx)
	return wire.ReadMessage(c.conn, f)
}

// ReceiveResponse reads one complete response.
func (c *Connection) ReceiveResponse(ctx context.Context) (*wire.Message, error) {
	return c.Receive(ctx, wire.NewResponseFramer())
}

// ReceiveRequest reads a request line and header block.
func (c *Connection) ReceiveRequest(ctx context.Context) (*wire.Message, error) {
	return c.Receive(ctx, wire.NewRequestFramer())
}

// SendResponse writes resp and returns the number of bytes written.
func (c *Connection) SendResponse(ctx context.Context, resp *wire.Response) (int, error) {
	c.setDeadline(ctx)
	return wire.WriteResponse(c.conn, resp)
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// setDeadline applies the context deadline, if any. Without one, I/O may
// block indefinitely.
func (c *Connection) setDeadline(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}
}
