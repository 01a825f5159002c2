package httpmsg

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pior/httpmsg/wire"
	"github.com/sony/gobreaker/v2"
	"github.com/zeebo/xxh3"
)

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	// Dialer is the net.Dialer used to connect.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// NewCircuitBreaker creates a circuit breaker for a server address.
	// Called once per address, on its first fetch.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) CircuitBreaker

	// Logger receives client events.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Result is a response assembled by the client.
type Result struct {
	StatusCode int
	StatusLine string
	Header     []byte // raw header block
	Body       []byte
	Mode       wire.BodyMode

	// Received counts every byte read for the response.
	Received int

	// RemoteAddr is the address actually connected to.
	RemoteAddr string

	// ConnectTime is the time spent establishing the connection, a rough
	// round-trip time.
	ConnectTime time.Duration

	// Checksum is the xxh3 hash of Body.
	Checksum uint64
}

// Client issues one GET request per connection. Fetches run strictly
// sequentially within a call; the Client itself may be shared.
type Client struct {
	dialer            *net.Dialer
	newCircuitBreaker func(serverAddr string) CircuitBreaker
	logger            *slog.Logger

	mu       sync.Mutex
	breakers map[string]CircuitBreaker
}

// NewClient creates a client with the given configuration.
func NewClient(config ClientConfig) *Client {
	dialer := config.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		dialer:            dialer,
		newCircuitBreaker: config.NewCircuitBreaker,
		logger:            logger,
		breakers:          make(map[string]CircuitBreaker),
	}
}

// Get fetches uri from the server listening on port. uri may carry an
// http:// or https:// scheme, which is dropped; the path defaults to "/".
func (c *Client) Get(ctx context.Context, uri, port string) (*Result, error) {
	host, path := SplitURI(uri)
	return c.Fetch(ctx, host, port, path)
}

// Fetch connects to host:port, sends "GET path" and reads the response.
//
// Errors returned:
//   - SetupError: the connection could not be established
//   - wire.ConnectionError: the stream failed
//   - wire.PrematureCloseError: the server closed before the response was complete
//   - wire.ParseError: the response could not be framed
//   - gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests: the circuit breaker rejected the fetch
func (c *Client) Fetch(ctx context.Context, host, port, path string) (*Result, error) {
	addr := net.JoinHostPort(host, port)

	cb := c.circuitBreaker(addr)
	if cb == nil {
		return c.fetch(ctx, addr, host, path)
	}
	return cb.Execute(func() (*Result, error) {
		return c.fetch(ctx, addr, host, path)
	})
}

// CircuitBreakerState returns the breaker state for host:port, or
// gobreaker.StateClosed when no breaker exists.
func (c *Client) CircuitBreakerState(host, port string) gobreaker.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok := c.breakers[net.JoinHostPort(host, port)]; ok {
		return cb.State()
	}
	return gobreaker.StateClosed
}

func (c *Client) circuitBreaker(addr string) CircuitBreaker {
	if c.newCircuitBreaker == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cb, ok := c.breakers[addr]
	if !ok {
		cb = c.newCircuitBreaker(addr)
		c.breakers[addr] = cb
	}
	return cb
}

func (c *Client) fetch(ctx context.Context, addr, host, path string) (*Result, error) {
	start := time.Now()
	netConn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &SetupError{Op: "dial", Addr: addr, Err: err}
	}
	connectTime := time.Since(start)

	conn := NewConnection(netConn)
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	c.logger.Debug("httpmsg: connected", "addr", remote, "connect_time", connectTime)

	if err := conn.SendRequest(ctx, host, path); err != nil {
		return nil, err
	}

	framer := wire.NewResponseFramer()
	msg, err := conn.Receive(ctx, framer)
	if err != nil {
		c.logger.Debug("httpmsg: response failed", "addr", remote, "state", framer.State().String(), "error", err)
		return nil, err
	}

	return &Result{
		StatusCode:  framer.StatusCode(),
		StatusLine:  msg.StartLine,
		Header:      msg.Header,
		Body:        msg.Body,
		Mode:        framer.Mode(),
		Received:    msg.Received,
		RemoteAddr:  remote,
		ConnectTime: connectTime,
		Checksum:    xxh3.Hash(msg.Body),
	}, nil
}
