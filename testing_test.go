package httpmsg

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pior/httpmsg/wire"
	"github.com/stretchr/testify/require"
)

// createListener starts a raw TCP server calling handler for every
// connection and returns its host and port.
func createListener(t testing.TB, handler func(conn net.Conn)) (string, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() {
		listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	host, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	return host, port
}

// scriptedServer answers every request with the given chunks, written one
// by one with a short pause so they arrive as separate reads.
func scriptedServer(t testing.TB, chunks ...string) (string, string) {
	return createListener(t, func(conn net.Conn) {
		if _, err := wire.ReadRequest(conn); err != nil {
			return
		}
		for _, c := range chunks {
			if _, err := io.WriteString(conn, c); err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	})
}

// startServer runs a Server on a loopback port until the test ends.
func startServer(t testing.TB, config ServerConfig) (*Server, string) {
	t.Helper()

	server, err := NewServer(config)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(context.Background(), listener)
	}()

	t.Cleanup(func() {
		server.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return server, listener.Addr().String()
}

// rawExchange sends a raw request and returns everything the server sends
// back before closing the connection.
func rawExchange(t testing.TB, addr, request string) string {
	t.Helper()

	resp, err := exchange(addr, request)
	require.NoError(t, err)
	return resp
}

func exchange(addr, request string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.WriteString(conn, request); err != nil {
		return "", err
	}

	data, err := io.ReadAll(conn)
	return string(data), err
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":      {Data: []byte("<html><body>hello</body></html>")},
		"empty.txt":       {Data: []byte{}},
		"docs/readme.txt": {Data: []byte(strings.Repeat("0123456789", 1000))},
	}
}
