package httpmsg

import (
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pior/httpmsg/wire"
	"github.com/zeebo/xxh3"
)

// Handler produces the response for a parsed request line.
type Handler interface {
	Handle(req wire.RequestLine) *wire.Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(req wire.RequestLine) *wire.Response

func (f HandlerFunc) Handle(req wire.RequestLine) *wire.Response {
	return f(req)
}

// FileHandler serves files from FS.
//
//   - method other than GET: 405
//   - version other than HTTP/1.1: 505
//   - URI naming a readable file (leading "/" stripped): 200 with the file contents
//   - anything else: 404
//
// Paths are resolved by fs.FS rules, so ".." and absolute paths never
// leave FS and end up as 404.
type FileHandler struct {
	FS     fs.FS
	Logger *slog.Logger
}

func (h *FileHandler) Handle(req wire.RequestLine) *wire.Response {
	if req.Method != wire.MethodGet {
		return wire.NewResponse(wire.StatusMethodNotAllowed)
	}
	if req.Version != wire.Version {
		return wire.NewResponse(wire.StatusHTTPVersionNotSupported)
	}

	name := strings.TrimPrefix(req.URI, "/")
	body, err := fs.ReadFile(h.FS, name)
	if err != nil {
		h.logger().Debug("httpmsg: file not served", "path", name, "error", err)
		return wire.NewResponse(wire.StatusNotFound)
	}

	h.logger().Debug("httpmsg: serving file", "path", name, "size", len(body), "xxh3", xxh3.Hash(body))
	return wire.NewResponseWithBody(wire.StatusOK, body)
}

func (h *FileHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
