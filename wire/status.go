package wire

import (
	"strconv"
	"strings"
)

// ParseStatusCode extracts the numeric code from a status line of the form
// "<version> <code> <reason>". Runs of whitespace between fields are
// accepted and only the leading digits of the code field count.
// Returns 0 when no code can be found.
func ParseStatusCode(line string) int {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}

	code := fields[1]
	end := 0
	for end < len(code) && code[end] >= '0' && code[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(code[:end])
	if err != nil {
		return 0
	}
	return n
}

// NoBody reports whether a response with this status code never carries a
// body, whatever its framing headers claim.
func NoBody(code int) bool {
	return code == StatusNoContent || code == StatusNotModified || code/100 == 1
}

// StatusText returns the reason phrase sent with code, or "" if the server
// never sends that code.
func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	case StatusHTTPVersionNotSupported:
		return "HTTP Version Not Supported"
	}
	return ""
}

// RequestLine is the parsed start line of a request.
type RequestLine struct {
	Method  string
	URI     string
	Version string
}

// ParseRequestLine splits a request line on whitespace. Missing fields are
// left empty; extra fields are ignored.
func ParseRequestLine(line string) RequestLine {
	var rl RequestLine
	fields := strings.Fields(line)
	if len(fields) > 0 {
		rl.Method = fields[0]
	}
	if len(fields) > 1 {
		rl.URI = fields[1]
	}
	if len(fields) > 2 {
		rl.Version = fields[2]
	}
	return rl
}

func (rl RequestLine) String() string {
	return rl.Method + " " + rl.URI + " " + rl.Version
}
