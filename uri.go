package httpmsg

import "strings"

// Schemes stripped by SplitURI.
const (
	schemeHTTP  = "http://"
	schemeHTTPS = "https://"
)

// SplitURI splits a URL or bare host into the host and the path to request.
// The scheme is dropped and the path defaults to "/".
//
//	SplitURI("http://example.com/test") // "example.com", "/test"
//	SplitURI("example.com")             // "example.com", "/"
func SplitURI(uri string) (host, path string) {
	if rest, ok := strings.CutPrefix(uri, schemeHTTPS); ok {
		uri = rest
	} else if rest, ok := strings.CutPrefix(uri, schemeHTTP); ok {
		uri = rest
	}

	i := strings.IndexByte(uri, '/')
	if i < 0 {
		return uri, "/"
	}
	return uri[:i], uri[i:]
}
