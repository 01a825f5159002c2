package wire

import "bytes"

// FindLineEnd returns the offset of the first CRLF in buf, or -1.
func FindLineEnd(buf []byte) int {
	return bytes.Index(buf, crlfBytes)
}

// FindHeaderEnd returns the offset of the first CRLFCRLF in buf, or -1.
// The body begins at offset+4.
func FindHeaderEnd(buf []byte) int {
	return bytes.Index(buf, crlfcrlfBytes)
}

// HeaderValue looks up name in a raw header block.
//
// A header line matches when it starts with name immediately followed by
// ':'. Names compare ASCII case-insensitively and the first matching line
// wins. Spaces and tabs around the value are stripped; the value ends at
// the next CRLF or at the end of the block. Duplicate headers and line
// folding get no special treatment.
func HeaderValue(block []byte, name string) (string, bool) {
	rest := block
	for len(rest) > 0 {
		line := rest
		if i := FindLineEnd(rest); i >= 0 {
			line, rest = rest[:i], rest[i+len(CRLF):]
		} else {
			rest = nil
		}

		if len(line) <= len(name) || line[len(name)] != ':' {
			continue
		}
		if !bytes.EqualFold(line[:len(name)], []byte(name)) {
			continue
		}
		return string(bytes.Trim(line[len(name)+1:], " \t")), true
	}
	return "", false
}
