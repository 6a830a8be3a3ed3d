package core

import "bytes"

// NormalizeLineEndings strips every trailing carriage return from each line,
// including a final line without a newline. The result never contains a
// carriage return directly before a line break or at end of input, so
// NormalizeLineEndings(NormalizeLineEndings(b)) equals NormalizeLineEndings(b).
func NormalizeLineEndings(data []byte) []byte {
	if bytes.IndexByte(data, '\r') < 0 {
		return append([]byte(nil), data...)
	}
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, "\r")
	}
	return bytes.Join(lines, []byte("\n"))
}

// HasCanonicalLineEndings reports whether data is already normalized.
func HasCanonicalLineEndings(data []byte) bool {
	return bytes.Equal(data, NormalizeLineEndings(data))
}

// LineEndingStats counts CRLF and bare LF terminators in data.
func LineEndingStats(data []byte) (crlf int, lf int) {
	crlf = bytes.Count(data, []byte("\r\n"))
	lf = bytes.Count(data, []byte("\n")) - crlf
	return crlf, lf
}

// HasShebang reports whether data starts with an interpreter line.
func HasShebang(data []byte) bool {
	return bytes.HasPrefix(data, []byte("#!"))
}
