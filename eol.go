package sshlines

import "bytes"

// EOL describes the end of a line found by FindEOL.
type EOL struct {
	// Length is the number of content bytes from the scan position up to,
	// not including, the terminator.
	Length int
	// Advance is the terminator's width: 1 for "\n", 2 for "\r\n" or "\n\r".
	Advance int
}

// Next returns the position where the following line starts when this line
// started at pos.
func (e EOL) Next(pos int) int {
	return pos + e.Length + e.Advance
}

// FindEOL finds the end of the line starting at data[pos]. ok is false when
// data[pos:] holds no '\n', which is the normal state while a line is still
// arriving.
//
// "\n", "\r\n" and "\n\r" are terminators. A '\r' before the '\n' wins over
// one after it, so "\r\n\r" consumes two bytes and leaves the last '\r' for
// the next call. A lone '\r' is never a terminator. Null bytes are ordinary
// data. data is neither copied nor modified.
func FindEOL(data []byte, pos int) (eol EOL, ok bool) {
	if pos < 0 || pos >= len(data) {
		return EOL{}, false
	}
	idx := bytes.IndexByte(data[pos:], '\n')
	if idx == -1 {
		return EOL{}, false
	}
	nl := pos + idx

	// the look-behind stays inside data[pos:]
	if nl > pos && data[nl-1] == '\r' {
		return EOL{Length: idx - 1, Advance: 2}, true
	}
	if nl+1 < len(data) && data[nl+1] == '\r' {
		return EOL{Length: idx, Advance: 2}, true
	}
	return EOL{Length: idx, Advance: 1}, true
}
