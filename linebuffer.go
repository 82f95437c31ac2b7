package sshlines

// LineBuffer joins chunks of a stream into complete lines. The zero value is
// ready to use.
type LineBuffer struct {
	pending []byte
}

// Feed adds chunk to the buffer and calls emit for every complete line,
// terminator excluded. The slice passed to emit is only valid during the call.
//
// A '\n' that ends the buffered data is held back until the next byte is
// known, so a "\n\r" split across two chunks is still one terminator.
func (b *LineBuffer) Feed(chunk []byte, emit func(line []byte)) {
	data := chunk
	if len(b.pending) > 0 {
		b.pending = append(b.pending, chunk...)
		data = b.pending
	}
	var pos int
	for {
		eol, ok := FindEOL(data, pos)
		if !ok {
			break
		}
		if eol.Advance == 1 && eol.Next(pos) == len(data) {
			break
		}
		emit(data[pos : pos+eol.Length])
		pos = eol.Next(pos)
	}
	b.pending = append(b.pending[:0], data[pos:]...)
}

// Flush emits whatever is left in the buffer as a final line and resets it.
// Nothing is emitted when the buffer is empty.
func (b *LineBuffer) Flush(emit func(line []byte)) {
	if len(b.pending) == 0 {
		return
	}
	line := b.pending
	if line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	emit(line)
	b.pending = b.pending[:0]
}

// Buffered returns the number of bytes waiting for a terminator.
func (b *LineBuffer) Buffered() int {
	return len(b.pending)
}
