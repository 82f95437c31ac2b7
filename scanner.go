package sshlines

import (
	"context"
	"io"
)

// Scanner scans lines from a stream of remote command output
type Scanner struct {
	opts    *Options
	name    string
	r       io.Reader
	lb      LineBuffer
	readBuf []byte

	// lines from the last read, packed into arena and delimited by ends
	arena []byte
	ends  []int
	next  int

	line []byte
	err  error
}

// NewScanner returns a Scanner reading from r. name only appears in debug
// logs.
func NewScanner(r io.Reader, name string, opts *Options) *Scanner {
	opts = opts.withDefaults()
	opts.Log.debugf("reading output from %s, buffer size %d", name, opts.BufferSize)
	return &Scanner{
		opts:    opts,
		name:    name,
		r:       r,
		readBuf: make([]byte, opts.BufferSize),
	}
}

func (s *Scanner) collect(line []byte) {
	s.arena = append(s.arena, line...)
	s.ends = append(s.ends, len(s.arena))
}

func (s *Scanner) fill() error {
	s.arena = s.arena[:0]
	s.ends = s.ends[:0]
	s.next = 0
	n, err := s.r.Read(s.readBuf)
	if n > 0 {
		s.lb.Feed(s.readBuf[:n], s.collect)
	}
	if err != nil {
		s.lb.Flush(s.collect)
	}
	return err
}

func (s *Scanner) filterLine(line []byte) bool {
	for _, filter := range s.opts.Filters {
		if !filter(line) {
			return false
		}
	}
	return true
}

// Scan advances to the next line. It returns false at the end of the stream,
// on a read error or when ctx is done.
func (s *Scanner) Scan(ctx context.Context) bool {
	for {
		if ctx.Err() != nil {
			s.err = ctx.Err()
			return false
		}
		if s.next < len(s.ends) {
			var start int
			if s.next > 0 {
				start = s.ends[s.next-1]
			}
			s.line = s.arena[start:s.ends[s.next]]
			s.next++
			if s.filterLine(s.line) {
				return true
			}
			continue
		}
		s.line = nil
		if s.err != nil {
			return false
		}
		s.err = s.fill()
		if s.err != nil && s.err != io.EOF {
			s.opts.Log.debugf("reading %s: %v", s.name, s.err)
		}
	}
}

// Bytes returns the current line. It is only valid until the next call to Scan.
func (s *Scanner) Bytes() []byte {
	return s.line
}

// Err returns the scanner's error. It is nil at the end of the stream.
func (s *Scanner) Err() error {
	err := s.err
	if err == io.EOF {
		err = nil
	}
	return err
}
