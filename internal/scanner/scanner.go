// Package scanner turns a raw SQL dump into a stream of statements.
//
// Statement boundaries are found with a small automaton over single-quoted
// literals and backslash escapes (see Machine). The scanner reads forward
// only and never holds more than the statement being scanned.
//
// Usage:
//
//	s := scanner.New(r, nil)
//	for !s.Done() {
//	    stmt, _, err := s.Next()
//	    if err != nil { ... }
//	    // use stmt
//	}
package scanner

import (
	"bufio"
	"io"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
)

// Ceiling is the absolute maximum statement length. A statement growing past
// it almost always means an unterminated quote rather than real data.
const Ceiling = 1 << 30

const defaultBufSize = 64 * 1024

// Statement is one SQL statement including its terminating ';', if any.
type Statement []byte

// Len returns the statement length in bytes
func (s Statement) Len() int64 { return int64(len(s)) }

// Preview returns at most n leading bytes of the statement with line breaks removed.
func (s Statement) Preview(n int) string {
	if n > len(s) {
		n = len(s)
	}
	out := make([]byte, 0, n)
	for _, c := range s[:n] {
		if c == '\n' || c == '\r' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// Options tune the scanner. A nil *Options selects the defaults.
type Options struct {
	// Name identifies the input in error messages.
	Name string
	// Limit overrides Ceiling when > 0.
	Limit int
	// BufSize is the read buffer size; <= 0 uses 64 KiB.
	BufSize int
}

// Scanner reads statements from an io.Reader.
type Scanner struct {
	r       *bufio.Reader
	name    string
	limit   int
	machine Machine
	offset  int64 // bytes consumed so far
	count   int   // statements returned so far
	done    bool
}

// New returns a Scanner reading from r.
func New(r io.Reader, opts *Options) *Scanner {
	limit := Ceiling
	bufSize := defaultBufSize
	var name string
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		if opts.BufSize > 0 {
			bufSize = opts.BufSize
		}
		name = opts.Name
	}
	return &Scanner{
		r:     bufio.NewReaderSize(r, bufSize),
		name:  name,
		limit: limit,
	}
}

// Offset returns the number of input bytes consumed so far.
func (s *Scanner) Offset() int64 { return s.offset }

// Count returns the number of statements returned so far.
func (s *Scanner) Count() int { return s.count }

// Done reports whether the input is exhausted.
func (s *Scanner) Done() bool { return s.done }

// Next returns the next statement and whether more input remains.
//
// When the input ends before a terminating ';' the accumulated bytes are
// returned as a final unterminated statement with more == false. Calling Next
// after exhaustion returns an empty statement and more == false.
func (s *Scanner) Next() (Statement, bool, error) {
	if s.done {
		return nil, false, nil
	}

	s.machine.Reset()
	var stmt Statement
	start := s.offset

	for {
		c, err := s.r.ReadByte()
		if err == io.EOF {
			s.done = true
			s.count++
			return stmt, false, nil
		}
		if err != nil {
			return nil, false, &errors.InputError{File: s.name, Err: err}
		}

		s.offset++
		stmt = append(stmt, c)
		if len(stmt) > s.limit {
			return nil, false, &errors.ScanOverflowError{
				File:   s.name,
				Offset: start,
				Size:   int64(len(stmt)),
				Limit:  int64(s.limit),
			}
		}

		if s.machine.Step(c) {
			break
		}
	}

	s.count++
	if _, err := s.r.Peek(1); err != nil {
		if err != io.EOF {
			return nil, false, &errors.InputError{File: s.name, Err: err}
		}
		s.done = true
		return stmt, false, nil
	}
	return stmt, true, nil
}
