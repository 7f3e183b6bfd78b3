// Package splitter groups scanned statements into size-bounded parts.
package splitter

import (
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/scanner"
)

// PreviewLen is the number of statement bytes shown in progress output
const PreviewLen = 40

// Splitter drives a Scanner and writes each part to a sink
type Splitter struct {
	scanner  *scanner.Scanner
	sinks    SinkFactory
	reporter Reporter
	maxBytes int64

	chunk Chunk
	carry scanner.Statement // nil when there is no carry
}

// New creates a Splitter. A nil reporter disables progress notifications.
func New(sc *scanner.Scanner, sinks SinkFactory, reporter Reporter, maxBytes int64) *Splitter {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Splitter{
		scanner:  sc,
		sinks:    sinks,
		reporter: reporter,
		maxBytes: maxBytes,
	}
}

// Run splits the whole input. It always writes at least one part, even for
// empty input. On error the parts already written stay in place.
func (s *Splitter) Run() (*Result, error) {
	result := &Result{MaxBytes: s.maxBytes}

	for index := 0; ; index++ {
		s.chunk.reset(index)
		if s.carry != nil {
			s.chunk.add(s.carry)
			s.carry = nil
		}

		if err := s.fill(); err != nil {
			return result, err
		}

		info, err := s.flush()
		if err != nil {
			return result, err
		}
		result.Chunks = append(result.Chunks, info)
		result.Statements += info.Statements

		if s.scanner.Done() && s.carry == nil {
			break
		}
	}

	result.InputBytes = s.scanner.Offset()
	return result, nil
}

// fill pulls statements into the current part until it is full or the input ends.
func (s *Splitter) fill() error {
	for !s.scanner.Done() {
		stmt, _, err := s.scanner.Next()
		if err != nil {
			return err
		}

		s.reporter.Statement(s.chunk.Index, s.chunk.Len(), s.maxBytes, stmt.Preview(PreviewLen))

		switch Decide(s.chunk.Len(), stmt.Len(), s.maxBytes) {
		case Reject:
			return &errors.StatementTooLargeError{
				Chunk: s.chunk.Index,
				Size:  stmt.Len(),
				Max:   s.maxBytes,
			}
		case Carry:
			s.carry = stmt
			return nil
		}

		if len(stmt) > 0 {
			s.chunk.add(stmt)
		}
	}
	return nil
}

// flush writes the current part to a freshly opened sink and closes it.
func (s *Splitter) flush() (ChunkInfo, error) {
	name := s.sinks.Name(s.chunk.Index)
	info := ChunkInfo{
		Index:      s.chunk.Index,
		File:       name,
		Bytes:      s.chunk.Len(),
		Statements: s.chunk.Statements,
	}

	logger.Debug("Will write part [%d] to %s", s.chunk.Index, name)
	s.reporter.Flush(s.chunk.Index, s.chunk.Len(), s.maxBytes)

	w, err := s.sinks.Create(s.chunk.Index)
	if err != nil {
		return info, &errors.OutputError{File: name, Err: err}
	}

	_, werr := w.Write(s.chunk.Bytes())
	cerr := w.Close()
	if werr != nil {
		return info, &errors.WriteError{File: name, Err: werr}
	}
	if cerr != nil {
		return info, &errors.WriteError{File: name, Err: cerr}
	}
	return info, nil
}
