package splitter

import (
	"io"

	"github.com/cybertec-postgresql/sqlsplit/internal/scanner"
)

// SinkFactory creates the output sink for each part
type SinkFactory interface {
	// Name returns the name of the sink for the given part index.
	Name(index int) string
	// Create opens the sink for the given part index.
	Create(index int) (io.WriteCloser, error)
}

// Reporter receives progress notifications. It is purely observational.
type Reporter interface {
	// Statement is called after each statement is scanned, before it is placed.
	Statement(chunk int, chunkBytes, maxBytes int64, preview string)
	// Flush is called when a part is about to be written.
	Flush(chunk int, chunkBytes, maxBytes int64)
}

// Decision is the outcome of placing a statement into the current part
type Decision int

const (
	Append Decision = iota // statement fits, add it to the part
	Carry                  // part is full, statement starts the next part
	Reject                 // statement alone exceeds the maximum part size
)

// String returns a string representation of Decision
func (d Decision) String() string {
	switch d {
	case Append:
		return "append"
	case Carry:
		return "carry"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Decide places a statement of stmtBytes into a part currently holding
// chunkBytes, given the maximum part size.
func Decide(chunkBytes, stmtBytes, maxBytes int64) Decision {
	switch {
	case stmtBytes > maxBytes:
		return Reject
	case chunkBytes+stmtBytes > maxBytes:
		return Carry
	default:
		return Append
	}
}

// Chunk is the part currently being built
type Chunk struct {
	Index      int
	Statements int
	buf        []byte
}

// Len returns the size of the part in bytes
func (c *Chunk) Len() int64 { return int64(len(c.buf)) }

// Bytes returns the concatenated statements of the part
func (c *Chunk) Bytes() []byte { return c.buf }

func (c *Chunk) add(stmt scanner.Statement) {
	c.buf = append(c.buf, stmt...)
	c.Statements++
}

// reset starts a new part reusing the buffer
func (c *Chunk) reset(index int) {
	c.Index = index
	c.Statements = 0
	c.buf = c.buf[:0]
}

// ChunkInfo describes a part that has been written
type ChunkInfo struct {
	Index      int    `json:"index"`
	File       string `json:"file"`
	Bytes      int64  `json:"bytes"`
	Statements int    `json:"statements"`
}

// Result summarizes a split run
type Result struct {
	MaxBytes   int64       `json:"max_bytes"`
	InputBytes int64       `json:"input_bytes"`
	Statements int         `json:"statements"`
	Chunks     []ChunkInfo `json:"chunks"`
}

// nopReporter discards progress notifications
type nopReporter struct{}

func (nopReporter) Statement(int, int64, int64, string) {}
func (nopReporter) Flush(int, int64, int64)             {}
