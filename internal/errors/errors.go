package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Process exit statuses, one per failure kind
const (
	ExitSuccess           = 0
	ExitInvalidArguments  = 1
	ExitInputUnavailable  = 2
	ExitScanOverflow      = 3
	ExitOutputUnavailable = 4
	ExitWriteFailure      = 5
	ExitStatementTooLarge = 6
	ExitUnknown           = 7
	ExitConnection        = 8
	ExitLoadFailure       = 9
)

// ExitCoder is implemented by errors that map to a process exit status
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitCode returns the exit status for err
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder ExitCoder
	if stderrors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitUnknown
}

// InputError represents a failure to open or read the input dump
type InputError struct {
	File string
	Err  error
}

func (e *InputError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("can't read input: %v", e.Err)
	}
	return fmt.Sprintf("can't open file (%s) for reading: %v", e.File, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ExitCode implements ExitCoder
func (e *InputError) ExitCode() int { return ExitInputUnavailable }

// OutputError represents a failure to create an output part
type OutputError struct {
	File string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to open (%s) for writing: %v", e.File, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// ExitCode implements ExitCoder
func (e *OutputError) ExitCode() int { return ExitOutputUnavailable }

// WriteError represents a failed write to an output part
type WriteError struct {
	File string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to output file (%s): %v", e.File, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ExitCode implements ExitCoder
func (e *WriteError) ExitCode() int { return ExitWriteFailure }

// StatementTooLargeError is returned when a single statement can't fit in any part
type StatementTooLargeError struct {
	Chunk int   // index of the part being built
	Size  int64 // statement length in bytes
	Max   int64 // configured maximum part size
}

func (e *StatementTooLargeError) Error() string {
	return fmt.Sprintf("smallest statement is bigger (%d) than given bytesize (%d) in part %d",
		e.Size, e.Max, e.Chunk)
}

// ExitCode implements ExitCoder
func (e *StatementTooLargeError) ExitCode() int { return ExitStatementTooLarge }

// ScanOverflowError is returned when a statement grows past the scanner ceiling.
// It usually points at an unterminated quote.
type ScanOverflowError struct {
	File   string
	Offset int64 // input offset where the statement started
	Size   int64
	Limit  int64
}

func (e *ScanOverflowError) Error() string {
	return fmt.Sprintf("too long statement at offset %d in %q: %d bytes exceed the internal limit of %d, probably an unterminated quote",
		e.Offset, e.File, e.Size, e.Limit)
}

// ExitCode implements ExitCoder
func (e *ScanOverflowError) ExitCode() int { return ExitScanOverflow }

// ConnectionError represents PostgreSQL connection failure
type ConnectionError struct {
	Message    string
	Suggestion string
}

func (e *ConnectionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s\nSuggestion: %s", e.Message, e.Suggestion)
	}
	return e.Message
}

// ExitCode implements ExitCoder
func (e *ConnectionError) ExitCode() int { return ExitConnection }

// LoadError represents a failure while replaying a part into PostgreSQL
type LoadError struct {
	File     string
	SQLError *pgconn.PgError // PostgreSQL error details
	Err      error
}

func (e *LoadError) Error() string {
	if e.SQLError != nil {
		return fmt.Sprintf("loading %s failed: [%s] %s", e.File, e.SQLError.Code, e.SQLError.Message)
	}
	return fmt.Sprintf("loading %s failed: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ExitCode implements ExitCoder
func (e *LoadError) ExitCode() int { return ExitLoadFailure }

// NewLoadError creates a LoadError and extracts server details when available
func NewLoadError(file string, err error) *LoadError {
	loadErr := &LoadError{File: file, Err: err}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		loadErr.SQLError = pgErr
	}
	return loadErr
}
