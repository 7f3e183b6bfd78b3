package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"input", &InputError{File: "dump.sql", Err: io.ErrUnexpectedEOF}, ExitInputUnavailable},
		{"scan overflow", &ScanOverflowError{Size: 11, Limit: 10}, ExitScanOverflow},
		{"output", &OutputError{File: "dump-00000.sql", Err: io.ErrClosedPipe}, ExitOutputUnavailable},
		{"write", &WriteError{File: "dump-00000.sql", Err: io.ErrShortWrite}, ExitWriteFailure},
		{"statement too large", &StatementTooLargeError{Size: 50, Max: 30}, ExitStatementTooLarge},
		{"connection", &ConnectionError{Message: "refused"}, ExitConnection},
		{"load", NewLoadError("dump-00001.sql", io.EOF), ExitLoadFailure},
		{"wrapped", fmt.Errorf("split: %w", &WriteError{File: "x", Err: io.ErrShortWrite}), ExitWriteFailure},
		{"plain", stderrors.New("boom"), ExitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

func TestExitCodesAreDistinct(t *testing.T) {
	codes := []int{
		ExitSuccess, ExitInvalidArguments, ExitInputUnavailable, ExitScanOverflow,
		ExitOutputUnavailable, ExitWriteFailure, ExitStatementTooLarge, ExitUnknown,
		ExitConnection, ExitLoadFailure,
	}
	seen := make(map[int]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("exit code %d used twice", c)
		}
		seen[c] = true
	}
}

func TestStatementTooLargeError_Message(t *testing.T) {
	err := &StatementTooLargeError{Chunk: 2, Size: 50, Max: 30}
	msg := err.Error()
	for _, want := range []string{"50", "30", "part 2"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in error message, got: %s", want, msg)
		}
	}
}

func TestUnwrap(t *testing.T) {
	err := &OutputError{File: "out.sql", Err: io.ErrClosedPipe}
	if !stderrors.Is(err, io.ErrClosedPipe) {
		t.Error("expected OutputError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "out.sql") {
		t.Errorf("expected file name in error, got: %s", err.Error())
	}
}

func TestNewLoadError_ExtractsPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "t" does not exist`}
	err := NewLoadError("dump-00003.sql", fmt.Errorf("exec: %w", pgErr))

	if err.SQLError == nil {
		t.Fatal("expected SQLError to be set")
	}
	if err.SQLError.Code != "42P01" {
		t.Errorf("expected code 42P01, got %s", err.SQLError.Code)
	}
	if !strings.Contains(err.Error(), "dump-00003.sql") || !strings.Contains(err.Error(), "42P01") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
