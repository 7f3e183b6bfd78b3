package splitter

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/scanner"
)

// memSinks keeps every part in memory
type memSinks struct {
	parts     []*bytes.Buffer
	closed    int
	failAt    int // Create fails for this index when >= 0
	writeFail int // Write fails for this index when >= 0
}

func newMemSinks() *memSinks { return &memSinks{failAt: -1, writeFail: -1} }

func (m *memSinks) Name(index int) string { return fmt.Sprintf("part-%05d.sql", index) }

func (m *memSinks) Create(index int) (io.WriteCloser, error) {
	if index == m.failAt {
		return nil, io.ErrClosedPipe
	}
	buf := &bytes.Buffer{}
	m.parts = append(m.parts, buf)
	return &memSink{buf: buf, owner: m, fail: index == m.writeFail}, nil
}

func (m *memSinks) strings() []string {
	out := make([]string, len(m.parts))
	for i, p := range m.parts {
		out[i] = p.String()
	}
	return out
}

type memSink struct {
	buf   *bytes.Buffer
	owner *memSinks
	fail  bool
}

func (s *memSink) Write(p []byte) (int, error) {
	if s.fail {
		return 0, io.ErrShortWrite
	}
	return s.buf.Write(p)
}

func (s *memSink) Close() error {
	s.owner.closed++
	return nil
}

// recorder captures progress notifications
type recorder struct {
	statements []int64
	flushes    []int64
}

func (r *recorder) Statement(chunk int, chunkBytes, maxBytes int64, preview string) {
	r.statements = append(r.statements, chunkBytes)
}

func (r *recorder) Flush(chunk int, chunkBytes, maxBytes int64) {
	r.flushes = append(r.flushes, chunkBytes)
}

func split(t *testing.T, input string, maxBytes int64) (*memSinks, *Result, error) {
	t.Helper()
	sinks := newMemSinks()
	sc := scanner.New(strings.NewReader(input), nil)
	result, err := New(sc, sinks, nil, maxBytes).Run()
	return sinks, result, err
}

func TestDecide(t *testing.T) {
	tests := []struct {
		chunk, stmt, max int64
		want             Decision
	}{
		{0, 10, 30, Append},
		{20, 10, 30, Append},
		{25, 27, 30, Carry},
		{0, 31, 30, Reject},
		{10, 31, 30, Reject},
		{0, 0, 30, Append},
		{30, 0, 30, Append},
		{30, 1, 30, Carry},
	}

	for _, tt := range tests {
		if got := Decide(tt.chunk, tt.stmt, tt.max); got != tt.want {
			t.Errorf("Decide(%d, %d, %d) = %s, want %s", tt.chunk, tt.stmt, tt.max, got, tt.want)
		}
	}
}

func TestRun_Scenario(t *testing.T) {
	input := "INSERT INTO a VALUES (1);INSERT INTO a VALUES ('x;y');"
	sinks, result, err := split(t, input, 30)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := sinks.strings()
	want := []string{"INSERT INTO a VALUES (1);", "INSERT INTO a VALUES ('x;y');"}
	if len(got) != len(want) {
		t.Fatalf("expected %d parts, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if result.Statements != 2 {
		t.Errorf("expected 2 statements, got %d", result.Statements)
	}
	if result.Chunks[0].Bytes != 25 || result.Chunks[1].Bytes != 29 {
		t.Errorf("unexpected part sizes: %+v", result.Chunks)
	}
	if result.Chunks[1].File != "part-00001.sql" {
		t.Errorf("expected part-00001.sql, got %s", result.Chunks[1].File)
	}
	if result.InputBytes != int64(len(input)) {
		t.Errorf("expected %d input bytes, got %d", len(input), result.InputBytes)
	}
	if sinks.closed != 2 {
		t.Errorf("expected 2 closed sinks, got %d", sinks.closed)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	sinks, result, err := split(t, "", 30)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sinks.parts) != 1 {
		t.Fatalf("expected exactly one part, got %d", len(sinks.parts))
	}
	if sinks.parts[0].Len() != 0 {
		t.Errorf("expected an empty part, got %q", sinks.parts[0].String())
	}
	if result.Chunks[0].Statements != 0 {
		t.Errorf("expected zero statements, got %d", result.Chunks[0].Statements)
	}
}

func TestRun_StatementTooLarge(t *testing.T) {
	input := strings.Repeat("x", 49) + ";"
	sinks, _, err := split(t, input, 30)

	var tooLarge *errors.StatementTooLargeError
	if !stderrors.As(err, &tooLarge) {
		t.Fatalf("expected StatementTooLargeError, got %T (%v)", err, err)
	}
	if tooLarge.Size != 50 || tooLarge.Max != 30 {
		t.Errorf("expected size 50 / max 30, got %d / %d", tooLarge.Size, tooLarge.Max)
	}
	if len(sinks.parts) != 0 {
		t.Errorf("expected no parts, got %d", len(sinks.parts))
	}
}

func TestRun_StatementTooLargeKeepsEarlierParts(t *testing.T) {
	input := "SELECT 1;SELECT 2;" + strings.Repeat("y", 40) + ";"
	sinks, result, err := split(t, input, 10)

	if errors.ExitCode(err) != errors.ExitStatementTooLarge {
		t.Fatalf("expected StatementTooLarge, got %v", err)
	}
	if len(sinks.parts) != 1 || sinks.parts[0].String() != "SELECT 1;" {
		t.Errorf("expected first part to be flushed, got %q", sinks.strings())
	}
	if len(result.Chunks) != 1 {
		t.Errorf("expected one chunk in result, got %d", len(result.Chunks))
	}
}

func TestRun_CarryOfFinalStatement(t *testing.T) {
	// the unterminated tail does not fit next to the first statement
	input := "SELECT 1;SELECT 22"
	sinks, _, err := split(t, input, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := sinks.strings()
	if len(got) != 2 || got[0] != "SELECT 1;" || got[1] != "SELECT 22" {
		t.Errorf("unexpected parts: %q", got)
	}
}

func TestRun_ExactFit(t *testing.T) {
	sinks, _, err := split(t, "SELECT 1;SELECT 2;", 18)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sinks.parts) != 1 {
		t.Errorf("expected one part, got %q", sinks.strings())
	}
}

func TestRun_OutputError(t *testing.T) {
	sinks := newMemSinks()
	sinks.failAt = 1
	sc := scanner.New(strings.NewReader("SELECT 1;SELECT 2;SELECT 3;"), nil)
	_, err := New(sc, sinks, nil, 10).Run()

	var outErr *errors.OutputError
	if !stderrors.As(err, &outErr) {
		t.Fatalf("expected OutputError, got %T (%v)", err, err)
	}
	if outErr.File != "part-00001.sql" {
		t.Errorf("expected part-00001.sql, got %s", outErr.File)
	}
	if len(sinks.parts) != 1 {
		t.Errorf("expected part 0 to be kept, got %d parts", len(sinks.parts))
	}
}

func TestRun_WriteErrorClosesSink(t *testing.T) {
	sinks := newMemSinks()
	sinks.writeFail = 0
	sc := scanner.New(strings.NewReader("SELECT 1;"), nil)
	_, err := New(sc, sinks, nil, 10).Run()

	if errors.ExitCode(err) != errors.ExitWriteFailure {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if sinks.closed != 1 {
		t.Errorf("expected sink to be closed after failure, got %d closes", sinks.closed)
	}
}

func TestRun_ScanOverflow(t *testing.T) {
	sinks := newMemSinks()
	sc := scanner.New(strings.NewReader("SELECT 'unterminated;"), &scanner.Options{Limit: 8})
	_, err := New(sc, sinks, nil, 100).Run()

	if errors.ExitCode(err) != errors.ExitScanOverflow {
		t.Fatalf("expected ScanOverflowError, got %v", err)
	}
	if len(sinks.parts) != 0 {
		t.Errorf("expected no parts, got %d", len(sinks.parts))
	}
}

func TestRun_Reporter(t *testing.T) {
	rec := &recorder{}
	sc := scanner.New(strings.NewReader("SELECT 1;SELECT 2;SELECT 3;"), nil)
	_, err := New(sc, newMemSinks(), rec, 20).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantStatements := []int64{0, 9, 18}
	if fmt.Sprint(rec.statements) != fmt.Sprint(wantStatements) {
		t.Errorf("expected statement notifications %v, got %v", wantStatements, rec.statements)
	}
	wantFlushes := []int64{18, 9}
	if fmt.Sprint(rec.flushes) != fmt.Sprint(wantFlushes) {
		t.Errorf("expected flush notifications %v, got %v", wantFlushes, rec.flushes)
	}
}

// randomDump builds a dump with quoted literals, escapes and embedded terminators.
func randomDump(r *rand.Rand, n int) string {
	fragments := []string{
		"INSERT INTO t VALUES (1, 'a;b');",
		`INSERT INTO t VALUES (2, 'it\'s');`,
		"UPDATE t SET v = 'x' WHERE id = 3;",
		"\n",
		"-- comment\n",
		`SELECT 'back\\slash';`,
		"DELETE FROM t;",
		"SELECT ';;;';",
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(fragments[r.Intn(len(fragments))])
	}
	return sb.String()
}

func TestRun_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		input := randomDump(r, r.Intn(200))
		maxBytes := int64(200 + r.Intn(400))

		sinks, result, err := split(t, input, maxBytes)
		if errors.ExitCode(err) == errors.ExitStatementTooLarge {
			// a long run of comments glued to one statement
			continue
		}
		if err != nil {
			t.Fatalf("case %d: Run() error = %v", i, err)
		}

		// lossless
		if joined := strings.Join(sinks.strings(), ""); joined != input {
			t.Fatalf("case %d: parts do not reproduce the input", i)
		}

		for j, part := range sinks.strings() {
			// size bound
			if int64(len(part)) > maxBytes {
				t.Errorf("case %d: part %d has %d bytes, max %d", i, j, len(part), maxBytes)
			}
			// every part except possibly the last ends on a statement boundary
			if j < len(sinks.parts)-1 && len(part) > 0 {
				stmts := rescan(t, part)
				last := stmts[len(stmts)-1]
				if !strings.HasSuffix(last, ";") {
					t.Errorf("case %d: part %d ends inside a statement: %q", i, j, last)
				}
			}
		}

		// deterministic
		again, _, err := split(t, input, maxBytes)
		if err != nil {
			t.Fatalf("case %d: second Run() error = %v", i, err)
		}
		if fmt.Sprint(again.strings()) != fmt.Sprint(sinks.strings()) {
			t.Errorf("case %d: split is not deterministic", i)
		}

		if len(result.Chunks) != len(sinks.parts) {
			t.Errorf("case %d: result lists %d chunks, %d parts written", i, len(result.Chunks), len(sinks.parts))
		}
		for j, c := range result.Chunks {
			if c.Index != j {
				t.Errorf("case %d: chunk %d has index %d", i, j, c.Index)
			}
		}
	}
}

func rescan(t *testing.T, s string) []string {
	t.Helper()
	sc := scanner.New(strings.NewReader(s), nil)
	var out []string
	for {
		stmt, more, err := sc.Next()
		if err != nil {
			t.Fatalf("rescan error = %v", err)
		}
		out = append(out, string(stmt))
		if !more {
			return out
		}
	}
}
