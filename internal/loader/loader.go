// Package loader replays the parts of a split dump into PostgreSQL.
package loader

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Execer runs SQL text on a single connection. *pgxpool.Conn and *pgx.Conn
// satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Loader executes parts in index order.
//
// Each part is sent as one simple-protocol query, so PostgreSQL runs it in an
// implicit transaction unless the part contains its own transaction control.
// With singleTx all parts share one explicit transaction.
type Loader struct {
	db       Execer
	singleTx bool
}

// New creates a Loader on db
func New(db Execer, singleTx bool) *Loader {
	return &Loader{db: db, singleTx: singleTx}
}

// Load replays all parts and stops at the first failure
func (l *Loader) Load(ctx context.Context, parts []discovery.DiscoveredFile) ([]*PartRun, error) {
	if l.singleTx {
		if _, err := l.db.Exec(ctx, "BEGIN"); err != nil {
			return nil, errors.NewLoadError("BEGIN", err)
		}
	}

	var runs []*PartRun
	for i := range parts {
		run := l.loadPart(ctx, &parts[i])
		runs = append(runs, run)

		if run.Status == PartFailed {
			if l.singleTx {
				// keep the part error, not the rollback error
				_, _ = l.db.Exec(context.Background(), "ROLLBACK")
			}
			return runs, run.Error
		}
	}

	if l.singleTx {
		if _, err := l.db.Exec(ctx, "COMMIT"); err != nil {
			return runs, errors.NewLoadError("COMMIT", err)
		}
	}

	return runs, nil
}

// loadPart executes a single part
func (l *Loader) loadPart(ctx context.Context, part *discovery.DiscoveredFile) *PartRun {
	run := &PartRun{
		Part:      part,
		StartTime: time.Now(),
		Status:    PartPending,
	}
	defer func() { run.EndTime = time.Now() }()

	data, err := os.ReadFile(part.Path)
	if err != nil {
		run.Status = PartFailed
		run.Error = &errors.InputError{File: part.Path, Err: err}
		return run
	}

	if strings.TrimSpace(string(data)) == "" {
		logger.Debug("Skipping empty part [%d] %s", part.Index, part.RelativePath)
		run.Status = PartSkipped
		return run
	}

	if err := ctx.Err(); err != nil {
		run.Status = PartFailed
		run.Error = errors.NewLoadError(part.RelativePath, err)
		return run
	}

	if _, err := l.db.Exec(ctx, string(data)); err != nil {
		run.Status = PartFailed
		run.Error = errors.NewLoadError(part.RelativePath, err)
		logger.With(zap.Int("part", part.Index), zap.String("file", part.RelativePath), zap.Error(err)).
			Error("Part failed")
		return run
	}

	run.Status = PartLoaded
	logger.Debug("Loaded part [%d] %s (%d bytes)", part.Index, part.RelativePath, part.Size)
	return run
}
