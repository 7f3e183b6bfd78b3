package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/database"
	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/loader"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/manifest"
)

// Load replays the parts of a split dump into PostgreSQL
func Load(ctx context.Context, config *Config) (*loader.Summary, error) {
	startTime := time.Now()

	if err := config.ValidateLoad(); err != nil {
		return nil, err
	}

	// Step 1: Discover parts
	parts, err := discovery.DiscoverParts(config.OutputDir, config.InputFile)
	if err != nil {
		return nil, &errors.InputError{File: config.OutputDir, Err: err}
	}
	logger.Debug("Found %d part(s) of %s", len(parts), filepath.Base(config.InputFile))

	// Step 2: Check parts against the manifest, if one was written
	store := manifest.NewStore(manifest.PathFor(config.OutputDir, config.InputFile))
	if store.Exists() {
		m, err := store.Load()
		if err != nil {
			return nil, &errors.InputError{File: store.Path(), Err: err}
		}
		if len(m.Parts) != len(parts) {
			return nil, &errors.InputError{
				File: store.Path(),
				Err:  fmt.Errorf("manifest lists %d part(s), found %d", len(m.Parts), len(parts)),
			}
		}
		if err := m.Verify(config.OutputDir); err != nil {
			return nil, &errors.InputError{File: store.Path(), Err: err}
		}
		logger.Debug("Parts match manifest %s", store.Path())
	}

	// Step 3: Connect to PostgreSQL
	pool, err := database.NewPool(ctx, config)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	if version, err := pool.ServerVersion(ctx); err == nil {
		logger.Info("Connected to PostgreSQL %s", version)
	}

	if config.CreateDatabase != "" {
		target, err := database.CreateDatabase(ctx, pool, config.CreateDatabase)
		if err != nil {
			return nil, err
		}
		defer target.Close()
		logger.Info("Created database %s", config.CreateDatabase)
		pool = target
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, &errors.ConnectionError{Message: fmt.Sprintf("failed to acquire connection: %v", err)}
	}
	defer conn.Release()

	// Step 4: Replay
	runs, err := loader.New(conn, config.SingleTransaction).Load(ctx, parts)
	summary := loader.Summarize(runs)
	if err != nil {
		return summary, err
	}

	logger.Info("Loaded %d part(s) (%s), skipped %d empty, in %v",
		summary.LoadedParts, HumanSize(summary.LoadedBytes), summary.SkippedParts,
		time.Since(startTime).Round(time.Millisecond))

	return summary, nil
}
