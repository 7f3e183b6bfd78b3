package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/manifest"
	"github.com/cybertec-postgresql/sqlsplit/internal/output"
	"github.com/cybertec-postgresql/sqlsplit/internal/progress"
	"github.com/cybertec-postgresql/sqlsplit/internal/scanner"
	"github.com/cybertec-postgresql/sqlsplit/internal/splitter"
)

// Split executes the split workflow. Progress is drawn on stdout unless quiet.
func Split(config *Config, stdout io.Writer) (*splitter.Result, error) {
	startTime := time.Now()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Open input
	input, err := os.Open(config.InputFile)
	if err != nil {
		return nil, &errors.InputError{File: config.InputFile, Err: err}
	}
	defer input.Close()

	logger.Info("Good to go! Will split (%s) to separate files with a maximum size of %d bytes (%s)",
		config.InputFile, config.MaxBytes, HumanSize(config.MaxBytes))

	// Step 2: Wire scanner, sinks and progress
	sc := scanner.New(input, &scanner.Options{Name: config.InputFile})
	sinks := output.NewFiles(config.OutputDir, config.InputFile)
	logger.Debug("Parts will be written to %s", sinks.Dir())

	var reporter splitter.Reporter = progress.Nop{}
	if !config.Quiet {
		reporter = progress.NewBar(stdout, config.BarWidth)
	}

	// Step 3: Split
	result, err := splitter.New(sc, sinks, reporter, config.MaxBytes).Run()
	if err != nil {
		if !config.Quiet {
			fmt.Fprintln(stdout)
		}
		return result, err
	}

	// Step 4: Manifest
	if config.Manifest {
		store := manifest.NewStore(manifest.PathFor(config.OutputDir, config.InputFile))
		if err := store.Save(manifest.FromResult(config.InputFile, result)); err != nil {
			return result, &errors.WriteError{File: store.Path(), Err: err}
		}
		logger.Debug("Manifest written to %s", store.Path())
	}

	// Step 5: Summary
	logger.Info("Split %s (%s, %d statements) into %d part(s) in %v",
		config.InputFile, HumanSize(result.InputBytes), result.Statements, len(result.Chunks),
		time.Since(startTime).Round(time.Millisecond))

	return result, nil
}
