package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cybertec-postgresql/sqlsplit/internal/cli"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	urfavecli "github.com/urfave/cli/v3"
)

const version = "1.0.0"

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(ctx, args)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return errors.ExitCode(err)
	}
	return errors.ExitSuccess
}

// ignoreExitErr stops urfave from exiting on ExitCoder errors; run reports them
func ignoreExitErr(context.Context, *urfavecli.Command, error) {}

func newApp(stdout, stderr io.Writer) *urfavecli.Command {
	return &urfavecli.Command{
		Name:           "sqlsplit",
		Usage:          "Split a SQL dump into parts no larger than a byte limit",
		Version:        version,
		ArgsUsage:      "<input file> <maximum output file size in bytes> [output bar width]",
		Action:         splitCommand,
		OnUsageError:   usageError,
		ExitErrHandler: ignoreExitErr,
		Writer:         stdout,
		ErrWriter:      stderr,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory receiving the parts",
				Sources: urfavecli.EnvVars("SQLSPLIT_OUTPUT_DIR"),
			},
			&urfavecli.IntFlag{
				Name:  "bar-width",
				Usage: "Progress bar width (overridden by the third argument)",
			},
			&urfavecli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Disable the progress bar",
			},
			&urfavecli.BoolFlag{
				Name:  "manifest",
				Usage: "Write <name>.manifest.json describing the parts",
			},
			&urfavecli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug output",
			},
		},
		Commands: []*urfavecli.Command{
			{
				Name:           "load",
				Usage:          "Replay the parts of a split dump into PostgreSQL",
				ArgsUsage:      "<input file>",
				Action:         loadCommand,
				OnUsageError:   usageError,
				ExitErrHandler: ignoreExitErr,
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:    "connection",
						Aliases: []string{"c"},
						Usage:   "PostgreSQL connection string (URI or key=value format). Supports standard PG* environment variables.",
						Sources: urfavecli.EnvVars("SQLSPLIT_CONNECTION"),
					},
					&urfavecli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory holding the parts",
						Sources: urfavecli.EnvVars("SQLSPLIT_OUTPUT_DIR"),
					},
					&urfavecli.BoolFlag{
						Name:  "single-transaction",
						Usage: "Replay all parts in one transaction",
					},
					&urfavecli.StringFlag{
						Name:  "create-database",
						Usage: "Create this database before loading and load into it",
					},
					&urfavecli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable debug output",
					},
				},
			},
		},
	}
}

// splitCommand handles the default 'sqlsplit <input> <max bytes>' invocation
func splitCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := cli.NewConfig()

	cli.ApplyFlagsToConfig(config,
		cmd.String("output-dir"),
		int(cmd.Int("bar-width")),
		cmd.Bool("quiet"),
		cmd.Bool("manifest"),
		cmd.Bool("verbose"),
	)

	if err := cli.ApplyArgsToConfig(config, cmd.Args().Slice()); err != nil {
		return err
	}

	logger.SetVerbose(config.Verbose)

	_, err := cli.Split(config, cmd.Root().Writer)
	return err
}

// loadCommand handles the 'sqlsplit load' command
func loadCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := cli.NewConfig()

	if dir := cmd.String("dir"); dir != "" {
		config.OutputDir = dir
	}
	config.ConnectionString = cmd.String("connection")
	config.SingleTransaction = cmd.Bool("single-transaction")
	config.CreateDatabase = cmd.String("create-database")
	config.Verbose = cmd.Bool("verbose")
	config.InputFile = cmd.Args().First()

	if cmd.Args().Len() > 1 {
		return &cli.ConfigError{
			Field:      "arguments",
			Value:      cmd.Args().Slice(),
			Message:    fmt.Sprintf("expected 1 argument, got %d", cmd.Args().Len()),
			Suggestion: "Usage: sqlsplit load [--connection <conn>] <input file>",
		}
	}

	logger.SetVerbose(config.Verbose)

	_, err := cli.Load(ctx, config)
	return err
}

// usageError maps flag parsing failures to the invalid arguments exit status
func usageError(ctx context.Context, cmd *urfavecli.Command, err error, isSubcommand bool) error {
	return &cli.ConfigError{
		Field:      "flags",
		Value:      cmd.Args().Slice(),
		Message:    err.Error(),
		Suggestion: fmt.Sprintf("Run '%s --help' for usage.", cmd.FullName()),
	}
}
