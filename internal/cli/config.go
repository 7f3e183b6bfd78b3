package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cybertec-postgresql/sqlsplit/internal/progress"
	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
	"github.com/docker/go-units"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	OutputDir: ".",
	BarWidth:  progress.DefaultWidth,
	Quiet:     false,
	Manifest:  false,
	Verbose:   false,
}

// NewConfig returns a copy of DefaultConfig
func NewConfig() *Config {
	c := DefaultConfig
	return &c
}

// ApplyFlagsToConfig applies command-line flag values to configuration
func ApplyFlagsToConfig(c *Config, outputDir string, barWidth int, quiet, manifest, verbose bool) {
	if outputDir != "" {
		c.OutputDir = outputDir
	}
	if barWidth != 0 {
		c.BarWidth = barWidth
	}
	c.Quiet = quiet
	c.Manifest = manifest
	c.Verbose = verbose
}

// ApplyArgsToConfig applies the positional arguments <input file> <max bytes> [bar width]
func ApplyArgsToConfig(c *Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return &ConfigError{
			Field:      "arguments",
			Value:      args,
			Message:    fmt.Sprintf("expected 2 or 3 arguments, got %d", len(args)),
			Suggestion: "Usage: sqlsplit <input file> <maximum output file size in bytes> [output bar width]",
		}
	}

	c.InputFile = args[0]

	maxBytes, err := ParseSize(args[1])
	if err != nil {
		return &ConfigError{
			Field:      "max-bytes",
			Value:      args[1],
			Message:    err.Error(),
			Suggestion: "Use a byte count such as 1048576 or a size such as 64MiB.",
		}
	}
	c.MaxBytes = maxBytes

	if len(args) == 3 {
		width, err := strconv.Atoi(args[2])
		if err != nil {
			return &ConfigError{
				Field:      "bar-width",
				Value:      args[2],
				Message:    fmt.Sprintf("not a number: %q", args[2]),
				Suggestion: "Omit the bar width to use the default of 60.",
			}
		}
		c.BarWidth = width
	}

	return nil
}

// ParseSize parses a byte count. Plain integers are bytes; suffixes are
// binary multiples (k, m, g, KiB, MB, ...).
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n, nil
}

// HumanSize formats a byte count for log output
func HumanSize(n int64) string {
	return units.BytesSize(float64(n))
}
