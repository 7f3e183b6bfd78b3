package discovery

import (
	"strconv"
	"strings"

	"github.com/cybertec-postgresql/sqlsplit/internal/output"
)

// minIndexDigits is the zero padding width of part indexes
const minIndexDigits = 5

// ClassifyFile reports whether filename is a part of inputPath and returns its index.
// Part names follow <stem>-<index><extension> with the index padded to 5 digits.
func ClassifyFile(filename, inputPath string) (int, bool) {
	stem, ext := output.SplitName(inputPath)
	prefix := stem + "-"

	if len(filename) < len(prefix)+minIndexDigits+len(ext) ||
		!strings.HasPrefix(filename, prefix) || !strings.HasSuffix(filename, ext) {
		return 0, false
	}
	digits := filename[len(prefix) : len(filename)-len(ext)]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	// wider indexes are never zero padded
	if len(digits) > minIndexDigits && digits[0] == '0' {
		return 0, false
	}

	index, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return index, true
}
