package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cybertec-postgresql/sqlsplit/internal/output"
)

// DiscoverParts finds the parts of inputPath in dir, ordered by index.
// The parts must form a contiguous sequence starting at 0.
func DiscoverParts(dir, inputPath string) ([]DiscoveredFile, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Check if directory exists
	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", absDir)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absDir)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []DiscoveredFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		index, ok := ClassifyFile(entry.Name(), inputPath)
		if !ok {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		files = append(files, DiscoveredFile{
			Path:         filepath.Join(absDir, entry.Name()),
			RelativePath: entry.Name(),
			Index:        index,
			Size:         fi.Size(),
			ModTime:      fi.ModTime(),
		})
	}

	if len(files) == 0 {
		stem, ext := output.SplitName(inputPath)
		return nil, fmt.Errorf("no parts of %s found in %s (expected %s-00000%s, ...)",
			filepath.Base(inputPath), absDir, stem, ext)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Index < files[j].Index })

	for i, f := range files {
		if f.Index != i {
			return nil, fmt.Errorf("part %d is missing (found %s)", i, f.RelativePath)
		}
	}

	return files, nil
}
