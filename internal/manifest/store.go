package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/output"
	"github.com/cybertec-postgresql/sqlsplit/internal/splitter"
)

// Manifest describes the parts produced by one split run
type Manifest struct {
	Input      string               `json:"input"`
	MaxBytes   int64                `json:"max_bytes"`
	InputBytes int64                `json:"input_bytes"`
	Statements int                  `json:"statements"`
	CreatedAt  time.Time            `json:"created_at"`
	Parts      []splitter.ChunkInfo `json:"parts"`
}

// FromResult builds a manifest from a split result. Part file names are
// stored relative to the output directory.
func FromResult(inputPath string, result *splitter.Result) *Manifest {
	m := &Manifest{
		Input:      filepath.Base(inputPath),
		MaxBytes:   result.MaxBytes,
		InputBytes: result.InputBytes,
		Statements: result.Statements,
		CreatedAt:  time.Now().UTC(),
	}
	for _, c := range result.Chunks {
		c.File = filepath.Base(c.File)
		m.Parts = append(m.Parts, c)
	}
	return m
}

// PathFor returns the manifest path for parts of inputPath stored in dir
func PathFor(dir, inputPath string) string {
	stem, _ := output.SplitName(inputPath)
	return filepath.Join(dir, stem+".manifest.json")
}

// Verify checks that every listed part exists in dir with the recorded size
func (m *Manifest) Verify(dir string) error {
	for _, p := range m.Parts {
		path := filepath.Join(dir, p.File)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("part %d missing: %w", p.Index, err)
		}
		if info.Size() != p.Bytes {
			return fmt.Errorf("part %d (%s) has %d bytes, manifest records %d", p.Index, path, info.Size(), p.Bytes)
		}
	}
	return nil
}

// Store handles persistence of manifests
type Store struct {
	filePath string
}

// NewStore creates a new manifest store
func NewStore(filePath string) *Store {
	return &Store{
		filePath: filePath,
	}
}

// Save writes the manifest to disk as JSON
func (s *Store) Save(m *Manifest) error {
	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// Load reads a manifest from disk
func (s *Store) Load() (*Manifest, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest file not found: %s", s.filePath)
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest file: %w", err)
	}

	return &m, nil
}

// Exists checks if the manifest file exists
func (s *Store) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Path returns the file path where the manifest is stored
func (s *Store) Path() string {
	return s.filePath
}
