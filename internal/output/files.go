package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultBufSize  = 64 * 1024
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// SplitName returns the stem and extension of the input file name.
// A leading-dot name such as ".dump" is treated as a stem without extension.
func SplitName(inputPath string) (stem, ext string) {
	base := filepath.Base(inputPath)
	ext = filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	if stem == "" {
		return base, ""
	}
	return stem, ext
}

// PartName returns the file name of part index for the given input:
// <stem>-<index zero-padded to 5 digits><extension>
func PartName(inputPath string, index int) string {
	stem, ext := SplitName(inputPath)
	return fmt.Sprintf("%s-%05d%s", stem, index, ext)
}

// Files creates output parts as regular files in a directory
type Files struct {
	dir     string
	input   string
	bufSize int
	ready   bool // dir has been created
}

// NewFiles creates a sink factory writing parts of inputPath into dir.
// An empty dir means the current directory.
func NewFiles(dir, inputPath string) *Files {
	if dir == "" {
		dir = "."
	}
	return &Files{dir: dir, input: inputPath, bufSize: defaultBufSize}
}

// Dir returns the output directory
func (f *Files) Dir() string {
	return f.dir
}

// Name returns the path of part index
func (f *Files) Name(index int) string {
	return filepath.Join(f.dir, PartName(f.input, index))
}

// Create opens part index for writing, truncating an existing file.
// The output directory is created on the first call.
func (f *Files) Create(index int) (io.WriteCloser, error) {
	if !f.ready {
		if err := os.MkdirAll(f.dir, defaultDirMode); err != nil {
			return nil, err
		}
		f.ready = true
	}
	fh, err := os.OpenFile(f.Name(index), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, defaultFileMode)
	if err != nil {
		return nil, err
	}
	return &File{f: fh, w: bufio.NewWriterSize(fh, f.bufSize)}, nil
}

// File is a buffered output part
type File struct {
	f *os.File
	w *bufio.Writer
}

// Write buffers p
func (f *File) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

// Close flushes buffered data and closes the file. The file is closed even
// when the flush fails.
func (f *File) Close() error {
	ferr := f.w.Flush()
	cerr := f.f.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}
