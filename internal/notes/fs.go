package notes

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// FS is a file provider rooted at the notes directory.
type FS struct {
	root string // absolute path to notes directory
}

// NewFS creates a provider rooted at root. The directory is created on the
// first write, not here.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("notes: resolve root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute notes directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the root and rejects any result
// that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("notes: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("notes: path escapes notes root: %s", rel)
	}
	return abs, nil
}

// Write atomically writes content to rel, creating the root if missing, and
// returns the absolute path.
func (f *FS) Write(rel string, content []byte) (string, error) {
	abs, err := f.safePath(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("notes: mkdir: %w", err)
	}
	if err := atomic.WriteFile(abs, bytes.NewReader(content)); err != nil {
		return "", fmt.Errorf("notes: write %s: %w", rel, err)
	}
	// atomic.WriteFile leaves new files with the temp file's 0600 mode.
	if err := os.Chmod(abs, 0o644); err != nil {
		return "", fmt.Errorf("notes: chmod %s: %w", rel, err)
	}
	return abs, nil
}

// RemoveFile deletes the file at an absolute or relative path. Notes may be
// linked from anywhere, so this is not restricted to the root. A missing
// file is not an error.
func RemoveFile(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("notes: delete %s: %w", path, err)
	}
	return true, nil
}
