package store

import (
	"os"
	"path/filepath"

	"github.com/starford/tmgr/internal/apperr"
)

// DefaultName is the store file name placed in the executable's directory.
const DefaultName = "tmgr_db"

// ExecutablePath returns the path of the running binary.
func ExecutablePath() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", apperr.Wrap(layer, KindNoExecutablePath, err)
	}
	return p, nil
}

// ExecDir returns the directory containing the running binary.
func ExecDir() (string, error) {
	p, err := ExecutablePath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// FilePath resolves the store file. An empty dir means the executable's
// directory; an empty name means DefaultName.
func FilePath(dir, name string) (string, error) {
	if name == "" {
		name = DefaultName
	}
	if dir == "" {
		d, err := ExecDir()
		if err != nil {
			return "", apperr.Wrapf(layer, KindIO, err, "resolve store directory")
		}
		dir = d
	}
	return filepath.Join(dir, name), nil
}
