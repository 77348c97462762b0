// Package notes creates and locates the Markdown note file linked to a task.
package notes

import (
	"bytes"
	"fmt"

	"github.com/starford/tmgr/internal/models"
)

// DefaultDirName is the notes directory created next to the store.
const DefaultDirName = "tmgr_notes"

// Manager writes note files under a single directory.
type Manager struct {
	fs *FS
}

// NewManager returns a manager rooted at dir.
func NewManager(dir string) (*Manager, error) {
	fs, err := NewFS(dir)
	if err != nil {
		return nil, err
	}
	return &Manager{fs: fs}, nil
}

// Dir returns the absolute notes directory.
func (m *Manager) Dir() string {
	return m.fs.Root()
}

// FileName returns the note file name for an id suffix.
func FileName(id string) string {
	return id + ".md"
}

// Create writes a fresh note for t and returns its absolute path. An
// existing file at that path is overwritten.
func (m *Manager) Create(t models.Task) (string, error) {
	id, err := t.ShortID()
	if err != nil {
		return "", err
	}
	return m.fs.Write(FileName(id), Header(id, t))
}

// Header renders the initial note content: a title line, the description
// when present, and an empty Notes section.
func Header(id string, t models.Task) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Task %s - %s\n\n", id, t.Name)
	if t.Description != nil && *t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", *t.Description)
	}
	b.WriteString("## Notes\n\n")
	return b.Bytes()
}
