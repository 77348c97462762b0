// Package testutil provides shared test helpers for opening stores and notes
// directories.
package testutil

import (
	"context"
	"testing"

	"github.com/starford/tmgr/internal/models"
	"github.com/starford/tmgr/internal/notes"
	"github.com/starford/tmgr/internal/store"
)

// TestStore opens an in-memory store that is closed when the test ends.
func TestStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenTest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotes returns a notes manager rooted at a temporary directory.
func TestNotes(t *testing.T) (string, *notes.Manager) {
	t.Helper()
	dir := t.TempDir()
	m, err := notes.NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, m
}

// InsertTask stores a task built from opts and returns the stored copy.
func InsertTask(t *testing.T, db store.TaskStore, opts ...models.TaskOption) models.Task {
	t.Helper()
	task, err := db.Insert(context.Background(), models.NewTask(opts...))
	if err != nil {
		t.Fatal(err)
	}
	return task
}

// ShortID returns the task's id suffix or fails the test.
func ShortID(t *testing.T, task models.Task) string {
	t.Helper()
	id, err := task.ShortID()
	if err != nil {
		t.Fatal(err)
	}
	return id
}
