package notes

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/models"
)

func tempManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), DefaultDirName))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestCreate_HeaderWithDescription(t *testing.T) {
	m := tempManager(t)
	task := models.NewTask(models.WithID("abc"), models.WithName("New task"), models.WithDescription("Some description"))

	path, err := m.Create(task)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if path != filepath.Join(m.Dir(), "abc.md") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(string(data), "\n")
	want := []string{"# Task abc - New task", "", "Some description", "", "## Notes", ""}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestCreate_HeaderWithoutDescription(t *testing.T) {
	m := tempManager(t)
	empty := ""
	for _, task := range []models.Task{
		models.NewTask(models.WithID("a1"), models.WithName("plain")),
		{ID: "task:a1", Name: "plain", Description: &empty},
	} {
		path, err := m.Create(task)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		data, _ := os.ReadFile(path)
		if got := string(data); got != "# Task a1 - plain\n\n## Notes\n\n" {
			t.Errorf("content = %q", got)
		}
	}
}

func TestCreate_RequiresID(t *testing.T) {
	m := tempManager(t)
	if _, err := m.Create(models.NewTask(models.WithName("x"))); !apperr.Is(err, models.KindNoID) {
		t.Errorf("err = %v, want %q", err, models.KindNoID)
	}
}

func TestFS_RejectsEscape(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if _, err := fs.Write("../outside.md", []byte("x")); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if _, err := fs.Write("/abs.md", []byte("x")); err == nil {
		t.Error("expected absolute path to be rejected")
	}
}

func TestFS_WriteCreatesRoot(t *testing.T) {
	fs, _ := NewFS(filepath.Join(t.TempDir(), "nested"))
	if _, err := os.Stat(fs.Root()); err == nil {
		t.Fatal("root should not exist before the first write")
	}
	path, err := fs.Write("n.md", []byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestRemoveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.md")
	_ = os.WriteFile(path, []byte("x"), 0o644)

	removed, err := RemoveFile(path)
	if err != nil || !removed {
		t.Fatalf("RemoveFile = %v, %v", removed, err)
	}
	removed, err = RemoveFile(path)
	if err != nil || removed {
		t.Errorf("missing file: RemoveFile = %v, %v", removed, err)
	}
}

func TestExecEditor_Resolve(t *testing.T) {
	env := map[string]string{}
	e := &ExecEditor{Getenv: func(k string) string { return env[k] }}
	if got := e.Resolve(); got[0] != DefaultEditor {
		t.Errorf("default = %v", got)
	}
	env["EDITOR"] = "nano -w"
	if got := e.Resolve(); len(got) != 2 || got[0] != "nano" {
		t.Errorf("from $EDITOR = %v", got)
	}
	e.Command = "code"
	if got := e.Resolve(); got[0] != "code" {
		t.Errorf("configured = %v", got)
	}
}

func TestExecEditor_OpenWaitsAndSurfacesStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX utilities")
	}
	path := filepath.Join(t.TempDir(), "n.md")
	if err := (&ExecEditor{Command: "touch"}).Open(context.Background(), path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("editor did not run to completion: %v", err)
	}
	err := (&ExecEditor{Command: "false"}).Open(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "exited with status 1") {
		t.Errorf("err = %v, want exit status", err)
	}
}
