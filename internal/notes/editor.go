package notes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is launched when neither config nor $EDITOR name one.
const DefaultEditor = "vi"

// Editor opens a note file and returns once the user is done with it.
type Editor interface {
	Open(ctx context.Context, path string) error
}

// ExecEditor launches an external program attached to the terminal.
type ExecEditor struct {
	// Command overrides $EDITOR. It may include arguments ("code -w").
	Command string
	Getenv  func(string) string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewExecEditor returns an editor bound to the process environment and stdio.
func NewExecEditor(command string) *ExecEditor {
	return &ExecEditor{
		Command: command,
		Getenv:  os.Getenv,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Resolve picks the editor command: configured command, then $EDITOR, then
// DefaultEditor.
func (e *ExecEditor) Resolve() []string {
	if fields := strings.Fields(e.Command); len(fields) > 0 {
		return fields
	}
	if e.Getenv != nil {
		if fields := strings.Fields(e.Getenv("EDITOR")); len(fields) > 0 {
			return fields
		}
	}
	return []string{DefaultEditor}
}

// Open runs the editor on path and waits for it to exit.
func (e *ExecEditor) Open(ctx context.Context, path string) error {
	argv := e.Resolve()
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor %s exited with status %d", argv[0], exitErr.ExitCode())
		}
		return fmt.Errorf("run editor %s: %w", argv[0], err)
	}
	return nil
}
