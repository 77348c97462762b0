package internal

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// HandleResult turns a command outcome into the text to print and the exit
// code. Failures are prefixed with "error: ", colored red when color is set.
func HandleResult(message string, err error, color bool) (string, int) {
	if err == nil {
		return message, 0
	}
	prefix := "error"
	if color {
		prefix = ansiRed + prefix + ansiReset
	}
	return prefix + ": " + err.Error(), 1
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
