package internal

import (
	"errors"
	"testing"
)

func TestHandleResult_Success(t *testing.T) {
	out, code := HandleResult("Successfully deleted task 'abc'", nil, true)
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
	if out != "Successfully deleted task 'abc'" {
		t.Errorf("out = %q", out)
	}
}

func TestHandleResult_Failure(t *testing.T) {
	err := errors.New("boom")
	out, code := HandleResult("", err, false)
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	if out != "error: boom" {
		t.Errorf("out = %q, want %q", out, "error: boom")
	}

	out, _ = HandleResult("", err, true)
	if want := "\x1b[31merror\x1b[0m: boom"; out != want {
		t.Errorf("colored out = %q, want %q", out, want)
	}
}
