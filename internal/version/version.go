// Package version holds build metadata injected at link time.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Overridden with -ldflags "-X github.com/starford/tmgr/internal/version.Version=...".
var (
	Version = "3.0.0"
	Owner   = "charliekarafotias"
	Repo    = "tmgr"
)

// Major returns the major component of v ("3.1.0" -> 3, "v2" -> 2).
func Major(v string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimPrefix(v, "v"), ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("version: parse major of %q: %w", v, err)
	}
	return n, nil
}
