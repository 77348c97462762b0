// Package migrate upgrades stored records from an earlier schema major
// version to the current one.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/models"
)

const layer = "migrate"

// Error kinds reported by the migration engine.
const (
	KindDatabase       apperr.Kind = "Database error"
	KindUnknownVersion apperr.Kind = "Unable to get tmgr version"
)

// Version is a schema major version a migration can start from.
type Version int

const (
	Invalid Version = iota
	V2
	V3
)

// ParseVersion accepts "v2", "v3" or "invalid" in any case.
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(s) {
	case "v2":
		return V2, nil
	case "v3":
		return V3, nil
	case "invalid":
		return Invalid, nil
	}
	return Invalid, fmt.Errorf("unknown version %q (expected v2, v3 or invalid)", s)
}

// FromMajor maps a numeric major version onto a Version.
func FromMajor(major int) Version {
	switch major {
	case 2:
		return V2
	case 3:
		return V3
	}
	return Invalid
}

func (v Version) String() string {
	switch v {
	case V2:
		return "v2"
	case V3:
		return "v3"
	}
	return "invalid"
}

// Store is the subset of the task store migrations write through.
type Store interface {
	RewritePriority(ctx context.Context, from, to models.Priority) (int64, error)
}

type step struct {
	desc string
	run  func(ctx context.Context, s Store) (int64, error)
}

// steps holds the work needed to leave each version. Running from version v
// executes steps[v], steps[v+1], ... up to the current schema.
var steps = map[Version][]step{
	V2: {
		rewritePriority("low", models.PriorityLow),
		rewritePriority("medium", models.PriorityMedium),
		rewritePriority("high", models.PriorityHigh),
	},
}

func rewritePriority(from string, to models.Priority) step {
	return step{
		desc: fmt.Sprintf("convert %s priority v2 tasks to v3", from),
		run: func(ctx context.Context, s Store) (int64, error) {
			return s.RewritePriority(ctx, models.Priority(from), to)
		},
	}
}

// Run migrates records from the given version to currentMajor. V3 and
// Invalid have nothing to do and succeed. A failing step aborts the run.
func Run(ctx context.Context, s Store, from Version, currentMajor int, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for v := from; v >= V2 && v <= V3; v++ {
		for _, st := range steps[v] {
			n, err := st.run(ctx, s)
			if err != nil {
				return "", apperr.Wrapf(layer, KindDatabase, err, "Failed to %s", st.desc)
			}
			logger.Debug("migrate: step done", slog.String("step", st.desc), slog.Int64("rows", n))
		}
	}
	return fmt.Sprintf("Successfully migrated tasks from %s to v%d schema", from, currentMajor), nil
}
