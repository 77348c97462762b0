package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/tmgr/internal/store"
)

// Status is the payload of the status command. Counts is nil when the store
// could not count its tasks.
type Status struct {
	ExecutablePath string
	StorePath      string
	Counts         *store.Counts
}

const (
	unknownExecutable = "Unable to determine executable location"
	unknownCount      = "unable to determine number of tasks in current database"
)

// Status reports file locations and task counts. A counting failure is
// rendered in place of the numbers and does not fail the command.
func (s *Service) Status(ctx context.Context) (Result[Status], error) {
	st := Status{StorePath: s.store.Location()}
	if p, err := s.execPath(); err != nil {
		s.logger.Debug("commands: executable path", slog.String("error", err.Error()))
	} else {
		st.ExecutablePath = p
	}
	if c, err := s.store.AggregateCounts(ctx); err != nil {
		s.logger.Warn("commands: count tasks", slog.String("error", err.Error()))
	} else {
		st.Counts = &c
	}
	return Result[Status]{Message: st.String(), Payload: st}, nil
}

func (st Status) String() string {
	var b strings.Builder
	exe := st.ExecutablePath
	if exe == "" {
		exe = unknownExecutable
	}
	b.WriteString("File locations:\n")
	fmt.Fprintf(&b, "  tmgr executable: %s\n", exe)
	fmt.Fprintf(&b, "  database: %s\n", st.StorePath)
	b.WriteString("General statistics:\n")
	if st.Counts == nil {
		fmt.Fprintf(&b, "  completed tasks: %s\n", unknownCount)
		fmt.Fprintf(&b, "  in progress tasks: %s\n", unknownCount)
		fmt.Fprintf(&b, "  total tasks: %s", unknownCount)
		return b.String()
	}
	fmt.Fprintf(&b, "  completed tasks: %d\n", st.Counts.Completed)
	fmt.Fprintf(&b, "  in progress tasks: %d\n", st.Counts.InProgress())
	fmt.Fprintf(&b, "  total tasks: %d", st.Counts.Total)
	return b.String()
}
