package commands

import (
	"context"
	"log/slog"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/store"
)

// Note returns the task's note file, creating and linking it on first use.
// With open set the editor runs on the file before Note returns.
func (s *Service) Note(ctx context.Context, prefix string, open bool) (Result[string], error) {
	const cmd = "note"
	t, _, err := s.resolve(ctx, cmd, prefix)
	if err != nil {
		return Result[string]{}, err
	}

	var path string
	if t.WorkNotePath != nil && *t.WorkNotePath != "" {
		path = *t.WorkNotePath
	} else {
		if s.notes == nil {
			return Result[string]{}, apperr.New(cmd, KindIO, "notes directory is not configured")
		}
		path, err = s.notes.Create(t)
		if err != nil {
			return Result[string]{}, apperr.Wrap(cmd, KindIO, err)
		}
		if _, err := s.store.ReplaceField(ctx, t.ID, store.FieldWorkNotePath, path); err != nil {
			return Result[string]{}, apperr.Wrap(cmd, KindDatabase, err)
		}
		s.logger.Info("commands: note created", slog.String("path", path))
	}

	if open {
		if err := s.editor.Open(ctx, path); err != nil {
			return Result[string]{}, apperr.Wrap(cmd, KindEditor, err)
		}
	}
	return Result[string]{Message: path, Payload: path}, nil
}
