package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/models"
	"github.com/starford/tmgr/internal/notes"
	"github.com/starford/tmgr/internal/store"
)

// AddParams are the inputs to Add. A zero Priority means Low.
type AddParams struct {
	Name        string
	Priority    models.Priority
	Description *string
}

// Add inserts a new task.
func (s *Service) Add(ctx context.Context, p AddParams) (Result[models.Task], error) {
	const cmd = "add"
	opts := []models.TaskOption{models.WithName(p.Name)}
	if p.Priority != "" {
		opts = append(opts, models.WithPriority(p.Priority))
	}
	if p.Description != nil {
		opts = append(opts, models.WithDescription(*p.Description))
	}

	t, err := s.store.Insert(ctx, models.NewTask(opts...))
	if err != nil {
		return Result[models.Task]{}, apperr.Wrap(cmd, KindDatabase, err)
	}
	id, err := t.ShortID()
	if err != nil {
		return Result[models.Task]{}, apperr.Wrap(cmd, KindDatabase, err)
	}
	return Result[models.Task]{
		Message: fmt.Sprintf("Task '%s' created successfully", id),
		Payload: t,
	}, nil
}

// Complete marks the task completed now. Completing an already completed
// task overwrites its timestamp.
func (s *Service) Complete(ctx context.Context, prefix string) (Result[models.Task], error) {
	const cmd = "complete"
	t, id, err := s.resolve(ctx, cmd, prefix)
	if err != nil {
		return Result[models.Task]{}, err
	}
	t, err = s.store.ReplaceField(ctx, t.ID, store.FieldCompletedAt, time.Now().UTC())
	if err != nil {
		return Result[models.Task]{}, apperr.Wrap(cmd, KindDatabase, err)
	}
	return Result[models.Task]{
		Message: fmt.Sprintf("Successfully updated task '%s' to completed", id),
		Payload: t,
	}, nil
}

// Delete removes the task and then its note file, if one is linked and
// still on disk. The record stays deleted when the file cannot be removed.
func (s *Service) Delete(ctx context.Context, prefix string) (Result[models.Task], error) {
	const cmd = "delete"
	t, id, err := s.resolve(ctx, cmd, prefix)
	if err != nil {
		return Result[models.Task]{}, err
	}
	if err := s.store.Delete(ctx, t.ID); err != nil {
		return Result[models.Task]{}, apperr.Wrap(cmd, KindDatabase, err)
	}

	if t.WorkNotePath != nil && *t.WorkNotePath != "" {
		removed, err := notes.RemoveFile(*t.WorkNotePath)
		if err != nil {
			return Result[models.Task]{}, apperr.Wrapf(cmd, KindIO, err,
				"Task '%s' was deleted but its note file could not be removed", id)
		}
		s.logger.Debug("commands: note file", slog.String("path", *t.WorkNotePath), slog.Bool("removed", removed))
	}
	return Result[models.Task]{
		Message: fmt.Sprintf("Successfully deleted task '%s'", id),
		Payload: t,
	}, nil
}

// List returns in-progress tasks, or every task when all is set. The
// message is the rendered table.
func (s *Service) List(ctx context.Context, all bool) (Result[[]models.Task], error) {
	const cmd = "list"
	var (
		tasks []models.Task
		err   error
	)
	if all {
		tasks, err = s.store.All(ctx)
	} else {
		tasks, err = s.store.InProgress(ctx)
	}
	if err != nil {
		return Result[[]models.Task]{}, apperr.Wrap(cmd, KindDatabase, err)
	}
	table, err := RenderList(tasks)
	if err != nil {
		return Result[[]models.Task]{}, apperr.Wrap(cmd, KindBadTaskID, err)
	}
	return Result[[]models.Task]{Message: table, Payload: tasks}, nil
}

// View renders every field of one task as a key/value table.
func (s *Service) View(ctx context.Context, prefix string) (Result[models.Task], error) {
	const cmd = "view"
	t, err := s.store.SelectByPartialID(ctx, prefix)
	if err != nil {
		return Result[models.Task]{}, apperr.Wrap(cmd, KindDatabase, err)
	}
	table, err := RenderTask(t)
	if err != nil {
		return Result[models.Task]{}, apperr.Wrap(cmd, KindBadTaskID, err)
	}
	return Result[models.Task]{Message: table, Payload: t}, nil
}

// Update writes the provided fields of p and leaves the rest untouched. An
// empty patch fails with ErrNoFieldsToUpdate before the store is read.
func (s *Service) Update(ctx context.Context, prefix string, p store.Patch) (Result[models.Task], error) {
	const cmd = "update"
	if p.Empty() {
		return Result[models.Task]{}, ErrNoFieldsToUpdate
	}
	t, id, err := s.resolve(ctx, cmd, prefix)
	if err != nil {
		return Result[models.Task]{}, err
	}
	t, err = s.store.Merge(ctx, t.ID, p)
	if err != nil {
		return Result[models.Task]{}, apperr.Wrap(cmd, KindDatabase, err)
	}
	return Result[models.Task]{
		Message: fmt.Sprintf("Successfully updated task '%s'", id),
		Payload: t,
	}, nil
}
