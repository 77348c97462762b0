// Package commands implements the tmgr command engine. Each handler runs
// against an already-open store and returns a Result or a layered error
// tagged with the command's name.
package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/models"
	"github.com/starford/tmgr/internal/notes"
	"github.com/starford/tmgr/internal/store"
	"github.com/starford/tmgr/internal/version"
)

// Error kinds reported by command handlers.
const (
	KindDatabase  apperr.Kind = "Database error"
	KindBadTaskID apperr.Kind = "Bad task id"
	KindIO        apperr.Kind = "IO error"
	KindEditor    apperr.Kind = "Editor error"
	KindUpgrade   apperr.Kind = "Upgrade error"
)

// ErrNoFieldsToUpdate is returned by Update when no field was provided.
var ErrNoFieldsToUpdate = errors.New("No fields to update") //nolint:staticcheck // shown verbatim to the user

// Result is the successful outcome of a command: the text shown to the user
// and the value the command produced.
type Result[T any] struct {
	Message string
	Payload T
}

// Upgrader replaces the running binary with the latest release.
type Upgrader interface {
	Run(ctx context.Context) (string, error)
}

// Service runs commands against one store.
type Service struct {
	store        store.TaskStore
	notes        *notes.Manager
	editor       notes.Editor
	upgrader     Upgrader
	execPath     func() (string, error)
	currentMajor int
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNotes sets the manager used by the note command.
func WithNotes(m *notes.Manager) Option {
	return func(s *Service) { s.notes = m }
}

// WithEditor sets the editor launched by note --open.
func WithEditor(e notes.Editor) Option {
	return func(s *Service) { s.editor = e }
}

// WithUpgrader sets the controller used by the upgrade command.
func WithUpgrader(u Upgrader) Option {
	return func(s *Service) { s.upgrader = u }
}

// WithExecutablePath overrides how status locates the running binary.
func WithExecutablePath(fn func() (string, error)) Option {
	return func(s *Service) { s.execPath = fn }
}

// WithCurrentMajor sets the schema major version migrations target.
func WithCurrentMajor(major int) Option {
	return func(s *Service) { s.currentMajor = major }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New returns a Service over st.
func New(st store.TaskStore, opts ...Option) *Service {
	s := &Service{
		store:    st,
		editor:   notes.NewExecEditor(""),
		execPath: store.ExecutablePath,
		logger:   slog.Default(),
	}
	if major, err := version.Major(version.Version); err == nil {
		s.currentMajor = major
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// resolve looks up a task by id prefix, wrapping failures in the command's
// layer.
func (s *Service) resolve(ctx context.Context, cmd, prefix string) (models.Task, string, error) {
	t, err := s.store.SelectByPartialID(ctx, prefix)
	if err != nil {
		return models.Task{}, "", apperr.Wrap(cmd, KindDatabase, err)
	}
	id, err := t.ShortID()
	if err != nil {
		return models.Task{}, "", apperr.Wrap(cmd, KindBadTaskID, err)
	}
	s.logger.Debug("commands: resolved", slog.String("command", cmd), slog.String("prefix", prefix), slog.String("id", id))
	return t, id, nil
}
