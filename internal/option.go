package internal

import (
	"context"
	"io"
	"log/slog"

	"github.com/starford/tmgr/internal/commands"
	"github.com/starford/tmgr/internal/notes"
	"github.com/starford/tmgr/internal/store"
)

// Option is a functional option for configuring the application.
type Option func(*application)

// StoreOpener opens the store used by a single command.
type StoreOpener func(ctx context.Context, cfg *Config, logger *slog.Logger) (store.TaskStore, error)

type application struct {
	config     *Config
	stdout     io.Writer
	stderr     io.Writer
	logger     *slog.Logger
	openStore  StoreOpener
	keepOpen   bool
	editor     notes.Editor
	upgrader   commands.Upgrader
	execPath   func() (string, error)
	isTerminal func(io.Writer) bool

	// message is the output of the command that ran.
	message string
}

// WithConfig sets the application configuration. The --config flag is
// ignored when a configuration is given.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets the streams results and errors are written to.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithLogger sets the logger instead of building one from the configuration.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithStoreOpener replaces how each command opens its store.
func WithStoreOpener(open StoreOpener) Option {
	return func(a *application) {
		a.openStore = open
	}
}

// WithStore runs commands against an already open store. The caller keeps
// ownership and closes it.
func WithStore(st store.TaskStore) Option {
	return func(a *application) {
		a.openStore = func(context.Context, *Config, *slog.Logger) (store.TaskStore, error) {
			return st, nil
		}
		a.keepOpen = true
	}
}

// WithEditor sets the editor launched by note --open.
func WithEditor(e notes.Editor) Option {
	return func(a *application) {
		a.editor = e
	}
}

// WithUpgrader replaces the release-feed upgrader.
func WithUpgrader(u commands.Upgrader) Option {
	return func(a *application) {
		a.upgrader = u
	}
}

// WithExecutablePath overrides how the running binary is located.
func WithExecutablePath(fn func() (string, error)) Option {
	return func(a *application) {
		a.execPath = fn
	}
}

// WithTerminal overrides TTY detection for the error prefix color.
func WithTerminal(isTerminal func(io.Writer) bool) Option {
	return func(a *application) {
		a.isTerminal = isTerminal
	}
}
