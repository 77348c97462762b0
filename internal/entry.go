// Package internal wires configuration, logging and the store into the tmgr
// command line.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/commands"
	"github.com/starford/tmgr/internal/migrate"
	"github.com/starford/tmgr/internal/notes"
	"github.com/starford/tmgr/internal/store"
	"github.com/starford/tmgr/internal/upgrade"
	pkgconfig "github.com/starford/tmgr/pkg/config"
)

// Error kinds of the top-level layer.
const (
	KindDatabase apperr.Kind = "Database error"
	KindConfig   apperr.Kind = "Config error"
)

const layer = "tmgr"

// Run parses args, runs one command and prints its outcome. It returns the
// process exit code.
func Run(ctx context.Context, args []string, opts ...Option) int {
	app := &application{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		openStore:  openProductionStore,
		execPath:   store.ExecutablePath,
		isTerminal: isTerminal,
	}
	for _, opt := range opts {
		opt(app)
	}

	err := app.command().Run(ctx, args)
	out, code := HandleResult(app.message, err, app.isTerminal(app.stderr))
	w := app.stdout
	if code != 0 {
		w = app.stderr
	}
	if out != "" {
		fmt.Fprintln(w, out)
	}
	return code
}

// setup loads the configuration and builds the logger. It runs once before
// any subcommand.
func (a *application) setup(configPath string) error {
	if a.config == nil {
		cfg := NewDefaultConfig()
		if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
			return apperr.Wrapf(layer, KindConfig, err, "failed to parse config")
		}
		a.config = cfg
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{
			Level: a.config.App.LogLevel,
		}))
	}
	slog.SetDefault(a.logger)

	a.logger.Debug("Configuration loaded",
		slog.String("config_path", configPath),
		slog.String("store_name", a.config.Store.Name),
		slog.String("store_dir", a.config.Store.Dir),
		slog.String("log_level", a.config.App.LogLevel.String()))
	return nil
}

func openProductionStore(ctx context.Context, cfg *Config, logger *slog.Logger) (store.TaskStore, error) {
	return store.OpenProduction(ctx, cfg.Store.Dir, cfg.Store.Name, logger)
}

// withService opens the store, builds the command service and closes the
// store once fn returns.
func (a *application) withService(ctx context.Context, fn func(*commands.Service) (string, error)) error {
	st, err := a.openStore(ctx, a.config, a.logger)
	if err != nil {
		return apperr.Wrap(layer, KindDatabase, err)
	}
	if !a.keepOpen {
		defer func() {
			if err := st.Close(); err != nil {
				a.logger.Warn("close store", slog.String("error", err.Error()))
			}
		}()
	}

	msg, err := fn(a.service(st))
	if err != nil {
		return err
	}
	a.message = msg
	return nil
}

func (a *application) service(st store.TaskStore) *commands.Service {
	opts := []commands.Option{
		commands.WithLogger(a.logger),
		commands.WithExecutablePath(a.execPath),
	}

	if m, err := a.notesManager(); err != nil {
		a.logger.Debug("notes directory unavailable", slog.String("error", err.Error()))
	} else {
		opts = append(opts, commands.WithNotes(m))
	}

	editor := a.editor
	if editor == nil {
		editor = notes.NewExecEditor(a.config.Editor.Command)
	}
	opts = append(opts, commands.WithEditor(editor))

	var svc *commands.Service
	up := a.upgrader
	if up == nil {
		rel := a.config.Release
		up = upgrade.New(upgrade.Options{
			APIURL:         rel.APIURL,
			Owner:          rel.Owner,
			Repo:           rel.Repo,
			UserAgent:      rel.UserAgent,
			Timeout:        rel.Timeout,
			DownloadDir:    rel.DownloadDir,
			ExecutablePath: a.execPath,
			Migrate: func(ctx context.Context, from migrate.Version, toMajor int) (string, error) {
				res, err := svc.MigrateTo(ctx, from, toMajor)
				return res.Message, err
			},
			Logger: a.logger,
		})
	}
	opts = append(opts, commands.WithUpgrader(up))

	svc = commands.New(st, opts...)
	return svc
}

func (a *application) notesManager() (*notes.Manager, error) {
	dir := a.config.Notes.Dir
	if dir == "" {
		storeDir, err := a.config.Store.ResolvedDir()
		if err != nil {
			return nil, err
		}
		dir = a.config.Notes.Path(storeDir)
	}
	return notes.NewManager(dir)
}
