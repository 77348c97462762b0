// Package upgrade replaces the running tmgr binary with the latest GitHub
// release and migrates the store when the major version changes.
//
// The sequence is DISCOVER, COMPARE, then (when newer) DOWNLOAD, DELETE_OLD,
// INSTALL_NEW, VERIFY and MIGRATE. It is not transactional: a failure between
// DELETE_OLD and INSTALL_NEW leaves no binary at the install path, with the
// new one still in the Downloads directory.
package upgrade

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/migrate"
	"github.com/starford/tmgr/internal/version"
)

// DefaultUserAgent identifies tmgr to the release feed.
const DefaultUserAgent = "tmgr-go"

// MigrateFunc runs the migration engine from the given prior version to
// the schema of the installed major version.
type MigrateFunc func(ctx context.Context, from migrate.Version, toMajor int) (string, error)

// Options configures an Upgrader. Zero values fall back to defaults.
type Options struct {
	APIURL         string
	Owner          string
	Repo           string
	UserAgent      string
	CurrentVersion string
	// Timeout bounds each HTTP exchange, body included. Zero leaves
	// cancellation to ctx.
	Timeout        time.Duration
	// DownloadDir overrides the per-user Downloads directory.
	DownloadDir    string
	// ExecutablePath returns the binary to replace.
	ExecutablePath func() (string, error)
	Migrate        MigrateFunc
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// Upgrader drives one upgrade run.
type Upgrader struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
}

// New returns an Upgrader with defaults applied to opts.
func New(opts Options) *Upgrader {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Owner == "" {
		opts.Owner = version.Owner
	}
	if opts.Repo == "" {
		opts.Repo = version.Repo
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.CurrentVersion == "" {
		opts.CurrentVersion = version.Version
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Upgrader{opts: opts, client: client, logger: logger}
}

// Run performs the upgrade and returns a user-facing message.
func (u *Upgrader) Run(ctx context.Context) (string, error) {
	u.logger.Info("Checking repository for updates...")
	rel, err := u.discover(ctx)
	if err != nil {
		return "", err
	}
	plan, err := u.compare(rel)
	if err != nil {
		return "", err
	}
	if !plan.NeedsUpdate() {
		return "Already on latest version", nil
	}
	if plan.DownloadURL == "" {
		return "", apperr.Newf(layer, KindNoDownloadLink, "release %s has no assets", rel.TagName)
	}

	downloaded, digest, err := u.download(ctx, plan.DownloadURL)
	if err != nil {
		return "", err
	}
	installPath, err := u.executablePath()
	if err != nil {
		return "", err
	}
	if err := DeleteExistingBinary(installPath); err != nil {
		return "", err
	}
	if err := MoveNewBinary(downloaded, installPath); err != nil {
		return "", err
	}
	if err := verifyInstalled(installPath, digest); err != nil {
		return "", err
	}
	u.logger.Info("upgrade: installed", slog.String("path", installPath), slog.String("version", plan.Latest.String()))

	msg := fmt.Sprintf("Update complete: v%s -> v%s", plan.Current, plan.Latest)
	if warning := u.migrateAfter(ctx, plan); warning != "" {
		msg += "\n" + warning
	}
	return msg, nil
}

func (u *Upgrader) executablePath() (string, error) {
	if u.opts.ExecutablePath == nil {
		return "", apperr.New(layer, KindNoExecutablePath, "no executable path resolver")
	}
	p, err := u.opts.ExecutablePath()
	if err != nil {
		return "", apperr.Wrap(layer, KindNoExecutablePath, err)
	}
	return p, nil
}

// migrateAfter runs the migration engine when the major version grew. A
// failure does not undo the upgrade; it returns a warning for the user.
func (u *Upgrader) migrateAfter(ctx context.Context, plan Plan) string {
	oldMajor, newMajor := int(plan.Current.Major()), int(plan.Latest.Major())
	if newMajor <= oldMajor {
		return ""
	}
	from := migrate.FromMajor(oldMajor)

	var err error
	switch {
	case from == migrate.Invalid:
		err = apperr.Newf(layer, KindUnableToMigrateDatabase, "no migration from v%d", oldMajor)
	case u.opts.Migrate == nil:
		err = apperr.New(layer, KindUnableToMigrateDatabase, "no migration engine configured")
	default:
		var msg string
		msg, err = u.opts.Migrate(ctx, from, newMajor)
		if err != nil {
			err = apperr.Wrap(layer, KindUnableToMigrateDatabase, err)
		} else {
			u.logger.Info("upgrade: migrated", slog.String("result", msg))
			return ""
		}
	}
	u.logger.Warn("upgrade: migration failed", slog.String("error", err.Error()))
	return fmt.Sprintf("warning: %v; run `tmgr migrate v%d` manually", err, oldMajor)
}
