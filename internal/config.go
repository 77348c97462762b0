package internal

import (
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/tmgr/internal/notes"
	"github.com/starford/tmgr/internal/store"
	"github.com/starford/tmgr/internal/upgrade"
	"github.com/starford/tmgr/internal/version"
)

// ConfigFileName is looked up next to the executable when no config path
// is given.
const ConfigFileName = "tmgr.yaml"

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Store   StoreConfig       `yaml:"store"`
	Notes   NotesConfig       `yaml:"notes"`
	Editor  EditorConfig      `yaml:"editor"`
	Release ReleaseConfig     `yaml:"release"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	return c.Release.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// StoreConfig locates the task database.
type StoreConfig struct {
	Name string `yaml:"name"`
	// Dir defaults to the executable's directory.
	Dir  string `yaml:"dir"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
	)
}

// ResolvedDir returns Dir, or the executable's directory when Dir is empty.
func (c *StoreConfig) ResolvedDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	return store.ExecDir()
}

// NotesConfig locates the directory holding task notes.
type NotesConfig struct {
	DirName string `yaml:"dir_name"`
	// Dir overrides <store dir>/<dir_name>.
	Dir     string `yaml:"dir"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DirName, validation.Required),
	)
}

// Path returns the notes directory for a store living in storeDir.
func (c *NotesConfig) Path(storeDir string) string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(storeDir, c.DirName)
}

// EditorConfig selects the program used by note --open.
type EditorConfig struct {
	// Command defaults to $EDITOR, then vi.
	Command string `yaml:"command"`
}

// ReleaseConfig points the upgrade command at a release feed.
type ReleaseConfig struct {
	APIURL      string        `yaml:"api_url"`
	Owner       string        `yaml:"owner"`
	Repo        string        `yaml:"repo"`
	UserAgent   string        `yaml:"user_agent"`
	// Timeout bounds each release request. Zero means no limit; the command
	// still stops on interrupt.
	Timeout     time.Duration `yaml:"timeout"`
	DownloadDir string        `yaml:"download_dir"`
}

// Validate validates the release configuration.
func (c *ReleaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.Owner, validation.Required),
		validation.Field(&c.Repo, validation.Required),
		validation.Field(&c.UserAgent, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Store: StoreConfig{
			Name: store.DefaultName,
		},
		Notes: NotesConfig{
			DirName: notes.DefaultDirName,
		},
		Release: ReleaseConfig{
			APIURL:    upgrade.DefaultAPIURL,
			Owner:     version.Owner,
			Repo:      version.Repo,
			UserAgent: upgrade.DefaultUserAgent,
		},
	}
}
