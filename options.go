package horizon

import (
	"errors"
	"log/slog"

	"github.com/meigma/horizon/backup"
	"github.com/meigma/horizon/offsets"
	"github.com/meigma/horizon/settings"
)

// DefaultFileName is the save file opened when Open is given a folder.
const DefaultFileName = "personal.dat"

// OpenOption configures Open.
type OpenOption func(*openConfig) error

type openConfig struct {
	logger      *slog.Logger
	prompter    Prompter
	store       settings.Store
	coordinator *backup.Coordinator
	backupRoot  string
	fileName    string
	version     offsets.Version
	forced      bool
	env         bool
}

// WithLogger sets the logger for the session and its backups.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) OpenOption {
	return func(c *openConfig) error {
		c.logger = logger
		return nil
	}
}

// WithPrompter sets who answers questions raised while opening.
//
// Without a prompter, a size mismatch is declined and the backup question
// is not asked.
func WithPrompter(p Prompter) OpenOption {
	return func(c *openConfig) error {
		c.prompter = p
		return nil
	}
}

// WithSettingsStore sets where preferences are loaded from and saved to.
// The default is an in-memory store holding settings.Default.
func WithSettingsStore(store settings.Store) OpenOption {
	return func(c *openConfig) error {
		if store == nil {
			return errors.New("settings store is nil")
		}
		c.store = store
		return nil
	}
}

// WithEnvOverrides applies HORIZON_* environment variables on top of the
// loaded settings. Overrides are not written back to the store.
func WithEnvOverrides() OpenOption {
	return func(c *openConfig) error {
		c.env = true
		return nil
	}
}

// WithBackupRoot overrides the backup folder from the settings.
func WithBackupRoot(dir string) OpenOption {
	return func(c *openConfig) error {
		c.backupRoot = dir
		return nil
	}
}

// WithCoordinator sets the backup coordinator. Sharing one coordinator
// between concurrent opens collapses duplicate backups.
func WithCoordinator(coord *backup.Coordinator) OpenOption {
	return func(c *openConfig) error {
		if coord == nil {
			return errors.New("backup coordinator is nil")
		}
		c.coordinator = coord
		return nil
	}
}

// WithFileName sets the file opened when Open is given a folder.
func WithFileName(name string) OpenOption {
	return func(c *openConfig) error {
		if name == "" {
			return errors.New("file name is empty")
		}
		c.fileName = name
		return nil
	}
}

// WithVersion skips tag detection and treats the save as version v.
func WithVersion(v offsets.Version) OpenOption {
	return func(c *openConfig) error {
		if _, err := offsets.For(v); err != nil {
			return err
		}
		c.version = v
		c.forced = true
		return nil
	}
}
