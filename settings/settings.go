// Package settings holds the persisted preferences of the save editor.
//
// Settings are a plain value. A Store loads and saves them; FileStore keeps
// them in a TOML file and MemoryStore keeps them in memory for tests and
// embedders. HORIZON_* environment variables override stored values.
package settings

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultBackupDir is the backup root used when none is configured.
const DefaultBackupDir = "bak"

// Settings are the editor's persisted preferences.
type Settings struct {
	// LastPath is the most recently opened save file or folder.
	LastPath string `toml:"last_path,omitempty"`

	// BackupPrompted records that the user has answered the first-run
	// backup question.
	BackupPrompted bool `toml:"backup_prompted"`

	// AutoBackup enables a backup of the save folder on every open.
	AutoBackup bool `toml:"auto_backup" env:"HORIZON_AUTO_BACKUP"`

	// BackupDir is the folder that receives backups.
	BackupDir string `toml:"backup_dir,omitempty" env:"HORIZON_BACKUP_DIR"`
}

// Default returns the settings of a first run.
func Default() Settings {
	return Settings{BackupDir: DefaultBackupDir}
}

// withDefaults fills unset fields from Default.
func (s Settings) withDefaults() Settings {
	if s.BackupDir == "" {
		s.BackupDir = DefaultBackupDir
	}
	return s
}

// ApplyEnv overrides s with any HORIZON_* variables set in the process
// environment. Unset variables leave fields unchanged.
func ApplyEnv(s *Settings) error {
	return applyEnv(s, env.Options{})
}

func applyEnv(s *Settings, opts env.Options) error {
	if err := env.ParseWithOptions(s, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
