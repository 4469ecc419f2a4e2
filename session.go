package horizon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meigma/horizon/backup"
	"github.com/meigma/horizon/internal/fileops"
	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/offsets"
	"github.com/meigma/horizon/save"
	"github.com/meigma/horizon/settings"
)

// Session is an opened save file. It owns the save bytes until Close.
//
// A Session is not safe for concurrent use.
type Session struct {
	path      string
	dir       string
	perm      os.FileMode
	version   offsets.Version
	buf       *save.Buffer
	settings  settings.Settings
	backup    backup.Result
	backupErr error
	logger    *slog.Logger
	closed    bool
}

// Open opens the save at path, which names either a save file or a folder
// containing one (DefaultFileName unless WithFileName is given). The folder
// holding the file is the one backed up.
//
// Open fails with ErrCorrupt or ErrUnsupportedVersion when the version
// cannot be determined, and with ErrSizeMismatch when the size disagrees
// with the version and the prompter does not answer DecisionYes. Backup
// failures do not fail Open; see Session.BackupErr.
func Open(ctx context.Context, path string, opts ...OpenOption) (*Session, error) {
	cfg := openConfig{fileName: DefaultFileName}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.store == nil {
		cfg.store = &settings.MemoryStore{}
	}
	if cfg.coordinator == nil {
		cfg.coordinator = backup.New(backup.WithLogger(cfg.logger))
	}

	file, dir, err := resolve(path, cfg.fileName)
	if err != nil {
		return nil, err
	}
	s := &Session{path: file, dir: dir, logger: cfg.logger}

	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	s.perm = info.Mode().Perm()
	data, err := os.ReadFile(file) //nolint:gosec // caller-chosen save file
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := selectTable(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	s.buf = save.New(data, table)
	s.version = table.Version()
	s.logger.Debug("save opened", "path", file, "version", table.Version(), "size", len(data))

	if err := s.checkSize(ctx, cfg.prompter); err != nil {
		return nil, err
	}

	stored, err := cfg.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	persist := false
	if !stored.BackupPrompted && cfg.prompter != nil {
		d, err := cfg.prompter.Ask(ctx, Question{Kind: QuestionEnableBackup, Path: file})
		if err != nil {
			return nil, fmt.Errorf("prompt: %w", err)
		}
		switch d {
		case DecisionYes, DecisionNo:
			stored.AutoBackup, stored.BackupPrompted = d == DecisionYes, true
			persist = true
		default:
			// Asked again on the next open.
		}
	}
	if stored.LastPath != path {
		stored.LastPath = path
		persist = true
	}
	if persist {
		if err := cfg.store.Save(stored); err != nil {
			s.logger.Warn("settings not saved", "error", err)
		}
	}

	// Environment overrides apply to this session only.
	st := stored
	if cfg.env {
		if err := settings.ApplyEnv(&st); err != nil {
			return nil, err
		}
	}
	if st.AutoBackup {
		root := st.BackupDir
		if cfg.backupRoot != "" {
			root = cfg.backupRoot
		}
		if root == "" {
			root = settings.DefaultBackupDir
		}
		s.runBackup(ctx, cfg.coordinator, root)
	}
	s.settings = st
	return s, nil
}

// resolve maps a file-or-folder path to the save file and its folder.
func resolve(path, fileName string) (file, dir string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("open %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, fileName), path, nil
	}
	return path, filepath.Dir(path), nil
}

func selectTable(data []byte, cfg *openConfig) (*offsets.Table, error) {
	if cfg.forced {
		return offsets.For(cfg.version)
	}
	return offsets.Detect(data)
}

// checkSize asks the prompter about a size mismatch.
func (s *Session) checkSize(ctx context.Context, p Prompter) error {
	var mismatch *SizeMismatchError
	if !errors.As(s.buf.SizeError(), &mismatch) {
		return nil
	}
	s.logger.Warn("save size mismatch", "path", s.path, "version", mismatch.Version,
		"size", mismatch.Actual, "expected", mismatch.Expected)

	d := DecisionNo
	if p != nil {
		var err error
		d, err = p.Ask(ctx, Question{Kind: QuestionSizeMismatch, Path: s.path, Mismatch: mismatch})
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}
	}
	switch d {
	case DecisionYes:
		return nil
	case DecisionCancel:
		return fmt.Errorf("open %s: %w: %w", s.path, savetype.ErrAborted, mismatch)
	default:
		return fmt.Errorf("open %s: %w", s.path, mismatch)
	}
}

// runBackup snapshots the save folder, recording rather than returning
// any failure.
func (s *Session) runBackup(ctx context.Context, coord *backup.Coordinator, root string) {
	if !s.buf.Has(offsets.PersonalID) {
		s.backupErr = fmt.Errorf("%w: save too short to name a backup", savetype.ErrBackupIO)
		s.logger.Warn("backup skipped", "path", s.path, "error", s.backupErr)
		return
	}
	res, err := coord.BackupIfAbsent(ctx, s.dir, root, s.buf.BackupTitle())
	s.backup = res
	if err != nil {
		s.backupErr = err
		s.logger.Warn("backup failed", "path", s.dir, "dest", res.Dir, "error", err)
	}
}

// Buffer returns the save bytes. It is nil after Close.
func (s *Session) Buffer() *save.Buffer {
	return s.buf
}

// Version returns the save-format version.
func (s *Session) Version() offsets.Version {
	return s.version
}

// Path returns the save file path.
func (s *Session) Path() string {
	return s.path
}

// Dir returns the folder holding the save file.
func (s *Session) Dir() string {
	return s.dir
}

// Settings returns the preferences in effect for this session.
func (s *Session) Settings() settings.Settings {
	return s.settings
}

// BackupResult returns the outcome of the backup taken on open. It is the
// zero Result when backups are disabled.
func (s *Session) BackupResult() backup.Result {
	return s.backup
}

// BackupErr returns why the backup taken on open failed, or nil.
func (s *Session) BackupErr() error {
	return s.backupErr
}

// Commit writes the buffer back to the save file, replacing it atomically
// and keeping its permissions.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileops.WriteFileAtomic(s.path, s.buf.Bytes(), s.perm); err != nil {
		return fmt.Errorf("commit %s: %w", s.path, err)
	}
	s.logger.Info("save written", "path", s.path, "version", s.version, "size", s.buf.Size())
	return nil
}

// Close releases the save bytes without writing them. It is safe to call
// more than once.
func (s *Session) Close() error {
	s.closed = true
	s.buf = nil
	return nil
}
