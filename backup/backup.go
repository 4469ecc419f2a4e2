package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/horizon/internal/batch"
	"github.com/meigma/horizon/internal/manifest"
	"github.com/meigma/horizon/internal/pathutil"
	"github.com/meigma/horizon/internal/savetype"
)

// Manifest describes the content of a backup folder.
type Manifest = manifest.Manifest

// ManifestEntry records one backed-up file.
type ManifestEntry = manifest.Entry

// Result reports the outcome of BackupIfAbsent.
type Result struct {
	// Dir is the backup folder, whether or not this call created it.
	Dir string

	// Created is true when this call (or a concurrent call it joined)
	// wrote the backup.
	Created bool

	// Files and Bytes count the copied files and their original size.
	Files int
	Bytes uint64
}

// Coordinator creates and verifies save folder backups.
// It is safe for concurrent use.
type Coordinator struct {
	workers     int
	compression Compression
	logger      *slog.Logger
	now         func() time.Time
	group       singleflight.Group
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Coordinator) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Dir returns the backup folder BackupIfAbsent uses for identifier.
func Dir(destRoot, identifier string) string {
	return filepath.Join(destRoot, pathutil.SafeName(identifier))
}

// BackupIfAbsent copies the folder at sourcePath to Dir(destRoot, identifier)
// unless that folder already exists. The copy is assembled in a temporary
// sibling and renamed into place, so a failed backup leaves nothing behind
// and an existing backup is never modified. The source is only read.
//
// Concurrent calls for the same destination share one copy, which runs
// under the context of the call that started it. A call that joined a copy
// cancelled by another caller's context retries under its own. All failures
// wrap ErrBackupIO.
func (c *Coordinator) BackupIfAbsent(ctx context.Context, sourcePath, destRoot, identifier string) (Result, error) {
	dest := Dir(destRoot, identifier)
	for {
		v, err, shared := c.group.Do(dest, func() (any, error) {
			return c.backup(ctx, sourcePath, destRoot, dest)
		})
		if err != nil && shared && ctx.Err() == nil && isContextErr(err) {
			c.log().Debug("shared backup cancelled, retrying", "dest", dest)
			continue
		}
		if err != nil {
			return Result{Dir: dest}, fmt.Errorf("%w: %w", savetype.ErrBackupIO, err)
		}
		return v.(Result), nil //nolint:forcetypeassert // backup always returns a Result
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Coordinator) backup(ctx context.Context, sourcePath, destRoot, dest string) (Result, error) {
	res := Result{Dir: dest}
	if _, err := os.Lstat(dest); err == nil {
		c.log().Debug("backup exists", "dest", dest)
		return res, nil
	} else if !os.IsNotExist(err) {
		return res, err
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return res, err
	}
	if !info.IsDir() {
		return res, fmt.Errorf("source %s is not a directory", sourcePath)
	}
	if within(sourcePath, destRoot) {
		return res, fmt.Errorf("destination %s is inside source %s", destRoot, sourcePath)
	}

	if err := os.MkdirAll(destRoot, 0o750); err != nil {
		return res, fmt.Errorf("create backup root: %w", err)
	}
	tmp, err := os.MkdirTemp(destRoot, ".horizon-backup-")
	if err != nil {
		return res, fmt.Errorf("create staging directory: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmp) //nolint:errcheck // best-effort cleanup
		}
	}()

	entries, err := batch.Scan(ctx, sourcePath)
	if err != nil {
		return res, fmt.Errorf("scan source: %w", err)
	}
	copier := batch.NewCopier(
		batch.WithWorkers(c.workers),
		batch.WithCompression(c.compression),
		batch.WithLogger(c.logger),
	)
	sink := batch.NewFileSink(tmp,
		batch.WithSuffix(c.compression.Suffix()),
		batch.WithPreserveMode(true),
		batch.WithPreserveTimes(true),
	)
	copied, stats, err := copier.Copy(ctx, sourcePath, entries, sink)
	if err != nil {
		return res, err
	}

	m := &manifest.Manifest{
		Identifier:  filepath.Base(dest),
		Created:     c.now(),
		Compression: c.compression,
		Entries:     copied,
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := os.WriteFile(filepath.Join(tmp, manifest.FileName), manifest.Encode(m), 0o600); err != nil {
		return res, fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Chmod(tmp, 0o750); err != nil {
		return res, err
	}

	if err := os.Rename(tmp, dest); err != nil {
		if _, statErr := os.Lstat(dest); statErr == nil {
			c.log().Debug("backup created concurrently", "dest", dest)
			return res, nil
		}
		return res, fmt.Errorf("rename into place: %w", err)
	}
	committed = true

	res.Created = true
	res.Files = stats.Copied
	res.Bytes = stats.Bytes
	c.log().Info("backup created", "dest", dest, "files", stats.Copied, "size", stats.Bytes, "skipped", stats.Skipped)
	return res, nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ReadManifest loads the manifest of the backup folder dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifest.FileName)) //nolint:gosec // caller-chosen backup folder
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s has no manifest", savetype.ErrMissingFile, dir)
	}
	if err != nil {
		return nil, err
	}
	return manifest.Decode(data)
}
