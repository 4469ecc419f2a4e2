package batch

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSink writes entries below a destination directory.
//
// Content goes to a temporary file in the target directory and is renamed
// into place on Commit, so a partially written file is never visible at its
// final path. Existing files are never overwritten.
type FileSink struct {
	destDir       string
	suffix        string
	preserveMode  bool
	preserveTimes bool
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithSuffix appends suffix to every written file name.
func WithSuffix(suffix string) FileSinkOption {
	return func(s *FileSink) {
		s.suffix = suffix
	}
}

// WithPreserveMode applies the entry's permission bits to written files.
func WithPreserveMode(preserve bool) FileSinkOption {
	return func(s *FileSink) {
		s.preserveMode = preserve
	}
}

// WithPreserveTimes applies the entry's modification time to written files.
func WithPreserveTimes(preserve bool) FileSinkOption {
	return func(s *FileSink) {
		s.preserveTimes = preserve
	}
}

// NewFileSink creates a FileSink that writes below destDir. destDir must
// exist; subdirectories are created as needed.
func NewFileSink(destDir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{destDir: destDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the relative file name an entry is written to.
func (s *FileSink) Name(entry *Entry) string {
	return filepath.FromSlash(entry.Path) + s.suffix
}

// ShouldProcess returns false if the entry's file already exists or its
// path escapes the destination.
func (s *FileSink) ShouldProcess(entry *Entry) bool {
	if !fs.ValidPath(entry.Path) {
		return false
	}
	_, err := os.Lstat(filepath.Join(s.destDir, s.Name(entry)))
	return os.IsNotExist(err)
}

// Writer returns a Committer that writes to a temp file and renames on Commit.
func (s *FileSink) Writer(entry *Entry) (Committer, error) {
	if !fs.ValidPath(entry.Path) {
		return nil, &fs.PathError{Op: "copy", Path: entry.Path, Err: fs.ErrInvalid}
	}
	destRel := s.Name(entry)

	root, err := os.OpenRoot(s.destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination %s: %w", s.destDir, err)
	}
	if err := root.MkdirAll(filepath.Dir(destRel), 0o750); err != nil {
		_ = root.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("create directory for %s: %w", entry.Path, err)
	}

	tmp, tmpRel, err := createTemp(root, filepath.Dir(destRel))
	if err != nil {
		_ = root.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &fileCommitter{
		entry:   entry,
		destRel: destRel,
		tmp:     tmp,
		tmpRel:  tmpRel,
		root:    root,
		sink:    s,
	}, nil
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	entry   *Entry
	destRel string
	tmp     *os.File
	tmpRel  string
	root    *os.Root
	sink    *FileSink
}

func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.tmp.Write(p)
}

// Commit closes the temp file, applies metadata and links it into place.
func (c *fileCommitter) Commit() error {
	if err := c.tmp.Close(); err != nil {
		return c.fail(fmt.Errorf("close temp file: %w", err))
	}
	if c.sink.preserveMode {
		if err := c.root.Chmod(c.tmpRel, c.entry.Mode.Perm()); err != nil {
			return c.fail(fmt.Errorf("chmod %s: %w", c.entry.Path, err))
		}
	}
	if c.sink.preserveTimes {
		if err := c.root.Chtimes(c.tmpRel, c.entry.ModTime, c.entry.ModTime); err != nil {
			return c.fail(fmt.Errorf("chtimes %s: %w", c.entry.Path, err))
		}
	}
	if err := c.root.Rename(c.tmpRel, c.destRel); err != nil {
		return c.fail(fmt.Errorf("rename to %s: %w", c.destRel, err))
	}
	return c.root.Close()
}

// Discard closes and removes the temp file.
func (c *fileCommitter) Discard() error {
	_ = c.tmp.Close() //nolint:errcheck // cleaning up
	return c.fail(nil)
}

func (c *fileCommitter) fail(err error) error {
	if rerr := c.root.Remove(c.tmpRel); rerr != nil && err == nil && !os.IsNotExist(rerr) {
		err = rerr
	}
	_ = c.root.Close() //nolint:errcheck // best-effort cleanup
	return err
}

// createTemp creates a uniquely named temporary file in dir under root.
func createTemp(root *os.Root, dir string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		rel := filepath.Join(dir, ".horizon-"+name)
		f, err := root.OpenFile(rel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, rel, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
