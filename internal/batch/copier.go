package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/horizon/internal/fileops"
	"github.com/meigma/horizon/internal/manifest"
	"github.com/meigma/horizon/internal/platform"
)

const copyBufferSize = 32 << 10

// Copier streams files from a source directory into a Sink, digesting the
// original content and optionally compressing what it stores.
type Copier struct {
	workers     int
	compression manifest.Compression
	logger      *slog.Logger
}

// Option configures a Copier.
type Option func(*Copier)

// WithWorkers sets the number of files copied concurrently.
// Values < 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Copier) {
		c.workers = n
	}
}

// WithCompression sets how copied content is stored.
func WithCompression(comp manifest.Compression) Option {
	return func(c *Copier) {
		c.compression = comp
	}
}

// WithLogger sets the logger for copy operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Copier) {
		c.logger = logger
	}
}

// NewCopier creates a Copier.
func NewCopier(opts ...Option) *Copier {
	c := &Copier{}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Copier) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Copy copies entries from srcDir into sink and returns a manifest entry for
// every file written. Entries the sink declines are skipped, as are entries
// that turn out to be symlinks when opened. The first error cancels the
// remaining copies; files already committed stay in place.
func (c *Copier) Copy(ctx context.Context, srcDir string, entries []*Entry, sink Sink) ([]manifest.Entry, Stats, error) {
	var stats Stats
	todo := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if sink.ShouldProcess(e) {
			todo = append(todo, e)
		} else {
			stats.Skipped++
		}
	}
	if len(todo) == 0 {
		return nil, stats, nil
	}

	root, err := os.OpenRoot(srcDir)
	if err != nil {
		return nil, stats, fmt.Errorf("open source %s: %w", srcDir, err)
	}
	defer root.Close()

	c.log().Debug("copying files", "files", len(todo), "workers", c.workers, "compression", c.compression)

	results := make([]*manifest.Entry, len(todo))
	var symlinks atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, e := range todo {
		g.Go(func() error {
			res, err := c.copyOne(gctx, root, e, sink)
			if errors.Is(err, platform.ErrSymlink) {
				c.log().Debug("skipped symlink", "path", e.Path)
				symlinks.Add(1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("copy %s: %w", e.Path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	stats.Skipped += int(symlinks.Load())
	out := make([]manifest.Entry, 0, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		out = append(out, *res)
		stats.Copied++
		stats.Bytes += res.Size
	}
	return out, stats, nil
}

func (c *Copier) copyOne(ctx context.Context, root *os.Root, e *Entry, sink Sink) (*manifest.Entry, error) {
	f, err := platform.OpenNoFollow(root, filepath.FromSlash(e.Path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", e.Path)
	}

	w, err := sink.Writer(e)
	if err != nil {
		return nil, err
	}
	dr := fileops.NewDigestingReader(f)
	if err := c.write(ctx, w, dr); err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	if err := w.Commit(); err != nil {
		return nil, err
	}
	return &manifest.Entry{
		Path:    e.Path,
		Size:    dr.Size(),
		Digest:  dr.Digest(),
		Mode:    e.Mode,
		ModTime: e.ModTime,
	}, nil
}

// write streams src into w, through a zstd encoder when compression is on.
func (c *Copier) write(ctx context.Context, w io.Writer, src io.Reader) error {
	buf := make([]byte, copyBufferSize)
	if c.compression != manifest.CompressionZstd {
		_, err := fileops.CopyContext(ctx, w, src, buf)
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	if _, err := fileops.CopyContext(ctx, enc, src, buf); err != nil {
		_ = enc.Close() //nolint:errcheck // copy error takes precedence
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close zstd encoder: %w", err)
	}
	return nil
}
