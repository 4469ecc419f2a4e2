package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/horizon/internal/fileops"
	"github.com/meigma/horizon/internal/savetype"
)

// Verify checks every file recorded in the manifest of the backup folder
// dir against its recorded size and digest, decompressing as needed.
//
// A missing manifest or file fails with ErrMissingFile, altered content with
// ErrDigestMismatch and an unreadable manifest with ErrInvalidManifest.
func (c *Coordinator) Verify(ctx context.Context, dir string) error {
	m, err := ReadManifest(dir)
	if err != nil {
		return err
	}
	compressed := m.Compression == CompressionZstd
	suffix := m.Compression.Suffix()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, e := range m.Entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !fs.ValidPath(e.Path) {
				return fmt.Errorf("%w: entry path %q", savetype.ErrInvalidManifest, e.Path)
			}
			if err := verifyFile(filepath.Join(dir, filepath.FromSlash(e.Path)+suffix), e, compressed); err != nil {
				return fmt.Errorf("verify %s: %w", e.Path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	c.log().Debug("backup verified", "dest", dir, "files", len(m.Entries))
	return nil
}

func verifyFile(path string, e ManifestEntry, compressed bool) error {
	f, err := os.Open(path) //nolint:gosec // path comes from a validated manifest entry
	if errors.Is(err, os.ErrNotExist) {
		return savetype.ErrMissingFile
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return fileops.Verify(f, e.Digest, e.Size, compressed)
}
