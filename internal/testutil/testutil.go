// Package testutil builds synthetic saves and save folders for tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/horizon/offsets"
)

// NewSave returns a zeroed save image of version v whose length differs from
// the expected size by delta bytes. The version tag is written at the start.
func NewSave(tb testing.TB, v offsets.Version, delta int) []byte {
	tb.Helper()
	tbl, err := offsets.For(v)
	require.NoError(tb, err)
	tag, ok := offsets.TagFor(v)
	require.True(tb, ok, "no tag for %s", v)

	data := make([]byte, tbl.ExpectedSize()+delta)
	offsets.PutTag(data, tag)
	return data
}

// WriteTree creates files under dir from a map of slash-separated relative
// paths to contents.
func WriteTree(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(tb, os.WriteFile(path, content, 0o600))
	}
}

// ReadTree returns every regular file under dir keyed by slash-separated
// relative path.
func ReadTree(tb testing.TB, dir string) map[string][]byte {
	tb.Helper()
	out := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path) //nolint:gosec // test paths
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = content
		return nil
	})
	require.NoError(tb, err)
	return out
}

// WriteSaveFolder writes a save folder holding data as personal.dat and
// returns the folder path.
func WriteSaveFolder(tb testing.TB, data []byte) string {
	tb.Helper()
	dir := filepath.Join(tb.TempDir(), "save")
	WriteTree(tb, dir, map[string][]byte{
		"personal.dat": data,
		"main.dat":     []byte("main"),
	})
	return dir
}
