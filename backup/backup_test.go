package backup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/horizon/internal/manifest"
	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/internal/testutil"
)

var saveFiles = map[string][]byte{
	"main.dat":               []byte("main"),
	"mainHeader.dat":         []byte("header"),
	"Villager0/personal.dat": make([]byte, 0x1000),
	"Villager0/photo.dat":    []byte("\xff\xd8jpeg\xff\xd9"),
}

func newSource(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "save")
	testutil.WriteTree(t, dir, saveFiles)
	return dir
}

// withoutManifest returns the backed-up files of dir, dropping the manifest.
func withoutManifest(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	files := testutil.ReadTree(t, dir)
	require.Contains(t, files, manifest.FileName)
	delete(files, manifest.FileName)
	return files
}

func TestBackupIfAbsentCreates(t *testing.T) {
	t.Parallel()

	src := newSource(t)
	root := filepath.Join(t.TempDir(), "bak")
	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := New(WithClock(func() time.Time { return created }))

	res, err := c.BackupIfAbsent(t.Context(), src, root, "Harbor - Robin")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, filepath.Join(root, "Harbor - Robin"), res.Dir)
	assert.Equal(t, len(saveFiles), res.Files)

	assert.Equal(t, saveFiles, withoutManifest(t, res.Dir))
	assert.Equal(t, saveFiles, testutil.ReadTree(t, src), "source is untouched")

	m, err := ReadManifest(res.Dir)
	require.NoError(t, err)
	assert.Equal(t, "Harbor - Robin", m.Identifier)
	assert.True(t, created.Equal(m.Created))
	assert.Len(t, m.Entries, len(saveFiles))

	require.NoError(t, c.Verify(t.Context(), res.Dir))

	// Only the backup folder remains in the root.
	names, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "Harbor - Robin", names[0].Name())
}

func TestBackupIfAbsentIsIdempotent(t *testing.T) {
	t.Parallel()

	src := newSource(t)
	root := t.TempDir()
	c := New()

	first, err := c.BackupIfAbsent(t.Context(), src, root, "Harbor - Robin")
	require.NoError(t, err)
	require.True(t, first.Created)
	before := testutil.ReadTree(t, first.Dir)

	// Later edits to the save never reach the existing backup.
	testutil.WriteTree(t, src, map[string][]byte{"main.dat": []byte("edited")})

	second, err := c.BackupIfAbsent(t.Context(), src, root, "Harbor - Robin")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Dir, second.Dir)
	assert.Equal(t, before, testutil.ReadTree(t, second.Dir))
}

func TestBackupIfAbsentSanitizesIdentifier(t *testing.T) {
	t.Parallel()

	c := New()
	res, err := c.BackupIfAbsent(t.Context(), newSource(t), t.TempDir(), `Isle/Nook: "A"`)
	require.NoError(t, err)
	assert.Equal(t, `Isle_Nook_ _A_`, filepath.Base(res.Dir))
	assert.DirExists(t, res.Dir)
}

func TestBackupIfAbsentConcurrent(t *testing.T) {
	t.Parallel()

	src := newSource(t)
	root := t.TempDir()
	c := New(WithWorkers(2))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	results := make([]Result, callers)
	for i := range callers {
		wg.Go(func() {
			results[i], errs[i] = c.BackupIfAbsent(t.Context(), src, root, "Harbor - Robin")
		})
	}
	wg.Wait()

	createdAny := false
	for i := range callers {
		require.NoError(t, errs[i])
		createdAny = createdAny || results[i].Created
	}
	assert.True(t, createdAny)

	names, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, names, 1, "exactly one backup folder and no staging leftovers")
	assert.Equal(t, saveFiles, withoutManifest(t, filepath.Join(root, "Harbor - Robin")))
}

func TestBackupIfAbsentOutlivesCancelledCaller(t *testing.T) {
	t.Parallel()

	src := newSource(t)
	root := t.TempDir()
	entered := make(chan struct{})
	release := make(chan struct{})
	var first sync.Once
	// The first manifest timestamp holds the copy open until released.
	c := New(WithClock(func() time.Time {
		first.Do(func() {
			close(entered)
			<-release
		})
		return time.Unix(1_700_000_000, 0).UTC()
	}))

	ctx, cancel := context.WithCancel(t.Context())
	var wg sync.WaitGroup
	var cancelledErr error
	wg.Go(func() {
		_, cancelledErr = c.BackupIfAbsent(ctx, src, root, "Harbor - Robin")
	})
	<-entered

	var res Result
	var err error
	wg.Go(func() {
		res, err = c.BackupIfAbsent(t.Context(), src, root, "Harbor - Robin")
	})
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()

	require.ErrorIs(t, cancelledErr, context.Canceled)
	require.ErrorIs(t, cancelledErr, savetype.ErrBackupIO)
	require.NoError(t, err)
	assert.True(t, res.Created)

	names, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, names, 1, "no staging leftovers")
	assert.Equal(t, saveFiles, withoutManifest(t, res.Dir))
}

func TestBackupCompressed(t *testing.T) {
	t.Parallel()

	c := New(WithCompression(CompressionZstd))
	res, err := c.BackupIfAbsent(t.Context(), newSource(t), t.TempDir(), "Harbor - Robin")
	require.NoError(t, err)

	stored := withoutManifest(t, res.Dir)
	for name := range saveFiles {
		assert.Contains(t, stored, name+".zst")
	}

	m, err := ReadManifest(res.Dir)
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, m.Compression)

	// A coordinator configured without compression still verifies it.
	require.NoError(t, New().Verify(t.Context(), res.Dir))
}

func TestBackupIfAbsentFailures(t *testing.T) {
	t.Parallel()

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		_, err := New().BackupIfAbsent(t.Context(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), "x")
		require.ErrorIs(t, err, savetype.ErrBackupIO)
	})

	t.Run("source is a file", func(t *testing.T) {
		t.Parallel()
		src := newSource(t)
		_, err := New().BackupIfAbsent(t.Context(), filepath.Join(src, "main.dat"), t.TempDir(), "x")
		require.ErrorIs(t, err, savetype.ErrBackupIO)
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))
		_, err := New().BackupIfAbsent(t.Context(), newSource(t), blocker, "x")
		require.ErrorIs(t, err, savetype.ErrBackupIO)
	})

	t.Run("root inside source", func(t *testing.T) {
		t.Parallel()
		src := newSource(t)
		_, err := New().BackupIfAbsent(t.Context(), src, filepath.Join(src, "bak"), "x")
		require.ErrorIs(t, err, savetype.ErrBackupIO)
		assert.NoDirExists(t, filepath.Join(src, "bak"))
	})
}

func TestVerifyDetectsDamage(t *testing.T) {
	t.Parallel()

	backup := func(t *testing.T, opts ...Option) (*Coordinator, string) {
		t.Helper()
		c := New(opts...)
		res, err := c.BackupIfAbsent(t.Context(), newSource(t), t.TempDir(), "Harbor - Robin")
		require.NoError(t, err)
		return c, res.Dir
	}

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		c, dir := backup(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.dat"), []byte("MAIN"), 0o600))
		require.ErrorIs(t, c.Verify(t.Context(), dir), savetype.ErrDigestMismatch)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		c, dir := backup(t)
		require.NoError(t, os.Truncate(filepath.Join(dir, "Villager0", "personal.dat"), 10))
		require.ErrorIs(t, c.Verify(t.Context(), dir), savetype.ErrDigestMismatch)
	})

	t.Run("tampered compressed", func(t *testing.T) {
		t.Parallel()
		c, dir := backup(t, WithCompression(CompressionZstd))
		path := filepath.Join(dir, "main.dat.zst")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data[len(data)-1] ^= 0xFF
		require.NoError(t, os.WriteFile(path, data, 0o600))
		require.ErrorIs(t, c.Verify(t.Context(), dir), savetype.ErrDigestMismatch)
	})

	t.Run("truncated compressed", func(t *testing.T) {
		t.Parallel()
		c, dir := backup(t, WithCompression(CompressionZstd))
		require.NoError(t, os.Truncate(filepath.Join(dir, "main.dat.zst"), 3))
		require.ErrorIs(t, c.Verify(t.Context(), dir), savetype.ErrDigestMismatch)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		c, dir := backup(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "Villager0", "photo.dat")))
		require.ErrorIs(t, c.Verify(t.Context(), dir), savetype.ErrMissingFile)
	})

	t.Run("missing manifest", func(t *testing.T) {
		t.Parallel()
		c, dir := backup(t)
		require.NoError(t, os.Remove(filepath.Join(dir, manifest.FileName)))
		require.ErrorIs(t, c.Verify(t.Context(), dir), savetype.ErrMissingFile)
	})

	t.Run("corrupt manifest", func(t *testing.T) {
		t.Parallel()
		c, dir := backup(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte("junk"), 0o600))
		require.ErrorIs(t, c.Verify(t.Context(), dir), savetype.ErrInvalidManifest)
	})
}

func TestDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("bak", "Harbor - Robin"), Dir("bak", "Harbor - Robin"))
	assert.Equal(t, filepath.Join("bak", "_"), Dir("bak", ".."))
}
