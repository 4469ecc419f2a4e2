package manifest

import (
	"encoding/binary"
	"testing"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/horizon/internal/savetype"
)

func testManifest() *Manifest {
	mtime := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	return &Manifest{
		Identifier:  "Harbor - Robin",
		Created:     time.Date(2026, 10, 19, 8, 30, 0, 15, time.UTC),
		Compression: CompressionZstd,
		Entries: []Entry{
			{Path: "Villager0/personal.dat", Size: 0x6A570, Digest: digest.FromString("personal"), Mode: 0o644, ModTime: mtime},
			{Path: "main.dat", Size: 4, Digest: digest.FromString("main"), Mode: 0o600, ModTime: mtime},
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	m := testManifest()
	got, err := Decode(Encode(m))
	require.NoError(t, err)

	assert.Equal(t, m.Identifier, got.Identifier)
	assert.True(t, m.Created.Equal(got.Created))
	assert.Equal(t, CompressionZstd, got.Compression)
	require.Len(t, got.Entries, 2)

	// Entries are sorted by path.
	assert.Equal(t, "Villager0/personal.dat", got.Entries[0].Path)
	assert.Equal(t, "main.dat", got.Entries[1].Path)

	e, ok := got.Lookup("main.dat")
	require.True(t, ok)
	assert.Equal(t, uint64(4), e.Size)
	assert.Equal(t, digest.FromString("main"), e.Digest)
	assert.Equal(t, uint32(0o600), uint32(e.Mode))
	assert.True(t, m.Entries[1].ModTime.Equal(e.ModTime))

	_, ok = got.Lookup("missing.dat")
	assert.False(t, ok)
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got, err := Decode(Encode(&Manifest{Identifier: "x", Created: time.Unix(1, 0)}))
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.Equal(t, CompressionNone, got.Compression)
}

// withEntryCount returns a copy of data whose entries vector claims n
// elements.
func withEntryCount(t *testing.T, data []byte, n uint32) []byte {
	t.Helper()
	data = append([]byte(nil), data...)
	root := table{flatbuffers.Table{Bytes: data, Pos: flatbuffers.GetUOffsetT(data)}}
	o := root.field(manifestEntries)
	require.NotZero(t, o)
	pos := o + root.t.Pos
	pos += flatbuffers.GetUOffsetT(data[pos:])
	binary.LittleEndian.PutUint32(data[pos:], n)
	return data
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()

	valid := Encode(testManifest())

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: []byte{1, 2, 3}},
		{name: "wrong identifier", data: append([]byte{8, 0, 0, 0, 'N', 'O', 'P', 'E'}, make([]byte, 16)...)},
		{name: "truncated", data: valid[:12]},
		{name: "huge entry count", data: withEntryCount(t, valid, 0xFFFFFFF0)},
		{name: "entry count past end", data: withEntryCount(t, valid, uint32(len(valid)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.data)
			require.ErrorIs(t, err, savetype.ErrInvalidManifest)
		})
	}
}

func TestCompression(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", CompressionNone.Suffix())
	assert.Equal(t, ".zst", CompressionZstd.Suffix())
	assert.Equal(t, "zstd", CompressionZstd.String())
	assert.Equal(t, "compression(7)", Compression(7).String())
}
