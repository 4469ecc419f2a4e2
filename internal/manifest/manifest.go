// Package manifest encodes the FlatBuffers manifest stored in every backup.
//
// Schema:
//
//	table Entry {
//	  path:string;      // slash-separated, relative to the backup root
//	  size:ulong;       // original content size
//	  digest:string;    // original content digest
//	  mode:uint;
//	  mtime_ns:long;
//	}
//	table Manifest {
//	  version:uint;
//	  identifier:string;
//	  created_ns:long;
//	  compression:ubyte;
//	  entries:[Entry];  // sorted by path
//	}
//	root_type Manifest;
//	file_identifier "HZBK";
package manifest

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/horizon/internal/savetype"
)

const (
	// FileName is the manifest's name inside a backup folder.
	FileName = ".horizon-manifest"

	// Version is the manifest format version written by Encode.
	Version = 1

	fileIdentifier = "HZBK"
)

// Compression identifies how backed-up files are stored.
type Compression uint8

const (
	// CompressionNone stores files unchanged.
	CompressionNone Compression = iota
	// CompressionZstd stores files zstd-compressed with a ".zst" suffix.
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Suffix returns the file name suffix for stored files.
func (c Compression) Suffix() string {
	if c == CompressionZstd {
		return ".zst"
	}
	return ""
}

// Entry records one backed-up file.
type Entry struct {
	Path    string
	Size    uint64
	Digest  digest.Digest
	Mode    fs.FileMode
	ModTime time.Time
}

// Manifest describes a backup folder.
type Manifest struct {
	Identifier  string
	Created     time.Time
	Compression Compression
	Entries     []Entry
}

// vtable slots
const (
	entryPath    = 0
	entrySize    = 1
	entryDigest  = 2
	entryMode    = 3
	entryMtimeNs = 4
	entryFields  = 5

	manifestVersion     = 0
	manifestIdentifier  = 1
	manifestCreatedNs   = 2
	manifestCompression = 3
	manifestEntries     = 4
	manifestFields      = 5
)

// Encode serializes m. Entries are written sorted by path.
func Encode(m *Manifest) []byte {
	entries := slices.Clone(m.Entries)
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	builder := flatbuffers.NewBuilder(1024)

	// Build entries in reverse order (FlatBuffers requirement)
	entryOffsets := make([]flatbuffers.UOffsetT, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		pathOffset := builder.CreateString(e.Path)
		digestOffset := builder.CreateString(e.Digest.String())

		builder.StartObject(entryFields)
		builder.PrependUOffsetTSlot(entryPath, pathOffset, 0)
		builder.PrependUint64Slot(entrySize, e.Size, 0)
		builder.PrependUOffsetTSlot(entryDigest, digestOffset, 0)
		builder.PrependUint32Slot(entryMode, uint32(e.Mode), 0)
		builder.PrependInt64Slot(entryMtimeNs, e.ModTime.UnixNano(), 0)
		entryOffsets[i] = builder.EndObject()
	}

	builder.StartVector(flatbuffers.SizeUOffsetT, len(entryOffsets), flatbuffers.SizeUOffsetT)
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(entryOffsets))

	identOffset := builder.CreateString(m.Identifier)

	builder.StartObject(manifestFields)
	builder.PrependUint32Slot(manifestVersion, Version, 0)
	builder.PrependUOffsetTSlot(manifestIdentifier, identOffset, 0)
	builder.PrependInt64Slot(manifestCreatedNs, m.Created.UnixNano(), 0)
	builder.PrependByteSlot(manifestCompression, byte(m.Compression), 0)
	builder.PrependUOffsetTSlot(manifestEntries, entriesOffset, 0)
	root := builder.EndObject()

	builder.FinishWithFileIdentifier(root, []byte(fileIdentifier))
	return builder.FinishedBytes()
}

// Decode parses a manifest produced by Encode.
func Decode(data []byte) (m *Manifest, err error) {
	const headerSize = flatbuffers.SizeUOffsetT + len(fileIdentifier)
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", savetype.ErrInvalidManifest, len(data))
	}
	if string(data[flatbuffers.SizeUOffsetT:headerSize]) != fileIdentifier {
		return nil, fmt.Errorf("%w: bad file identifier", savetype.ErrInvalidManifest)
	}

	// FlatBuffers accessors trust their input and panic on truncated data.
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("%w: %v", savetype.ErrInvalidManifest, r)
		}
	}()

	root := table{flatbuffers.Table{Bytes: data, Pos: flatbuffers.GetUOffsetT(data)}}
	if v := root.u32(manifestVersion); v != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", savetype.ErrInvalidManifest, v)
	}

	m = &Manifest{
		Identifier:  root.str(manifestIdentifier),
		Created:     time.Unix(0, root.i64(manifestCreatedNs)),
		Compression: Compression(root.u8(manifestCompression)),
	}
	if m.Compression > CompressionZstd {
		return nil, fmt.Errorf("%w: unknown compression %d", savetype.ErrInvalidManifest, m.Compression)
	}

	// Each element is at least a 4-byte offset.
	n := root.vectorLen(manifestEntries)
	if n < 0 || n > (len(data)-headerSize)/flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("%w: %d entries in %d bytes", savetype.ErrInvalidManifest, n, len(data))
	}
	m.Entries = make([]Entry, 0, n)
	for i := range n {
		e := root.vectorTable(manifestEntries, i)
		dgst := digest.Digest(e.str(entryDigest))
		if err := dgst.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", savetype.ErrInvalidManifest, i, err)
		}
		m.Entries = append(m.Entries, Entry{
			Path:    e.str(entryPath),
			Size:    e.u64(entrySize),
			Digest:  dgst,
			Mode:    fs.FileMode(e.u32(entryMode)),
			ModTime: time.Unix(0, e.i64(entryMtimeNs)),
		})
	}
	return m, nil
}

// Lookup returns the entry for path.
func (m *Manifest) Lookup(path string) (Entry, bool) {
	i, ok := slices.BinarySearchFunc(m.Entries, path, func(e Entry, p string) int {
		return strings.Compare(e.Path, p)
	})
	if !ok {
		return Entry{}, false
	}
	return m.Entries[i], true
}

// table wraps flatbuffers.Table with slot-indexed accessors.
type table struct {
	t flatbuffers.Table
}

func (t table) field(slot int) flatbuffers.UOffsetT {
	return flatbuffers.UOffsetT(t.t.Offset(flatbuffers.VOffsetT(4 + 2*slot)))
}

func (t table) str(slot int) string {
	if o := t.field(slot); o != 0 {
		return t.t.String(o + t.t.Pos)
	}
	return ""
}

func (t table) u64(slot int) uint64 {
	if o := t.field(slot); o != 0 {
		return t.t.GetUint64(o + t.t.Pos)
	}
	return 0
}

func (t table) i64(slot int) int64 {
	if o := t.field(slot); o != 0 {
		return t.t.GetInt64(o + t.t.Pos)
	}
	return 0
}

func (t table) u32(slot int) uint32 {
	if o := t.field(slot); o != 0 {
		return t.t.GetUint32(o + t.t.Pos)
	}
	return 0
}

func (t table) u8(slot int) byte {
	if o := t.field(slot); o != 0 {
		return t.t.GetByte(o + t.t.Pos)
	}
	return 0
}

func (t table) vectorLen(slot int) int {
	if o := t.field(slot); o != 0 {
		return t.t.VectorLen(o)
	}
	return 0
}

func (t table) vectorTable(slot, i int) table {
	x := t.t.Vector(t.field(slot))
	x += flatbuffers.UOffsetT(i) * flatbuffers.SizeUOffsetT //nolint:gosec // i is bounded by vectorLen
	x = t.t.Indirect(x)
	return table{flatbuffers.Table{Bytes: t.t.Bytes, Pos: x}}
}
