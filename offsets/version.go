package offsets

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/horizon/internal/savetype"
)

const (
	// TagOffset is the position of the version tag. It is the same in every
	// supported version.
	TagOffset = 0
	// TagSize is the byte size of the version tag.
	TagSize = 8
)

// Tag is the revision identifier stored at the start of a save.
type Tag struct {
	Major uint32
	Minor uint32
}

func (t Tag) String() string {
	return fmt.Sprintf("%#x.%#x", t.Major, t.Minor)
}

var knownTags = map[Tag]Version{
	{Major: 0x67, Minor: 0x6F}: Version10,
	{Major: 0x6D, Minor: 0x78}: Version11,
}

// TagFor returns the tag written by saves of v.
func TagFor(v Version) (Tag, bool) {
	for tag, tv := range knownTags {
		if tv == v {
			return tag, true
		}
	}
	return Tag{}, false
}

// ReadTag reads the version tag from the start of data.
func ReadTag(data []byte) (Tag, error) {
	if len(data) < TagOffset+TagSize {
		return Tag{}, fmt.Errorf("%w: %d bytes is too short for a version tag", savetype.ErrCorrupt, len(data))
	}
	return Tag{
		Major: binary.LittleEndian.Uint32(data[TagOffset:]),
		Minor: binary.LittleEndian.Uint32(data[TagOffset+4:]),
	}, nil
}

// PutTag writes tag at the start of data. data must hold at least TagSize bytes.
func PutTag(data []byte, tag Tag) {
	binary.LittleEndian.PutUint32(data[TagOffset:], tag.Major)
	binary.LittleEndian.PutUint32(data[TagOffset+4:], tag.Minor)
}

// Select returns the table for a detected tag. Unknown tags fail with
// ErrUnsupportedVersion; no fallback layout is ever guessed.
func Select(tag Tag) (*Table, error) {
	v, ok := knownTags[tag]
	if !ok {
		return nil, fmt.Errorf("%w: tag %s", savetype.ErrUnsupportedVersion, tag)
	}
	return For(v)
}

// Detect reads the tag from data and selects its table.
func Detect(data []byte) (*Table, error) {
	tag, err := ReadTag(data)
	if err != nil {
		return nil, err
	}
	return Select(tag)
}
