package save

import (
	"encoding/binary"

	"github.com/meigma/horizon/offsets"
)

// Scalar is the set of fixed-width values that can be read from and written
// to a field. Values are stored little-endian.
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Read returns the value of type T at the start of field f.
func Read[T Scalar](b *Buffer, f offsets.Field) T {
	return ReadAt[T](b, f, 0)
}

// Write stores v at the start of field f.
func Write[T Scalar](b *Buffer, f offsets.Field, v T) {
	WriteAt(b, f, 0, v)
}

// ReadAt returns the value of type T rel bytes into field f.
//
// It panics with *OutOfBoundsError if the value does not lie inside both the
// region of f and the buffer.
func ReadAt[T Scalar](b *Buffer, f offsets.Field, rel int) T {
	var v T
	p := b.span(f, rel, binary.Size(v))
	switch len(p) {
	case 1:
		return T(p[0])
	case 2:
		return T(binary.LittleEndian.Uint16(p))
	case 4:
		return T(binary.LittleEndian.Uint32(p))
	default:
		return T(binary.LittleEndian.Uint64(p))
	}
}

// WriteAt stores v rel bytes into field f.
//
// It panics with *OutOfBoundsError if the value does not lie inside both the
// region of f and the buffer.
func WriteAt[T Scalar](b *Buffer, f offsets.Field, rel int, v T) {
	p := b.span(f, rel, binary.Size(v))
	switch len(p) {
	case 1:
		p[0] = uint8(v)
	case 2:
		binary.LittleEndian.PutUint16(p, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(p, uint32(v))
	default:
		binary.LittleEndian.PutUint64(p, uint64(v))
	}
}
