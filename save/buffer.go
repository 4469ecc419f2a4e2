package save

import (
	"fmt"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/internal/sizing"
	"github.com/meigma/horizon/offsets"
)

// Buffer owns the bytes of one personal save and resolves every field
// access through its offset table.
//
// A Buffer is not safe for concurrent mutation.
type Buffer struct {
	data  []byte
	table *offsets.Table
}

// New wraps data with the table of its version. The buffer takes ownership
// of data; callers must not modify it afterwards.
//
// The length of data is not checked; use ValidateSize.
func New(data []byte, table *offsets.Table) *Buffer {
	return &Buffer{data: data, table: table}
}

// Open detects the version of data and wraps it.
func Open(data []byte) (*Buffer, error) {
	table, err := offsets.Detect(data)
	if err != nil {
		return nil, err
	}
	return New(data, table), nil
}

// Table returns the offset table bound to the buffer.
func (b *Buffer) Table() *offsets.Table {
	return b.table
}

// Version returns the save-format version of the buffer.
func (b *Buffer) Version() offsets.Version {
	return b.table.Version()
}

// Size returns the actual length of the buffer.
func (b *Buffer) Size() int {
	return len(b.data)
}

// ExpectedSize returns the minimum length for the buffer's version.
func (b *Buffer) ExpectedSize() int {
	return b.table.ExpectedSize()
}

// ValidateSize reports whether the buffer is at least as long as its
// version's expected size. A mismatch is not an error by itself; callers
// decide whether to continue.
func (b *Buffer) ValidateSize() bool {
	return len(b.data) >= b.table.ExpectedSize()
}

// SizeError returns a *SizeMismatchError describing a failed ValidateSize,
// or nil when the size is valid.
func (b *Buffer) SizeError() error {
	if b.ValidateSize() {
		return nil
	}
	return &SizeMismatchError{
		Version:  b.table.Version(),
		Actual:   len(b.data),
		Expected: b.table.ExpectedSize(),
	}
}

// Has reports whether the whole region of f lies inside the buffer.
// It is false only for fields past the end of a short buffer.
func (b *Buffer) Has(f offsets.Field) bool {
	r := b.table.Region(f)
	return sizing.Within(r.Offset, r.Len, len(b.data))
}

// Region returns a copy of the bytes of f.
func (b *Buffer) Region(f offsets.Field) []byte {
	p := b.span(f, 0, b.table.Len(f))
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

// SetRegion overwrites the bytes of f. p must be exactly as long as the region.
func (b *Buffer) SetRegion(f offsets.Field, p []byte) error {
	if n := b.table.Len(f); len(p) != n {
		return fmt.Errorf("%w: %s takes %d bytes, got %d", savetype.ErrTooLarge, f, n, len(p))
	}
	copy(b.span(f, 0, len(p)), p)
	return nil
}

// Bytes returns the backing slice for persisting the buffer.
// The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// span returns the n bytes at rel within the region of f.
// It panics with *OutOfBoundsError when the range leaves the region or the buffer.
func (b *Buffer) span(f offsets.Field, rel, n int) []byte {
	r := b.table.Region(f)
	if rel < 0 || n < 0 || !sizing.Within(rel, n, r.Len) {
		panic(&OutOfBoundsError{Field: f, Offset: r.Offset + rel, Size: n, Limit: r.End()})
	}
	abs := r.Offset + rel
	if !sizing.Within(abs, n, len(b.data)) {
		panic(&OutOfBoundsError{Field: f, Offset: abs, Size: n, Limit: len(b.data)})
	}
	return b.data[abs : abs+n]
}

// mustKind panics when f is not of kind k.
func mustKind(f offsets.Field, k offsets.Kind) {
	if got := offsets.KindOf(f); got != k {
		panic(fmt.Errorf("%w: %s is %s, want %s", savetype.ErrFieldKind, f, got, k))
	}
}

// OutOfBoundsError is the panic value of a field access outside its region
// or the buffer. It indicates a layout bug, not bad input.
type OutOfBoundsError struct {
	Field  offsets.Field
	Offset int
	Size   int
	Limit  int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%v: %s access [%#x,+%d) beyond %#x", savetype.ErrOutOfBounds, e.Field, e.Offset, e.Size, e.Limit)
}

func (e *OutOfBoundsError) Unwrap() error {
	return savetype.ErrOutOfBounds
}

// SizeMismatchError describes a buffer whose length disagrees with its version.
type SizeMismatchError struct {
	Version  offsets.Version
	Actual   int
	Expected int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%v: %s save is %#x bytes, expected %#x", savetype.ErrSizeMismatch, e.Version, e.Actual, e.Expected)
}

func (e *SizeMismatchError) Unwrap() error {
	return savetype.ErrSizeMismatch
}
