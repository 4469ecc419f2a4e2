package save

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/internal/testutil"
	"github.com/meigma/horizon/offsets"
)

// newBuffer returns a zeroed buffer of version v, delta bytes off its
// expected size.
func newBuffer(tb testing.TB, v offsets.Version, delta int) *Buffer {
	tb.Helper()
	buf, err := Open(testutil.NewSave(tb, v, delta))
	require.NoError(tb, err)
	return buf
}

// panicError runs fn and returns the error it panicked with.
func panicError(tb testing.TB, fn func()) (err error) {
	tb.Helper()
	defer func() {
		r := recover()
		require.NotNil(tb, r, "expected panic")
		e, ok := r.(error)
		require.True(tb, ok, "panic value %T is not an error", r)
		err = e
	}()
	fn()
	return nil
}

func TestValidateSize(t *testing.T) {
	t.Parallel()

	for _, v := range offsets.Versions() {
		t.Run(v.String(), func(t *testing.T) {
			t.Parallel()

			exact := newBuffer(t, v, 0)
			assert.True(t, exact.ValidateSize())
			assert.NoError(t, exact.SizeError())

			longer := newBuffer(t, v, 16)
			assert.True(t, longer.ValidateSize())

			short := newBuffer(t, v, -1)
			assert.False(t, short.ValidateSize())
			assert.Equal(t, short.ExpectedSize()-1, short.Size())

			err := short.SizeError()
			require.ErrorIs(t, err, savetype.ErrSizeMismatch)
			var sizeErr *SizeMismatchError
			require.ErrorAs(t, err, &sizeErr)
			assert.Equal(t, v, sizeErr.Version)
			assert.Equal(t, sizeErr.Expected-1, sizeErr.Actual)
		})
	}
}

func TestOpenUnsupported(t *testing.T) {
	t.Parallel()

	data := make([]byte, 64)
	offsets.PutTag(data, offsets.Tag{Major: 1, Minor: 2})
	_, err := Open(data)
	require.ErrorIs(t, err, savetype.ErrUnsupportedVersion)

	_, err = Open([]byte{1, 2})
	require.ErrorIs(t, err, savetype.ErrCorrupt)
}

func TestReadWriteRoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range offsets.Versions() {
		t.Run(v.String(), func(t *testing.T) {
			t.Parallel()
			buf := newBuffer(t, v, 0)
			for _, f := range offsets.Fields() {
				Write[uint8](buf, f, 0xA5)
				assert.Equal(t, uint8(0xA5), Read[uint8](buf, f), "%s uint8", f)

				Write[uint16](buf, f, 0xBEEF)
				assert.Equal(t, uint16(0xBEEF), Read[uint16](buf, f), "%s uint16", f)

				Write[uint32](buf, f, 0xDEADBEEF)
				assert.Equal(t, uint32(0xDEADBEEF), Read[uint32](buf, f), "%s uint32", f)

				Write[uint64](buf, f, 0x0123456789ABCDEF)
				assert.Equal(t, uint64(0x0123456789ABCDEF), Read[uint64](buf, f), "%s uint64", f)
			}
		})
	}
}

func TestWriteTouchesOnlyItsField(t *testing.T) {
	t.Parallel()

	buf := newBuffer(t, offsets.Version11, 0)
	Write[uint64](buf, offsets.Wallet, ^uint64(0))

	off := buf.Table().Offset(offsets.Wallet)
	for i, c := range buf.Bytes() {
		if i >= off && i < off+8 {
			assert.Equal(t, byte(0xFF), c)
			continue
		}
		if i < offsets.TagSize {
			continue
		}
		if c != 0 {
			t.Fatalf("byte %#x changed outside wallet", i)
		}
	}
}

func TestReadAtLittleEndian(t *testing.T) {
	t.Parallel()

	buf := newBuffer(t, offsets.Version11, 0)
	off := buf.Table().Offset(offsets.Activity)
	copy(buf.Bytes()[off+4:], []byte{0x01, 0x02, 0x03, 0x04})

	assert.Equal(t, uint32(0x04030201), ReadAt[uint32](buf, offsets.Activity, 4))
	assert.Equal(t, uint16(0x0201), ReadAt[uint16](buf, offsets.Activity, 4))
}

func TestOutOfBoundsPanics(t *testing.T) {
	t.Parallel()

	t.Run("past region end", func(t *testing.T) {
		t.Parallel()
		buf := newBuffer(t, offsets.Version11, 0)
		err := panicError(t, func() { ReadAt[uint32](buf, offsets.Wallet, 6) })
		require.ErrorIs(t, err, savetype.ErrOutOfBounds)

		var oob *OutOfBoundsError
		require.True(t, errors.As(err, &oob))
		assert.Equal(t, offsets.Wallet, oob.Field)
		assert.Equal(t, 4, oob.Size)
	})

	t.Run("negative offset", func(t *testing.T) {
		t.Parallel()
		buf := newBuffer(t, offsets.Version11, 0)
		err := panicError(t, func() { WriteAt[uint8](buf, offsets.Bank, -1, 1) })
		require.ErrorIs(t, err, savetype.ErrOutOfBounds)
	})

	t.Run("past buffer end", func(t *testing.T) {
		t.Parallel()
		buf := newBuffer(t, offsets.Version10, -1)
		assert.False(t, buf.Has(offsets.Recipes))
		assert.True(t, buf.Has(offsets.Bank))

		err := panicError(t, func() { buf.Region(offsets.Recipes) })
		require.ErrorIs(t, err, savetype.ErrOutOfBounds)

		// Fields fully inside a short buffer stay usable.
		Write[uint16](buf, offsets.Bank, 7)
		assert.Equal(t, uint16(7), Read[uint16](buf, offsets.Bank))
	})
}

func TestRegion(t *testing.T) {
	t.Parallel()

	buf := newBuffer(t, offsets.Version11, 0)
	raw := make([]byte, offsets.CurrencySize)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	require.NoError(t, buf.SetRegion(offsets.NookMiles, raw))

	got := buf.Region(offsets.NookMiles)
	assert.Equal(t, raw, got)

	got[0] = 0xFF
	assert.Equal(t, byte(1), buf.Region(offsets.NookMiles)[0], "Region returns a copy")

	err := buf.SetRegion(offsets.NookMiles, raw[:4])
	require.ErrorIs(t, err, savetype.ErrTooLarge)
}

func TestFieldKindPanics(t *testing.T) {
	t.Parallel()

	buf := newBuffer(t, offsets.Version11, 0)
	err := panicError(t, func() { buf.Items(offsets.Wallet) })
	require.ErrorIs(t, err, savetype.ErrFieldKind)

	err = panicError(t, func() { _, _ = buf.Currency(offsets.Storage) })
	require.ErrorIs(t, err, savetype.ErrFieldKind)
}
