package save

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/offsets"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	buf := newBuffer(t, offsets.Version11, 0)
	n := buf.Table().SlotCount(offsets.Activity)

	require.NoError(t, buf.SetCounter(0, 1))
	require.NoError(t, buf.SetCounter(n-1, 0xFFFFFFFF))

	got, err := buf.Counter(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got)
	got, err = buf.Counter(n - 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), got)

	_, err = buf.Counter(n)
	require.ErrorIs(t, err, savetype.ErrIndexRange)
	require.ErrorIs(t, buf.SetCounter(-1, 0), savetype.ErrIndexRange)
}

func TestFlags(t *testing.T) {
	t.Parallel()

	for _, f := range []offsets.Field{offsets.Recipes, offsets.ReceivedItems} {
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			buf := newBuffer(t, offsets.Version11, 0)
			n := buf.FlagCount(f)
			assert.Equal(t, buf.Table().Len(f)*8, n)

			for _, i := range []int{0, 7, 8, 9, n - 1} {
				require.NoError(t, buf.SetFlag(f, i, true))
				on, err := buf.Flag(f, i)
				require.NoError(t, err)
				assert.True(t, on, "flag %d", i)
			}
			off, err := buf.Flag(f, 1)
			require.NoError(t, err)
			assert.False(t, off)

			assert.Equal(t, byte(0x81), buf.Region(f)[0])
			assert.Equal(t, byte(0x03), buf.Region(f)[1])

			require.NoError(t, buf.SetFlag(f, 7, false))
			assert.Equal(t, byte(0x01), buf.Region(f)[0])

			_, err = buf.Flag(f, n)
			require.ErrorIs(t, err, savetype.ErrIndexRange)
		})
	}
}

func TestSetFlagsRange(t *testing.T) {
	t.Parallel()

	buf := newBuffer(t, offsets.Version10, 0)
	require.NoError(t, buf.SetFlags(offsets.Recipes, 0, 16, true))
	assert.Equal(t, []byte{0xFF, 0xFF, 0x00}, buf.Region(offsets.Recipes)[:3])

	require.NoError(t, buf.SetFlags(offsets.Recipes, 4, 12, false))
	assert.Equal(t, []byte{0x0F, 0xF0}, buf.Region(offsets.Recipes)[:2])

	n := buf.FlagCount(offsets.Recipes)
	require.NoError(t, buf.SetFlags(offsets.Recipes, 0, n, true))
	assert.True(t, bytes.Equal(bytes.Repeat([]byte{0xFF}, n/8), buf.Region(offsets.Recipes)))

	require.ErrorIs(t, buf.SetFlags(offsets.Recipes, 0, n+1, true), savetype.ErrIndexRange)
	require.ErrorIs(t, buf.SetFlags(offsets.Recipes, 5, 4, true), savetype.ErrIndexRange)
	require.NoError(t, buf.SetFlags(offsets.Recipes, 3, 3, true))
}

func TestPhoto(t *testing.T) {
	t.Parallel()

	buf := newBuffer(t, offsets.Version11, 0)
	_, ok := buf.PhotoJPEG()
	assert.False(t, ok)

	img := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	require.NoError(t, buf.SetPhoto(append(img, 0xAA, 0xBB)))
	got, ok := buf.PhotoJPEG()
	require.True(t, ok)
	assert.Equal(t, img, got)

	require.NoError(t, buf.SetPhoto(img[:2]))
	_, ok = buf.PhotoJPEG()
	assert.False(t, ok, "unterminated image")
	assert.Equal(t, byte(0), buf.Photo()[2], "tail is zeroed")

	err := buf.SetPhoto(make([]byte, buf.Table().Len(offsets.Photo)+1))
	require.ErrorIs(t, err, savetype.ErrTooLarge)
}
