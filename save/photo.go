package save

import (
	"bytes"
	"fmt"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/offsets"
)

var (
	jpegStart = []byte{0xFF, 0xD8}
	jpegEnd   = []byte{0xFF, 0xD9}
)

// Photo returns a copy of the whole photo slot.
func (b *Buffer) Photo() []byte {
	mustKind(offsets.Photo, offsets.KindPhoto)
	return b.Region(offsets.Photo)
}

// PhotoJPEG returns the JPEG image stored in the photo slot, up to and
// including its end marker. It reports false when the slot holds no image.
func (b *Buffer) PhotoJPEG() ([]byte, bool) {
	p := b.span(offsets.Photo, 0, b.table.Len(offsets.Photo))
	if !bytes.HasPrefix(p, jpegStart) {
		return nil, false
	}
	end := bytes.Index(p[len(jpegStart):], jpegEnd)
	if end < 0 {
		return nil, false
	}
	n := len(jpegStart) + end + len(jpegEnd)
	out := make([]byte, n)
	copy(out, p[:n])
	return out, true
}

// SetPhoto stores img at the start of the photo slot and zeroes the rest.
func (b *Buffer) SetPhoto(img []byte) error {
	n := b.table.Len(offsets.Photo)
	if len(img) > n {
		return fmt.Errorf("%w: photo is %d bytes, slot holds %d", savetype.ErrTooLarge, len(img), n)
	}
	p := b.span(offsets.Photo, 0, n)
	clear(p[copy(p, img):])
	return nil
}
