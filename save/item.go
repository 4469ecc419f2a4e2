package save

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/offsets"
)

// ItemNone is the item ID of an empty slot.
const ItemNone uint16 = 0xFFFE

// Item is one 8-byte inventory slot.
type Item struct {
	ID              uint16
	SystemParam     uint8
	AdditionalParam uint8
	// FreeParam holds the stack count in its low half and the use count in
	// its high half.
	FreeParam uint32
}

// EmptyItem is the content of an unused slot.
var EmptyItem = Item{ID: ItemNone}

// NewItem returns an item with the given ID and stack count.
func NewItem(id, count uint16) Item {
	return Item{ID: id, FreeParam: uint32(count)}
}

// IsNone reports whether the slot is empty.
func (i Item) IsNone() bool {
	return i.ID == ItemNone
}

// Count returns the stack count.
func (i Item) Count() uint16 {
	return uint16(i.FreeParam)
}

// UseCount returns the remaining uses of a tool.
func (i Item) UseCount() uint16 {
	return uint16(i.FreeParam >> 16)
}

func (i Item) String() string {
	if i.IsNone() {
		return "(none)"
	}
	return fmt.Sprintf("%#04x x%d", i.ID, i.Count())
}

// DecodeItem reads an Item from the first 8 bytes of p.
func DecodeItem(p []byte) Item {
	_ = p[offsets.ItemSize-1]
	return Item{
		ID:              binary.LittleEndian.Uint16(p[0:]),
		SystemParam:     p[2],
		AdditionalParam: p[3],
		FreeParam:       binary.LittleEndian.Uint32(p[4:]),
	}
}

// Encode writes i into the first 8 bytes of p.
func (i Item) Encode(p []byte) {
	_ = p[offsets.ItemSize-1]
	binary.LittleEndian.PutUint16(p[0:], i.ID)
	p[2] = i.SystemParam
	p[3] = i.AdditionalParam
	binary.LittleEndian.PutUint32(p[4:], i.FreeParam)
}

// Items returns every slot of an item field (Pockets1, Pockets2 or Storage).
func (b *Buffer) Items(f offsets.Field) []Item {
	mustKind(f, offsets.KindItems)
	n := b.table.SlotCount(f)
	p := b.span(f, 0, n*offsets.ItemSize)
	out := make([]Item, n)
	for i := range out {
		out[i] = DecodeItem(p[i*offsets.ItemSize:])
	}
	return out
}

// SetItems replaces every slot of f. items must have exactly one entry per slot.
func (b *Buffer) SetItems(f offsets.Field, items []Item) error {
	mustKind(f, offsets.KindItems)
	n := b.table.SlotCount(f)
	if len(items) != n {
		return fmt.Errorf("%w: %s has %d slots, got %d items", savetype.ErrIndexRange, f, n, len(items))
	}
	p := b.span(f, 0, n*offsets.ItemSize)
	for i, it := range items {
		it.Encode(p[i*offsets.ItemSize:])
	}
	return nil
}

// Item returns one slot of f.
func (b *Buffer) Item(f offsets.Field, slot int) (Item, error) {
	if err := b.checkSlot(f, slot); err != nil {
		return Item{}, err
	}
	return DecodeItem(b.span(f, slot*offsets.ItemSize, offsets.ItemSize)), nil
}

// SetItem replaces one slot of f.
func (b *Buffer) SetItem(f offsets.Field, slot int, it Item) error {
	if err := b.checkSlot(f, slot); err != nil {
		return err
	}
	it.Encode(b.span(f, slot*offsets.ItemSize, offsets.ItemSize))
	return nil
}

// ClearItems empties every slot of f.
func (b *Buffer) ClearItems(f offsets.Field) {
	items := make([]Item, b.table.SlotCount(f))
	for i := range items {
		items[i] = EmptyItem
	}
	_ = b.SetItems(f, items) //nolint:errcheck // length matches by construction
}

func (b *Buffer) checkSlot(f offsets.Field, slot int) error {
	mustKind(f, offsets.KindItems)
	if n := b.table.SlotCount(f); slot < 0 || slot >= n {
		return fmt.Errorf("%w: %s slot %d of %d", savetype.ErrIndexRange, f, slot, n)
	}
	return nil
}
