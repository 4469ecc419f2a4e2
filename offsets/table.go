package offsets

import (
	"fmt"
	"slices"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/internal/sizing"
)

// Follow returns the offset of a block that directly follows a block of
// slotCount slots of slotSize bytes starting at base, separated by padding.
//
// Every derived offset in every layout is computed through Follow.
func Follow(base, slotSize, slotCount, padding int) int {
	return base + slotSize*slotCount + padding
}

// Region is a resolved byte range of one field.
type Region struct {
	Field  Field
	Offset int
	Len    int
}

// End returns the first byte after the region.
func (r Region) End() int {
	return r.Offset + r.Len
}

// Table resolves field offsets for exactly one save-format version.
//
// Tables are immutable and safe for concurrent use.
type Table struct {
	version Version
	l       layout
}

var tables = func() []Table {
	out := make([]Table, len(layouts))
	for _, v := range Versions() {
		out[v] = Table{version: v, l: layouts[v]}
		if err := out[v].Validate(); err != nil {
			panic(fmt.Sprintf("offsets: invalid %s layout: %v", v, err))
		}
	}
	return out
}()

// For returns the table of a supported version.
func For(v Version) (*Table, error) {
	if v == 0 || int(v) >= len(tables) {
		return nil, fmt.Errorf("%w: %s", savetype.ErrUnsupportedVersion, v)
	}
	return &tables[v], nil
}

// Version returns the version the table describes.
func (t *Table) Version() Version {
	return t.version
}

// Offset returns the byte offset of f.
//
// Derived offsets are recomputed from the version constants on every call.
func (t *Table) Offset(f Field) int {
	mustField(f)
	l := &t.l
	switch f {
	case PersonalID:
		return l.personalID
	case Activity:
		return l.activity
	case Wallet:
		return l.wallet
	case NookMiles:
		return l.nookMiles
	case Photo:
		return l.photo
	case Pockets1:
		return l.pockets1
	case Pockets2:
		return Follow(t.Offset(Pockets1), ItemSize, l.pockets1Count, l.pockets2Pad)
	case Storage:
		return Follow(t.Offset(Pockets2), ItemSize, l.pockets2Count, l.storagePad)
	case ReceivedItems:
		return l.receivedItems
	case Bank:
		return l.bank
	default: // Recipes
		return l.recipes
	}
}

// SlotCount returns the number of fixed-size slots in f.
// Fields without slots report their byte length.
func (t *Table) SlotCount(f Field) int {
	mustField(f)
	switch f {
	case Pockets1:
		return t.l.pockets1Count
	case Pockets2:
		return t.l.pockets2Count
	case Storage:
		return t.l.storageCount
	case Activity:
		return t.l.activityCount
	default:
		return t.Len(f) / t.SlotSize(f)
	}
}

// SlotSize returns the byte size of one slot of f.
func (t *Table) SlotSize(f Field) int {
	switch KindOf(f) {
	case KindItems:
		return ItemSize
	case KindCounters:
		return CounterSize
	default:
		return 1
	}
}

// Len returns the byte length of f.
func (t *Table) Len(f Field) int {
	mustField(f)
	switch fieldKinds[f] {
	case KindPersonal:
		return PersonalIDSize
	case KindCurrency:
		return CurrencySize
	case KindCounters:
		return CounterSize * t.l.activityCount
	case KindPhoto:
		return t.l.photoSize
	case KindItems:
		return ItemSize * t.SlotCount(f)
	}
	if f == ReceivedItems {
		return t.l.receivedItemsSize
	}
	return t.l.recipesSize
}

// Padding returns the gap between a derived field and the end of the block
// it follows. It reports false for literal fields.
func (t *Table) Padding(f Field) (prev Field, pad int, ok bool) {
	switch f {
	case Pockets2:
		return Pockets1, t.l.pockets2Pad, true
	case Storage:
		return Pockets2, t.l.storagePad, true
	default:
		return 0, 0, false
	}
}

// KindOf returns how the bytes of f are interpreted.
func KindOf(f Field) Kind {
	mustField(f)
	return fieldKinds[f]
}

// Region returns the resolved range of f.
func (t *Table) Region(f Field) Region {
	return Region{Field: f, Offset: t.Offset(f), Len: t.Len(f)}
}

// Regions returns every region sorted by offset.
func (t *Table) Regions() []Region {
	out := make([]Region, 0, fieldCount)
	for _, f := range Fields() {
		out = append(out, t.Region(f))
	}
	slices.SortFunc(out, func(a, b Region) int {
		return a.Offset - b.Offset
	})
	return out
}

// ExpectedSize returns the end of the highest declared region, which is the
// minimum length of a save of this version.
func (t *Table) ExpectedSize() int {
	end := 0
	for _, r := range t.Regions() {
		end = max(end, r.End())
	}
	return end
}

// Validate checks that every region lies after the version tag, that no two
// regions overlap, and that each derived block follows its predecessor's end
// plus padding.
func (t *Table) Validate() error {
	regions := t.Regions()
	for i, r := range regions {
		if r.Len <= 0 {
			return fmt.Errorf("%w: %s has length %d", savetype.ErrOverlap, r.Field, r.Len)
		}
		if _, ok := sizing.AddInt(r.Offset, r.Len); !ok || r.Offset < TagSize {
			return fmt.Errorf("%w: %s at %#x overlaps the version tag", savetype.ErrOverlap, r.Field, r.Offset)
		}
		for _, o := range regions[i+1:] {
			if sizing.Overlaps(r.Offset, r.Len, o.Offset, o.Len) {
				return fmt.Errorf("%w: %s [%#x,%#x) and %s [%#x,%#x)",
					savetype.ErrOverlap, r.Field, r.Offset, r.End(), o.Field, o.Offset, o.End())
			}
		}
	}
	for _, f := range Fields() {
		prev, pad, ok := t.Padding(f)
		if !ok {
			continue
		}
		if pad < 0 {
			return fmt.Errorf("%w: negative padding before %s", savetype.ErrOverlap, f)
		}
		if want := t.Region(prev).End() + pad; t.Offset(f) != want {
			return fmt.Errorf("%w: %s at %#x, want %#x", savetype.ErrOverlap, f, t.Offset(f), want)
		}
	}
	return nil
}
