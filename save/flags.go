package save

import (
	"fmt"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/offsets"
)

// Counter returns activity counter i.
func (b *Buffer) Counter(i int) (uint32, error) {
	if err := b.checkCounter(i); err != nil {
		return 0, err
	}
	return ReadAt[uint32](b, offsets.Activity, i*offsets.CounterSize), nil
}

// SetCounter stores activity counter i.
func (b *Buffer) SetCounter(i int, v uint32) error {
	if err := b.checkCounter(i); err != nil {
		return err
	}
	WriteAt(b, offsets.Activity, i*offsets.CounterSize, v)
	return nil
}

func (b *Buffer) checkCounter(i int) error {
	if n := b.table.SlotCount(offsets.Activity); i < 0 || i >= n {
		return fmt.Errorf("%w: activity counter %d of %d", savetype.ErrIndexRange, i, n)
	}
	return nil
}

// FlagCount returns the number of flags a bitfield field holds.
func (b *Buffer) FlagCount(f offsets.Field) int {
	mustKind(f, offsets.KindBitfield)
	return b.table.Len(f) * 8
}

// Flag reports whether flag i of a bitfield field (Recipes or
// ReceivedItems) is set.
func (b *Buffer) Flag(f offsets.Field, i int) (bool, error) {
	if err := b.checkFlag(f, i); err != nil {
		return false, err
	}
	return ReadAt[uint8](b, f, i/8)&(1<<(i%8)) != 0, nil
}

// SetFlag sets or clears flag i of a bitfield field.
func (b *Buffer) SetFlag(f offsets.Field, i int, on bool) error {
	if err := b.checkFlag(f, i); err != nil {
		return err
	}
	v := ReadAt[uint8](b, f, i/8)
	if on {
		v |= 1 << (i % 8)
	} else {
		v &^= 1 << (i % 8)
	}
	WriteAt(b, f, i/8, v)
	return nil
}

// SetFlags sets or clears every flag in [from, to).
func (b *Buffer) SetFlags(f offsets.Field, from, to int, on bool) error {
	if from > to {
		return fmt.Errorf("%w: %s range [%d,%d)", savetype.ErrIndexRange, f, from, to)
	}
	if from == to {
		return nil
	}
	if err := b.checkFlag(f, from); err != nil {
		return err
	}
	if err := b.checkFlag(f, to-1); err != nil {
		return err
	}
	for i := from; i < to; i++ {
		_ = b.SetFlag(f, i, on) //nolint:errcheck // range checked above
	}
	return nil
}

func (b *Buffer) checkFlag(f offsets.Field, i int) error {
	if n := b.FlagCount(f); i < 0 || i >= n {
		return fmt.Errorf("%w: %s flag %d of %d", savetype.ErrIndexRange, f, i, n)
	}
	return nil
}
