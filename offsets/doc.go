// Package offsets resolves named byte offsets in personal save data for each
// supported save-format version.
//
// A [Table] describes exactly one version. Most offsets are literals from the
// version's constant table; blocks that directly follow a variable-length
// block are derived with [Follow] from the predecessor's offset, slot size,
// slot count and a version-specific padding:
//
//	Pockets2 = Follow(Pockets1, ItemSize, pockets1Count, 0x18)
//	Storage  = Follow(Pockets2, ItemSize, pockets2Count, 0x24)
//
// When a new revision inserts data between two blocks, only the literal
// offsets and padding constants of its table change; derived offsets shift
// with them.
//
// Select the table for a save with [Detect], or with [ReadTag] and [Select]
// when the tag is needed separately:
//
//	t, err := offsets.Detect(data)
//	if errors.Is(err, horizon.ErrUnsupportedVersion) {
//	    // unknown revision; do not guess
//	}
//	off := t.Offset(offsets.Wallet)
package offsets
