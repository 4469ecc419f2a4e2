// Package save provides bounds-checked access to the fields of a personal
// save held in memory.
//
// A [Buffer] owns the raw bytes and the [offsets.Table] of their version.
// Every access resolves its position through the table:
//
//	buf, err := save.Open(data)
//	if err != nil {
//	    return err
//	}
//	if !buf.ValidateSize() {
//	    // ask the user before continuing
//	}
//	bells, err := buf.Currency(offsets.Wallet)
//	buf.SetCurrency(offsets.Wallet, bells+1000)
//	pocket := buf.Items(offsets.Pockets1)
//
// Scalar values can also be read and written directly with [Read], [Write],
// [ReadAt] and [WriteAt].
//
// Accesses outside a region or the buffer panic with [*OutOfBoundsError]:
// they mean the table and the access disagree, which no input can fix.
// Caller-supplied indices that are out of range return errors instead.
//
// Buffers perform no I/O. Persist [Buffer.Bytes] to save changes.
package save
