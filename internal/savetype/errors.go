// Package savetype holds the sentinel errors shared by the horizon packages.
package savetype

import "errors"

// Sentinel errors for save file operations.
var (
	// ErrUnsupportedVersion is returned when a version tag is not recognized.
	ErrUnsupportedVersion = errors.New("horizon: unsupported save version")

	// ErrCorrupt is returned when save data is too short or malformed to
	// carry a version tag.
	ErrCorrupt = errors.New("horizon: corrupt save data")

	// ErrSizeMismatch is returned when the save length disagrees with the
	// selected layout and the caller declined to continue.
	ErrSizeMismatch = errors.New("horizon: save size mismatch")

	// ErrOutOfBounds is carried by panics for field accesses outside a
	// region or the buffer.
	ErrOutOfBounds = errors.New("horizon: field access out of bounds")

	// ErrFieldKind is carried by panics when a typed accessor is used on a
	// field of a different kind.
	ErrFieldKind = errors.New("horizon: wrong field kind")

	// ErrIndexRange is returned when a caller-supplied slot, counter or flag
	// index is outside its region.
	ErrIndexRange = errors.New("horizon: index out of range")

	// ErrTooLarge is returned when a value does not fit its region.
	ErrTooLarge = errors.New("horizon: value too large for field")

	// ErrOverlap is returned when a layout declares overlapping regions.
	ErrOverlap = errors.New("horizon: overlapping regions")

	// ErrChecksum is returned when an encrypted value fails its checksum.
	ErrChecksum = errors.New("horizon: checksum mismatch")

	// ErrSizeOverflow is returned when offset arithmetic overflows.
	ErrSizeOverflow = errors.New("horizon: size overflow")

	// ErrBackupIO is returned when a backup cannot be created.
	ErrBackupIO = errors.New("horizon: backup failed")

	// ErrDigestMismatch is returned when backed-up content does not match
	// its recorded digest.
	ErrDigestMismatch = errors.New("horizon: digest mismatch")

	// ErrMissingFile is returned when a manifest entry has no file on disk.
	ErrMissingFile = errors.New("horizon: missing backup file")

	// ErrInvalidManifest is returned when a backup manifest cannot be parsed.
	ErrInvalidManifest = errors.New("horizon: invalid backup manifest")

	// ErrAborted is returned when the user cancels an open.
	ErrAborted = errors.New("horizon: open aborted")

	// ErrClosed is returned when a closed session is used.
	ErrClosed = errors.New("horizon: session closed")
)
