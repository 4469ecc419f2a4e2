package horizon

import (
	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/save"
)

// Errors re-exported from internal/savetype.
var (
	// ErrUnsupportedVersion is returned when the version tag is not recognized.
	ErrUnsupportedVersion = savetype.ErrUnsupportedVersion

	// ErrCorrupt is returned when the file is too short to carry a version tag.
	ErrCorrupt = savetype.ErrCorrupt

	// ErrSizeMismatch is returned when the file size disagrees with its
	// version and the prompter declined to continue.
	ErrSizeMismatch = savetype.ErrSizeMismatch

	// ErrOutOfBounds is carried by panics for accesses outside a field.
	ErrOutOfBounds = savetype.ErrOutOfBounds

	// ErrFieldKind is carried by panics when an accessor is used on a field
	// of another kind.
	ErrFieldKind = savetype.ErrFieldKind

	// ErrIndexRange is returned for slot, counter or flag indexes outside a field.
	ErrIndexRange = savetype.ErrIndexRange

	// ErrTooLarge is returned when a value does not fit its field.
	ErrTooLarge = savetype.ErrTooLarge

	// ErrOverlap is returned when an offset table declares overlapping fields.
	ErrOverlap = savetype.ErrOverlap

	// ErrChecksum is returned when an encrypted value fails its checksum.
	ErrChecksum = savetype.ErrChecksum

	// ErrBackupIO is returned when a backup cannot be created.
	ErrBackupIO = savetype.ErrBackupIO

	// ErrDigestMismatch is returned when backed-up content was altered.
	ErrDigestMismatch = savetype.ErrDigestMismatch

	// ErrMissingFile is returned when a backup lacks a recorded file.
	ErrMissingFile = savetype.ErrMissingFile

	// ErrInvalidManifest is returned when a backup manifest cannot be read.
	ErrInvalidManifest = savetype.ErrInvalidManifest

	// ErrAborted is returned when the prompter cancels an open.
	ErrAborted = savetype.ErrAborted

	// ErrClosed is returned when a closed Session is used.
	ErrClosed = savetype.ErrClosed
)

// SizeMismatchError describes a save whose length disagrees with its version.
type SizeMismatchError = save.SizeMismatchError

// OutOfBoundsError is the panic value of a field access outside its region.
type OutOfBoundsError = save.OutOfBoundsError
