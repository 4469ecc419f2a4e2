package offsets

import "fmt"

// Version identifies a supported save-format revision.
type Version uint8

const (
	// Version10 is the 1.0.0 layout.
	Version10 Version = iota + 1
	// Version11 is the 1.1.0 layout.
	Version11
)

// String returns the game revision for the version.
func (v Version) String() string {
	switch v {
	case Version10:
		return "1.0.0"
	case Version11:
		return "1.1.0"
	default:
		return fmt.Sprintf("version(%d)", uint8(v))
	}
}

// Sizes shared by every layout.
const (
	// ItemSize is the byte size of one item slot.
	ItemSize = 8
	// CurrencySize is the byte size of an encrypted integer.
	CurrencySize = 8
	// PersonalIDSize is the byte size of the identity block.
	PersonalIDSize = 0x38
	// CounterSize is the byte size of one activity counter.
	CounterSize = 4
)

// layout is the constant table for one version. Offsets not listed here are
// derived by Table from these values.
type layout struct {
	personalID    int
	activity      int
	nookMiles     int
	wallet        int
	photo         int
	pockets1      int
	receivedItems int
	bank          int
	recipes       int

	activityCount     int
	photoSize         int
	pockets1Count     int
	pockets2Count     int
	storageCount      int
	receivedItemsSize int
	recipesSize       int

	// pockets2Pad separates the end of Pockets1 from Pockets2.
	pockets2Pad int
	// storagePad separates the end of Pockets2 from Storage.
	storagePad int
}

// layouts is indexed by Version. The zero entry is unused.
var layouts = [...]layout{
	Version10: {
		personalID:    0xB0A0,
		activity:      0xCF6C,
		nookMiles:     0x11570,
		wallet:        0x11578,
		photo:         0x115AC,
		pockets1:      0x35BD4,
		receivedItems: 0x3FC1C,
		bank:          0x68BE4,
		recipes:       0x68BF4,

		activityCount:     0x400,
		photoSize:         0x24000,
		pockets1Count:     20,
		pockets2Count:     20,
		storageCount:      5000,
		receivedItemsSize: 0x1000,
		recipesSize:       0x192C,

		pockets2Pad: 0x18,
		storagePad:  0x24,
	},
	// 1.1.0 inserted data ahead of every block; the player blocks moved by
	// 0x18, the pockets by 0x4C and the bank by 0x50.
	Version11: {
		personalID:    0xB0B8,
		activity:      0xCF84,
		nookMiles:     0x11588,
		wallet:        0x11590,
		photo:         0x115C4,
		pockets1:      0x35C20,
		receivedItems: 0x3FC68,
		bank:          0x68C34,
		recipes:       0x68C44,

		activityCount:     0x400,
		photoSize:         0x24000,
		pockets1Count:     20,
		pockets2Count:     20,
		storageCount:      5000,
		receivedItemsSize: 0x1000,
		recipesSize:       0x192C,

		pockets2Pad: 0x18,
		storagePad:  0x24,
	},
}

// Versions returns every supported version, oldest first.
func Versions() []Version {
	return []Version{Version10, Version11}
}
