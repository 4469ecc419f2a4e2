package offsets

import "fmt"

// Field names a region of the personal save data.
//
// The set of fields is closed and identical across every supported version;
// only the resolved offsets differ.
type Field uint8

const (
	// PersonalID holds the town and player identity block.
	PersonalID Field = iota
	// Activity holds the activity log counters.
	Activity
	// Wallet holds the encrypted bell balance carried by the player.
	Wallet
	// NookMiles holds the encrypted points balance.
	NookMiles
	// Photo holds the player passport photo.
	Photo
	// Pockets1 holds the first inventory pocket.
	Pockets1
	// Pockets2 holds the second inventory pocket. It directly follows Pockets1.
	Pockets2
	// Storage holds the home storage slots. It directly follows Pockets2.
	Storage
	// ReceivedItems holds the received-item flags.
	ReceivedItems
	// Bank holds the encrypted savings balance.
	Bank
	// Recipes holds the known-recipe flags.
	Recipes

	fieldCount
)

var fieldNames = [fieldCount]string{
	PersonalID:    "personal_id",
	Activity:      "activity",
	Wallet:        "wallet",
	NookMiles:     "nook_miles",
	Photo:         "photo",
	Pockets1:      "pockets1",
	Pockets2:      "pockets2",
	Storage:       "storage",
	ReceivedItems: "received_items",
	Bank:          "bank",
	Recipes:       "recipes",
}

// String returns the field name.
func (f Field) String() string {
	if f >= fieldCount {
		return fmt.Sprintf("field(%d)", uint8(f))
	}
	return fieldNames[f]
}

// Fields returns every declared field in declaration order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Kind describes how the bytes of a field are interpreted.
type Kind uint8

const (
	// KindPersonal is the town/player identity block.
	KindPersonal Kind = iota
	// KindCounters is an array of little-endian uint32 counters.
	KindCounters
	// KindCurrency is an 8-byte encrypted integer.
	KindCurrency
	// KindPhoto is an opaque image slot.
	KindPhoto
	// KindItems is an array of 8-byte item slots.
	KindItems
	// KindBitfield is a flag array, one bit per index.
	KindBitfield
)

var fieldKinds = [fieldCount]Kind{
	PersonalID:    KindPersonal,
	Activity:      KindCounters,
	Wallet:        KindCurrency,
	NookMiles:     KindCurrency,
	Photo:         KindPhoto,
	Pockets1:      KindItems,
	Pockets2:      KindItems,
	Storage:       KindItems,
	ReceivedItems: KindBitfield,
	Bank:          KindCurrency,
	Recipes:       KindBitfield,
}

func (k Kind) String() string {
	switch k {
	case KindPersonal:
		return "personal"
	case KindCounters:
		return "counters"
	case KindCurrency:
		return "currency"
	case KindPhoto:
		return "photo"
	case KindItems:
		return "items"
	case KindBitfield:
		return "bitfield"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// mustField panics for values outside the closed field set.
func mustField(f Field) {
	if f >= fieldCount {
		panic(fmt.Sprintf("offsets: unknown field %d", uint8(f)))
	}
}
