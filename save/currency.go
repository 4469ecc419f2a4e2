package save

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/offsets"
)

const encryptionConstant uint32 = 0x80E32B11

// EncryptedInt is the 8-byte obfuscated form used for balances.
//
// Layout: encrypted value (uint32), adjust (uint16), shift (uint8),
// checksum (uint8).
type EncryptedInt struct {
	Encrypted uint32
	Adjust    uint16
	Shift     uint8
	Checksum  uint8
}

// EncryptInt encodes value with the given adjust and shift. The shift byte
// is stored as given; only its low five bits affect the rotation.
func EncryptInt(value uint32, adjust uint16, shift uint8) EncryptedInt {
	enc := bits.RotateLeft32(value-encryptionConstant+uint32(adjust), int(shift%32))
	return EncryptedInt{
		Encrypted: enc,
		Adjust:    adjust,
		Shift:     shift,
		Checksum:  intChecksum(enc),
	}
}

// Value decodes the plain value. It fails with ErrChecksum when the stored
// checksum does not match the encrypted value.
func (e EncryptedInt) Value() (uint32, error) {
	if want := intChecksum(e.Encrypted); e.Checksum != want {
		return 0, fmt.Errorf("%w: got %#02x, want %#02x", savetype.ErrChecksum, e.Checksum, want)
	}
	return bits.RotateLeft32(e.Encrypted, -int(e.Shift%32)) + encryptionConstant - uint32(e.Adjust), nil
}

// DecodeEncryptedInt reads an EncryptedInt from the first 8 bytes of p.
func DecodeEncryptedInt(p []byte) EncryptedInt {
	_ = p[offsets.CurrencySize-1]
	return EncryptedInt{
		Encrypted: binary.LittleEndian.Uint32(p[0:]),
		Adjust:    binary.LittleEndian.Uint16(p[4:]),
		Shift:     p[6],
		Checksum:  p[7],
	}
}

// Encode writes e into the first 8 bytes of p.
func (e EncryptedInt) Encode(p []byte) {
	_ = p[offsets.CurrencySize-1]
	binary.LittleEndian.PutUint32(p[0:], e.Encrypted)
	binary.LittleEndian.PutUint16(p[4:], e.Adjust)
	p[6] = e.Shift
	p[7] = e.Checksum
}

func intChecksum(enc uint32) uint8 {
	return uint8(enc) + uint8(enc>>8) + uint8(enc>>16) + uint8(enc>>24) + 0x2D
}

// EncryptedInt returns the raw encrypted form of a currency field.
func (b *Buffer) EncryptedInt(f offsets.Field) EncryptedInt {
	mustKind(f, offsets.KindCurrency)
	return DecodeEncryptedInt(b.span(f, 0, offsets.CurrencySize))
}

// Currency returns the decoded balance stored in f (Wallet, NookMiles or Bank).
func (b *Buffer) Currency(f offsets.Field) (uint32, error) {
	v, err := b.EncryptedInt(f).Value()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f, err)
	}
	return v, nil
}

// SetCurrency stores value in f, keeping the field's existing adjust and
// shift so the game re-reads it with the same parameters.
func (b *Buffer) SetCurrency(f offsets.Field, value uint32) {
	old := b.EncryptedInt(f)
	EncryptInt(value, old.Adjust, old.Shift).Encode(b.span(f, 0, offsets.CurrencySize))
}
