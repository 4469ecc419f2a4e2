package save

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/meigma/horizon/internal/savetype"
	"github.com/meigma/horizon/offsets"
)

// Identity block layout.
const (
	townIDOffset     = 0x00
	townNameOffset   = 0x04
	playerIDOffset   = 0x1C
	playerNameOffset = 0x20

	// NameLength is the maximum number of UTF-16 code units in a name.
	NameLength = 10
	nameBytes  = 2 * NameLength
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// PersonalID identifies the town and the player owning a save.
type PersonalID struct {
	TownID     uint32
	TownName   string
	PlayerID   uint32
	PlayerName string
}

// Personal decodes the identity block.
func (b *Buffer) Personal() (PersonalID, error) {
	mustKind(offsets.PersonalID, offsets.KindPersonal)
	p := b.span(offsets.PersonalID, 0, offsets.PersonalIDSize)

	town, err := decodeName(p[townNameOffset : townNameOffset+nameBytes])
	if err != nil {
		return PersonalID{}, fmt.Errorf("town name: %w", err)
	}
	player, err := decodeName(p[playerNameOffset : playerNameOffset+nameBytes])
	if err != nil {
		return PersonalID{}, fmt.Errorf("player name: %w", err)
	}
	return PersonalID{
		TownID:     binary.LittleEndian.Uint32(p[townIDOffset:]),
		TownName:   town,
		PlayerID:   binary.LittleEndian.Uint32(p[playerIDOffset:]),
		PlayerName: player,
	}, nil
}

// SetPersonal encodes id into the identity block. Bytes of the block not
// covered by PersonalID are left untouched.
func (b *Buffer) SetPersonal(id PersonalID) error {
	town, err := encodeName(id.TownName)
	if err != nil {
		return fmt.Errorf("town name: %w", err)
	}
	player, err := encodeName(id.PlayerName)
	if err != nil {
		return fmt.Errorf("player name: %w", err)
	}

	p := b.span(offsets.PersonalID, 0, offsets.PersonalIDSize)
	binary.LittleEndian.PutUint32(p[townIDOffset:], id.TownID)
	copy(p[townNameOffset:townNameOffset+nameBytes], town)
	binary.LittleEndian.PutUint32(p[playerIDOffset:], id.PlayerID)
	copy(p[playerNameOffset:playerNameOffset+nameBytes], player)
	return nil
}

// BackupTitle returns a human-readable name for the save's owner, used to
// key backups. Saves without readable names fall back to their IDs.
func (b *Buffer) BackupTitle() string {
	id, err := b.Personal()
	if err == nil && (strings.TrimSpace(id.TownName) != "" || strings.TrimSpace(id.PlayerName) != "") {
		return fmt.Sprintf("%s - %s", id.TownName, id.PlayerName)
	}
	return fmt.Sprintf("%08X-%08X", id.TownID, id.PlayerID)
}

// decodeName decodes a NUL-terminated UTF-16LE name.
func decodeName(p []byte) (string, error) {
	for i := 0; i+1 < len(p); i += 2 {
		if p[i] == 0 && p[i+1] == 0 {
			p = p[:i]
			break
		}
	}
	out, err := utf16le.NewDecoder().Bytes(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeName returns name as a zero-padded UTF-16LE field.
func encodeName(name string) ([]byte, error) {
	if strings.ContainsRune(name, 0) {
		return nil, fmt.Errorf("%w: %q contains NUL", savetype.ErrTooLarge, name)
	}
	enc, err := utf16le.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return nil, err
	}
	if len(enc) > nameBytes {
		return nil, fmt.Errorf("%w: %q is longer than %d characters", savetype.ErrTooLarge, name, NameLength)
	}
	out := make([]byte, nameBytes)
	copy(out, enc)
	return out, nil
}
