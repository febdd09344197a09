package vmsnparser

import "encoding/binary"

// Snapshot header magics. Each maps to a version, which in turn fixes the
// width of every "offset-sized" integer the format uses.
const (
	magicV0 uint32 = 0xBED2BED0
	magicV1 uint32 = 0xBAD1BAD1
	magicV2 uint32 = 0xBED2BED2
	magicV3 uint32 = 0xBED3BED3
)

const (
	headerSize     = 12 // magic (4) + group count (4), plus 4 bytes reserved
	groupDescSize  = 80
	groupNameSize  = 64
	groupOffsetOff = 64
)

// versionForMagic resolves the on-disk magic to a format version and the
// width, in bytes, of an "offset-sized" integer for that version. ok is
// false for any magic not in the table (ErrBadMagic / ErrWrongFormat,
// depending on caller).
func versionForMagic(magic uint32) (version int, offsetWidth int, ok bool) {
	switch magic {
	case magicV0:
		return 0, 4, true
	case magicV1:
		return 1, 8, true
	case magicV2:
		return 2, 8, true
	case magicV3:
		return 3, 8, true
	default:
		return 0, 0, false
	}
}

// byteOrder is fixed little-endian throughout the format; there is no
// runtime toggle.
var byteOrder = binary.LittleEndian
