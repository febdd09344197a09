package vmsnparser_test

import (
	"bytes"
	"encoding/binary"
)

// memSource is a ByteSource backed by an in-memory buffer, used to build
// synthetic snapshots without touching the filesystem.
type memSource struct {
	*bytes.Reader
}

func newMemSource(b []byte) *memSource {
	return &memSource{bytes.NewReader(b)}
}

func (m *memSource) Close() error { return nil }

// synthTag is one record to place in a synthetic tag stream.
type synthTag struct {
	name       string
	indices    []uint32
	payload    []byte
	compressed bool
}

func writeOffset(buf *bytes.Buffer, v uint64, width int) {
	if width == 4 {
		binary.Write(buf, binary.LittleEndian, uint32(v))
	} else {
		binary.Write(buf, binary.LittleEndian, v)
	}
}

// encodeTagStream renders tags as a tag stream terminated by the
// two-zero-byte sentinel.
func encodeTagStream(tags []synthTag, offsetWidth int) []byte {
	buf := &bytes.Buffer{}
	for _, t := range tags {
		dims := len(t.indices)
		longForm := len(t.payload) >= 62 || t.compressed

		var encSize byte
		switch {
		case t.compressed:
			encSize = 63
		case longForm:
			encSize = 62
		default:
			encSize = byte(len(t.payload))
		}

		flags := byte(dims&0x03)<<6 | encSize
		buf.WriteByte(flags)
		buf.WriteByte(byte(len(t.name)))
		buf.WriteString(t.name)
		for _, idx := range t.indices {
			binary.Write(buf, binary.LittleEndian, idx)
		}
		if longForm {
			writeOffset(buf, uint64(len(t.payload)), offsetWidth)
			writeOffset(buf, uint64(len(t.payload)), offsetWidth)
			buf.Write([]byte{0, 0}) // reserved word
		}
		buf.Write(t.payload)
	}
	buf.Write([]byte{0, 0}) // terminator sentinel
	return buf.Bytes()
}

// buildSnapshot lays out a full synthetic .vmss/.vmsn file: a 12-byte
// header, a contiguous group table, then each group's tag stream back to
// back, in the order given.
func buildSnapshot(magic uint32, offsetWidth int, order []string, groups map[string][]synthTag) []byte {
	const header = 12
	const groupDescSize = 80

	groupTableSize := groupDescSize * len(order)
	streams := make([][]byte, len(order))
	offsets := make([]int, len(order))

	cursor := header + groupTableSize
	for i, name := range order {
		streams[i] = encodeTagStream(groups[name], offsetWidth)
		offsets[i] = cursor
		cursor += len(streams[i])
	}

	buf := make([]byte, cursor)
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(order)))

	for i, name := range order {
		descOff := header + i*groupDescSize
		copy(buf[descOff:descOff+len(name)], []byte(name))
		binary.LittleEndian.PutUint64(buf[descOff+64:descOff+72], uint64(offsets[i]))
	}
	for i := range order {
		copy(buf[offsets[i]:], streams[i])
	}
	return buf
}

// fillPattern returns n bytes where byte i has value i mod 256.
func fillPattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 256)
	}
	return b
}
