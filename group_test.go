package vmsnparser_test

import (
	"bytes"
	"errors"
	"testing"

	"vmsnparser"
)

func openGroup(t *testing.T, groupName string, tags []synthTag) (*vmsnparser.Parser, *vmsnparser.Group) {
	t.Helper()
	data := buildSnapshot(0xBED3BED3, 8, []string{groupName}, map[string][]synthTag{groupName: tags})
	p, err := vmsnparser.NewParser(newMemSource(data))
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	g, err := p.Group(groupName)
	if err != nil {
		t.Fatalf("Group(%q): %v", groupName, err)
	}
	return p, g
}

func TestTagRoundTrip(t *testing.T) {
	payload := []byte{0xAB}
	_, g := openGroup(t, "cpu", []synthTag{
		{name: "CR", indices: []uint32{0, 3}, payload: payload},
	})

	res, err := g.Lookup("CR", 0, 3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Terminal == nil {
		t.Fatalf("expected a terminal tag, got %+v", res)
	}
	got, err := res.Terminal.Byte()
	if err != nil {
		t.Fatalf("Byte(): %v", err)
	}
	if got != payload[0] {
		t.Fatalf("Byte() = 0x%x, want 0x%x", got, payload[0])
	}
}

func TestTagBytesRoundTripByteForByte(t *testing.T) {
	payload := fillPattern(200) // forces the long-form size encoding
	_, g := openGroup(t, "memory", []synthTag{
		{name: "Memory", indices: []uint32{0, 0}, payload: payload},
	})

	res, err := g.Lookup("Memory", 0, 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	got, err := res.Terminal.Bytes()
	if err != nil {
		t.Fatalf("Bytes(): %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-tripped payload does not match: got %d bytes, want %d", len(got), len(payload))
	}
}

func TestTerminalAndMetaTagAreMutuallyExclusive(t *testing.T) {
	_, g := openGroup(t, "memory", []synthTag{
		{name: "regionPPN", indices: []uint32{0}, payload: []byte{1, 0, 0, 0}},
		{name: "regionPPN", indices: []uint32{1}, payload: []byte{2, 0, 0, 0}},
	})

	full, err := g.Lookup("regionPPN", 0)
	if err != nil {
		t.Fatalf("Lookup(full): %v", err)
	}
	if full.Terminal == nil || full.Intermediate != nil {
		t.Fatalf("expected a pure terminal result, got %+v", full)
	}

	// Without the index, "regionPPN" is a strict prefix of the stored
	// regionPPN[0] record, so the lookup resolves to a meta-tag only.
	prefix, err := g.Lookup("regionPPN")
	if err != nil {
		t.Fatalf("Lookup(prefix): %v", err)
	}
	if prefix.Intermediate == nil || prefix.Terminal != nil {
		t.Fatalf("expected a pure meta-tag result, got %+v", prefix)
	}
	if prefix.Terminal != nil && prefix.Intermediate != nil {
		t.Fatal("a lookup result must never carry both a terminal and an intermediate tag")
	}
}

func TestMetaTagLookupExtendsPrefix(t *testing.T) {
	_, g := openGroup(t, "memory", []synthTag{
		{name: "regionPPN", indices: []uint32{0}, payload: []byte{7, 0, 0, 0}},
	})

	res, err := g.Lookup("regionPPN")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Intermediate == nil {
		t.Fatalf("expected a meta-tag, got %+v", res)
	}

	extended, err := res.Intermediate.Lookup(0)
	if err != nil {
		t.Fatalf("MetaTag.Lookup: %v", err)
	}
	if extended.Terminal == nil {
		t.Fatalf("expected a terminal tag, got %+v", extended)
	}
	v, err := extended.Terminal.U32()
	if err != nil {
		t.Fatalf("U32: %v", err)
	}
	if v != 7 {
		t.Fatalf("U32() = %d, want 7", v)
	}
}

func TestLookupNotFoundAtTerminatorSentinel(t *testing.T) {
	_, g := openGroup(t, "cpu", []synthTag{
		{name: "CR", indices: []uint32{0, 3}, payload: []byte{1, 2, 3, 4}},
	})

	_, err := g.Lookup("nonexistent")
	if !errors.Is(err, vmsnparser.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContainsMatchesLookup(t *testing.T) {
	_, g := openGroup(t, "cpu", []synthTag{
		{name: "CR", indices: []uint32{0, 3}, payload: []byte{1, 2, 3, 4}},
	})

	if !g.Contains("CR", 0, 3) {
		t.Fatal("Contains(CR, 0, 3) = false, want true")
	}
	if !g.Contains("CR") {
		t.Fatal("Contains(CR) = false, want true (resolves to a meta-tag)")
	}
	if g.Contains("CR", 9, 9) {
		t.Fatal("Contains(CR, 9, 9) = true, want false")
	}
	if g.Contains("missing") {
		t.Fatal("Contains(missing) = true, want false")
	}
}

func TestCompressedTagRejectsTypedReadsButAllowsBytes(t *testing.T) {
	payload := []byte{0x1f, 0x8b, 0x08, 0x00, 0xde, 0xad, 0xbe, 0xef}
	_, g := openGroup(t, "memory", []synthTag{
		{name: "Memory", indices: []uint32{0, 0}, payload: payload, compressed: true},
	})

	res, err := g.Lookup("Memory", 0, 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !res.Terminal.Compressed() {
		t.Fatal("expected Compressed() = true")
	}
	if _, err := res.Terminal.U32(); !errors.Is(err, vmsnparser.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch on a compressed tag, got %v", err)
	}
	got, err := res.Terminal.Bytes()
	if err != nil {
		t.Fatalf("Bytes() on a compressed tag should still succeed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("Bytes() on a compressed tag did not return the raw payload verbatim")
	}
}

func TestTagSetIsReadOnly(t *testing.T) {
	_, g := openGroup(t, "cpu", []synthTag{
		{name: "CR", indices: []uint32{0, 3}, payload: []byte{1, 2, 3, 4}},
	})
	res, err := g.Lookup("CR", 0, 3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if err := res.Terminal.Set([]byte{0}); !errors.Is(err, vmsnparser.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}
