package vmsnparser_test

import (
	"errors"
	"testing"

	"vmsnparser"
)

// These tests reach the magic-to-version table indirectly through
// NewParser, since the table itself is unexported; the header magic is the
// only public knob that selects a version.
func TestMagicTable(t *testing.T) {
	cases := []struct {
		name        string
		magic       uint32
		wantVersion int
		wantWidth   int
	}{
		{"v0", 0xBED2BED0, 0, 4},
		{"v1", 0xBAD1BAD1, 1, 8},
		{"v2", 0xBED2BED2, 2, 8},
		{"v3", 0xBED3BED3, 3, 8},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := buildSnapshot(c.magic, c.wantWidth, nil, nil)
			src := newMemSource(data)
			p, err := vmsnparser.NewParser(src)
			if err != nil {
				t.Fatalf("NewParser: %v", err)
			}
			defer p.Close()
			if p.Version() != c.wantVersion {
				t.Fatalf("Version() = %d, want %d", p.Version(), c.wantVersion)
			}
			if p.GroupCount() != 0 {
				t.Fatalf("GroupCount() = %d, want 0", p.GroupCount())
			}
		})
	}
}

func TestBadMagicRejected(t *testing.T) {
	data := buildSnapshot(0xDEADBEEF, 8, nil, nil)
	src := newMemSource(data)
	_, err := vmsnparser.NewParser(src)
	if err == nil {
		t.Fatal("expected an error for an unrecognized magic")
	}
	if !errors.Is(err, vmsnparser.ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}
