package vmsnparser

import "fmt"

// Parser is the tag-tree navigator. Construction reads only the header's
// magic and group count; no further I/O happens until a lookup is
// requested.
type Parser struct {
	reader     *Reader
	version    int
	groupCount uint32
}

// NewParser reads the 12-byte header at offset 0 of src, validates the
// magic, and resolves the version-dependent offset width. Returns
// ErrBadMagic if the magic does not match any known version.
func NewParser(src ByteSource) (*Parser, error) {
	r, err := newHeaderReader(src)
	if err != nil {
		return nil, err
	}

	magic, err := r.ReadAtU32(0)
	if err != nil {
		return nil, err
	}

	version, offsetWidth, ok := versionForMagic(magic)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadMagic, magic)
	}

	// Rebuild the reader now that we know the real offset width; the
	// header probe above only needed a fixed-width u32 read.
	reader, err := NewReader(src, offsetWidth)
	if err != nil {
		return nil, err
	}

	groupCount, err := reader.ReadAtU32(8)
	if err != nil {
		return nil, err
	}

	return &Parser{reader: reader, version: version, groupCount: groupCount}, nil
}

// newHeaderReader builds a throwaway Reader with a placeholder offset
// width purely to read the header's fixed-width magic field, before the
// real offset width is known.
func newHeaderReader(src ByteSource) (*Reader, error) {
	return NewReader(src, 4)
}

func (p *Parser) Version() int { return p.version }

func (p *Parser) GroupCount() uint32 { return p.groupCount }

// Group looks up a group by name (string) or zero-based index (int).
// Returns ErrNotFound if no group matches. The scan is O(group count);
// group counts are small enough that no index is built.
func (p *Parser) Group(ident any) (*Group, error) {
	for i := uint32(0); i < p.groupCount; i++ {
		descOff := int64(headerSize) + int64(i)*groupDescSize

		nameBuf, err := p.reader.ReadAtBytes(descOff, groupNameSize)
		if err != nil {
			return nil, err
		}
		name := cStringTrim(nameBuf)

		match := false
		switch v := ident.(type) {
		case string:
			match = name == v
		case int:
			match = int(i) == v
		default:
			return nil, fmt.Errorf("vmsnparser: group identifier must be a string or int, got %T", ident)
		}
		if !match {
			continue
		}

		tagsOffset, err := p.reader.ReadAtU64(descOff + groupOffsetOff)
		if err != nil {
			return nil, err
		}

		return &Group{
			parser:     p,
			index:      int(i),
			name:       name,
			tagsOffset: int64(tagsOffset),
		}, nil
	}
	return nil, fmt.Errorf("%w: group %v", ErrNotFound, ident)
}

// Contains reports whether Group(ident) would succeed.
func (p *Parser) Contains(ident any) bool {
	_, err := p.Group(ident)
	return err == nil
}

// Lookup is a convenience that resolves a full path in one call:
// Lookup("memory", "Memory", 0, 0) is equivalent to
// Group("memory") then Lookup("Memory", 0, 0) on the result.
func (p *Parser) Lookup(group string, name string, indices ...uint32) (LookupResult, error) {
	g, err := p.Group(group)
	if err != nil {
		return LookupResult{}, err
	}
	return g.Lookup(name, indices...)
}

// Close releases the underlying byte reader.
func (p *Parser) Close() error {
	return p.reader.Close()
}

func cStringTrim(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
