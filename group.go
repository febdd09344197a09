package vmsnparser

import (
	"fmt"
	"log/slog"
)

// Group is a descriptor for one top-level division of snapshot state (e.g.
// "memory", "cpu"). It knows where its tag stream begins but does not
// buffer it: every lookup re-scans from tagsOffset, since the stream is
// not randomly indexable.
type Group struct {
	parser     *Parser
	index      int
	name       string
	tagsOffset int64
}

func (g *Group) Name() string { return g.name }

func (g *Group) Index() int { return g.index }

func (g *Group) String() string { return g.name }

// Lookup resolves name plus zero or more indices against this group's tag
// stream.
func (g *Group) Lookup(name string, indices ...uint32) (LookupResult, error) {
	return g.lookup(name, indices)
}

// Contains reports whether Lookup(name, indices...) would succeed.
func (g *Group) Contains(name string, indices ...uint32) bool {
	res, err := g.lookup(name, indices)
	return err == nil && !res.IsAbsent()
}

func (g *Group) lookup(name string, indices []uint32) (LookupResult, error) {
	r := g.parser.reader
	cursor := g.tagsOffset

	for {
		flags, err := r.ReadAtByte(cursor)
		if err != nil {
			return LookupResult{}, err
		}
		nameSize, err := r.ReadAtByte(cursor + 1)
		if err != nil {
			return LookupResult{}, err
		}
		if flags == 0 && nameSize == 0 {
			// terminator sentinel: reached the end of the stream without a match
			return LookupResult{}, g.errNotFound(name, indices)
		}

		pos := cursor + 2
		rawName, err := r.ReadAtBytes(pos, int(nameSize))
		if err != nil {
			return LookupResult{}, err
		}
		tagName := string(rawName)
		pos += int64(nameSize)

		indexDepth := int(flags>>6) & 0x03
		tagIndices := make([]uint32, indexDepth)
		for i := 0; i < indexDepth; i++ {
			v, err := r.ReadAtU32(pos)
			if err != nil {
				return LookupResult{}, err
			}
			tagIndices[i] = v
			pos += 4
		}

		encodedSize := flags & 0x3f
		var onDiskSize, inMemSize uint64
		var compressed bool
		if encodedSize == 62 || encodedSize == 63 {
			compressed = encodedSize == 63
			onDiskSize, err = r.ReadAtOffset(pos)
			if err != nil {
				return LookupResult{}, err
			}
			pos += int64(r.offsetWidth)
			inMemSize, err = r.ReadAtOffset(pos)
			if err != nil {
				return LookupResult{}, err
			}
			pos += int64(r.offsetWidth)

			word, err := r.ReadAtBytes(pos, 2)
			if err != nil {
				return LookupResult{}, err
			}
			if word[0] != 0 || word[1] != 0 {
				slog.Warn("vmsnparser: non-zero reserved word after long-form tag size",
					"group", g.name, "tag", tagName, "value", word)
			}
			pos += 2
		} else {
			onDiskSize = uint64(encodedSize)
			inMemSize = onDiskSize
			compressed = false
		}

		payloadOffset := pos
		nextCursor := pos + int64(onDiskSize)

		if tagName == name {
			if indicesEqual(tagIndices, indices) {
				return LookupResult{Terminal: &Tag{
					reader:     r,
					group:      g.name,
					name:       tagName,
					indices:    tagIndices,
					payloadOff: payloadOffset,
					onDiskSize: onDiskSize,
					inMemSize:  inMemSize,
					compressed: compressed,
				}}, nil
			}
			if indicesHavePrefix(tagIndices, indices) {
				return LookupResult{Intermediate: &MetaTag{
					group:   g,
					name:    tagName,
					indices: append([]uint32(nil), indices...),
				}}, nil
			}
		}

		cursor = nextCursor
	}
}

func indicesEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// indicesHavePrefix reports whether full starts with prefix and is
// strictly longer than it (a genuine meta-tag hit, not a terminal match).
func indicesHavePrefix(full, prefix []uint32) bool {
	if len(full) <= len(prefix) {
		return false
	}
	for i := range prefix {
		if full[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (g *Group) errNotFound(name string, indices []uint32) error {
	return fmt.Errorf("%w: %s.%s%v", ErrNotFound, g.name, name, indices)
}
