package vmsnparser

import "fmt"

// Tag is a terminal descriptor: a read-only view over a payload. It holds
// no buffered data — every read goes back through the owning Reader.
type Tag struct {
	reader      *Reader
	group       string
	name        string
	indices     []uint32
	payloadOff  int64
	onDiskSize  uint64
	inMemSize   uint64
	compressed  bool
}

func (t *Tag) Group() string { return t.group }

func (t *Tag) Name() string { return t.name }

func (t *Tag) Indices() []uint32 { return append([]uint32(nil), t.indices...) }

func (t *Tag) PayloadOffset() int64 { return t.payloadOff }

// OnDiskSize returns the payload's size as stored on disk (possibly
// compressed); InMemSize returns its size once decompressed, equal to
// OnDiskSize for uncompressed tags.
func (t *Tag) OnDiskSize() uint64 { return t.onDiskSize }
func (t *Tag) InMemSize() uint64  { return t.inMemSize }

func (t *Tag) Compressed() bool { return t.compressed }

func (t *Tag) String() string {
	return fmt.Sprintf("%s.%s%v", t.group, t.name, t.indices)
}

func (t *Tag) checkWidth(width uint64) error {
	if t.compressed {
		return fmt.Errorf("%w: %s is compressed, typed reads are unsupported", ErrTypeMismatch, t)
	}
	if t.onDiskSize < width {
		return fmt.Errorf("%w: %s has on-disk size %d, want at least %d", ErrTypeMismatch, t, t.onDiskSize, width)
	}
	return nil
}

func (t *Tag) Byte() (byte, error) {
	if err := t.checkWidth(1); err != nil {
		return 0, err
	}
	return t.reader.ReadAtByte(t.payloadOff)
}

func (t *Tag) U32() (uint32, error) {
	if err := t.checkWidth(4); err != nil {
		return 0, err
	}
	return t.reader.ReadAtU32(t.payloadOff)
}

func (t *Tag) U64() (uint64, error) {
	if err := t.checkWidth(8); err != nil {
		return 0, err
	}
	return t.reader.ReadAtU64(t.payloadOff)
}

// Offset reads the tag's payload as an offset-sized integer: 4 or 8 bytes,
// per the snapshot's version.
func (t *Tag) Offset() (uint64, error) {
	if err := t.checkWidth(uint64(t.reader.offsetWidth)); err != nil {
		return 0, err
	}
	return t.reader.ReadAtOffset(t.payloadOff)
}

// Bytes reads the tag's entire on-disk payload verbatim. Unlike the typed
// readers this succeeds on compressed tags — the caller receives the
// compressed bytes as-is; decompression is out of scope for the core.
func (t *Tag) Bytes() ([]byte, error) {
	return t.reader.ReadAtBytes(t.payloadOff, int(t.onDiskSize))
}

// Set is always ErrReadOnly: the core never supports write operations.
func (t *Tag) Set([]byte) error {
	return fmt.Errorf("%w: %s", ErrReadOnly, t)
}

// MetaTag is an intermediate descriptor: a structural node representing a
// partially indexed path, holding no file-offset state of its own.
// Supplying one more index resumes the search at greater depth.
type MetaTag struct {
	group   *Group
	name    string
	indices []uint32
}

func (m *MetaTag) String() string {
	return fmt.Sprintf("%s.%s%v", m.group.name, m.name, m.indices)
}

// Lookup extends this meta-tag's index prefix with index and resolves the
// result, exactly as Lookup on a Group does for the first index.
func (m *MetaTag) Lookup(index uint32) (LookupResult, error) {
	return m.group.lookup(m.name, append(append([]uint32(nil), m.indices...), index))
}

// Contains reports whether Lookup(index) would succeed.
func (m *MetaTag) Contains(index uint32) bool {
	res, err := m.Lookup(index)
	return err == nil && !res.IsAbsent()
}

// Set is always ErrReadOnly.
func (m *MetaTag) Set(uint32, []byte) error {
	return fmt.Errorf("%w: %s", ErrReadOnly, m)
}

// LookupResult is a tagged union: a lookup resolves to exactly one of a
// terminal Tag, an intermediate MetaTag, or neither.
type LookupResult struct {
	Terminal     *Tag
	Intermediate *MetaTag
}

// IsAbsent reports whether neither a terminal nor an intermediate result
// was found (i.e. the path does not exist).
func (r LookupResult) IsAbsent() bool {
	return r.Terminal == nil && r.Intermediate == nil
}
