package vmsnparser

import "errors"

// Error kinds from the error-handling design: each is a distinct sentinel
// so callers can discriminate with errors.Is instead of string matching.
var (
	// ErrBadMode is returned when a byte source cannot support binary,
	// positional access (Go has no text/binary file-mode distinction, so
	// this surfaces only for a nil source).
	ErrBadMode = errors.New("vmsnparser: byte source does not support binary positional access")

	// ErrTruncated is returned by any L1 read that runs past the end of
	// the underlying stream.
	ErrTruncated = errors.New("vmsnparser: truncated read")

	// ErrBadMagic is returned by Parser construction when the first four
	// bytes do not match any known snapshot magic.
	ErrBadMagic = errors.New("vmsnparser: unrecognized snapshot magic")

	// ErrNotFound is returned by group/tag lookups and membership tests.
	ErrNotFound = errors.New("vmsnparser: not found")

	// ErrTypeMismatch is returned by a typed tag read when the payload is
	// smaller than the requested width, or when the tag is compressed.
	ErrTypeMismatch = errors.New("vmsnparser: type mismatch")

	// ErrReadOnly is returned by any attempted write operation.
	ErrReadOnly = errors.New("vmsnparser: read-only")

	// ErrWrongFormat is returned by the L3 probe when the byte source is
	// not a VMware snapshot at all. Unlike ErrBadMagic, this is expected
	// to be recoverable: the caller tries the next candidate address space.
	ErrWrongFormat = errors.New("vmsnparser: not a vmss/vmsn snapshot")

	// ErrMemoryNotEmbedded is returned when the memory group has no
	// Memory tag, e.g. the guest RAM lives in a sibling .vmem file.
	ErrMemoryNotEmbedded = errors.New("vmsnparser: memory not embedded in snapshot (may be in a sibling .vmem file)")

	// ErrCorruptRegionTable is returned when regionsCount promises more
	// regions than the parallel arrays actually carry.
	ErrCorruptRegionTable = errors.New("vmsnparser: corrupt region table")

	// ErrNoCR3 is returned when the cpu group has no CR[0][3] tag.
	ErrNoCR3 = errors.New("vmsnparser: no CR3 in cpu group")
)
