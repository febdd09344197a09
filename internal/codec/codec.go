// Package codec identifies and decodes the compression formats a
// compressed tag payload might be stored in. It is deliberately outside
// the vmsnparser core — typed reads on a compressed Tag return
// ErrTypeMismatch regardless of what this package can do. Only
// cmd/vmsnutil's export --decompress calls into it.
package codec

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Format is a recognized compression format.
type Format int

const (
	Unknown Format = iota
	Gzip
	Bzip2
	XZ
	LZMA
	LZ4
)

func (f Format) String() string {
	switch f {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case XZ:
		return "xz"
	case LZMA:
		return "lzma"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

var (
	gzip1Magic = []byte("\x1f\x8b")
	gzip2Magic = []byte("\x1f\x9e")
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte("\xfd7zXZ")
	lz4Magic   = []byte("\x04\x22\x4d\x18")
)

// Identify sniffs buf's leading bytes and reports which compression
// format, if any, it looks like. Mirrors the teacher's CheckFmt magic
// ladder, narrowed to the formats this package has decoders for. The
// "\x1f\x9e" gzip variant is also reported as Gzip, but compress/gzip
// rejects its header, so Decode returns an error for it.
func Identify(buf []byte) Format {
	switch {
	case hasPrefix(buf, gzip1Magic), hasPrefix(buf, gzip2Magic):
		return Gzip
	case hasPrefix(buf, bzip2Magic):
		return Bzip2
	case hasPrefix(buf, xzMagic):
		return XZ
	case hasPrefix(buf, lz4Magic):
		return LZ4
	case len(buf) >= 13 && buf[0] == 0x5d && buf[1] == 0x00 && buf[2] == 0x00 &&
		(buf[12] == 0xff || buf[12] == 0x00):
		return LZMA
	default:
		return Unknown
	}
}

func hasPrefix(buf, magic []byte) bool {
	return len(buf) >= len(magic) && bytes.Equal(buf[:len(magic)], magic)
}

// NewDecoder wraps reader with the decompressor for format f. Unlike the
// teacher's NewDecoder this returns an error instead of calling
// log.Fatalln: this package has no business terminating its caller's
// process.
func NewDecoder(f Format, reader io.Reader) (io.ReadCloser, error) {
	switch f {
	case Gzip:
		return gzip.NewReader(reader)
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(reader)), nil
	case XZ:
		r, err := xz.NewReader(reader)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(r), nil
	case LZMA:
		r, err := lzma.NewReader(reader)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(r), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(reader)), nil
	default:
		return nil, fmt.Errorf("codec: unsupported format %v", f)
	}
}

// Decode identifies and fully decodes data in one call, for the CLI's
// export path where the whole payload is already in memory.
func Decode(data []byte) ([]byte, Format, error) {
	f := Identify(data)
	if f == Unknown {
		return nil, Unknown, fmt.Errorf("codec: unrecognized compression format")
	}
	dec, err := NewDecoder(f, bytes.NewReader(data))
	if err != nil {
		return nil, f, err
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, f, err
	}
	return out, f, nil
}
