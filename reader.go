package vmsnparser

import (
	"fmt"
	"io"
)

// Reader is a stateful cursor over a ByteSource for streaming reads, plus
// absolute reads that never disturb that cursor. Endianness is fixed
// little-endian; there is no runtime toggle.
type Reader struct {
	src         ByteSource
	cursor      int64
	offsetWidth int // 4 or 8, fixed at construction from the snapshot magic
}

// NewReader wraps src. offsetWidth must be 4 or 8 (the Parser resolves it
// from the header magic before constructing a Reader).
func NewReader(src ByteSource, offsetWidth int) (*Reader, error) {
	if src == nil {
		return nil, ErrBadMode
	}
	if offsetWidth != 4 && offsetWidth != 8 {
		return nil, fmt.Errorf("vmsnparser: invalid offset width %d", offsetWidth)
	}
	return &Reader{src: src, offsetWidth: offsetWidth}, nil
}

func (r *Reader) Seek(addr int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.cursor = addr
	case io.SeekCurrent:
		r.cursor += addr
	default:
		return 0, fmt.Errorf("vmsnparser: unsupported whence %d", whence)
	}
	return r.cursor, nil
}

func (r *Reader) Tell() int64 {
	return r.cursor
}

// Read reads exactly n bytes from the cursor, advancing it.
func (r *Reader) Read(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := r.src.ReadAt(buf, r.cursor)
	r.cursor += int64(read)
	if read < n {
		if err == nil {
			err = io.EOF
		}
		return buf[:read], fmt.Errorf("%w: wanted %d bytes, got %d: %v", ErrTruncated, n, read, err)
	}
	return buf, nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint64(b), nil
}

// ReadOffset reads an "offset-sized" integer: 4 or 8 bytes, fixed by the
// snapshot version at Reader construction.
func (r *Reader) ReadOffset() (uint64, error) {
	b, err := r.Read(r.offsetWidth)
	if err != nil {
		return 0, err
	}
	if r.offsetWidth == 4 {
		return uint64(byteOrder.Uint32(b)), nil
	}
	return byteOrder.Uint64(b), nil
}

// The ReadAt* family reads at an address without touching the streaming
// cursor, going straight through ByteSource.ReadAt instead of saving and
// restoring the cursor around a seek. Tell() is unchanged across any
// sequence of these calls.

func (r *Reader) readAbsolute(addr int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := r.src.ReadAt(buf, addr)
	if read < n {
		if err == nil {
			err = io.EOF
		}
		return buf[:read], fmt.Errorf("%w: wanted %d bytes at %d, got %d: %v", ErrTruncated, n, addr, read, err)
	}
	return buf, nil
}

func (r *Reader) ReadAtBytes(addr int64, n int) ([]byte, error) {
	return r.readAbsolute(addr, n)
}

func (r *Reader) ReadAtByte(addr int64) (byte, error) {
	b, err := r.readAbsolute(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadAtU32(addr int64) (uint32, error) {
	b, err := r.readAbsolute(addr, 4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b), nil
}

func (r *Reader) ReadAtU64(addr int64) (uint64, error) {
	b, err := r.readAbsolute(addr, 8)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint64(b), nil
}

func (r *Reader) ReadAtOffset(addr int64) (uint64, error) {
	b, err := r.readAbsolute(addr, r.offsetWidth)
	if err != nil {
		return 0, err
	}
	if r.offsetWidth == 4 {
		return uint64(byteOrder.Uint32(b)), nil
	}
	return byteOrder.Uint64(b), nil
}

func (r *Reader) Close() error {
	return r.src.Close()
}
