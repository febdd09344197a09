package vmsnparser

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"vmsnparser/platform"
)

// ByteSource is the Go analogue of "a file handle opened in binary mode":
// anything the parser can read absolutely, seek, and close.
type ByteSource interface {
	io.ReaderAt
	io.Seeker
	io.Closer
}

// MMapSource memory-maps a file and serves reads directly against the
// mapping, the way bootimg.go's BootImg keeps the whole image in an
// mmap.MMap and slices into it rather than issuing syscalls per read.
type MMapSource struct {
	file *os.File
	data mmap.MMap
	pos  int64
}

// OpenFile memory-maps path read-only. If the file is too large to map on
// this platform (platform.CanMMap), it falls back to a pread-backed
// FileSource instead, transparently returning the same ByteSource
// interface.
func OpenFile(path string) (ByteSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if !platform.CanMMap(st.Size()) {
		return newFileSource(f), nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Mapping can fail for reasons beyond raw size (e.g. the file
		// lives on a filesystem that doesn't support mmap); fall back
		// rather than fail the whole open.
		return newFileSource(f), nil
	}

	return &MMapSource{file: f, data: data}, nil
}

func (m *MMapSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MMapSource) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *MMapSource) Close() error {
	if err := m.data.Unmap(); err != nil {
		m.file.Close()
		return err
	}
	return m.file.Close()
}

// FileSource is the non-mmap fallback: positional reads go straight to
// platform.Pread, so the reader's own streaming cursor is never disturbed
// by an absolute read.
type FileSource struct {
	file *os.File
}

func newFileSource(f *os.File) *FileSource {
	return &FileSource{file: f}
}

func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return platform.Pread(s.file, p, off)
}

func (s *FileSource) Seek(offset int64, whence int) (int64, error) {
	return s.file.Seek(offset, whence)
}

func (s *FileSource) Close() error {
	return s.file.Close()
}
