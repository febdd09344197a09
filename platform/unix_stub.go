//go:build !windows
// +build !windows

package platform

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Pread reads len(p) bytes at off without touching the file's cursor,
// issuing pread(2) in a loop until p is full or the file is exhausted.
// Satisfies the io.ReaderAt contract: a short read is always paired with
// a non-nil error.
func Pread(f *os.File, p []byte, off int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Pread(int(f.Fd()), p[total:], off+int64(total))
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.EOF
		}
	}
	return total, nil
}

// Getpagesize returns the host's memory page size.
func Getpagesize() int {
	return unix.Getpagesize()
}
