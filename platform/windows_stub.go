//go:build windows

package platform

import "os"

// Pread has no direct pread(2) equivalent wired on windows in this module;
// os.File.ReadAt already issues a positional ReadFile (no cursor motion),
// so it is used directly here, matching the teacher's windows_stub.go
// pattern of a degenerate-but-correct stand-in rather than a real syscall
// wrapper.
func Pread(f *os.File, p []byte, off int64) (int, error) {
	return f.ReadAt(p, off)
}

// Getpagesize returns the conventional small-page size; windows has no
// golang.org/x/sys/windows dependency wired in this module to query it.
func Getpagesize() int {
	return 4096
}
