//go:build linux

package keyfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for file and sets its length, so that
// writes through a mapping cannot SIGBUS on a full disk.
func fallocateFile(file *os.File, size int64) error {
	if err := unix.Fallocate(int(file.Fd()), 0, 0, size); err != nil {
		// Not every filesystem supports fallocate (NFS, tmpfs on old kernels).
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return unix.Ftruncate(int(file.Fd()), size)
}
