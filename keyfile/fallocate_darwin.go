//go:build darwin

package keyfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for file with F_PREALLOCATE and sets
// its length.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	if err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst); err != nil {
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return unix.Ftruncate(int(file.Fd()), size)
}
