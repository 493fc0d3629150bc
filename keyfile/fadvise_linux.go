//go:build linux

package keyfile

import "golang.org/x/sys/unix"

// fadviseSequential hints that a key file is about to be read front to
// back. Best-effort.
func fadviseSequential(fd int, length int64) {
	_ = unix.Fadvise(fd, 0, length, unix.FADV_SEQUENTIAL)
}
