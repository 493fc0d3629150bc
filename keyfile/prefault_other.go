//go:build !linux

package keyfile

// prefaultRegion is a no-op; MADV_POPULATE_WRITE is Linux-specific.
func prefaultRegion(data []byte) {}
