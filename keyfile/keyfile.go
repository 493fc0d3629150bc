// Package keyfile loads and stores int64 key sets.
//
// Two formats are supported:
//
//   - Text: base-10 keys separated by whitespace.
//   - Binary: a 32-byte header, the keys as little-endian int64, and a
//     16-byte footer carrying an xxh3 checksum of the keys. Binary files are
//     read and written through memory mappings.
//
// Read and Write choose the format from the file extension: ".bin" is
// binary, anything else is text.
package keyfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BinaryExt is the extension that selects the binary format.
const BinaryExt = ".bin"

// IsBinary reports whether path names a binary key file.
func IsBinary(path string) bool {
	return strings.EqualFold(filepath.Ext(path), BinaryExt)
}

// Read loads the keys stored at path.
func Read(path string) ([]int64, error) {
	if IsBinary(path) {
		return ReadBinary(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	defer f.Close()
	return ReadText(f)
}

// Write stores keys at path, replacing any existing file.
func Write(path string, keys []int64) error {
	if IsBinary(path) {
		return WriteBinary(path, keys)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	if err := WriteText(f, keys); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}
