package keyfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/zeebo/xxh3"

	sserrors "github.com/tamirms/samplesort/errors"
)

// WriteBinary writes keys to path in the binary format, replacing any
// existing file. The file is preallocated and written through a mapping.
func WriteBinary(path string, keys []int64) error {
	size := binarySize(len(keys))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}

	// Reserve blocks first so a full disk fails here, not as SIGBUS later.
	if err := fallocateFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("allocate key file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, size, mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap key file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	data := []byte(mm)
	prefaultRegion(data)

	body := data[headerSize : headerSize+len(keys)*keySize]
	for i, k := range keys {
		binary.LittleEndian.PutUint64(body[i*keySize:], uint64(k))
	}
	hdr := header{Magic: magic, Version: version, Count: uint64(len(keys))}
	hdr.encodeTo(data)
	ftr := footer{BodyHash: xxh3.Hash(body)}
	ftr.encodeTo(data[headerSize+len(body):])

	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close())
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	return file.Close()
}

// ReadBinary reads a binary key file, validating its header, size and body
// checksum.
func ReadBinary(path string) ([]int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat key file: %w", err)
	}
	size := stat.Size()
	if size < headerSize+footerSize {
		return nil, sserrors.ErrTruncatedFile
	}
	fadviseSequential(int(file.Fd()), size)

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap key file: %w", err)
	}
	keys, err := decodeBinary([]byte(mm))
	if err != nil {
		return nil, errors.Join(err, mm.Unmap())
	}
	return keys, mm.Unmap()
}

// decodeBinary decodes a complete binary key file image.
func decodeBinary(data []byte) ([]int64, error) {
	hdr, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	maxCount := uint64(len(data)-headerSize-footerSize) / keySize
	if hdr.Count > maxCount || binarySize(int(hdr.Count)) != len(data) {
		return nil, fmt.Errorf("%w: header says %d keys, file has %d bytes",
			sserrors.ErrTruncatedFile, hdr.Count, len(data))
	}

	body := data[headerSize : headerSize+int(hdr.Count)*keySize]
	ftr, err := decodeFooter(data[headerSize+len(body):])
	if err != nil {
		return nil, err
	}
	if xxh3.Hash(body) != ftr.BodyHash {
		return nil, sserrors.ErrChecksumFailed
	}

	keys := make([]int64, hdr.Count)
	for i := range keys {
		keys[i] = int64(binary.LittleEndian.Uint64(body[i*keySize:]))
	}
	return keys, nil
}
