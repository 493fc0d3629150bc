package keyfile

import (
	"encoding/binary"
	"fmt"

	sserrors "github.com/tamirms/samplesort/errors"
)

const (
	// magic is "SSKF" in little-endian.
	magic = uint32(0x464B5353)

	// version is the current binary format version.
	version = uint16(0x0001)

	headerSize = 32
	footerSize = 16
	keySize    = 8
)

// header is the 32-byte binary key file header.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       4     Magic     0x464B5353 ("SSKF")
//	4       2     Version   0x0001
//	6       2     Reserved  (zero)
//	8       8     Count     uint64_le, number of keys
//	16      16    Reserved  (zero)
//
// The body that follows holds Count little-endian int64 keys.
type header struct {
	Magic   uint32
	Version uint16
	Count   uint64
}

func (h *header) encodeTo(buf []byte) {
	clear(buf[:headerSize])
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.Count)
}

func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, sserrors.ErrTruncatedFile
	}
	h := &header{
		Magic:   binary.LittleEndian.Uint32(buf[0:4]),
		Version: binary.LittleEndian.Uint16(buf[4:6]),
		Count:   binary.LittleEndian.Uint64(buf[8:16]),
	}
	if h.Magic != magic {
		return nil, sserrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: %#04x", sserrors.ErrInvalidVersion, h.Version)
	}
	return h, nil
}

// footer is the 16-byte trailer.
//
//	Offset  Size  Field     Type
//	0       8     BodyHash  uint64_le (xxh3-64 of the body)
//	8       8     Reserved  (zero)
type footer struct {
	BodyHash uint64
}

func (f *footer) encodeTo(buf []byte) {
	clear(buf[:footerSize])
	binary.LittleEndian.PutUint64(buf[0:8], f.BodyHash)
}

func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, sserrors.ErrTruncatedFile
	}
	return &footer{BodyHash: binary.LittleEndian.Uint64(buf[0:8])}, nil
}

// binarySize is the file size of a binary key file holding n keys.
func binarySize(n int) int {
	return headerSize + n*keySize + footerSize
}
