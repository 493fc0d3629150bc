package keyfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sserrors "github.com/tamirms/samplesort/errors"
)

var sampleKeys = []int64{5, -3, 8, 1, math.MaxInt64, 2, math.MinInt64, 0, 8}

func TestTextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleKeys))
	assert.True(t, strings.HasPrefix(buf.String(), "5 -3 8 1 "))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	got, err := ReadText(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleKeys, got)
}

func TestReadTextWhitespace(t *testing.T) {
	got, err := ReadText(strings.NewReader("  12\t-7\n\n 3   4\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []int64{12, -7, 3, 4}, got)

	got, err = ReadText(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadTextMalformed(t *testing.T) {
	for _, in := range []string{"1 2 x 4", "1 2.5", "99999999999999999999"} {
		_, err := ReadText(strings.NewReader(in))
		require.ErrorIs(t, err, sserrors.ErrMalformedKey, "input %q", in)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, keys := range [][]int64{sampleKeys, {}, {42}} {
		path := filepath.Join(dir, "keys.bin")
		require.NoError(t, WriteBinary(path, keys))

		stat, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, int64(binarySize(len(keys))), stat.Size())

		got, err := ReadBinary(path)
		require.NoError(t, err)
		assert.Equal(t, len(keys), len(got))
		if len(keys) > 0 {
			assert.Equal(t, keys, got)
		}
	}
}

func TestBinaryOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.bin")
	require.NoError(t, WriteBinary(path, sampleKeys))
	require.NoError(t, WriteBinary(path, []int64{1, 2}))
	got, err := ReadBinary(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
}

func TestBinaryCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(data []byte) []byte
		want    error
	}{
		{"flipped key bit", func(d []byte) []byte { d[headerSize+3] ^= 0x10; return d }, sserrors.ErrChecksumFailed},
		{"flipped checksum", func(d []byte) []byte { d[len(d)-footerSize] ^= 1; return d }, sserrors.ErrChecksumFailed},
		{"bad magic", func(d []byte) []byte { d[0] = 'X'; return d }, sserrors.ErrInvalidMagic},
		{"bad version", func(d []byte) []byte { binary.LittleEndian.PutUint16(d[4:], 9); return d }, sserrors.ErrInvalidVersion},
		{"truncated body", func(d []byte) []byte { return d[:len(d)-keySize] }, sserrors.ErrTruncatedFile},
		{"trailing bytes", func(d []byte) []byte { return append(d, 0, 0, 0, 0, 0, 0, 0, 0) }, sserrors.ErrTruncatedFile},
		{"huge count", func(d []byte) []byte { binary.LittleEndian.PutUint64(d[8:], math.MaxUint64); return d }, sserrors.ErrTruncatedFile},
		{"header only", func(d []byte) []byte { return d[:headerSize] }, sserrors.ErrTruncatedFile},
	}
	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".bin")
			require.NoError(t, WriteBinary(path, sampleKeys))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, tt.corrupt(data), 0o644))

			_, err = ReadBinary(path)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadWriteDispatch(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "keys.txt")
	require.NoError(t, Write(textPath, sampleKeys))
	raw, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "5 -3"))
	got, err := Read(textPath)
	require.NoError(t, err)
	assert.Equal(t, sampleKeys, got)

	binPath := filepath.Join(dir, "keys.BIN")
	require.True(t, IsBinary(binPath))
	require.NoError(t, Write(binPath, sampleKeys))
	raw, err = os.ReadFile(binPath)
	require.NoError(t, err)
	assert.Equal(t, magic, binary.LittleEndian.Uint32(raw))
	got, err = Read(binPath)
	require.NoError(t, err)
	assert.Equal(t, sampleKeys, got)

	_, err = Read(filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
