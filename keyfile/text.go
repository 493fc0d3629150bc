package keyfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	sserrors "github.com/tamirms/samplesort/errors"
)

// ReadText reads whitespace-separated base-10 int64 keys from r.
func ReadText(r io.Reader) ([]int64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var keys []int64
	for sc.Scan() {
		k, err := strconv.ParseInt(sc.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: key %d: %q", sserrors.ErrMalformedKey, len(keys), sc.Text())
		}
		keys = append(keys, k)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	return keys, nil
}

// WriteText writes keys to w separated by single spaces, with a trailing
// newline.
func WriteText(w io.Writer, keys []int64) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for i, k := range keys {
		buf = buf[:0]
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, k, 10)
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write keys: %w", err)
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("write keys: %w", err)
	}
	return bw.Flush()
}
