package remote

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/aretw0/wtf/pkg/core"
)

const minInflateBuffer = 4096

// IsGzip reports whether data starts with the gzip magic bytes.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// Decode returns data inflated when it is gzip-compressed, unchanged otherwise.
func Decode(data []byte) ([]byte, error) {
	if !IsGzip(data) {
		return data, nil
	}
	return Inflate(data)
}

// Inflate decompresses a gzip stream into a buffer that doubles whenever it
// fills up. Only a clean end of stream terminates the loop; every other
// decoder outcome is an ErrDecompress.
func Inflate(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDecompress, err)
	}
	defer zr.Close()

	size := len(data) * 4
	if size < minInflateBuffer {
		size = minInflateBuffer
	}
	out := make([]byte, 0, size)

	for {
		if len(out) == cap(out) {
			grown := make([]byte, len(out), 2*cap(out))
			copy(grown, out)
			out = grown
		}

		n, err := zr.Read(out[len(out):cap(out)])
		out = out[:len(out)+n]

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrDecompress, err)
		}
	}
}
