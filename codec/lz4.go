package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec compresses integer payloads (the Bool case lives with brotli,
// see ForScalarType): CSR/CSC indices/indptr and numeric arrays of
// integer scalar types. lz4 always runs at its fastest profile here,
// since these datasets are read on the hot path of every partial sparse
// query and decode latency matters more than ratio.
type lz4Codec struct{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) Encode(_ int, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("codec: lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decode(src []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: lz4 read: %w", err)
	}
	return out, nil
}
