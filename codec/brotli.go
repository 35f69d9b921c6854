package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// brotliCodec compresses text-like payloads (strings, bools): string
// arrays, DataFrame string columns, and Categorical categories.
type brotliCodec struct{}

func (brotliCodec) Name() string { return "brotli" }

func (brotliCodec) Encode(level int, src []byte) ([]byte, error) {
	if level <= 0 {
		level = brotli.DefaultCompression
	}
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("codec: brotli write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: brotli close: %w", err)
	}
	return buf.Bytes(), nil
}

func (brotliCodec) Decode(src []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(src))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: brotli read: %w", err)
	}
	return out, nil
}
