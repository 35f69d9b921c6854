// Package codec implements the compression codec registry used by
// memstore to realize a WriteConfig's compression level. A single Codec
// interface fronts the three compression libraries this module wires:
// gzip for floating-point data, brotli for strings, and lz4 for
// integers.
package codec

import "github.com/scverse-go/anndata/dtype"

// Codec compresses and decompresses opaque byte payloads.
type Codec interface {
	Name() string
	Encode(level int, src []byte) ([]byte, error)
	Decode(src []byte) ([]byte, error)
}

// ForScalarType returns the codec this module uses for a given element
// type: brotli for strings and bools (text-like, benefits from a
// dictionary-heavy codec), lz4 for integers (fast decode for the
// indices/indptr datasets read on every partial sparse query), and gzip
// for floating point.
func ForScalarType(t dtype.ScalarType) Codec {
	switch {
	case t == dtype.String || t == dtype.Bool:
		return brotliCodec{}
	case t.IsInteger():
		return lz4Codec{}
	default:
		return gzipCodec{}
	}
}

// noneCodec is a pass-through codec. memstore does not route payloads
// through it: a dataset whose writes are not compressed (arrays of length
// <= 100, or a nil Compression level) keeps its data as a plain slice.
type noneCodec struct{}

func (noneCodec) Name() string                      { return "none" }
func (noneCodec) Encode(_ int, src []byte) ([]byte, error) { return src, nil }
func (noneCodec) Decode(src []byte) ([]byte, error)        { return src, nil }

// None returns the no-op codec.
func None() Codec { return noneCodec{} }
