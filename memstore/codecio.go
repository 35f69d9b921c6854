package memstore

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/scverse-go/anndata/codec"
	"github.com/scverse-go/anndata/dtype"
)

// serialize flattens a typed slice into bytes in a fixed, dtype-specific
// binary layout: little-endian fixed-width values for numeric/bool
// types, and length-prefixed UTF-8 records for strings.
func serialize(dt dtype.ScalarType, data any) ([]byte, error) {
	var buf bytes.Buffer
	switch d := data.(type) {
	case []int8:
		for _, v := range d {
			buf.WriteByte(byte(v))
		}
	case []int16:
		return le(d)
	case []int32:
		return le(d)
	case []int64:
		return le(d)
	case []uint8:
		buf.Write(d)
	case []uint16:
		return le(d)
	case []uint32:
		return le(d)
	case []uint64:
		return le(d)
	case []float32:
		return le(d)
	case []float64:
		return le(d)
	case []bool:
		for _, v := range d {
			if v {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		}
	case []string:
		for _, s := range d {
			var lenBuf [8]byte
			binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
			buf.Write(lenBuf[:])
			buf.WriteString(s)
		}
	default:
		return nil, fmt.Errorf("memstore: unsupported element type %T for dtype %s", data, dt)
	}
	return buf.Bytes(), nil
}

func le[T any](data []T) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("memstore: binary encode: %w", err)
	}
	return buf.Bytes(), nil
}

// deserialize reverses serialize, producing n elements of the Go type
// matching dt.
func deserialize(dt dtype.ScalarType, n int, raw []byte) (any, error) {
	r := bytes.NewReader(raw)
	switch dt {
	case dtype.I8:
		out := make([]int8, n)
		for i := range out {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			out[i] = int8(b)
		}
		return out, nil
	case dtype.I16:
		out := make([]int16, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.I32:
		out := make([]int32, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.I64:
		out := make([]int64, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.U8:
		out := make([]uint8, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.U16:
		out := make([]uint16, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.U32:
		out := make([]uint32, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.U64:
		out := make([]uint64, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.F32:
		out := make([]float32, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.F64:
		out := make([]float64, n)
		return out, binary.Read(r, binary.LittleEndian, out)
	case dtype.Bool:
		out := make([]bool, n)
		for i := range out {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			out[i] = b != 0
		}
		return out, nil
	case dtype.String:
		out := make([]string, n)
		for i := range out {
			var lenBuf [8]byte
			if _, err := r.Read(lenBuf[:]); err != nil {
				return nil, err
			}
			l := binary.LittleEndian.Uint64(lenBuf[:])
			sb := make([]byte, l)
			if _, err := r.Read(sb); err != nil {
				return nil, err
			}
			out[i] = string(sb)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("memstore: unsupported dtype %s", dt)
	}
}

// encodeCompressed serializes and compresses data using the codec chosen
// for dt (codec.ForScalarType).
func encodeCompressed(dt dtype.ScalarType, data any, level int) ([]byte, error) {
	raw, err := serialize(dt, data)
	if err != nil {
		return nil, err
	}
	return codec.ForScalarType(dt).Encode(level, raw)
}

// decodeCompressed reverses encodeCompressed, reconstructing n elements.
func decodeCompressed(dt dtype.ScalarType, n int, compressed []byte) (any, error) {
	raw, err := codec.ForScalarType(dt).Decode(compressed)
	if err != nil {
		return nil, err
	}
	return deserialize(dt, n, raw)
}
