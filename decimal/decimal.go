// Package decimal renders Parquet fixed-point decimals as exact base-10 text.
//
// Only the unsigned magnitude of the encoded bytes is recovered: a two's
// complement negative value renders as a large positive number.
package decimal

import (
	"encoding/binary"
	"math/big"
	"strings"
)

type Encoding uint8

const (
	FixedInt32 Encoding = iota
	FixedInt64
	VariableBytes
)

func (e Encoding) String() string {
	switch e {
	case FixedInt32:
		return "int32"
	case FixedInt64:
		return "int64"
	default:
		return "bytes"
	}
}

// Decimal is a scaled integer as stored on disk. Bytes holds the big-endian
// magnitude.
type Decimal struct {
	Encoding  Encoding
	Bytes     []byte
	Precision int32
	Scale     int32
}

func FromInt32(v int32, precision, scale int32) Decimal {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return Decimal{Encoding: FixedInt32, Bytes: b, Precision: precision, Scale: scale}
}

func FromInt64(v int64, precision, scale int32) Decimal {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return Decimal{Encoding: FixedInt64, Bytes: b, Precision: precision, Scale: scale}
}

func FromBytes(b []byte, precision, scale int32) Decimal {
	return Decimal{Encoding: VariableBytes, Bytes: b, Precision: precision, Scale: scale}
}

func (d Decimal) String() string {
	return Format(d.Bytes, d.Scale)
}

// Format renders a big-endian unsigned magnitude with scale fractional digits.
// An empty magnitude is zero.
func Format(magnitude []byte, scale int32) string {
	digits := new(big.Int).SetBytes(magnitude).String()
	if scale <= 0 {
		return digits
	}

	s := int(scale)
	if len(digits) <= s {
		digits = strings.Repeat("0", s+1-len(digits)) + digits
	}
	point := len(digits) - s
	return digits[:point] + "." + digits[point:]
}
