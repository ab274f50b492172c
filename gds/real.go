package gds

import (
	"math"

	"go.uber.org/zap"
)

const (
	realBias         = 64
	realMaxExponent  = 127
	realMantissaBits = 56
)

// EncodeReal converts v to the 8-byte GDSII real: a sign bit, a 7-bit
// excess-64 base-16 exponent and a 56-bit fraction. Values whose exponent
// falls outside the representable range are logged and clamped.
func EncodeReal(v float64) [8]byte {
	out, ok := EncodeRealChecked(v)
	if !ok {
		Logger().Warn("gds: real out of range, clamped",
			zap.Float64("value", v),
			zap.Binary("encoded", out[:]))
	}
	return out
}

// EncodeRealChecked is EncodeReal without logging. ok is false when the
// value underflowed to zero, overflowed to the largest magnitude, or was NaN.
func EncodeRealChecked(v float64) (out [8]byte, ok bool) {
	if v == 0 {
		return out, true
	}
	if math.IsNaN(v) {
		return out, false
	}

	var sign byte
	if v < 0 {
		sign = 0x80
		v = -v
	}
	if math.IsInf(v, 1) {
		return maxReal(sign), false
	}

	exp := realBias
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 0.0625 {
		v *= 16
		exp--
	}
	if exp < 0 {
		return out, false
	}
	if exp > realMaxExponent {
		return maxReal(sign), false
	}

	var mant uint64
	for i := 0; i < realMantissaBits; i++ {
		v *= 2
		mant <<= 1
		if v >= 1 {
			mant |= 1
			v--
		}
	}

	out[0] = sign | byte(exp)
	for i := 1; i < 8; i++ {
		out[i] = byte(mant >> (8 * (7 - i)))
	}
	return out, true
}

func maxReal(sign byte) [8]byte {
	return [8]byte{sign | realMaxExponent, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
}

// DecodeReal converts an 8-byte GDSII real back to a float64.
func DecodeReal(b [8]byte) float64 {
	var mant uint64
	for i := 1; i < 8; i++ {
		mant = mant<<8 | uint64(b[i])
	}
	if mant == 0 {
		return 0
	}
	exp := int(b[0]&0x7F) - realBias
	v := math.Ldexp(float64(mant), 4*exp-realMantissaBits)
	if b[0]&0x80 != 0 {
		v = -v
	}
	return v
}
