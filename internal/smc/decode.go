package smc

import (
	"encoding/binary"
	"math"
)

const fixedPointScale = 256.0

type decodeFunc func(b []byte) float64

// Known SMC value encodings. The sp/fp tag suffixes nominally encode
// the binary point position, but the SMC reports all of these 2-byte
// fractional sensors with a /256 scale, so one decoder per family
// suffices. Adding a new encoding is a one-line table entry.
var decoders = map[string]decodeFunc{
	"sp78": decodeSignedFixed,
	"sp87": decodeSignedFixed,
	"sp96": decodeSignedFixed,
	"spa5": decodeSignedFixed,
	"spb4": decodeSignedFixed,
	"spf0": decodeSignedFixed,
	"fp88": decodeUnsignedFixed,
	"fp79": decodeUnsignedFixed,
	"fp6a": decodeUnsignedFixed,
	"fp4c": decodeUnsignedFixed,
	"flt ": decodeFloat32,
	"ui8 ": decodeUint8,
	"ui16": decodeUint16,
	"ui32": decodeUint32,
}

// DecodeBytes converts a raw sensor value to float64 according to its
// declared type tag. Unknown tags degrade to a size-based unsigned
// integer interpretation and short buffers decode to 0; malformed
// sensor data must never abort a collection cycle.
func DecodeBytes(b []byte, typeTag string, declaredSize uint32) float64 {
	if decode, ok := decoders[typeTag]; ok {
		return decode(b)
	}

	return decodeSized(b, declaredSize)
}

func decodeSignedFixed(b []byte) float64 {
	if len(b) < 2 {
		return 0
	}

	return float64(int16(binary.BigEndian.Uint16(b))) / fixedPointScale
}

func decodeUnsignedFixed(b []byte) float64 {
	if len(b) < 2 {
		return 0
	}

	return float64(binary.BigEndian.Uint16(b)) / fixedPointScale
}

func decodeFloat32(b []byte) float64 {
	if len(b) < 4 {
		return 0
	}

	return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
}

func decodeUint8(b []byte) float64 {
	if len(b) < 1 {
		return 0
	}

	return float64(b[0])
}

func decodeUint16(b []byte) float64 {
	if len(b) < 2 {
		return 0
	}

	return float64(binary.BigEndian.Uint16(b))
}

func decodeUint32(b []byte) float64 {
	if len(b) < 4 {
		return 0
	}

	return float64(binary.BigEndian.Uint32(b))
}

func decodeSized(b []byte, declaredSize uint32) float64 {
	switch declaredSize {
	case 1:
		return decodeUint8(b)
	case 2:
		return decodeUint16(b)
	case 4:
		return decodeUint32(b)
	default:
		return 0
	}
}
