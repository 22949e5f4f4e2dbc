package smc

import "encoding/binary"

// EncodeKey converts a 4-character sensor key name into the big-endian
// 32-bit form the SMC expects. Any other length returns 0, which must
// never be sent to the device.
func EncodeKey(name string) uint32 {
	if len(name) != keySize {
		return 0
	}

	return binary.BigEndian.Uint32([]byte(name))
}

// DecodeKey is the inverse of EncodeKey. It is only meaningful for
// values produced from valid 4-character keys.
func DecodeKey(key uint32) string {
	var b [keySize]byte
	binary.BigEndian.PutUint32(b[:], key)

	return string(b[:])
}

// DecodeType renders a sensor's reported data-type tag (e.g. "sp78")
// as its ASCII form.
func DecodeType(dataType uint32) string {
	return DecodeKey(dataType)
}
