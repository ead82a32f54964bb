// Package binread provides fixed little-endian field accessors over byte
// buffers, as used by the Nihilistic engine binary formats.
package binread

import (
	"encoding/binary"
	"math"
)

// U8 reads an unsigned byte at off. Returns 0 if off is out of range.
func U8(data []byte, off int) uint8 {
	if off < 0 || off >= len(data) {
		return 0
	}
	return data[off]
}

// U16 reads a little-endian uint16 at off. Returns 0 if out of range.
func U16(data []byte, off int) uint16 {
	if off < 0 || off+2 > len(data) {
		return 0
	}
	return binary.LittleEndian.Uint16(data[off:])
}

// U32 reads a little-endian uint32 at off. Returns 0 if out of range.
func U32(data []byte, off int) uint32 {
	if off < 0 || off+4 > len(data) {
		return 0
	}
	return binary.LittleEndian.Uint32(data[off:])
}

// F32 reads a little-endian IEEE-754 float32 at off. Returns 0 if out of range.
func F32(data []byte, off int) float32 {
	if off < 0 || off+4 > len(data) {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
}

// Vec3 reads three consecutive little-endian float32 values at off.
func Vec3(data []byte, off int) [3]float32 {
	return [3]float32{F32(data, off), F32(data, off+4), F32(data, off+8)}
}

// Vec2 reads two consecutive little-endian float32 values at off.
func Vec2(data []byte, off int) [2]float32 {
	return [2]float32{F32(data, off), F32(data, off+4)}
}

// Has reports whether the buffer holds n bytes starting at off.
func Has(data []byte, off, n int) bool {
	return off >= 0 && n >= 0 && off+n <= len(data)
}

// CString decodes a fixed-width name slot at off: the string runs to the
// first NUL byte, the remainder of the slot is ignored.
func CString(data []byte, off, width int) string {
	if off < 0 || off >= len(data) {
		return ""
	}
	end := off + width
	if end > len(data) {
		end = len(data)
	}
	slot := data[off:end]
	for i, b := range slot {
		if b == 0 {
			return string(slot[:i])
		}
	}
	return string(slot)
}
