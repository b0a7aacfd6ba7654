// Package byteorder implements little-endian integer reads and writes over
// plain byte slices, the primitive every DIB/ICO/CUR field is built from.
package byteorder

// Uint16 reads a little-endian uint16 from the first 2 bytes of b.
func Uint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// Uint32 reads a little-endian uint32 from the first 4 bytes of b.
func Uint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Int16 reads a little-endian, two's-complement int16.
func Int16(b []byte) int16 {
	return int16(Uint16(b))
}

// Int32 reads a little-endian, two's-complement int32.
func Int32(b []byte) int32 {
	return int32(Uint32(b))
}

// PutUint16 writes v to the first 2 bytes of b in little-endian order.
func PutUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// PutUint32 writes v to the first 4 bytes of b in little-endian order.
func PutUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// PutInt16 writes v to the first 2 bytes of b in little-endian order.
func PutInt16(b []byte, v int16) {
	PutUint16(b, uint16(v))
}

// PutInt32 writes v to the first 4 bytes of b in little-endian order.
func PutInt32(b []byte, v int32) {
	PutUint32(b, uint32(v))
}
