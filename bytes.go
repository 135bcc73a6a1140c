package mp4

import "encoding/binary"

var be = binary.BigEndian

func u16(b []byte) uint16 { return be.Uint16(b) }

func u32(b []byte) uint32 { return be.Uint32(b) }

// u64 joins the high and low 32-bit words at b[0:8].
func u64(b []byte) uint64 {
	return uint64(u32(b))<<32 | uint64(u32(b[4:]))
}
