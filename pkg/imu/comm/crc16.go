package comm

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

// CRC16 parameters shared with the firmware: poly 0x1021, init 0,
// MSB first, no final xor.
var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// CRC16 computes the checksum of b.
func CRC16(b []byte) uint16 {
	return crc16.Checksum(b, crcTable)
}

// VerifyCRC16 checks the little-endian trailer of a complete frame
// against the checksum of everything before it.
func VerifyCRC16(frame []byte) bool {
	n := len(frame)
	if n < crcSize {
		return false
	}
	return binary.LittleEndian.Uint16(frame[n-crcSize:]) == CRC16(frame[:n-crcSize])
}

func appendCRC16(b []byte) []byte {
	var trailer [crcSize]byte
	binary.LittleEndian.PutUint16(trailer[:], CRC16(b))
	return append(b, trailer[:]...)
}
