package comm

import (
	"encoding/binary"
	"fmt"
	"math"
)

const floatSize = 4

// EncodeFloats serializes values as consecutive little-endian float32.
func EncodeFloats(values []float32) []byte {
	b := make([]byte, len(values)*floatSize)
	for n, v := range values {
		binary.LittleEndian.PutUint32(b[n*floatSize:], math.Float32bits(v))
	}
	return b
}

// DecodeFloats parses consecutive little-endian float32 values.
func DecodeFloats(b []byte) ([]float32, error) {
	if len(b)%floatSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedPayload, len(b), floatSize)
	}
	values := make([]float32, len(b)/floatSize)
	for n := range values {
		values[n] = math.Float32frombits(binary.LittleEndian.Uint32(b[n*floatSize:]))
	}
	return values, nil
}

// DecodeByteField extracts a single raw byte at offset.
func DecodeByteField(b []byte, offset int) (byte, error) {
	if offset < 0 || offset >= len(b) {
		return 0, fmt.Errorf("%w: offset %d out of %d bytes", ErrMalformedPayload, offset, len(b))
	}
	return b[offset], nil
}
