package comm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeFloats(t *testing.T) {
	require.Empty(t, EncodeFloats(nil))
	require.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, EncodeFloats([]float32{1}))
	require.Equal(t, []byte{0x00, 0x00, 0x20, 0xc0, 0, 0, 0, 0}, EncodeFloats([]float32{-2.5, 0}))
}

func TestDecodeFloats(t *testing.T) {
	values := []float32{
		1, -2.5, 0, float32(math.Copysign(0, -1)), math.MaxFloat32,
		math.SmallestNonzeroFloat32, float32(math.Inf(-1)), math.Float32frombits(0x7fc00001),
	}
	decoded, err := DecodeFloats(EncodeFloats(values))
	require.NoError(t, err)
	require.Len(t, decoded, len(values))
	for n := range values {
		require.Equalf(t, math.Float32bits(values[n]), math.Float32bits(decoded[n]), "value[%d]", n)
	}

	decoded, err = DecodeFloats(nil)
	require.NoError(t, err)
	require.Empty(t, decoded)

	for _, n := range []int{1, 2, 3, 5, 7} {
		_, err = DecodeFloats(make([]byte, n))
		require.ErrorIsf(t, err, ErrMalformedPayload, "%d bytes", n)
	}
}

func TestDecodeByteField(t *testing.T) {
	b := []byte{1, 2, 3}
	v, err := DecodeByteField(b, 2)
	require.NoError(t, err)
	require.Equal(t, byte(3), v)
	_, err = DecodeByteField(b, 3)
	require.ErrorIs(t, err, ErrMalformedPayload)
	_, err = DecodeByteField(b, -1)
	require.ErrorIs(t, err, ErrMalformedPayload)
}
