package comm

import (
	"bytes"
	"fmt"
	"io"
)

// SyncByte is repeated twice to mark the start of a frame.
const SyncByte byte = 0xFE

// Frame layout constants.
const (
	syncSize       = 2
	crcSize        = 2
	offsetCommand  = 2
	offsetLength   = 3
	offsetStatus   = 4
	requestHeader  = syncSize + 2 // sync, command, length
	responseHeader = syncSize + 3 // sync, command, length, status

	// MaxFrameLen is limited by the 1-byte length field.
	MaxFrameLen = 0xff
	// MinRequestLen is the length of a request without payload.
	MinRequestLen = requestHeader + crcSize
	// MinResponseLen is the length of a response without payload.
	MinResponseLen = responseHeader + crcSize
)

var syncMarker = []byte{SyncByte, SyncByte}

// Frame is a single protocol frame.
// HasStatus is set for frames sent by the peripheral.
type Frame struct {
	Command   Command
	HasStatus bool
	Status    byte
	Payload   []byte

	// Raw is the complete frame as received, nil for frames built locally.
	Raw []byte
}

// Len returns the encoded length of the frame.
func (f *Frame) Len() int {
	n := requestHeader + len(f.Payload) + crcSize
	if f.HasStatus {
		n++
	}
	return n
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() ([]byte, error) {
	l := f.Len()
	if l > MaxFrameLen {
		return nil, fmt.Errorf("%w: %s needs %d bytes", ErrFrameTooLarge, f.Command, l)
	}
	b := make([]byte, 0, l)
	b = append(b, syncMarker...)
	b = append(b, byte(f.Command), byte(l))
	if f.HasStatus {
		b = append(b, f.Status)
	}
	b = append(b, f.Payload...)
	return appendCRC16(b), nil
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	b, err := f.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Encode builds a request frame after validating params against the
// command definition.
func Encode(cmd Command, params []float32) ([]byte, error) {
	info, ok := cmd.Info()
	if !ok {
		return nil, fmt.Errorf("%w: %02X", ErrUnknownCommand, byte(cmd))
	}
	if err := info.CheckPayload(len(params)); err != nil {
		return nil, err
	}
	f := &Frame{Command: cmd, Payload: EncodeFloats(params)}
	return f.Bytes()
}

// EncodeResponse builds a response frame as the peripheral does.
func EncodeResponse(cmd Command, status byte, payload []byte) ([]byte, error) {
	f := &Frame{Command: cmd, HasStatus: true, Status: status, Payload: payload}
	return f.Bytes()
}

// ParseFrame validates one complete frame.
func ParseFrame(b []byte, withStatus bool) (*Frame, error) {
	header := requestHeader
	if withStatus {
		header = responseHeader
	}
	if len(b) < header+crcSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortRead, len(b))
	}
	if !bytes.Equal(b[:syncSize], syncMarker) {
		return nil, ErrNoSync
	}
	if l := int(b[offsetLength]); l != len(b) {
		return nil, fmt.Errorf("%w: declared %d, got %d", ErrBadLength, l, len(b))
	}
	if !VerifyCRC16(b) {
		return nil, ErrCRCMismatch
	}
	f := &Frame{
		Command:   Command(b[offsetCommand]),
		HasStatus: withStatus,
		Payload:   b[header : len(b)-crcSize],
		Raw:       b,
	}
	if withStatus {
		f.Status = b[offsetStatus]
	}
	return f, nil
}

// Response is a decoded response frame.
type Response struct {
	Command Command
	Status  byte
	// Values is set for commands responding a float array.
	Values []float32
	// Version is set for commands responding a single byte.
	Version byte
	Frame   *Frame
}

// DecodeResponse interprets the payload according to the command
// definition.
func DecodeResponse(f *Frame) (*Response, error) {
	info, ok := f.Command.Info()
	if !ok {
		return nil, fmt.Errorf("%w: %02X", ErrUnknownCommand, byte(f.Command))
	}
	r := &Response{Command: f.Command, Status: f.Status, Frame: f}
	var err error
	switch info.Response {
	case ShapeFloats:
		r.Values, err = DecodeFloats(f.Payload)
	case ShapeByte:
		body := f.Raw
		if len(body) >= crcSize {
			body = body[:len(body)-crcSize]
		}
		r.Version, err = DecodeByteField(body, responseHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Command, err)
	}
	return r, nil
}
