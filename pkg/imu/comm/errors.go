package comm

import "errors"

var (
	// ErrSyncTimeout indicates no sync marker is found before the
	// response window expires.
	ErrSyncTimeout = errors.New("sync timeout")
	// ErrShortRead indicates the frame is truncated: fewer bytes than
	// declared arrived before the read timeout.
	ErrShortRead = errors.New("short read")
	// ErrCRCMismatch indicates the frame is fully received but the
	// checksum doesn't match.
	ErrCRCMismatch = errors.New("crc mismatch")
	// ErrNoSync indicates a complete frame doesn't start with the sync marker.
	ErrNoSync = errors.New("sync marker not found")
	// ErrBadLength indicates the length field is smaller than a minimal frame.
	ErrBadLength = errors.New("bad frame length")
	// ErrMalformedPayload indicates the payload doesn't fit the shape
	// expected by the command.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrPayloadMismatch indicates the request payload violates the
	// command definition. Such a request is never sent.
	ErrPayloadMismatch = errors.New("payload mismatch")
	// ErrFrameTooLarge indicates the encoded frame exceeds the 1-byte
	// length field.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrUnknownCommand indicates the command code is not registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrTransportClosed indicates the underlying transport is gone.
	ErrTransportClosed = errors.New("transport closed")
)

// IsTimeout reports errors which mean nothing usable arrived in time.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrSyncTimeout) || errors.Is(err, ErrShortRead)
}

// IsCorrupt reports errors which mean a frame arrived but could not be
// accepted.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCRCMismatch) ||
		errors.Is(err, ErrBadLength) ||
		errors.Is(err, ErrNoSync) ||
		errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrUnknownCommand)
}
