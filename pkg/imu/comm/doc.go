// Package comm provides the IMU link protocol support.
package comm

// The IMU link protocol is communicated between the IMU firmware and
// a master over a byte stream (e.g. USB CDC serial port), one request
// followed by one response.
//
// Every frame is length-delimited and protected by a CRC16 trailer:
//
//	FE FE | command | length | [status] | payload... | crc-lo crc-hi
//
// The status byte is only present in responses. Length counts the whole
// frame including sync marker and CRC. Float payloads are little-endian
// IEEE-754 single precision values.
//
// Producer: IMU firmware
// Consumer: master (this package)
