package rc5

import "errors"

var (
	// ErrUnknownDevice is returned when the device token matches no registry entry.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownCommand is returned when the command token matches no registry entry.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnsupportedCommand is returned for commands that resolve but have
	// no plain RC-5 frame.
	ErrUnsupportedCommand = errors.New("command has no RC-5 frame")
	// ErrBufferOverflow is returned when a token exceeds the parser's buffer.
	ErrBufferOverflow = errors.New("token buffer overflow")
	// ErrMalformedRequest is returned when the request ended before a token was terminated.
	ErrMalformedRequest = errors.New("malformed request line")
	// ErrTransmit wraps a failure reported by the Output.
	ErrTransmit = errors.New("transmit failed")
	// ErrInvalidTiming is returned by Timing.Validate.
	ErrInvalidTiming = errors.New("invalid timing")
	// ErrBadLine is returned by ParseLine for lines outside the serial codec.
	ErrBadLine = errors.New("bad serial line")
)
