package rc5

import (
	"fmt"
	"strings"
)

// Frame layout.
const (
	FrameBits    = 14
	startBits    = 2
	toggleIndex  = 2
	addressIndex = 3
	addressBits  = 5
	commandIndex = addressIndex + addressBits
	commandBits  = 6
)

// Frame is an RC-5 frame in transmission order: two start bits, the toggle
// bit, five address bits and six command bits, most significant first.
type Frame [FrameBits]uint8

// BuildFrame assembles the frame for a resolved device and command. Only the
// lowest bit of toggle is used.
func BuildFrame(d DeviceKey, c CommandKey, toggle uint8) (Frame, error) {
	var f Frame
	address, ok := addressPattern(d)
	if !ok {
		return f, fmt.Errorf("%w: key %d", ErrUnknownDevice, d)
	}
	command, ok := commandPattern(c)
	if !ok {
		return f, fmt.Errorf("%w: key %d", ErrUnknownCommand, c)
	}

	for i := 0; i < startBits; i++ {
		f[i] = 1
	}
	f[toggleIndex] = toggle & 1
	putBits(f[addressIndex:addressIndex+addressBits], address)
	putBits(f[commandIndex:commandIndex+commandBits], command)
	return f, nil
}

// putBits writes v into dst, most significant bit first.
func putBits(dst []uint8, v uint8) {
	for i := range dst {
		dst[i] = (v >> (len(dst) - 1 - i)) & 1
	}
}

func getBits(src []uint8) uint8 {
	var v uint8
	for _, b := range src {
		v = v<<1 | b&1
	}
	return v
}

// Toggle returns the toggle bit.
func (f Frame) Toggle() uint8 {
	return f[toggleIndex]
}

// Address returns the 5-bit address field.
func (f Frame) Address() uint8 {
	return getBits(f[addressIndex : addressIndex+addressBits])
}

// Command returns the 6-bit command field.
func (f Frame) Command() uint8 {
	return getBits(f[commandIndex : commandIndex+commandBits])
}

// Uint16 packs the frame into the low 14 bits, first bit highest.
func (f Frame) Uint16() uint16 {
	var v uint16
	for _, b := range f {
		v = v<<1 | uint16(b&1)
	}
	return v
}

// String renders the bits as '0'/'1' characters in transmission order.
func (f Frame) String() string {
	var sb strings.Builder
	sb.Grow(FrameBits)
	for _, b := range f {
		sb.WriteByte('0' + b&1)
	}
	return sb.String()
}

// ParseFrame is the inverse of Frame.String.
func ParseFrame(s string) (Frame, error) {
	var f Frame
	if len(s) != FrameBits {
		return f, fmt.Errorf("frame must be %d bits, got %d", FrameBits, len(s))
	}
	for i := 0; i < FrameBits; i++ {
		switch s[i] {
		case '0':
		case '1':
			f[i] = 1
		default:
			return f, fmt.Errorf("invalid frame bit %q at %d", s[i], i)
		}
	}
	return f, nil
}
