package rc5

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Line kinds exchanged with the emitter over a serial link.
const (
	LineTransmit = "TX"
	LineLevel    = "LV"
)

// Line is one decoded serial command.
type Line struct {
	Kind     string
	Waveform Waveform
	Level    bool
}

// MarshalTransmit renders w as
// "TX <halfMicros> <burstMicros> <carrierHalfCycleNanos> <bits>\n".
// The carrier half cycle is sent in nanoseconds so the nominal 13.889 us
// survives. Every pulse of w must share the same timing.
func MarshalTransmit(w Waveform) ([]byte, error) {
	f, err := w.Frame()
	if err != nil {
		return nil, err
	}
	t := w[0].Timing()
	for _, p := range w[1:] {
		if p.Timing() != t {
			return nil, fmt.Errorf("%w: mixed pulse timing", ErrBadLine)
		}
	}
	return []byte(fmt.Sprintf("%s %d %d %d %s\n", LineTransmit,
		t.HalfPeriod.Microseconds(), t.BurstPeriod.Microseconds(), t.CarrierHalfCycle.Nanoseconds(), f)), nil
}

// MarshalLevel renders "LV 1\n" or "LV 0\n".
func MarshalLevel(on bool) []byte {
	if on {
		return []byte(LineLevel + " 1\n")
	}
	return []byte(LineLevel + " 0\n")
}

// ParseLine decodes one line produced by MarshalTransmit or MarshalLevel.
// Surrounding whitespace is ignored.
func ParseLine(s string) (Line, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Line{}, fmt.Errorf("%w: empty", ErrBadLine)
	}
	switch fields[0] {
	case LineTransmit:
		if len(fields) != 5 {
			return Line{}, fmt.Errorf("%w: %s wants 4 fields, got %d", ErrBadLine, LineTransmit, len(fields)-1)
		}
		half, err := parseDuration(fields[1], time.Microsecond)
		if err != nil {
			return Line{}, err
		}
		burst, err := parseDuration(fields[2], time.Microsecond)
		if err != nil {
			return Line{}, err
		}
		carrier, err := parseDuration(fields[3], time.Nanosecond)
		if err != nil {
			return Line{}, err
		}
		t := Timing{HalfPeriod: half, BurstPeriod: burst, CarrierHalfCycle: carrier}
		if err := t.Validate(); err != nil {
			return Line{}, fmt.Errorf("%w: %v", ErrBadLine, err)
		}
		f, err := ParseFrame(fields[4])
		if err != nil {
			return Line{}, fmt.Errorf("%w: %v", ErrBadLine, err)
		}
		return Line{Kind: LineTransmit, Waveform: Encode(f, t)}, nil
	case LineLevel:
		if len(fields) != 2 || (fields[1] != "0" && fields[1] != "1") {
			return Line{}, fmt.Errorf("%w: %s wants 0 or 1", ErrBadLine, LineLevel)
		}
		return Line{Kind: LineLevel, Level: fields[1] == "1"}, nil
	}
	return Line{}, fmt.Errorf("%w: unknown kind %q", ErrBadLine, fields[0])
}

func parseDuration(s string, unit time.Duration) (time.Duration, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadLine, err)
	}
	return time.Duration(n) * unit, nil
}
