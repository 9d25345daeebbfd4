package rc5

import (
	"fmt"
	"time"
)

// RC-5 timing. A bit lasts 64 carrier cycles at 36 kHz (1.778 ms); each half
// is 889 us.
const (
	CarrierFrequency = 36000
	HalfPeriod       = 889 * time.Microsecond
	BitPeriod        = 2 * HalfPeriod

	// Bit-banged emitters lose time to pin writes, so the burst half and
	// the carrier half cycle run shorter than nominal.
	CalibratedBurstPeriod      = 750 * time.Microsecond
	CalibratedCarrierHalfCycle = 10 * time.Microsecond
)

// Timing holds the durations used to render a frame.
type Timing struct {
	// HalfPeriod is the nominal length of each half of a bit.
	HalfPeriod time.Duration
	// BurstPeriod is how long the carrier runs during the active half.
	BurstPeriod time.Duration
	// CarrierHalfCycle is the on (and off) time of one carrier oscillation.
	CarrierHalfCycle time.Duration
}

// DefaultTiming returns the nominal half period with the calibrated burst and
// carrier values.
func DefaultTiming() Timing {
	return Timing{
		HalfPeriod:       HalfPeriod,
		BurstPeriod:      CalibratedBurstPeriod,
		CarrierHalfCycle: CalibratedCarrierHalfCycle,
	}
}

// NominalTiming returns the textbook RC-5 durations with no calibration.
func NominalTiming() Timing {
	return Timing{
		HalfPeriod:       HalfPeriod,
		BurstPeriod:      HalfPeriod,
		CarrierHalfCycle: time.Second / (2 * CarrierFrequency),
	}
}

// Validate checks that the durations are positive and nested.
func (t Timing) Validate() error {
	switch {
	case t.HalfPeriod <= 0, t.BurstPeriod <= 0, t.CarrierHalfCycle <= 0:
		return fmt.Errorf("%w: durations must be positive", ErrInvalidTiming)
	case t.BurstPeriod > t.HalfPeriod:
		return fmt.Errorf("%w: burst %v exceeds half period %v", ErrInvalidTiming, t.BurstPeriod, t.HalfPeriod)
	case t.CarrierHalfCycle > t.BurstPeriod:
		return fmt.Errorf("%w: carrier half cycle %v exceeds burst %v", ErrInvalidTiming, t.CarrierHalfCycle, t.BurstPeriod)
	}
	return nil
}

// CarrierCycles is the number of on/off oscillations in one burst.
func (t Timing) CarrierCycles() int {
	return int(t.BurstPeriod/(2*t.CarrierHalfCycle)) + 1
}

// Segment is one half of a bit: the carrier is either bursting or idle for
// Duration.
type Segment struct {
	Carrier  bool
	Duration time.Duration
}

// PulseInstruction renders one frame bit.
type PulseInstruction struct {
	Bit        uint8
	HalfPeriod time.Duration
	Burst      time.Duration
	// CarrierHalfCycle sets the carrier period (twice this value) during
	// the burst.
	CarrierHalfCycle time.Duration
}

// Timing returns the durations the pulse was encoded with.
func (p PulseInstruction) Timing() Timing {
	return Timing{HalfPeriod: p.HalfPeriod, BurstPeriod: p.Burst, CarrierHalfCycle: p.CarrierHalfCycle}
}

// Halves returns the idle half and the burst of the bit in order: a 1 idles
// then bursts, a 0 bursts then idles. The burst segment lasts Burst, so
// with a calibrated burst the halves add up to less than Duration; use
// Segments to emit a full-length bit.
func (p PulseInstruction) Halves() [2]Segment {
	idle := Segment{Carrier: false, Duration: p.HalfPeriod}
	burst := Segment{Carrier: true, Duration: p.Burst}
	if p.Bit == 1 {
		return [2]Segment{idle, burst}
	}
	return [2]Segment{burst, idle}
}

// Segments returns the bit as emitted: the halves plus the idle time that
// pads a short burst up to the half period. The segments always add up to
// Duration.
func (p PulseInstruction) Segments() []Segment {
	h := p.Halves()
	pad := p.HalfPeriod - p.Burst
	if pad <= 0 {
		return h[:]
	}
	if p.Bit == 1 {
		return []Segment{h[0], h[1], {Carrier: false, Duration: pad}}
	}
	return []Segment{h[0], {Carrier: false, Duration: h[1].Duration + pad}}
}

// Duration is the nominal length of the bit.
func (p PulseInstruction) Duration() time.Duration {
	return 2 * p.HalfPeriod
}

// Waveform is the ordered pulse sequence for one frame.
type Waveform []PulseInstruction

// Encode converts a frame into one PulseInstruction per bit, in frame order.
func Encode(f Frame, t Timing) Waveform {
	w := make(Waveform, FrameBits)
	for i, b := range f {
		w[i] = PulseInstruction{
			Bit:              b & 1,
			HalfPeriod:       t.HalfPeriod,
			Burst:            t.BurstPeriod,
			CarrierHalfCycle: t.CarrierHalfCycle,
		}
	}
	return w
}

// Duration is the nominal transmission time of the waveform.
func (w Waveform) Duration() time.Duration {
	var d time.Duration
	for _, p := range w {
		d += p.Duration()
	}
	return d
}

// Frame recovers the bits carried by the waveform.
func (w Waveform) Frame() (Frame, error) {
	var f Frame
	if len(w) != FrameBits {
		return f, fmt.Errorf("waveform has %d pulses, want %d", len(w), FrameBits)
	}
	for i, p := range w {
		f[i] = p.Bit & 1
	}
	return f, nil
}
