// Package irtx drives an IR LED from serial command lines. It has no
// hardware dependencies; the firmware supplies the carrier output.
package irtx

import (
	"errors"
	"time"

	"github.com/derktes/rc5-remote/rc5"
)

// Carrier controls the IR LED.
type Carrier interface {
	// Tune sets the carrier period to twice halfCycle.
	Tune(halfCycle time.Duration)
	// Modulate starts or stops the carrier.
	Modulate(on bool)
	// Level drives the LED steadily on or off without modulation.
	Level(on bool)
}

// Transmitter renders waveforms on a Carrier.
type Transmitter struct {
	carrier Carrier
	sleep   func(time.Duration)
	held    bool
	tuned   time.Duration
}

// NewTransmitter returns a Transmitter using sleep for timing.
func NewTransmitter(c Carrier, sleep func(time.Duration)) *Transmitter {
	c.Level(false)
	return &Transmitter{carrier: c, sleep: sleep}
}

// Send emits w at the carrier period it was encoded with. Every bit lasts
// twice its half period.
func (tx *Transmitter) Send(w rc5.Waveform) {
	tx.carrier.Level(false)
	for _, p := range w {
		if p.CarrierHalfCycle > 0 && p.CarrierHalfCycle != tx.tuned {
			tx.carrier.Tune(p.CarrierHalfCycle)
			tx.tuned = p.CarrierHalfCycle
		}
		for _, seg := range p.Segments() {
			tx.carrier.Modulate(seg.Carrier)
			tx.sleep(seg.Duration)
		}
	}
	tx.carrier.Modulate(false)
	tx.carrier.Level(tx.held)
}

// Hold keeps the LED steadily on or off between transmissions.
func (tx *Transmitter) Hold(on bool) {
	tx.held = on
	tx.carrier.Level(on)
}

// Handle executes one command line and returns the reply for the host.
func (tx *Transmitter) Handle(line string) string {
	l, err := rc5.ParseLine(line)
	if err != nil {
		return "ERR " + err.Error()
	}
	switch l.Kind {
	case rc5.LineTransmit:
		f, err := l.Waveform.Frame()
		if err != nil {
			return "ERR " + err.Error()
		}
		tx.Send(l.Waveform)
		return "IR command is: " + f.String()
	case rc5.LineLevel:
		tx.Hold(l.Level)
		if l.Level {
			return "LV 1"
		}
		return "LV 0"
	}
	return "ERR unhandled " + l.Kind
}

// MaxLineLength bounds one command line, terminator excluded.
const MaxLineLength = 64

// ErrLineTooLong is reported once for a line that did not fit the buffer.
var ErrLineTooLong = errors.New("line too long")

// LineBuffer assembles command lines from serial bytes.
type LineBuffer struct {
	buf      [MaxLineLength]byte
	n        int
	overflow bool
}

// Push adds c and returns a complete line when c ends one. Carriage returns
// are dropped.
func (b *LineBuffer) Push(c byte) (line string, ok bool, err error) {
	switch c {
	case '\r':
		return "", false, nil
	case '\n':
		line, overflow := string(b.buf[:b.n]), b.overflow
		b.n, b.overflow = 0, false
		if overflow {
			return "", true, ErrLineTooLong
		}
		return line, true, nil
	}
	if b.n == len(b.buf) {
		b.overflow = true
		return "", false, nil
	}
	b.buf[b.n] = c
	b.n++
	return "", false, nil
}
