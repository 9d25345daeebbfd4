package rc5

import (
	"errors"
	"fmt"
	"io"
)

// Output performs the pin-level side effects of a dispatch. Transmit blocks
// until the waveform has been emitted.
type Output interface {
	Transmit(w Waveform) error
	SetIndicator(on bool) error
}

// State is carried from one dispatch to the next.
type State struct {
	// Toggle flips on every successful frame transmission and is the
	// toggle bit of the last frame sent.
	Toggle uint8
}

// Result is the outcome of one request. Pass is false whenever Err is set.
type Result struct {
	Tokens   Tokens
	Device   DeviceKey
	Command  CommandKey
	Pass     bool
	Err      error
	Frame    *Frame
	Waveform Waveform
}

// Outcome is the response marker for the result.
func (r Result) Outcome() string {
	if r.Pass {
		return "PASS"
	}
	return "FAIL"
}

// Dispatch resolves tok and drives out. parseErr is the error reported by
// Parser.Finish, if any. The returned State differs from s only after a
// frame was transmitted.
func Dispatch(s State, tok Tokens, parseErr error, out Output, t Timing) (State, Result) {
	r := Result{Tokens: tok, Device: UnknownDevice, Command: NoCommand}
	if errors.Is(parseErr, ErrBufferOverflow) {
		r.Err = parseErr
		return s, r
	}

	r.Device = ResolveDevice(tok.Device)
	r.Command = ResolveCommand(tok.Command)
	switch {
	case r.Device == UnknownDevice:
		r.Err = withCause(ErrUnknownDevice, parseErr)
		return s, r
	case r.Command == NoCommand:
		r.Err = withCause(ErrUnknownCommand, parseErr)
		return s, r
	}

	if r.Command.IsExtended() {
		r.Err = fmt.Errorf("%w: %s", ErrUnsupportedCommand, r.Command)
		return s, r
	}

	if r.Command.IsIndicator() {
		if err := out.SetIndicator(r.Command == CommandIndicatorOn); err != nil {
			r.Err = fmt.Errorf("%w: %v", ErrTransmit, err)
			return s, r
		}
		r.Pass = true
		return s, r
	}

	next := s.Toggle ^ 1
	f, err := BuildFrame(r.Device, r.Command, next)
	if err != nil {
		r.Err = err
		return s, r
	}
	r.Frame = &f
	r.Waveform = Encode(f, t)
	if err := out.Transmit(r.Waveform); err != nil {
		r.Err = fmt.Errorf("%w: %v", ErrTransmit, err)
		return s, r
	}
	s.Toggle = next
	r.Pass = true
	return s, r
}

func withCause(err, cause error) error {
	if cause == nil {
		return err
	}
	return fmt.Errorf("%w: %w", cause, err)
}

// Dispatcher owns the parser and the toggle state for one request path.
// It is not safe for concurrent use.
type Dispatcher struct {
	state  State
	timing Timing
	out    Output
	parser *Parser
}

// NewDispatcher returns a Dispatcher writing to out. A nil out discards all
// output.
func NewDispatcher(out Output, t Timing, maxTokenLength int) *Dispatcher {
	if out == nil {
		out = discard{}
	}
	return &Dispatcher{
		timing: t,
		out:    out,
		parser: NewParser(maxTokenLength),
	}
}

// State returns the current toggle state.
func (d *Dispatcher) State() State {
	return d.state
}

// Feed consumes one request character. When it ends the request, the
// request is dispatched and its Result returned with done set.
func (d *Dispatcher) Feed(c byte) (r Result, done bool) {
	if !d.parser.Feed(c) {
		return r, false
	}
	tok, err := d.parser.Finish()
	d.state, r = Dispatch(d.state, tok, err, d.out, d.timing)
	return r, true
}

// Serve reads from rd until a request ends and returns its Result. A read
// error before that (including io.EOF from a closed connection) abandons the
// partial request and is returned as is.
func (d *Dispatcher) Serve(rd io.ByteReader) (Result, error) {
	for {
		c, err := rd.ReadByte()
		if err != nil {
			d.parser.Reset()
			return Result{}, err
		}
		if r, done := d.Feed(c); done {
			return r, nil
		}
	}
}

type discard struct{}

func (discard) Transmit(Waveform) error { return nil }
func (discard) SetIndicator(bool) error { return nil }
