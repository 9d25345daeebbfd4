package server

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/derktes/rc5-remote/rc5"
	"github.com/derktes/rc5-remote/server/config"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

// emitter is the hardware-facing side of a dispatch.
type emitter interface {
	rc5.Output
	io.Closer
	kind() string
}

func openEmitter(cfg config.EmitterConfig, log logrus.FieldLogger) (emitter, error) {
	switch cfg.Type {
	case config.EmitterSerial:
		port, err := serial.OpenPort(&serial.Config{
			Name:        cfg.Device,
			Baud:        cfg.Baud,
			ReadTimeout: time.Duration(cfg.ReadTimeoutMillis) * time.Millisecond,
		})
		if err != nil {
			return nil, fmt.Errorf("error opening serial port %s: %w", cfg.Device, err)
		}
		log.Infof("Opened serial port '%s' at baud rate %d", cfg.Device, cfg.Baud)
		return newSerialEmitter(port, log), nil
	case config.EmitterLog:
		return &logEmitter{log: log}, nil
	}
	return nil, fmt.Errorf("unknown emitter type %q", cfg.Type)
}

// logEmitter only reports what would have been sent.
type logEmitter struct {
	log logrus.FieldLogger
}

func (e *logEmitter) Transmit(w rc5.Waveform) error {
	f, err := w.Frame()
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"pulses":        len(w),
		"duration":      w.Duration(),
		"carrier":       w[0].CarrierHalfCycle,
		"carrierCycles": w[0].Timing().CarrierCycles(),
	}).Infof("IR command is: %s", f)
	return nil
}

func (e *logEmitter) SetIndicator(on bool) error {
	e.log.WithField("on", on).Info("Indicator level set")
	return nil
}

func (e *logEmitter) Close() error { return nil }

func (e *logEmitter) kind() string { return config.EmitterLog }

// serialEmitter writes codec lines to the emitter firmware and logs what it
// echoes back.
type serialEmitter struct {
	port   io.ReadWriteCloser
	log    logrus.FieldLogger
	sleep  func(time.Duration)
	closed atomic.Bool
	done   chan struct{}
}

func newSerialEmitter(port io.ReadWriteCloser, log logrus.FieldLogger) *serialEmitter {
	e := &serialEmitter{
		port:  port,
		log:   log,
		sleep: time.Sleep,
		done:  make(chan struct{}),
	}
	go e.readEcho()
	return e
}

// Transmit hands the waveform to the firmware and waits out its nominal
// duration so frames never queue up on the emitter.
func (e *serialEmitter) Transmit(w rc5.Waveform) error {
	line, err := rc5.MarshalTransmit(w)
	if err != nil {
		return err
	}
	if _, err := e.port.Write(line); err != nil {
		return err
	}
	e.log.Debugf("Sent %q", strings.TrimSpace(string(line)))
	e.sleep(w.Duration())
	return nil
}

func (e *serialEmitter) SetIndicator(on bool) error {
	_, err := e.port.Write(rc5.MarshalLevel(on))
	return err
}

func (e *serialEmitter) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	err := e.port.Close()
	select {
	case <-e.done:
	case <-time.After(time.Second):
		e.log.Warn("Serial echo reader did not stop")
	}
	return err
}

func (e *serialEmitter) kind() string { return config.EmitterSerial }

// readEcho logs lines coming back from the firmware. A read timeout on the
// port surfaces as io.EOF and is not fatal.
func (e *serialEmitter) readEcho() {
	defer close(e.done)
	rd := bufio.NewReader(e.port)
	var pending strings.Builder
	for {
		chunk, err := rd.ReadString('\n')
		pending.WriteString(chunk)
		if err == nil {
			e.logEcho(strings.TrimSpace(pending.String()))
			pending.Reset()
			continue
		}
		if e.closed.Load() {
			return
		}
		if err != io.EOF {
			e.log.WithError(err).Error("Error reading from serial port")
			return
		}
	}
}

func (e *serialEmitter) logEcho(line string) {
	switch {
	case line == "":
	case strings.HasPrefix(line, "ERR"):
		e.log.Warnf("Emitter: %s", line)
	default:
		e.log.Debugf("Emitter: %s", line)
	}
}
