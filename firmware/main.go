//go:build tinygo

// Command firmware runs on a TinyGo board wired to an IR LED and executes
// the TX and LV lines sent by the server's serial emitter.
package main

import (
	. "machine"
	"time"

	"github.com/derktes/rc5-remote/firmware/irtx"
	"github.com/derktes/rc5-remote/rc5"
	"github.com/sparques/pwm"
)

const (
	irPin    = D3
	baudRate = 9600
)

type pwmCarrier struct {
	pgroup pwm.Group
	ch     uint8
	duty   uint32
}

func newPWMCarrier(pin Pin) *pwmCarrier {
	pin.Configure(PinConfig{Mode: PinPWM})
	pgroup := pwm.Get(pin)
	pgroup.Configure(PWMConfig{Period: uint64(1e9) / uint64(rc5.CarrierFrequency)})
	ch, _ := pgroup.Channel(pin)
	pgroup.Set(ch, 0)
	return &pwmCarrier{
		pgroup: pgroup,
		ch:     ch,
		duty:   pgroup.Top() / 3,
	}
}

// Tune reconfigures the PWM period to a full carrier cycle.
func (c *pwmCarrier) Tune(halfCycle time.Duration) {
	c.pgroup.Set(c.ch, 0)
	c.pgroup.Configure(PWMConfig{Period: uint64(2 * halfCycle.Nanoseconds())})
	c.duty = c.pgroup.Top() / 3
}

func (c *pwmCarrier) Modulate(on bool) {
	if on {
		c.pgroup.Set(c.ch, c.duty)
		return
	}
	c.pgroup.Set(c.ch, 0)
}

func (c *pwmCarrier) Level(on bool) {
	if on {
		c.pgroup.Set(c.ch, c.pgroup.Top())
		return
	}
	c.pgroup.Set(c.ch, 0)
}

func reply(s string) {
	Serial.Write([]byte(s))
	Serial.Write([]byte("\r\n"))
}

func main() {
	Serial.Configure(UARTConfig{BaudRate: baudRate})
	tx := irtx.NewTransmitter(newPWMCarrier(irPin), time.Sleep)
	var lines irtx.LineBuffer
	reply("Ready")
	for {
		if Serial.Buffered() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		c, err := Serial.ReadByte()
		if err != nil {
			continue
		}
		line, ok, err := lines.Push(c)
		switch {
		case err != nil:
			reply("ERR " + err.Error())
		case ok:
			reply(tx.Handle(line))
		}
	}
}
