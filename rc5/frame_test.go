package rc5

import (
	"errors"
	"testing"
)

func TestBuildFrame(t *testing.T) {
	tests := []struct {
		device  DeviceKey
		command CommandKey
		toggle  uint8
		want    string
	}{
		{DeviceTV1, CommandVolumeUp, 1, "11100000010000"},
		{DeviceCD, CommandMute, 0, "11010100001101"},
		{DeviceTV2, CommandStandby, 0, "11000001001100"},
		{DeviceVCR1, CommandPause, 1, "11100101110000"},
		{DeviceVCR2, CommandFastReverse, 0, "11000110110010"},
		{DeviceVideoDisc, CommandFastForward, 0, "11001100110100"},
		{DeviceCassetteRecorder, CommandPlay, 1, "11110010110101"},
		{DeviceCD, CommandStop, 0, "11010100110110"},
		{DeviceCD, CommandRecord, 0, "11010100110111"},
		{DeviceTV1, CommandBrightnessUp, 0, "11000000010010"},
		// toggle only uses its lowest bit
		{DeviceTV1, CommandMute, 3, "11100000001101"},
	}
	for _, tt := range tests {
		f, err := BuildFrame(tt.device, tt.command, tt.toggle)
		if err != nil {
			t.Errorf("BuildFrame(%v, %v): %v", tt.device, tt.command, err)
			continue
		}
		if got := f.String(); got != tt.want {
			t.Errorf("BuildFrame(%v, %v, %d) = %s, want %s", tt.device, tt.command, tt.toggle, got, tt.want)
		}
	}
}

func TestBuildFrameFields(t *testing.T) {
	for _, d := range Devices() {
		for _, c := range Commands() {
			if !c.Framed {
				continue
			}
			f, err := BuildFrame(d.Key, c.Key, 1)
			if err != nil {
				t.Fatal(err)
			}
			if f[0] != 1 || f[1] != 1 {
				t.Errorf("%s/%s: start bits %d%d", d.Name, c.Name, f[0], f[1])
			}
			if f.Toggle() != 1 {
				t.Errorf("%s/%s: toggle %d", d.Name, c.Name, f.Toggle())
			}
			if f.Address() != d.Address {
				t.Errorf("%s/%s: address %05b, want %05b", d.Name, c.Name, f.Address(), d.Address)
			}
			if f.Command() != c.Pattern {
				t.Errorf("%s/%s: command %06b, want %06b", d.Name, c.Name, f.Command(), c.Pattern)
			}
		}
	}
}

func TestBuildFrameIsDeterministic(t *testing.T) {
	a, _ := BuildFrame(DeviceVCR1, CommandRecord, 1)
	b, _ := BuildFrame(DeviceVCR1, CommandRecord, 1)
	if a != b {
		t.Errorf("%s != %s", a, b)
	}
}

func TestBuildFrameRejectsUnresolvedKeys(t *testing.T) {
	if _, err := BuildFrame(UnknownDevice, CommandMute, 0); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("unknown device: err = %v", err)
	}
	if _, err := BuildFrame(DeviceCD, NoCommand, 0); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("no command: err = %v", err)
	}
	if _, err := BuildFrame(DeviceCD, CommandIndicatorOn, 0); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("indicator command: err = %v", err)
	}
	if _, err := BuildFrame(DeviceTV1, CommandMenuOn, 0); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("menu command: err = %v", err)
	}
}

func TestFrameUint16(t *testing.T) {
	f, _ := BuildFrame(DeviceTV1, CommandVolumeUp, 1)
	if got := f.Uint16(); got != 0b11100000010000 {
		t.Errorf("Uint16() = %014b", got)
	}
}

func TestParseFrame(t *testing.T) {
	f, _ := BuildFrame(DeviceCD, CommandMute, 1)
	got, err := ParseFrame(f.String())
	if err != nil || got != f {
		t.Errorf("ParseFrame(%s) = %s, %v", f, got, err)
	}
	for _, bad := range []string{"", "1110000001000", "111000000100000", "1110000001000x"} {
		if _, err := ParseFrame(bad); err == nil {
			t.Errorf("ParseFrame(%q) should fail", bad)
		}
	}
}
