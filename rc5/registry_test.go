package rc5

import "testing"

func TestResolveDevice(t *testing.T) {
	tests := []struct {
		name string
		want DeviceKey
	}{
		{"tvset1", DeviceTV1},
		{"tvset2", DeviceTV2},
		{"vcr1", DeviceVCR1},
		{"vcr2", DeviceVCR2},
		{"cdvideo", DeviceVideoDisc},
		{"casseterecorder", DeviceCassetteRecorder},
		{"cd", DeviceCD},
		{"", UnknownDevice},
		{"TVSET1", UnknownDevice},
		{"tvset", UnknownDevice},
		{"tvset10", UnknownDevice},
		{"bogus", UnknownDevice},
	}
	for _, tt := range tests {
		if got := ResolveDevice(tt.name); got != tt.want {
			t.Errorf("ResolveDevice(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		name string
		want CommandKey
	}{
		{"standby", 12},
		{"mute", 13},
		{"volumeup", 16},
		{"volumedown", 17},
		{"brightnessup", 18},
		{"brightnessdown", 19},
		{"pause", 48},
		{"fastreverse", 50},
		{"fastforward", 52},
		{"play", 53},
		{"stop", 54},
		{"record", 55},
		{"menuon", 82},
		{"menuoff", 83},
		{"ledon", 500},
		{"ledoff", 501},
		{"", NoCommand},
		{"Mute", NoCommand},
		{"mute ", NoCommand},
		{"volume", NoCommand},
		{"bogus", NoCommand},
	}
	for _, tt := range tests {
		if got := ResolveCommand(tt.name); got != tt.want {
			t.Errorf("ResolveCommand(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRegistryTablesAreConsistent(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Devices() {
		if seen[d.Name] {
			t.Errorf("duplicate device name %q", d.Name)
		}
		seen[d.Name] = true
		if d.Address >= 1<<addressBits {
			t.Errorf("device %q address %b wider than %d bits", d.Name, d.Address, addressBits)
		}
		if ResolveDevice(d.Name) != d.Key {
			t.Errorf("device %q does not resolve to its own key", d.Name)
		}
	}

	seen = map[string]bool{}
	for _, c := range Commands() {
		if seen[c.Name] {
			t.Errorf("duplicate command name %q", c.Name)
		}
		seen[c.Name] = true
		if c.Key == NoCommand {
			t.Errorf("command %q uses the reserved zero key", c.Name)
		}
		if c.Pattern >= 1<<commandBits {
			t.Errorf("command %q pattern %b wider than %d bits", c.Name, c.Pattern, commandBits)
		}
	}
}

func TestCommandPatternsAreDistinct(t *testing.T) {
	seen := map[uint8]CommandKey{}
	for _, c := range Commands() {
		if !c.Framed {
			continue
		}
		p, ok := commandPattern(c.Key)
		if !ok {
			t.Fatalf("no pattern for %v", c.Key)
		}
		if other, dup := seen[p]; dup {
			t.Errorf("%v and %v share pattern %06b", c.Key, other, p)
		}
		seen[p] = c.Key
	}
}

func TestIndicatorCommandsHaveNoPattern(t *testing.T) {
	for _, k := range []CommandKey{CommandIndicatorOn, CommandIndicatorOff} {
		if !k.IsIndicator() {
			t.Errorf("%v should be an indicator command", k)
		}
		if _, ok := commandPattern(k); ok {
			t.Errorf("%v should have no frame pattern", k)
		}
	}
	if CommandMute.IsIndicator() {
		t.Error("mute is not an indicator command")
	}
}

func TestKeyStrings(t *testing.T) {
	if got := DeviceCD.String(); got != "cd" {
		t.Errorf("DeviceCD.String() = %q", got)
	}
	if got := UnknownDevice.String(); got != "unknown" {
		t.Errorf("UnknownDevice.String() = %q", got)
	}
	if got := CommandVolumeUp.String(); got != "volumeup" {
		t.Errorf("CommandVolumeUp.String() = %q", got)
	}
	if got := NoCommand.String(); got != "none" {
		t.Errorf("NoCommand.String() = %q", got)
	}
}
