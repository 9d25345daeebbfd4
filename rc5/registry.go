package rc5

// DeviceKey identifies a target appliance class.
type DeviceKey int

// CommandKey identifies an action. Zero means no match.
type CommandKey int

// UnknownDevice is returned by ResolveDevice when no device matches.
const UnknownDevice DeviceKey = -1

// Device keys.
const (
	DeviceTV1              DeviceKey = 0
	DeviceTV2              DeviceKey = 1
	DeviceVCR1             DeviceKey = 5
	DeviceVCR2             DeviceKey = 6
	DeviceVideoDisc        DeviceKey = 12
	DeviceCassetteRecorder DeviceKey = 18
	DeviceCD               DeviceKey = 20
)

// NoCommand is returned by ResolveCommand when no command matches.
const NoCommand CommandKey = 0

// Command keys.
const (
	CommandStandby        CommandKey = 12
	CommandMute           CommandKey = 13
	CommandVolumeUp       CommandKey = 16
	CommandVolumeDown     CommandKey = 17
	CommandBrightnessUp   CommandKey = 18
	CommandBrightnessDown CommandKey = 19
	CommandPause          CommandKey = 48
	CommandFastReverse    CommandKey = 50
	CommandFastForward    CommandKey = 52
	CommandPlay           CommandKey = 53
	CommandStop           CommandKey = 54
	CommandRecord         CommandKey = 55
	CommandMenuOn         CommandKey = 82
	CommandMenuOff        CommandKey = 83

	// Local-only: drive the output pin, no frame.
	CommandIndicatorOn  CommandKey = 500
	CommandIndicatorOff CommandKey = 501
)

type deviceEntry struct {
	name    string
	key     DeviceKey
	address uint8
}

type commandEntry struct {
	name    string
	key     CommandKey
	pattern uint8
	framed  bool
}

// The 5-bit address is the RC-5 system number assigned to the appliance
// class. Patterns are listed explicitly rather than derived from the key.
var devices = []deviceEntry{
	{"tvset1", DeviceTV1, 0b00000},
	{"tvset2", DeviceTV2, 0b00001},
	{"vcr1", DeviceVCR1, 0b00101},
	{"vcr2", DeviceVCR2, 0b00110},
	{"cdvideo", DeviceVideoDisc, 0b01100},
	{"casseterecorder", DeviceCassetteRecorder, 0b10010},
	{"cd", DeviceCD, 0b10100},
}

// Menu on/off are RC-5X numbers (82, 83) and have no 6-bit pattern; they
// resolve but cannot be framed.
var commands = []commandEntry{
	{"standby", CommandStandby, 0b001100, true},
	{"mute", CommandMute, 0b001101, true},
	{"volumeup", CommandVolumeUp, 0b010000, true},
	{"volumedown", CommandVolumeDown, 0b010001, true},
	{"brightnessup", CommandBrightnessUp, 0b010010, true},
	{"brightnessdown", CommandBrightnessDown, 0b010011, true},
	{"pause", CommandPause, 0b110000, true},
	{"fastreverse", CommandFastReverse, 0b110010, true},
	{"fastforward", CommandFastForward, 0b110100, true},
	{"play", CommandPlay, 0b110101, true},
	{"stop", CommandStop, 0b110110, true},
	{"record", CommandRecord, 0b110111, true},
	{"menuon", CommandMenuOn, 0, false},
	{"menuoff", CommandMenuOff, 0, false},
	{"ledon", CommandIndicatorOn, 0, false},
	{"ledoff", CommandIndicatorOff, 0, false},
}

// ResolveDevice returns the key for an exact, case-sensitive device name,
// or UnknownDevice.
func ResolveDevice(name string) DeviceKey {
	for _, d := range devices {
		if d.name == name {
			return d.key
		}
	}
	return UnknownDevice
}

// ResolveCommand returns the key for an exact, case-sensitive command name,
// or NoCommand.
func ResolveCommand(name string) CommandKey {
	for _, c := range commands {
		if c.name == name {
			return c.key
		}
	}
	return NoCommand
}

// IsIndicator reports whether the command drives the output pin directly
// instead of producing a frame.
func (c CommandKey) IsIndicator() bool {
	return c == CommandIndicatorOn || c == CommandIndicatorOff
}

// IsExtended reports whether the command only exists in RC-5X and so has
// no plain RC-5 frame.
func (c CommandKey) IsExtended() bool {
	return c == CommandMenuOn || c == CommandMenuOff
}

func (d DeviceKey) String() string {
	for _, e := range devices {
		if e.key == d {
			return e.name
		}
	}
	return "unknown"
}

func (c CommandKey) String() string {
	for _, e := range commands {
		if e.key == c {
			return e.name
		}
	}
	return "none"
}

func addressPattern(d DeviceKey) (uint8, bool) {
	for _, e := range devices {
		if e.key == d {
			return e.address, true
		}
	}
	return 0, false
}

func commandPattern(c CommandKey) (uint8, bool) {
	for _, e := range commands {
		if e.key == c {
			return e.pattern, e.framed
		}
	}
	return 0, false
}

// DeviceInfo describes one registry device.
type DeviceInfo struct {
	Name    string    `json:"name"`
	Key     DeviceKey `json:"key"`
	Address uint8     `json:"address"`
}

// CommandInfo describes one registry command. Pattern is meaningful only
// when Framed is set.
type CommandInfo struct {
	Name      string     `json:"name"`
	Key       CommandKey `json:"key"`
	Pattern   uint8      `json:"pattern"`
	Framed    bool       `json:"framed"`
	Indicator bool       `json:"indicator"`
}

// Devices lists the device table in declaration order.
func Devices() []DeviceInfo {
	out := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, DeviceInfo{d.name, d.key, d.address})
	}
	return out
}

// Commands lists the command table in declaration order.
func Commands() []CommandInfo {
	out := make([]CommandInfo, 0, len(commands))
	for _, c := range commands {
		out = append(out, CommandInfo{c.name, c.key, c.pattern, c.framed, c.key.IsIndicator()})
	}
	return out
}
