package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/derktes/rc5-remote/rc5"
	"github.com/spf13/pflag"
)

func flagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	cfg, err := Load(flagSet(t, "--config", missing))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TCPServer.Port != 80 || cfg.HTTPAPIServer.Port != 8080 {
		t.Errorf("ports = %d/%d", cfg.TCPServer.Port, cfg.HTTPAPIServer.Port)
	}
	if cfg.Emitter.Type != EmitterLog || cfg.History.Backend != HistoryMemory {
		t.Errorf("emitter %q history %q", cfg.Emitter.Type, cfg.History.Backend)
	}
	if cfg.Parser.MaxTokenLength != rc5.DefaultMaxTokenLength {
		t.Errorf("maxTokenLength = %d", cfg.Parser.MaxTokenLength)
	}
	timing, err := cfg.Timing.Timing()
	if err != nil {
		t.Fatal(err)
	}
	if timing != rc5.DefaultTiming() {
		t.Errorf("timing = %+v, want %+v", timing, rc5.DefaultTiming())
	}
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
tcpServer:
  port: 8023
  readTimeoutSeconds: 30
timing:
  halfPeriodMicros: 864
  burstPeriodMicros: 800
history:
  capacity: 7
logger:
  level: debug
  format: json
`)
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RC5_HISTORY_CAPACITY", "12")

	cfg, err := Load(flagSet(t, "--config", path, "--serial", "/dev/ttyUSB0", "--baud", "115200"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TCPServer.Port != 8023 || cfg.TCPServer.ReadTimeoutSeconds != 30 {
		t.Errorf("tcpServer = %+v", cfg.TCPServer)
	}
	if cfg.History.Capacity != 12 {
		t.Errorf("env override ignored: capacity %d", cfg.History.Capacity)
	}
	if cfg.Emitter.Type != EmitterSerial || cfg.Emitter.Device != "/dev/ttyUSB0" || cfg.Emitter.Baud != 115200 {
		t.Errorf("emitter = %+v", cfg.Emitter)
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "json" {
		t.Errorf("logger = %+v", cfg.Logger)
	}
	timing, _ := cfg.Timing.Timing()
	if timing.HalfPeriod != 864*time.Microsecond || timing.BurstPeriod != 800*time.Microsecond {
		t.Errorf("timing = %+v", timing)
	}
	if got := cfg.TCPAddress(); got != ":8023" {
		t.Errorf("TCPAddress() = %q", got)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tcpServer: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(flagSet(t, "--config", path)); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			TCPServer: TCPServerConfig{Port: 80},
			Emitter:   EmitterConfig{Type: EmitterLog},
			Timing:    TimingConfig{HalfPeriodMicros: 889, BurstPeriodMicros: 750, CarrierHalfCycleMicros: 10},
			Parser:    ParserConfig{MaxTokenLength: 20},
			History:   HistoryConfig{Backend: HistoryMemory, Capacity: 10},
		}
	}
	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := map[string]func(*Config){
		"burst longer than half": func(c *Config) { c.Timing.BurstPeriodMicros = 900 },
		"zero half period":       func(c *Config) { c.Timing.HalfPeriodMicros = 0 },
		"tiny token buffer":      func(c *Config) { c.Parser.MaxTokenLength = 1 },
		"serial without device":  func(c *Config) { c.Emitter.Type = EmitterSerial },
		"unknown emitter":        func(c *Config) { c.Emitter.Type = "gpio" },
		"unknown history":        func(c *Config) { c.History.Backend = "sqlite" },
		"empty history":          func(c *Config) { c.History.Capacity = 0 },
		"port out of range":      func(c *Config) { c.TCPServer.Port = 70000 },
	}
	for name, mutate := range tests {
		c := valid()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
