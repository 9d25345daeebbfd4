package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/derktes/rc5-remote/rc5"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the remote-control service configuration.
type Config struct {
	TCPServer     TCPServerConfig     `mapstructure:"tcpServer"`
	HTTPAPIServer HTTPAPIServerConfig `mapstructure:"httpApiServer"`
	Emitter       EmitterConfig       `mapstructure:"emitter"`
	Timing        TimingConfig        `mapstructure:"timing"`
	Parser        ParserConfig        `mapstructure:"parser"`
	History       HistoryConfig       `mapstructure:"history"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Logger        LoggerConfig        `mapstructure:"logger"`
}

// TCPServerConfig is the listener for RC-5 requests.
type TCPServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// ReadTimeoutSeconds bounds how long a connection may stay silent; 0 waits forever.
	ReadTimeoutSeconds int `mapstructure:"readTimeoutSeconds"`
}

// HTTPAPIServerConfig is the management API.
type HTTPAPIServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Emitter types.
const (
	EmitterLog    = "log"
	EmitterSerial = "serial"
)

// EmitterConfig selects where waveforms go.
type EmitterConfig struct {
	Type              string `mapstructure:"type"`
	Device            string `mapstructure:"device"`
	Baud              int    `mapstructure:"baud"`
	ReadTimeoutMillis int    `mapstructure:"readTimeoutMillis"`
}

// TimingConfig mirrors rc5.Timing in whole microseconds.
type TimingConfig struct {
	HalfPeriodMicros       int `mapstructure:"halfPeriodMicros"`
	BurstPeriodMicros      int `mapstructure:"burstPeriodMicros"`
	CarrierHalfCycleMicros int `mapstructure:"carrierHalfCycleMicros"`
}

// ParserConfig sizes the request token buffers.
type ParserConfig struct {
	MaxTokenLength int `mapstructure:"maxTokenLength"`
}

// History backends.
const (
	HistoryMemory = "memory"
	HistoryRedis  = "redis"
)

// HistoryConfig selects the dispatch history store.
type HistoryConfig struct {
	Backend  string `mapstructure:"backend"`
	Capacity int    `mapstructure:"capacity"`
}

// RedisConfig is used when History.Backend is redis.
type RedisConfig struct {
	Address            string `mapstructure:"address"`
	Password           string `mapstructure:"password"`
	DB                 int    `mapstructure:"db"`
	Key                string `mapstructure:"key"`
	DialTimeoutSeconds int    `mapstructure:"dialTimeoutSeconds"`
}

// LoggerConfig configures logrus output.
type LoggerConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	FilePath      string `mapstructure:"filePath"`
	MaxSizeMB     int    `mapstructure:"maxSizeMB"`
	MaxBackups    int    `mapstructure:"maxBackups"`
	MaxAgeDays    int    `mapstructure:"maxAgeDays"`
	Compress      bool   `mapstructure:"compress"`
	EnableConsole bool   `mapstructure:"enableConsole"`
}

// EnvPrefix prefixes every environment override, e.g. RC5_TCPSERVER_PORT.
const EnvPrefix = "RC5"

func setDefaults(v *viper.Viper) {
	v.SetDefault("tcpServer.host", "")
	v.SetDefault("tcpServer.port", 80)
	v.SetDefault("tcpServer.readTimeoutSeconds", 0)

	v.SetDefault("httpApiServer.enabled", true)
	v.SetDefault("httpApiServer.host", "")
	v.SetDefault("httpApiServer.port", 8080)

	v.SetDefault("emitter.type", EmitterLog)
	v.SetDefault("emitter.device", "")
	v.SetDefault("emitter.baud", 9600)
	v.SetDefault("emitter.readTimeoutMillis", 100)

	v.SetDefault("timing.halfPeriodMicros", rc5.HalfPeriod.Microseconds())
	v.SetDefault("timing.burstPeriodMicros", rc5.CalibratedBurstPeriod.Microseconds())
	v.SetDefault("timing.carrierHalfCycleMicros", rc5.CalibratedCarrierHalfCycle.Microseconds())

	v.SetDefault("parser.maxTokenLength", rc5.DefaultMaxTokenLength)

	v.SetDefault("history.backend", HistoryMemory)
	v.SetDefault("history.capacity", 100)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "rc5:dispatches")
	v.SetDefault("redis.dialTimeoutSeconds", 5)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.filePath", "")
	v.SetDefault("logger.maxSizeMB", 10)
	v.SetDefault("logger.maxBackups", 3)
	v.SetDefault("logger.maxAgeDays", 28)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.enableConsole", true)
}

// Flags registers the command-line overrides on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "config.yaml", "Path to the YAML configuration file")
	fs.String("serial", "", "Serial device of the IR emitter, e.g. /dev/ttyUSB0 (selects the serial emitter)")
	fs.Int("baud", 9600, "Baud rate of the emitter serial port")
	fs.Int("port", 80, "TCP port for RC-5 requests")
	fs.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
}

// Load reads defaults, then the config file, then RC5_* environment
// variables, then any flags set on fs. A missing config file is not an
// error; fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := "config.yaml"
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			path = f.Value.String()
		}
		bindFlag(v, fs, "emitter.device", "serial")
		bindFlag(v, fs, "emitter.baud", "baud")
		bindFlag(v, fs, "tcpServer.port", "port")
		bindFlag(v, fs, "logger.level", "log-level")
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if fs != nil {
		if f := fs.Lookup("serial"); f != nil && f.Changed {
			cfg.Emitter.Type = EmitterSerial
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindFlag binds only flags the user actually set, so flag defaults never
// mask the config file.
func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) {
	if f := fs.Lookup(name); f != nil && f.Changed {
		_ = v.BindPFlag(key, f)
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if _, err := c.Timing.Timing(); err != nil {
		return err
	}
	if c.Parser.MaxTokenLength < 2 {
		return fmt.Errorf("parser.maxTokenLength must be at least 2, got %d", c.Parser.MaxTokenLength)
	}
	switch c.Emitter.Type {
	case EmitterLog:
	case EmitterSerial:
		if c.Emitter.Device == "" {
			return errors.New("emitter.device is required for the serial emitter")
		}
	default:
		return fmt.Errorf("unknown emitter type %q", c.Emitter.Type)
	}
	switch c.History.Backend {
	case HistoryMemory, HistoryRedis:
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	if c.History.Capacity < 1 {
		return fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity)
	}
	if c.TCPServer.Port < 0 || c.TCPServer.Port > 65535 {
		return fmt.Errorf("tcpServer.port out of range: %d", c.TCPServer.Port)
	}
	return nil
}

// Timing converts the configured microseconds into a validated rc5.Timing.
func (t TimingConfig) Timing() (rc5.Timing, error) {
	timing := rc5.Timing{
		HalfPeriod:       time.Duration(t.HalfPeriodMicros) * time.Microsecond,
		BurstPeriod:      time.Duration(t.BurstPeriodMicros) * time.Microsecond,
		CarrierHalfCycle: time.Duration(t.CarrierHalfCycleMicros) * time.Microsecond,
	}
	if err := timing.Validate(); err != nil {
		return rc5.Timing{}, err
	}
	return timing, nil
}

// TCPAddress is the host:port of the RC-5 request listener.
func (c *Config) TCPAddress() string {
	return fmt.Sprintf("%s:%d", c.TCPServer.Host, c.TCPServer.Port)
}

// HTTPAddress is the host:port of the management API.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTPAPIServer.Host, c.HTTPAPIServer.Port)
}
