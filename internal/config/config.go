package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/amqpwire/internal/logging"
	"github.com/danmuck/amqpwire/internal/protocol"
	"github.com/danmuck/amqpwire/internal/protocol/sink"
	"github.com/pelletier/go-toml/v2"
)

// Output formats for encoded payloads.
const (
	OutputHex  = "hex"
	OutputDump = "dump"
	OutputRaw  = "raw"
)

type Config struct {
	Log    LogConfig    `toml:"log"`
	Encode EncodeConfig `toml:"encode"`
}

type LogConfig struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

type EncodeConfig struct {
	CopyBufferSize int    `toml:"copy_buffer_size"`
	SinkBufferSize int    `toml:"sink_buffer_size"`
	Output         string `toml:"output"`
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
		Encode: EncodeConfig{
			CopyBufferSize: protocol.DefaultCopyBufferSize,
			SinkBufferSize: sink.DefaultBufferSize,
			Output:         OutputHex,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.Encode.Output = strings.ToLower(strings.TrimSpace(cfg.Encode.Output))
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level invalid: %q", cfg.Log.Level)
	}
	if cfg.Encode.CopyBufferSize <= 0 {
		return fmt.Errorf("encode.copy_buffer_size must be positive")
	}
	if cfg.Encode.SinkBufferSize <= 0 {
		return fmt.Errorf("encode.sink_buffer_size must be positive")
	}
	if err := ValidateOutput(cfg.Encode.Output); err != nil {
		return fmt.Errorf("encode.output invalid: %w", err)
	}
	return nil
}

func ValidateOutput(output string) error {
	switch output {
	case OutputHex, OutputDump, OutputRaw:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// Logging converts the log section, then applies AMQPWIRE_LOG_* overrides.
func (c Config) Logging() logging.Config {
	lvl, _ := logging.ParseLevel(c.Log.Level)
	out := logging.Config{
		Level:     lvl,
		Timestamp: c.Log.Timestamp,
		NoColor:   c.Log.NoColor,
	}
	logging.ApplyEnv(&out)
	return out
}

// WriterOptions returns the encoder options selected by the config.
func (c Config) WriterOptions() []protocol.Option {
	return []protocol.Option{protocol.WithCopyBufferSize(c.Encode.CopyBufferSize)}
}
