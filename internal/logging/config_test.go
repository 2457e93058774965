package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", raw, got, ok)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "true")
	t.Setenv(EnvLogBypass, "not-a-bool")

	cfg := DefaultConfig(ProfileRuntime)
	ApplyEnv(&cfg)
	if cfg.Level != zerolog.ErrorLevel || cfg.Timestamp || !cfg.NoColor || cfg.Bypass {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestNewLoggerBypassWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Config{Level: zerolog.InfoLevel, Bypass: true})
	logger.Debug().Msg("hidden")
	logger.Info().Str("method", "basic.publish").Msg("encoded")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line emitted at info level: %s", out)
	}
	if !strings.Contains(out, `"method":"basic.publish"`) || !strings.Contains(out, `"app":"amqpwire"`) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestNewLoggerConsoleWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Config{Level: zerolog.DebugLevel, NoColor: true})
	logger.Debug().Msg("plain")
	if strings.Contains(buf.String(), "\x1b[") || !strings.Contains(buf.String(), "plain") {
		t.Fatalf("unexpected console output %q", buf.String())
	}
}
