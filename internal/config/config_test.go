package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/amqpwire/internal/testutil/testlog"
	"github.com/rs/zerolog"
)

func TestTemplateLoadsAsDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "amqpwire.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("template differs from defaults: %+v", cfg)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "amqpwire.toml")
	if err := os.WriteFile(path, []byte("[encode]\noutput = \" RAW \"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Encode.Output != OutputRaw || cfg.Encode.CopyBufferSize != 4096 || cfg.Log.Level != "info" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		body string
		want string
	}{
		{body: "[log]\nlevel = \"loud\"\n", want: "log.level"},
		{body: "[encode]\ncopy_buffer_size = 0\n", want: "copy_buffer_size"},
		{body: "[encode]\nsink_buffer_size = -1\n", want: "sink_buffer_size"},
		{body: "[encode]\noutput = \"base64\"\n", want: "encode.output"},
		{body: "[encode\n", want: "parse failed"},
	}
	for _, tc := range cases {
		body, want := tc.body, tc.want
		path := filepath.Join(t.TempDir(), "amqpwire.toml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%q: expected error containing %q, got %v", body, want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestLoggingAppliesEnvOverrides(t *testing.T) {
	testlog.Start(t)
	t.Setenv("AMQPWIRE_LOG_LEVEL", "warn")
	cfg := Default()
	cfg.Log.Level = "debug"
	if got := cfg.Logging().Level; got != zerolog.WarnLevel {
		t.Fatalf("expected env override to warn, got %v", got)
	}
}
