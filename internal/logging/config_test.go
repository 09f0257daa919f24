package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	rt := DefaultConfig(ProfileRuntime)
	if rt.Level != zerolog.InfoLevel || !rt.Timestamp {
		t.Fatalf("unexpected runtime config %+v", rt)
	}
	tc := DefaultConfig(ProfileTest)
	if tc.Level != zerolog.DebugLevel || tc.Timestamp {
		t.Fatalf("unexpected test config %+v", tc)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     " WARN ",
		EnvLogTimestamp: "false",
		EnvLogNoColor:   "1",
		EnvLogJSON:      "true",
	}
	cfg := DefaultConfig(ProfileRuntime)
	ApplyEnvOverrides(&cfg, func(k string) string { return env[k] })
	if cfg.Level != zerolog.WarnLevel || cfg.Timestamp || !cfg.NoColor || !cfg.JSON {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     "loud",
		EnvLogTimestamp: "maybe",
	}
	cfg := DefaultConfig(ProfileRuntime)
	ApplyEnvOverrides(&cfg, func(k string) string { return env[k] })
	if cfg != DefaultConfig(ProfileRuntime) {
		t.Fatalf("expected defaults to survive bad values, got %+v", cfg)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.InfoLevel, JSON: true}, &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("codec", "bleadv").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug line to be filtered, got %q", out)
	}
	if !strings.Contains(out, `"codec":"bleadv"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("unexpected json output %q", out)
	}
}

func TestNewConsoleWithoutTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.InfoLevel, NoColor: true}, &buf)
	logger.Info().Msg("start")
	out := buf.String()
	if strings.Contains(out, "<nil>") || !strings.HasPrefix(out, "INF start") {
		t.Fatalf("expected bare console line, got %q", out)
	}
}

func TestParseLevelAliases(t *testing.T) {
	cases := map[string]zerolog.Level{
		"diagnostics": zerolog.TraceLevel,
		"warning":     zerolog.WarnLevel,
		"off":         zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		if !ok || got != want {
			t.Fatalf("%q: expected %v, got %v (ok=%v)", raw, want, got, ok)
		}
	}
}
