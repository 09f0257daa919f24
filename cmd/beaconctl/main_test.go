package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/beacon/internal/protocol"
	"github.com/danmuck/beacon/internal/testutil/testlog"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return strings.TrimSpace(stdout.String()), err
}

func TestBLEEncodeDecode(t *testing.T) {
	testlog.Start(t)
	out, err := runCmd(t, "ble", "encode", "-hash", "0a0b0c", "-data", "hi", "-token", "0420")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out != "480a0b0c0000000268690420" {
		t.Fatalf("unexpected payload %q", out)
	}
	out, err = runCmd(t, "ble", "decode", out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"profile=full", "service_id_hash=0a0b0c", `data="hi"`, "device_token=0420"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestBLEFast(t *testing.T) {
	testlog.Start(t)
	out, err := runCmd(t, "ble", "encode", "-fast", "-data", "hi")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out != "4a026869" {
		t.Fatalf("unexpected payload %q", out)
	}
	out, err = runCmd(t, "ble", "decode", "-fast", out)
	if err != nil || !strings.Contains(out, "profile=fast") || strings.Contains(out, "service_id_hash") {
		t.Fatalf("unexpected fast decode %q (%v)", out, err)
	}
}

func TestBLEDecodeRejects(t *testing.T) {
	testlog.Start(t)
	if _, err := runCmd(t, "ble", "decode", "48"); !errors.Is(err, protocol.ErrBufferTooShort) {
		t.Fatalf("expected ErrBufferTooShort, got %v", err)
	}
	if _, err := runCmd(t, "ble", "encode", "-version", "0", "-hash", "0a0b0c"); !errors.Is(err, protocol.ErrUnrecognizedTag) {
		t.Fatalf("expected ErrUnrecognizedTag, got %v", err)
	}
	for _, args := range [][]string{
		{"ble", "encode", "-fast", "-version", "258", "-data", "hi"},
		{"ble", "encode", "-socket-version", "257", "-hash", "0a0b0c"},
	} {
		if out, err := runCmd(t, args...); !errors.Is(err, protocol.ErrUnrecognizedTag) {
			t.Fatalf("%v: expected ErrUnrecognizedTag, got %q (%v)", args, out, err)
		}
	}
	if _, err := runCmd(t, "ble", "decode"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestLANEncodeDecode(t *testing.T) {
	testlog.Start(t)
	out, err := runCmd(t, "lan", "encode", "-endpoint", "AB1D", "-hash", "0a0b0c", "-pcp", "cluster", "-info", "node", "-uwb", "0102", "-webrtc")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err = runCmd(t, "lan", "decode", out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"pcp=cluster", "endpoint_id=AB1D", "uwb_address=0102", "webrtc_connectable=true", `endpoint_info="node"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLANDecodeRejects(t *testing.T) {
	testlog.Start(t)
	if _, err := runCmd(t, "lan", "decode", "%%%"); !errors.Is(err, protocol.ErrTextDecode) {
		t.Fatalf("expected ErrTextDecode, got %v", err)
	}
	if _, err := runCmd(t, "lan", "encode", "-endpoint", "AB", "-hash", "0a0b0c"); !errors.Is(err, protocol.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := runCmd(t, "lan", "decode", "-envelope", "hex", "abc"); err == nil {
		t.Fatalf("expected unknown envelope error")
	}
}

func TestUnknownCommand(t *testing.T) {
	testlog.Start(t)
	if _, err := runCmd(t); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := runCmd(t, "radio"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if out, err := runCmd(t, "help"); err != nil || !strings.Contains(out, "beaconctl serve") {
		t.Fatalf("unexpected help output %q (%v)", out, err)
	}
}

func TestSubcommandHelpSucceeds(t *testing.T) {
	testlog.Start(t)
	for _, args := range [][]string{
		{"ble", "encode", "-h"},
		{"lan", "decode", "-h"},
		{"serve", "-h"},
	} {
		var stdout, stderr bytes.Buffer
		if err := run(context.Background(), args, &stdout, &stderr); err != nil {
			t.Fatalf("%v: expected success, got %v", args, err)
		}
		if !strings.Contains(stderr.String(), "Usage of") {
			t.Fatalf("%v: expected flag usage on stderr, got %q", args, stderr.String())
		}
	}
}

func TestLoadServeConfig(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadServeConfig("ex.config.toml", "")
	if err != nil {
		t.Fatalf("load example config: %v", err)
	}
	if cfg.Name != "beacon-inspect" || cfg.Inspect.Addr != "127.0.0.1:8087" || cfg.BLE.Enabled || cfg.LAN.Enabled {
		t.Fatalf("unexpected example config %+v", cfg)
	}
	cfg, err = loadServeConfig("", "127.0.0.1:9999")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.Inspect.Addr != "127.0.0.1:9999" {
		t.Fatalf("expected addr override, got %q", cfg.Inspect.Addr)
	}
	if _, err := loadServeConfig("missing.toml", ""); err == nil {
		t.Fatalf("expected missing config error")
	}
}

func TestServeInspectorOnly(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadServeConfig("", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop")
	}
}
