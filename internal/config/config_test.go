package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/beacon/internal/protocol"
	"github.com/danmuck/beacon/internal/protocol/bleadv"
	"github.com/danmuck/beacon/internal/protocol/lanrecord"
	"github.com/danmuck/beacon/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplatesLoad(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"beacon", "inspect"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("%s: write template: %v", kind, err)
		}
		if _, err := Load(path); err != nil {
			t.Fatalf("%s: load template: %v", kind, err)
		}
		if err := WriteTemplate(path, kind, false); err == nil {
			t.Fatalf("%s: expected refusal to overwrite", kind)
		}
		if err := WriteTemplate(path, kind, true); err != nil {
			t.Fatalf("%s: forced overwrite: %v", kind, err)
		}
	}
	if _, err := Template("ghost"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestLoadBeaconTemplateValues(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, beaconTemplate)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	adv, err := cfg.BLE.Advertisement()
	if err != nil {
		t.Fatalf("advertisement: %v", err)
	}
	if adv.IsFast() || adv.Version() != bleadv.VersionV2 || string(adv.Data()) != "beacon node" {
		t.Fatalf("unexpected advertisement %s", adv)
	}
	if len(adv.DeviceToken()) != bleadv.DeviceTokenLen {
		t.Fatalf("expected device token, got %x", adv.DeviceToken())
	}
	rec, err := cfg.LAN.Record()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.PCP() != lanrecord.PCPStar || rec.EndpointID() != "AB1D" || rec.WebRTCConnectable() {
		t.Fatalf("unexpected record %s", rec)
	}
	id, err := cfg.BLE.UUID()
	if err != nil || id.String() != DefaultServiceUUID {
		t.Fatalf("unexpected uuid %s (%v)", id, err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, `name = "edge"`+"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Name != "edge" || cfg.Inspect.Addr != def.Inspect.Addr || cfg.Envelope != def.Envelope {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.BLE.Enabled || cfg.LAN.Enabled {
		t.Fatalf("expected transports disabled by default")
	}
}

func TestLoadSectionEnablesTransport(t *testing.T) {
	testlog.Start(t)
	body := `[lan]
endpoint_id = "WXYZ"
service_id_hash = "010203"
pcp = "p2p"
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.LAN.Enabled {
		t.Fatalf("expected [lan] section to enable lan")
	}
	if cfg.LAN.Service != Default().LAN.Service {
		t.Fatalf("expected default service, got %q", cfg.LAN.Service)
	}

	body = "[ble]\nenabled = false\n"
	if cfg, err = Load(writeConfig(t, body)); err != nil || cfg.BLE.Enabled {
		t.Fatalf("expected explicit enabled=false to hold, got %v (%v)", cfg.BLE.Enabled, err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	testlog.Start(t)
	_, err := Load(writeConfig(t, "name = \"x\"\n[inspect]\nport = 1\n"))
	if err == nil || !strings.Contains(err.Error(), "inspect.port") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadRejectsInvalidSections(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name   string
		body   string
		target error
	}{
		{"ble bad version", "[ble]\nversion = 5\nservice_id_hash = \"0a0b0c\"\n", protocol.ErrUnrecognizedTag},
		{"ble wrapping version", "[ble]\nfast = true\nversion = 258\n", protocol.ErrUnrecognizedTag},
		{"ble wrapping socket version", "[ble]\nservice_id_hash = \"0a0b0c\"\nsocket_version = 257\n", protocol.ErrUnrecognizedTag},
		{"ble short hash", "[ble]\nservice_id_hash = \"0a\"\n", protocol.ErrLengthMismatch},
		{"ble odd token", "[ble]\nfast = true\ndevice_token = \"04\"\n", protocol.ErrLengthMismatch},
		{"lan bad pcp", "[lan]\npcp = \"mesh\"\nendpoint_id = \"AB1D\"\nservice_id_hash = \"0a0b0c\"\n", protocol.ErrUnrecognizedTag},
		{"lan bad endpoint", "[lan]\nendpoint_id = \"AB\"\nservice_id_hash = \"0a0b0c\"\n", protocol.ErrLengthMismatch},
	}
	for _, tc := range cases {
		_, err := Load(writeConfig(t, tc.body))
		if !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.target, err)
		}
	}
}

func TestValidate(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := cfg
	bad.Envelope = "hex"
	if err := Validate(bad); err == nil {
		t.Fatalf("expected envelope error")
	}
	bad = cfg
	bad.Inspect.Addr = " "
	if err := Validate(bad); err == nil {
		t.Fatalf("expected addr error")
	}
	bad = cfg
	bad.BLE.Enabled = true
	bad.BLE.ServiceIDHash = "0a0b0c"
	bad.BLE.ServiceUUID = "not-a-uuid"
	if err := Validate(bad); err == nil {
		t.Fatalf("expected uuid error")
	}
	bad = cfg
	bad.LAN.Enabled = true
	bad.LAN.EndpointID = "AB1D"
	bad.LAN.ServiceIDHash = "0a0b0c"
	bad.LAN.Port = 70000
	if err := Validate(bad); err == nil {
		t.Fatalf("expected port error")
	}
}

func TestConfigCodec(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	cfg.Envelope = lanrecord.EnvelopeStd
	codec, err := cfg.Codec()
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	rec, err := lanrecord.New(lanrecord.VersionV1, lanrecord.PCPStar, "AB1D", []byte{1, 2, 3}, nil, nil, lanrecord.WebRTCUnconnectable)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	back, err := codec.DecodeText(codec.EncodeText(rec))
	if err != nil || !back.Equal(rec) {
		t.Fatalf("round trip through config codec failed: %v", err)
	}
}
