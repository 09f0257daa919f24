package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/danmuck/beacon/internal/protocol/bleadv"
	"github.com/danmuck/beacon/internal/protocol/lanrecord"
)

// DefaultServiceUUID is the 16-bit 0xFEF3 service expanded onto the
// Bluetooth base UUID.
const DefaultServiceUUID = "0000fef3-0000-1000-8000-00805f9b34fb"

type Config struct {
	Name     string        `toml:"name"`
	Envelope string        `toml:"envelope"`
	Inspect  InspectConfig `toml:"inspect"`
	BLE      BLEConfig     `toml:"ble"`
	LAN      LANConfig     `toml:"lan"`
}

type InspectConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type BLEConfig struct {
	Enabled       bool   `toml:"enabled"`
	Adapter       string `toml:"adapter"`
	LocalName     string `toml:"local_name"`
	ServiceUUID   string `toml:"service_uuid"`
	Fast          bool   `toml:"fast"`
	Version       int    `toml:"version"`
	SocketVersion int    `toml:"socket_version"`
	ServiceIDHash string `toml:"service_id_hash"`
	Data          string `toml:"data"`
	DeviceToken   string `toml:"device_token"`
}

type LANConfig struct {
	Enabled           bool   `toml:"enabled"`
	Host              string `toml:"host"`
	Service           string `toml:"service"`
	Port              int    `toml:"port"`
	Loopback          bool   `toml:"loopback"`
	PCP               string `toml:"pcp"`
	EndpointID        string `toml:"endpoint_id"`
	ServiceIDHash     string `toml:"service_id_hash"`
	EndpointInfo      string `toml:"endpoint_info"`
	UWBAddress        string `toml:"uwb_address"`
	WebRTCConnectable bool   `toml:"webrtc_connectable"`
}

func Default() Config {
	return Config{
		Name:     "beacon",
		Envelope: lanrecord.EnvelopeRawURL,
		Inspect: InspectConfig{
			Addr: "127.0.0.1:8087",
		},
		BLE: BLEConfig{
			Adapter:       "hci0",
			LocalName:     "beacon",
			ServiceUUID:   DefaultServiceUUID,
			Version:       int(bleadv.VersionV2),
			SocketVersion: int(bleadv.SocketVersionV2),
		},
		LAN: LANConfig{
			Host:    "beacon",
			Service: "_beacon._tcp",
			Port:    8087,
			PCP:     lanrecord.PCPStar.String(),
		},
	}
}

// Load decodes path over Default and validates the result. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	// A transport section without an explicit enabled key is switched on.
	if meta.IsDefined("ble") && !meta.IsDefined("ble", "enabled") {
		cfg.BLE.Enabled = true
	}
	if meta.IsDefined("lan") && !meta.IsDefined("lan", "enabled") {
		cfg.LAN.Enabled = true
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	if _, err := lanrecord.EnvelopeByName(cfg.Envelope); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Inspect.Addr) == "" {
		return fmt.Errorf("inspect config missing addr")
	}
	if cfg.BLE.Enabled {
		if err := ValidateBLE(cfg.BLE); err != nil {
			return fmt.Errorf("ble invalid: %w", err)
		}
	}
	if cfg.LAN.Enabled {
		if err := ValidateLAN(cfg.LAN); err != nil {
			return fmt.Errorf("lan invalid: %w", err)
		}
	}
	return nil
}

func ValidateBLE(cfg BLEConfig) error {
	if strings.TrimSpace(cfg.Adapter) == "" {
		return fmt.Errorf("adapter is required")
	}
	if _, err := cfg.UUID(); err != nil {
		return err
	}
	_, err := cfg.Advertisement()
	return err
}

func ValidateLAN(cfg LANConfig) error {
	if strings.TrimSpace(cfg.Service) == "" {
		return fmt.Errorf("service is required")
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	_, err := cfg.Record()
	return err
}

// Codec returns the text codec named by Envelope.
func (c Config) Codec() (lanrecord.Codec, error) {
	env, err := lanrecord.EnvelopeByName(c.Envelope)
	if err != nil {
		return lanrecord.Codec{}, err
	}
	return lanrecord.NewCodec(env), nil
}

func (b BLEConfig) UUID() (uuid.UUID, error) {
	raw := strings.TrimSpace(b.ServiceUUID)
	if raw == "" {
		raw = DefaultServiceUUID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service_uuid %q: %w", b.ServiceUUID, err)
	}
	return id, nil
}

// Advertisement builds the configured radio advertisement.
func (b BLEConfig) Advertisement() (*bleadv.Advertisement, error) {
	token, err := decodeHex("device_token", b.DeviceToken)
	if err != nil {
		return nil, err
	}
	version, err := bleadv.ParseVersion(b.Version)
	if err != nil {
		return nil, err
	}
	socketVersion, err := bleadv.ParseSocketVersion(b.SocketVersion)
	if err != nil {
		return nil, err
	}
	if b.Fast {
		return bleadv.NewFast(version, socketVersion, []byte(b.Data), token)
	}
	hash, err := decodeHex("service_id_hash", b.ServiceIDHash)
	if err != nil {
		return nil, err
	}
	return bleadv.New(version, socketVersion, hash, []byte(b.Data), token)
}

// Record builds the configured service record.
func (l LANConfig) Record() (*lanrecord.ServiceRecord, error) {
	pcp, err := lanrecord.ParsePCP(strings.ToLower(strings.TrimSpace(l.PCP)))
	if err != nil {
		return nil, err
	}
	hash, err := decodeHex("service_id_hash", l.ServiceIDHash)
	if err != nil {
		return nil, err
	}
	uwb, err := decodeHex("uwb_address", l.UWBAddress)
	if err != nil {
		return nil, err
	}
	webRTC := lanrecord.WebRTCUnconnectable
	if l.WebRTCConnectable {
		webRTC = lanrecord.WebRTCConnectable
	}
	return lanrecord.New(lanrecord.VersionV1, pcp, l.EndpointID, hash, []byte(l.EndpointInfo), uwb, webRTC)
}

func decodeHex(field, raw string) ([]byte, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if raw == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}
