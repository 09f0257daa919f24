package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "beacon":
		return beaconTemplate, nil
	case "inspect":
		return inspectTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const beaconTemplate = `name = "beacon"
envelope = "rawurl"

[inspect]
addr = "127.0.0.1:8087"
cors_origins = ["http://localhost:3000"]

[ble]
enabled = true
adapter = "hci0"
local_name = "beacon"
service_uuid = "0000fef3-0000-1000-8000-00805f9b34fb"
fast = false
version = 2
socket_version = 2
service_id_hash = "0a0b0c"
data = "beacon node"
device_token = "0420"

[lan]
enabled = true
host = "beacon"
service = "_beacon._tcp"
port = 8087
loopback = false
pcp = "star"
endpoint_id = "AB1D"
service_id_hash = "0a0b0c"
endpoint_info = "beacon node"
uwb_address = ""
webrtc_connectable = false
`

const inspectTemplate = `name = "beacon-inspect"
envelope = "rawurl"

[inspect]
addr = "127.0.0.1:8087"
cors_origins = ["http://localhost:3000"]
`
