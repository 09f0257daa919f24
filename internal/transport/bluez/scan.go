package bluez

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/danmuck/beacon/internal/protocol"
	"github.com/danmuck/beacon/internal/protocol/bleadv"
)

const device1ServiceData = "ServiceData"

// ServiceDataFromProperties returns the payload a scanned org.bluez.Device1
// carries for serviceUUID.
func ServiceDataFromProperties(props map[string]dbus.Variant, serviceUUID uuid.UUID) ([]byte, bool) {
	v, ok := props[device1ServiceData]
	if !ok {
		return nil, false
	}
	data, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, false
	}
	want := serviceUUID.String()
	for key, entry := range data {
		if !strings.EqualFold(key, want) {
			continue
		}
		payload, ok := entry.Value().([]byte)
		return payload, ok
	}
	return nil, false
}

// DecodeFromProperties extracts and parses the advertisement with profile p.
func DecodeFromProperties(props map[string]dbus.Variant, serviceUUID uuid.UUID, p bleadv.Profile) (*bleadv.Advertisement, error) {
	payload, ok := ServiceDataFromProperties(props, serviceUUID)
	if !ok {
		return nil, fmt.Errorf("%w: no service data for %s", protocol.ErrBufferTooShort, serviceUUID)
	}
	return bleadv.ParseProfile(payload, p)
}
