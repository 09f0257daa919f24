// Package bluez advertises encoded radio advertisements through BlueZ over
// the system D-Bus, and reads them back from scanned device properties.
package bluez

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/beacon/internal/transport"
)

const (
	bluezService             = "org.bluez"
	advertisementInterface   = "org.bluez.LEAdvertisement1"
	registerAdvertisement    = "org.bluez.LEAdvertisingManager1.RegisterAdvertisement"
	unregisterAdvertisement  = "org.bluez.LEAdvertisingManager1.UnregisterAdvertisement"
	adapterAddressProperty   = "org.bluez.Adapter1.Address"
	errNameAlreadyExists     = "org.bluez.Error.AlreadyExists"
	errNameDoesNotExist      = "org.bluez.Error.DoesNotExist"
	errNameUnknownObject     = "org.freedesktop.DBus.Error.UnknownObject"
	advertisementPathPattern = "/io/beacon/advertisement%d"
)

var (
	ErrNotStarted     = errors.New("bluez: advertisement is not started")
	ErrAlreadyStarted = errors.New("bluez: advertisement is already started")
	ErrNoAdapter      = errors.New("bluez: adapter does not exist")
)

var advertisementID uint64

// caller is the slice of dbus.BusObject the advertiser needs.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

type exportFunc func(path dbus.ObjectPath, spec map[string]map[string]*prop.Prop) error

// Advertiser registers a broadcast LEAdvertisement1 object whose ServiceData
// carries the payload under the configured service UUID.
type Advertiser struct {
	adapterID   string
	localName   string
	serviceUUID uuid.UUID
	path        dbus.ObjectPath

	adapter caller
	export  exportFunc

	mu      sync.Mutex
	started bool
	status  transport.Status
}

var (
	_ transport.Advertiser = (*Advertiser)(nil)
	_ transport.Transport  = (*Advertiser)(nil)
)

// Open connects to the system bus and checks that the adapter exists.
func Open(adapterID, localName string, serviceUUID uuid.UUID) (*Advertiser, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("bluez: system bus: %w", err)
	}
	adapter := conn.Object(bluezService, dbus.ObjectPath("/org/bluez/"+adapterID))
	if _, err := adapter.GetProperty(adapterAddressProperty); err != nil {
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) && dbusErr.Name == errNameUnknownObject {
			return nil, fmt.Errorf("%w: %s", ErrNoAdapter, adapter.Path())
		}
		return nil, fmt.Errorf("bluez: adapter %s: %w", adapterID, err)
	}
	export := func(path dbus.ObjectPath, spec map[string]map[string]*prop.Prop) error {
		_, err := prop.Export(conn, path, spec)
		return err
	}
	return newAdvertiser(adapterID, localName, serviceUUID, adapter, export), nil
}

func newAdvertiser(adapterID, localName string, serviceUUID uuid.UUID, adapter caller, export exportFunc) *Advertiser {
	if serviceUUID == uuid.Nil {
		serviceUUID = DefaultServiceUUID
	}
	id := atomic.AddUint64(&advertisementID, 1)
	return &Advertiser{
		adapterID:   adapterID,
		localName:   localName,
		serviceUUID: serviceUUID,
		path:        dbus.ObjectPath(fmt.Sprintf(advertisementPathPattern, id)),
		adapter:     adapter,
		export:      export,
	}
}

func (a *Advertiser) Name() string { return "bluez/" + a.adapterID }

func (a *Advertiser) Status() transport.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// StartAdvertising exports the advertisement object and registers it with
// the adapter. A running advertisement is replaced.
func (a *Advertiser) StartAdvertising(payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		if err := a.unregister(); err != nil && !errors.Is(err, ErrNotStarted) {
			return a.fail(err)
		}
		a.started = false
	}

	if err := a.export(a.path, advertisementProps(a.localName, a.serviceUUID, payload)); err != nil {
		return a.fail(fmt.Errorf("bluez: export advertisement: %w", err))
	}
	err := a.adapter.Call(registerAdvertisement, 0, a.path, map[string]interface{}{}).Err
	if err != nil {
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) && dbusErr.Name == errNameAlreadyExists {
			return a.fail(ErrAlreadyStarted)
		}
		return a.fail(fmt.Errorf("bluez: register advertisement: %w", err))
	}

	a.started = true
	a.status = transport.Status{Active: true, Bytes: len(payload), Updated: time.Now()}
	log.Debug().
		Str("adapter", a.adapterID).
		Str("path", string(a.path)).
		Str("service_uuid", a.serviceUUID.String()).
		Int("bytes", len(payload)).
		Msg("advertisement registered")
	return nil
}

func (a *Advertiser) StopAdvertising() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return ErrNotStarted
	}
	if err := a.unregister(); err != nil {
		return a.fail(err)
	}
	a.started = false
	a.status = transport.Status{Updated: time.Now()}
	return nil
}

func (a *Advertiser) unregister() error {
	err := a.adapter.Call(unregisterAdvertisement, 0, a.path).Err
	if err == nil {
		return nil
	}
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && dbusErr.Name == errNameDoesNotExist {
		return ErrNotStarted
	}
	return fmt.Errorf("bluez: unregister advertisement: %w", err)
}

func (a *Advertiser) fail(err error) error {
	a.status.LastError = err.Error()
	a.status.Updated = time.Now()
	return err
}

func advertisementProps(localName string, serviceUUID uuid.UUID, payload []byte) map[string]map[string]*prop.Prop {
	key := serviceUUID.String()
	return map[string]map[string]*prop.Prop{
		advertisementInterface: {
			"Type":         {Value: "broadcast"},
			"ServiceUUIDs": {Value: []string{key}},
			"LocalName":    {Value: localName},
			"ServiceData":  {Value: map[string]interface{}{key: payload}, Writable: true},
			"Timeout":      {Value: uint16(0)},
		},
	}
}
