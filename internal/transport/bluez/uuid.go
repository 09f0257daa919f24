package bluez

import "github.com/google/uuid"

// baseUUID is the Bluetooth base UUID that 16-bit service ids expand onto.
var baseUUID = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// DefaultServiceUUID is the service the advertisement payload is keyed by.
var DefaultServiceUUID = ShortUUID(0xFEF3)

// ShortUUID expands a 16-bit service id onto the Bluetooth base UUID.
func ShortUUID(v uint16) uuid.UUID {
	id := baseUUID
	id[2] = byte(v >> 8)
	id[3] = byte(v)
	return id
}
