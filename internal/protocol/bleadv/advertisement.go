// Package bleadv encodes and decodes the advertisement a node broadcasts over
// a short-range radio (BLE GATT attribute or advertising slot).
//
// Two layouts exist. The full profile carries a 3-byte service-id hash and a
// 4-byte data length; the fast profile drops the hash and uses a 1-byte
// length so it fits constrained advertising slots. The wire bytes do not
// select the layout: receivers call Parse or ParseFast depending on where the
// bytes arrived.
package bleadv

import (
	"bytes"
	"fmt"

	"github.com/danmuck/beacon/internal/protocol"
)

const (
	ServiceIDHashLen = 3
	DeviceTokenLen   = 2

	// MaxAttributeLen is the GATT attribute value ceiling.
	MaxAttributeLen = 512

	headerLen       = 1
	dataSizeLen     = 4
	fastDataSizeLen = 1

	MaxDataLen     = MaxAttributeLen - headerLen - ServiceIDHashLen - dataSizeLen - DeviceTokenLen
	MaxFastDataLen = 1<<(8*fastDataSizeLen) - 1

	MinLen     = headerLen + ServiceIDHashLen + dataSizeLen
	MinFastLen = headerLen + fastDataSizeLen
)

// Profile selects the advertisement layout.
type Profile uint8

const (
	ProfileFull Profile = iota
	ProfileFast
)

func (p Profile) String() string {
	if p == ProfileFast {
		return "fast"
	}
	return "full"
}

// Advertisement is an immutable, validated advertisement. Values only come
// from New, NewFast, Parse or ParseFast.
type Advertisement struct {
	version       Version
	socketVersion SocketVersion
	fast          bool
	serviceIDHash []byte
	data          []byte
	deviceToken   []byte
}

// New builds a full-profile advertisement. deviceToken may be empty.
func New(version Version, socketVersion SocketVersion, serviceIDHash, data, deviceToken []byte) (*Advertisement, error) {
	if err := checkTags(version, socketVersion); err != nil {
		return nil, err
	}
	if len(serviceIDHash) != ServiceIDHashLen {
		return nil, fmt.Errorf("%w: service id hash is %d bytes, want %d", protocol.ErrLengthMismatch, len(serviceIDHash), ServiceIDHashLen)
	}
	if len(data) > MaxDataLen {
		return nil, fmt.Errorf("%w: data is %d bytes, max %d", protocol.ErrLengthMismatch, len(data), MaxDataLen)
	}
	if err := checkDeviceToken(deviceToken); err != nil {
		return nil, err
	}
	return &Advertisement{
		version:       version,
		socketVersion: socketVersion,
		serviceIDHash: bytes.Clone(serviceIDHash),
		data:          bytes.Clone(data),
		deviceToken:   cloneOrNil(deviceToken),
	}, nil
}

// NewFast builds a fast-profile advertisement, which has no service-id hash.
func NewFast(version Version, socketVersion SocketVersion, data, deviceToken []byte) (*Advertisement, error) {
	if err := checkTags(version, socketVersion); err != nil {
		return nil, err
	}
	if len(data) > MaxFastDataLen {
		return nil, fmt.Errorf("%w: fast data is %d bytes, max %d", protocol.ErrLengthMismatch, len(data), MaxFastDataLen)
	}
	if err := checkDeviceToken(deviceToken); err != nil {
		return nil, err
	}
	return &Advertisement{
		version:       version,
		socketVersion: socketVersion,
		fast:          true,
		data:          bytes.Clone(data),
		deviceToken:   cloneOrNil(deviceToken),
	}, nil
}

func checkTags(v Version, sv SocketVersion) error {
	if !v.Valid() {
		return fmt.Errorf("%w: version %d", protocol.ErrUnrecognizedTag, v)
	}
	if !sv.Valid() {
		return fmt.Errorf("%w: socket version %d", protocol.ErrUnrecognizedTag, sv)
	}
	return nil
}

func checkDeviceToken(token []byte) error {
	if len(token) != 0 && len(token) != DeviceTokenLen {
		return fmt.Errorf("%w: device token is %d bytes, want 0 or %d", protocol.ErrLengthMismatch, len(token), DeviceTokenLen)
	}
	return nil
}

func cloneOrNil(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return bytes.Clone(b)
}

func (a *Advertisement) Version() Version             { return a.version }
func (a *Advertisement) SocketVersion() SocketVersion { return a.socketVersion }
func (a *Advertisement) IsFast() bool                 { return a.fast }

func (a *Advertisement) Profile() Profile {
	if a.fast {
		return ProfileFast
	}
	return ProfileFull
}

// ServiceIDHash is nil for fast advertisements.
func (a *Advertisement) ServiceIDHash() []byte { return bytes.Clone(a.serviceIDHash) }
func (a *Advertisement) Data() []byte          { return bytes.Clone(a.data) }

// DeviceToken is nil when the advertisement carries no token.
func (a *Advertisement) DeviceToken() []byte { return cloneOrNil(a.deviceToken) }

// Equal compares every field. An absent device token equals an empty one.
func (a *Advertisement) Equal(b *Advertisement) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.version == b.version &&
		a.socketVersion == b.socketVersion &&
		a.fast == b.fast &&
		bytes.Equal(a.serviceIDHash, b.serviceIDHash) &&
		bytes.Equal(a.data, b.data) &&
		bytes.Equal(a.deviceToken, b.deviceToken)
}

func (a *Advertisement) String() string {
	return fmt.Sprintf("bleadv{profile=%s version=%d socket=%d hash=%x data=%dB token=%x}",
		a.Profile(), a.version, a.socketVersion, a.serviceIDHash, len(a.data), a.deviceToken)
}
