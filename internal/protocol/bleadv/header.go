package bleadv

import (
	"fmt"

	"github.com/danmuck/beacon/internal/protocol"
)

// Version is the advertisement format version, carried in the top 3 bits of
// the header byte.
type Version uint8

const (
	VersionUndefined Version = 0
	VersionV1        Version = 1
	VersionV2        Version = 2
)

func (v Version) Valid() bool {
	return v == VersionV1 || v == VersionV2
}

// ParseVersion converts n without wrapping. Values that do not fit the tag
// byte are rejected; tag validity is left to New and NewFast.
func ParseVersion(n int) (Version, error) {
	if n < 0 || n > 0xFF {
		return VersionUndefined, fmt.Errorf("%w: version %d out of range", protocol.ErrUnrecognizedTag, n)
	}
	return Version(n), nil
}

// SocketVersion is the connection socket version advertised alongside the
// format version. It is independent of Version.
type SocketVersion uint8

const (
	SocketVersionUndefined SocketVersion = 0
	SocketVersionV1        SocketVersion = 1
	SocketVersionV2        SocketVersion = 2
)

func (v SocketVersion) Valid() bool {
	return v == SocketVersionV1 || v == SocketVersionV2
}

func ParseSocketVersion(n int) (SocketVersion, error) {
	if n < 0 || n > 0xFF {
		return SocketVersionUndefined, fmt.Errorf("%w: socket version %d out of range", protocol.ErrUnrecognizedTag, n)
	}
	return SocketVersion(n), nil
}

// Header bit layout:
//
//	7 6 5 | 4 3 2 | 1    | 0
//	ver   | sock  | fast | reserved
const (
	versionShift       = 5
	versionMask        = 0xE0
	socketVersionShift = 2
	socketVersionMask  = 0x1C
	fastFlagShift      = 1
	fastFlagMask       = 0x02
)

func packHeader(v Version, sv SocketVersion, fast bool) byte {
	b := (byte(v) << versionShift) & versionMask
	b |= (byte(sv) << socketVersionShift) & socketVersionMask
	if fast {
		b |= (1 << fastFlagShift) & fastFlagMask
	}
	return b
}

func unpackHeader(b byte) (Version, SocketVersion, bool) {
	v := Version((b & versionMask) >> versionShift)
	sv := SocketVersion((b & socketVersionMask) >> socketVersionShift)
	fast := (b&fastFlagMask)>>fastFlagShift == 1
	return v, sv, fast
}
