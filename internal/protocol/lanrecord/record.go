// Package lanrecord encodes and decodes the service record a node publishes
// through local-network service discovery.
//
// Raw layout, all lengths in bytes:
//
//	[1] version(3b) | pcp(5b)
//	[4] endpoint id
//	[3] service id hash
//	[1] uwb address length, then that many bytes
//	[1] flags, bit 0 = WebRTC connectable
//	[1] endpoint info length, then exactly that many bytes
//
// The raw bytes travel inside a printable text envelope (see Envelope).
package lanrecord

import (
	"bytes"
	"fmt"

	"github.com/danmuck/beacon/internal/protocol"
)

type Version uint8

const VersionV1 Version = 1

func (v Version) Valid() bool { return v == VersionV1 }

// ParseVersion converts n without wrapping. Tag validity is checked by New.
func ParseVersion(n int) (Version, error) {
	if n < 0 || n > 0xFF {
		return 0, fmt.Errorf("%w: version %d out of range", protocol.ErrUnrecognizedTag, n)
	}
	return Version(n), nil
}

// PCP is the point-to-point connection profile (topology) tag.
type PCP uint8

const (
	PCPUnknown      PCP = 0
	PCPStar         PCP = 1
	PCPCluster      PCP = 2
	PCPPointToPoint PCP = 3
)

func (p PCP) Valid() bool {
	switch p {
	case PCPStar, PCPCluster, PCPPointToPoint:
		return true
	default:
		return false
	}
}

func (p PCP) String() string {
	switch p {
	case PCPStar:
		return "star"
	case PCPCluster:
		return "cluster"
	case PCPPointToPoint:
		return "point_to_point"
	default:
		return fmt.Sprintf("pcp(%d)", uint8(p))
	}
}

// ParsePCP accepts the names produced by PCP.String.
func ParsePCP(s string) (PCP, error) {
	switch s {
	case "star":
		return PCPStar, nil
	case "cluster":
		return PCPCluster, nil
	case "point_to_point", "p2p":
		return PCPPointToPoint, nil
	default:
		return PCPUnknown, fmt.Errorf("%w: pcp %q", protocol.ErrUnrecognizedTag, s)
	}
}

type WebRTCState uint8

const (
	WebRTCUnconnectable WebRTCState = iota
	WebRTCConnectable
)

const (
	EndpointIDLen      = 4
	ServiceIDHashLen   = 3
	MaxUWBAddressLen   = 255
	MaxEndpointInfoLen = 255

	headerLen = 1
	lenPrefix = 1
	flagsLen  = 1

	MinRecordLen = headerLen + EndpointIDLen + ServiceIDHashLen + lenPrefix + flagsLen + lenPrefix
	MaxRecordLen = MinRecordLen + MaxUWBAddressLen + MaxEndpointInfoLen
)

// Header and flag bit layout.
const (
	versionShift = 5
	versionMask  = 0xE0
	pcpMask      = 0x1F

	webRTCConnectableMask = 0x01
)

func packHeader(v Version, p PCP) byte {
	return ((byte(v) << versionShift) & versionMask) | (byte(p) & pcpMask)
}

func unpackHeader(b byte) (Version, PCP) {
	return Version((b & versionMask) >> versionShift), PCP(b & pcpMask)
}

// ServiceRecord is an immutable, validated service record.
type ServiceRecord struct {
	version       Version
	pcp           PCP
	endpointID    string
	serviceIDHash []byte
	uwbAddress    []byte
	webRTC        WebRTCState
	endpointInfo  []byte
}

// New validates and builds a record. endpointInfo longer than
// MaxEndpointInfoLen is kept as given and truncated by Bytes.
func New(version Version, pcp PCP, endpointID string, serviceIDHash, endpointInfo, uwbAddress []byte, webRTC WebRTCState) (*ServiceRecord, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("%w: version %d", protocol.ErrUnrecognizedTag, version)
	}
	if !pcp.Valid() {
		return nil, fmt.Errorf("%w: %s", protocol.ErrUnrecognizedTag, pcp)
	}
	if len(endpointID) != EndpointIDLen {
		return nil, fmt.Errorf("%w: endpoint id is %d bytes, want %d", protocol.ErrLengthMismatch, len(endpointID), EndpointIDLen)
	}
	if len(serviceIDHash) != ServiceIDHashLen {
		return nil, fmt.Errorf("%w: service id hash is %d bytes, want %d", protocol.ErrLengthMismatch, len(serviceIDHash), ServiceIDHashLen)
	}
	if len(uwbAddress) > MaxUWBAddressLen {
		return nil, fmt.Errorf("%w: uwb address is %d bytes, max %d", protocol.ErrLengthMismatch, len(uwbAddress), MaxUWBAddressLen)
	}
	return &ServiceRecord{
		version:       version,
		pcp:           pcp,
		endpointID:    endpointID,
		serviceIDHash: bytes.Clone(serviceIDHash),
		uwbAddress:    cloneOrNil(uwbAddress),
		webRTC:        webRTC,
		endpointInfo:  cloneOrNil(endpointInfo),
	}, nil
}

func cloneOrNil(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return bytes.Clone(b)
}

func (r *ServiceRecord) Version() Version         { return r.version }
func (r *ServiceRecord) PCP() PCP                 { return r.pcp }
func (r *ServiceRecord) EndpointID() string       { return r.endpointID }
func (r *ServiceRecord) ServiceIDHash() []byte    { return bytes.Clone(r.serviceIDHash) }
func (r *ServiceRecord) UWBAddress() []byte       { return cloneOrNil(r.uwbAddress) }
func (r *ServiceRecord) WebRTCState() WebRTCState { return r.webRTC }
func (r *ServiceRecord) EndpointInfo() []byte     { return cloneOrNil(r.endpointInfo) }
func (r *ServiceRecord) WebRTCConnectable() bool  { return r.webRTC == WebRTCConnectable }

// Equal compares every field. Absent and empty variable fields are equal.
func (r *ServiceRecord) Equal(o *ServiceRecord) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.version == o.version &&
		r.pcp == o.pcp &&
		r.endpointID == o.endpointID &&
		bytes.Equal(r.serviceIDHash, o.serviceIDHash) &&
		bytes.Equal(r.uwbAddress, o.uwbAddress) &&
		r.webRTC == o.webRTC &&
		bytes.Equal(r.endpointInfo, o.endpointInfo)
}

func (r *ServiceRecord) String() string {
	return fmt.Sprintf("lanrecord{version=%d pcp=%s endpoint=%q hash=%x uwb=%x webrtc=%v info=%dB}",
		r.version, r.pcp, r.endpointID, r.serviceIDHash, r.uwbAddress, r.WebRTCConnectable(), len(r.endpointInfo))
}
