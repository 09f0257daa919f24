package lanrecord

import (
	"fmt"

	"github.com/danmuck/beacon/internal/protocol"
	"github.com/danmuck/beacon/internal/protocol/cursor"
	"github.com/rs/zerolog/log"
)

// Parse decodes a raw record. The endpoint info length byte must account
// for every byte that follows it.
func Parse(b []byte) (*ServiceRecord, error) {
	r, err := parse(b)
	if err != nil {
		logReject(len(b), err)
		return nil, err
	}
	return r, nil
}

func logReject(n int, err error) {
	log.Debug().
		Str("codec", "lanrecord").
		Int("bytes", n).
		Str("reason", protocol.Reason(err)).
		Err(err).
		Msg("service record rejected")
}

func parse(b []byte) (*ServiceRecord, error) {
	if len(b) < MinRecordLen {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", protocol.ErrBufferTooShort, MinRecordLen, len(b))
	}
	if len(b) > MaxRecordLen {
		return nil, fmt.Errorf("%w: record is %d bytes, max %d", protocol.ErrLengthMismatch, len(b), MaxRecordLen)
	}

	c := cursor.New(b)
	head, err := c.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", protocol.ErrBufferTooShort, err)
	}
	version, pcp := unpackHeader(head)
	if !version.Valid() {
		return nil, fmt.Errorf("%w: version %d", protocol.ErrUnrecognizedTag, version)
	}
	if !pcp.Valid() {
		return nil, fmt.Errorf("%w: %s", protocol.ErrUnrecognizedTag, pcp)
	}

	r := &ServiceRecord{version: version, pcp: pcp}

	id, err := c.ReadBytes(EndpointIDLen)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint id: %w", protocol.ErrLengthMismatch, err)
	}
	r.endpointID = string(id)

	if r.serviceIDHash, err = c.ReadBytes(ServiceIDHashLen); err != nil {
		return nil, fmt.Errorf("%w: service id hash: %w", protocol.ErrLengthMismatch, err)
	}

	uwbLen, err := c.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: uwb address length: %w", protocol.ErrLengthMismatch, err)
	}
	if uwbLen > 0 {
		if r.uwbAddress, err = c.ReadBytes(int(uwbLen)); err != nil {
			return nil, fmt.Errorf("%w: uwb address: %w", protocol.ErrLengthMismatch, err)
		}
	}

	flags, err := c.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: flags: %w", protocol.ErrLengthMismatch, err)
	}
	if flags&webRTCConnectableMask != 0 {
		r.webRTC = WebRTCConnectable
	}

	infoLen, err := c.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint info length: %w", protocol.ErrLengthMismatch, err)
	}
	if c.Remaining() != int(infoLen) {
		return nil, fmt.Errorf("%w: endpoint info declares %d bytes, %d follow", protocol.ErrLengthMismatch, infoLen, c.Remaining())
	}
	if infoLen > 0 {
		if r.endpointInfo, err = c.ReadBytes(int(infoLen)); err != nil {
			return nil, fmt.Errorf("%w: endpoint info: %w", protocol.ErrLengthMismatch, err)
		}
	}
	return r, nil
}
