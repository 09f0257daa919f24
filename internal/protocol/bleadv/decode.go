package bleadv

import (
	"fmt"

	"github.com/danmuck/beacon/internal/protocol"
	"github.com/danmuck/beacon/internal/protocol/cursor"
	"github.com/rs/zerolog/log"
)

// Parse decodes a full-profile advertisement. Bytes after the last field are
// ignored so GATT attribute slack does not break decoding.
func Parse(b []byte) (*Advertisement, error) {
	return parseLogged(b, ProfileFull)
}

// ParseFast decodes a fast-profile advertisement. Trailing bytes are ignored
// as in Parse.
func ParseFast(b []byte) (*Advertisement, error) {
	return parseLogged(b, ProfileFast)
}

// ParseProfile dispatches to Parse or ParseFast.
func ParseProfile(b []byte, p Profile) (*Advertisement, error) {
	return parseLogged(b, p)
}

func parseLogged(b []byte, p Profile) (*Advertisement, error) {
	adv, err := parse(b, p)
	if err != nil {
		log.Debug().
			Str("codec", "bleadv").
			Str("profile", p.String()).
			Int("bytes", len(b)).
			Str("reason", protocol.Reason(err)).
			Err(err).
			Msg("advertisement rejected")
		return nil, err
	}
	return adv, nil
}

func parse(b []byte, p Profile) (*Advertisement, error) {
	minLen := MinLen
	if p == ProfileFast {
		minLen = MinFastLen
	}
	if len(b) < minLen {
		return nil, fmt.Errorf("%w: %s advertisement needs %d bytes, got %d", protocol.ErrBufferTooShort, p, minLen, len(b))
	}

	c := cursor.New(b)
	head, err := c.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", protocol.ErrBufferTooShort, err)
	}
	version, socketVersion, _ := unpackHeader(head)
	if err := checkTags(version, socketVersion); err != nil {
		return nil, err
	}

	adv := &Advertisement{
		version:       version,
		socketVersion: socketVersion,
		fast:          p == ProfileFast,
	}

	var dataLen uint64
	if p == ProfileFast {
		n, err := c.ReadUint8()
		if err != nil {
			return nil, fmt.Errorf("%w: data length: %w", protocol.ErrLengthMismatch, err)
		}
		dataLen = uint64(n)
	} else {
		hash, err := c.ReadBytes(ServiceIDHashLen)
		if err != nil {
			return nil, fmt.Errorf("%w: service id hash: %w", protocol.ErrLengthMismatch, err)
		}
		adv.serviceIDHash = hash
		n, err := c.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("%w: data length: %w", protocol.ErrLengthMismatch, err)
		}
		dataLen = uint64(n)
		if dataLen > MaxDataLen {
			return nil, fmt.Errorf("%w: declared data length %d exceeds max %d", protocol.ErrLengthMismatch, dataLen, MaxDataLen)
		}
	}

	if dataLen > uint64(c.Remaining()) {
		return nil, fmt.Errorf("%w: declared data length %d exceeds %d remaining", protocol.ErrLengthMismatch, dataLen, c.Remaining())
	}
	data, err := c.ReadBytes(int(dataLen))
	if err != nil {
		return nil, fmt.Errorf("%w: data: %w", protocol.ErrLengthMismatch, err)
	}
	adv.data = data

	if c.Remaining() >= DeviceTokenLen {
		token, err := c.ReadBytes(DeviceTokenLen)
		if err != nil {
			return nil, fmt.Errorf("%w: device token: %w", protocol.ErrLengthMismatch, err)
		}
		adv.deviceToken = token
	}
	return adv, nil
}
