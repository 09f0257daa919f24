package lanrecord

import "github.com/rs/zerolog/log"

// Bytes returns the raw record. Endpoint info beyond MaxEndpointInfoLen is
// dropped.
func (r *ServiceRecord) Bytes() []byte {
	info := r.endpointInfo
	if len(info) > MaxEndpointInfoLen {
		log.Debug().
			Str("codec", "lanrecord").
			Str("endpoint_id", r.endpointID).
			Int("endpoint_info_len", len(info)).
			Int("max", MaxEndpointInfoLen).
			Msg("truncating endpoint info")
		info = info[:MaxEndpointInfoLen]
	}

	var flags byte
	if r.webRTC == WebRTCConnectable {
		flags |= webRTCConnectableMask
	}

	out := make([]byte, 0, MinRecordLen+len(r.uwbAddress)+len(info))
	out = append(out, packHeader(r.version, r.pcp))
	out = append(out, r.endpointID...)
	out = append(out, r.serviceIDHash...)
	out = append(out, byte(len(r.uwbAddress)))
	out = append(out, r.uwbAddress...)
	out = append(out, flags)
	out = append(out, byte(len(info)))
	out = append(out, info...)
	return out
}
