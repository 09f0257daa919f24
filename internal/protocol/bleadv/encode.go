package bleadv

import "encoding/binary"

// Len is the encoded size in bytes.
func (a *Advertisement) Len() int {
	n := headerLen + len(a.data) + len(a.deviceToken)
	if a.fast {
		return n + fastDataSizeLen
	}
	return n + ServiceIDHashLen + dataSizeLen
}

// Bytes returns the wire encoding. The device token is appended only when
// present; receivers detect it from the remaining length.
func (a *Advertisement) Bytes() []byte {
	out := make([]byte, 0, a.Len())
	out = append(out, packHeader(a.version, a.socketVersion, a.fast))
	if a.fast {
		out = append(out, byte(len(a.data)))
	} else {
		out = append(out, a.serviceIDHash...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(a.data)))
	}
	out = append(out, a.data...)
	out = append(out, a.deviceToken...)
	return out
}
