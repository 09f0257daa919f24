package lanrecord

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/danmuck/beacon/internal/protocol"
)

// Envelope turns raw record bytes into printable text and back.
// *base64.Encoding satisfies it.
type Envelope interface {
	EncodeToString(src []byte) string
	DecodeString(s string) ([]byte, error)
}

// Envelope names accepted by EnvelopeByName.
const (
	EnvelopeRawURL = "rawurl"
	EnvelopeURL    = "url"
	EnvelopeStd    = "std"
	EnvelopeRawStd = "rawstd"
)

// EnvelopeByName resolves a base64 alphabet. The empty name is rawurl.
func EnvelopeByName(name string) (Envelope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EnvelopeRawURL:
		return base64.RawURLEncoding, nil
	case EnvelopeURL:
		return base64.URLEncoding, nil
	case EnvelopeStd:
		return base64.StdEncoding, nil
	case EnvelopeRawStd:
		return base64.RawStdEncoding, nil
	default:
		return nil, fmt.Errorf("lanrecord: unknown envelope %q", name)
	}
}

// Codec pairs the raw record layout with a text envelope.
type Codec struct {
	Envelope Envelope
}

// DefaultCodec uses URL-safe base64 without padding.
var DefaultCodec = Codec{Envelope: base64.RawURLEncoding}

func NewCodec(env Envelope) Codec {
	if env == nil {
		return DefaultCodec
	}
	return Codec{Envelope: env}
}

func (c Codec) envelope() Envelope {
	if c.Envelope == nil {
		return DefaultCodec.Envelope
	}
	return c.Envelope
}

// EncodeText returns the record's printable form.
func (c Codec) EncodeText(r *ServiceRecord) string {
	return c.envelope().EncodeToString(r.Bytes())
}

// DecodeText unwraps the envelope and parses the record.
func (c Codec) DecodeText(s string) (*ServiceRecord, error) {
	raw, err := c.envelope().DecodeString(s)
	if err != nil {
		err = fmt.Errorf("%w: %w", protocol.ErrTextDecode, err)
		logReject(0, err)
		return nil, err
	}
	if len(raw) == 0 {
		err = fmt.Errorf("%w: empty record text", protocol.ErrTextDecode)
		logReject(0, err)
		return nil, err
	}
	return Parse(raw)
}

func EncodeText(r *ServiceRecord) string {
	return DefaultCodec.EncodeText(r)
}

func DecodeText(s string) (*ServiceRecord, error) {
	return DefaultCodec.DecodeText(s)
}
