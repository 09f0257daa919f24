// Package transport hands encoded advertisements and service records to the
// media that carry them.
//
// Ownership boundary:
// - transport owns the hand-off contract and the registry of live carriers
// - codecs live in internal/protocol; carriers never re-encode
// - connection establishment over any medium is out of scope
package transport

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/beacon/internal/observability"
	"github.com/danmuck/beacon/internal/protocol/bleadv"
	"github.com/danmuck/beacon/internal/protocol/lanrecord"
)

// Advertiser broadcasts an encoded radio advertisement.
type Advertiser interface {
	StartAdvertising(payload []byte) error
	StopAdvertising() error
}

// Publisher announces a service record in its text form.
type Publisher interface {
	Publish(text string) error
	Unpublish() error
}

// Transport is a named carrier the registry can report on.
type Transport interface {
	Name() string
	Status() Status
}

// Status is a carrier's view of its last hand-off.
type Status struct {
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Bytes     int       `json:"bytes"`
	LastError string    `json:"last_error,omitempty"`
	Updated   time.Time `json:"updated"`
}

// Announce encodes adv and starts advertising it on a.
func Announce(a Advertiser, adv *bleadv.Advertisement) error {
	if adv == nil {
		return fmt.Errorf("transport: nil advertisement")
	}
	payload := adv.Bytes()
	observability.RecordEncode("bleadv", adv.Profile().String(), len(payload))

	name := nameOf(a)
	err := a.StartAdvertising(payload)
	observability.RecordPublish(name, err)
	if err != nil {
		log.Error().Str("transport", name).Err(err).Msg("advertise failed")
		return fmt.Errorf("transport %s: advertise: %w", name, err)
	}
	log.Info().
		Str("transport", name).
		Str("profile", adv.Profile().String()).
		Int("bytes", len(payload)).
		Msg("advertising")
	return nil
}

// Publish encodes rec with codec and publishes the text on p.
func Publish(p Publisher, codec lanrecord.Codec, rec *lanrecord.ServiceRecord) error {
	if rec == nil {
		return fmt.Errorf("transport: nil service record")
	}
	text := codec.EncodeText(rec)
	observability.RecordEncode("lanrecord", "text", len(text))

	name := nameOf(p)
	err := p.Publish(text)
	observability.RecordPublish(name, err)
	if err != nil {
		log.Error().Str("transport", name).Err(err).Msg("publish failed")
		return fmt.Errorf("transport %s: publish: %w", name, err)
	}
	log.Info().
		Str("transport", name).
		Str("endpoint_id", rec.EndpointID()).
		Int("text_len", len(text)).
		Msg("published")
	return nil
}

func nameOf(v any) string {
	if t, ok := v.(interface{ Name() string }); ok {
		return t.Name()
	}
	return "unnamed"
}
