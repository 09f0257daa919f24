// Package mdnssd publishes service record text as mDNS-SD TXT records and
// watches the local network for peers doing the same.
package mdnssd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	mdns "github.com/vanadium/go-mdns-sd"

	"github.com/danmuck/beacon/internal/protocol/lanrecord"
	"github.com/danmuck/beacon/internal/transport"
)

// responder is the part of *mdns.MDNS the publisher drives.
type responder interface {
	AddService(service, host string, port uint16, txt ...string) error
	RemoveService(service, host string, port uint16, txt ...string) error
	SubscribeToService(service string)
	UnsubscribeFromService(service string)
	ServiceMemberWatch(service string) (<-chan mdns.ServiceInstance, func())
	Stop()
}

type Options struct {
	Host     string
	Service  string
	Port     uint16
	Loopback bool
	Codec    lanrecord.Codec
}

// Publisher announces one service record under Options.Service.
type Publisher struct {
	opts Options
	mdns responder

	mu     sync.Mutex
	txt    []string
	status transport.Status
}

var (
	_ responder           = (*mdns.MDNS)(nil)
	_ transport.Publisher = (*Publisher)(nil)
	_ transport.Transport = (*Publisher)(nil)
)

// Open starts an mDNS responder on the default multicast groups.
func Open(opts Options) (*Publisher, error) {
	host := opts.Host
	switch {
	case host == "":
		// go-mdns-sd does not answer without a host name.
		host = "beacon()"
	case host == "localhost":
		host += "()"
	}
	m, err := mdns.NewMDNS(host, "", "", opts.Loopback, 0)
	if err != nil && !strings.HasSuffix(host, "()") {
		// NewMDNS expands "()" to the hardware address, which makes the name unique.
		host += "()"
		m, err = mdns.NewMDNS(host, "", "", opts.Loopback, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("mdnssd: start responder: %w", err)
	}
	opts.Host = host
	return newPublisher(opts, m), nil
}

func newPublisher(opts Options, m responder) *Publisher {
	if opts.Codec.Envelope == nil {
		opts.Codec = lanrecord.DefaultCodec
	}
	return &Publisher{opts: opts, mdns: m}
}

func (p *Publisher) Name() string { return "mdns/" + p.opts.Service }

func (p *Publisher) Status() transport.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Publish replaces any previously published text.
func (p *Publisher) Publish(text string) error {
	txt, err := splitText(text)
	if err != nil {
		return p.fail(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.txt != nil {
		if err := p.mdns.RemoveService(p.opts.Service, p.opts.Host, p.opts.Port, p.txt...); err != nil {
			log.Warn().Str("service", p.opts.Service).Err(err).Msg("remove previous record failed")
		}
		p.txt = nil
	}
	if err := p.mdns.AddService(p.opts.Service, p.opts.Host, p.opts.Port, txt...); err != nil {
		return p.failLocked(fmt.Errorf("mdnssd: add service: %w", err))
	}
	p.txt = txt
	p.status = transport.Status{Active: true, Bytes: len(text), Updated: time.Now()}
	log.Debug().
		Str("service", p.opts.Service).
		Str("host", p.opts.Host).
		Int("txt_records", len(txt)).
		Msg("service record published")
	return nil
}

func (p *Publisher) Unpublish() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.txt == nil {
		return nil
	}
	if err := p.mdns.RemoveService(p.opts.Service, p.opts.Host, p.opts.Port, p.txt...); err != nil {
		return p.failLocked(fmt.Errorf("mdnssd: remove service: %w", err))
	}
	p.txt = nil
	p.status = transport.Status{Updated: time.Now()}
	return nil
}

// Close unpublishes and stops the responder.
func (p *Publisher) Close() error {
	err := p.Unpublish()
	p.mdns.Stop()
	return err
}

// Peer is a service record seen on the network. Lost is set when the
// instance left and Record is nil.
type Peer struct {
	Instance string
	Record   *lanrecord.ServiceRecord
	Lost     bool
}

// Watch reports peers publishing under the same service until ctx ends.
// Instances whose text does not decode are logged and skipped.
func (p *Publisher) Watch(ctx context.Context, fn func(Peer)) error {
	p.mdns.SubscribeToService(p.opts.Service)
	defer p.mdns.UnsubscribeFromService(p.opts.Service)
	updates, stop := p.mdns.ServiceMemberWatch(p.opts.Service)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case inst, ok := <-updates:
			if !ok {
				return nil
			}
			peer, err := p.peerFrom(inst)
			if err != nil {
				log.Debug().Str("instance", inst.Name).Err(err).Msg("peer record skipped")
				continue
			}
			fn(peer)
		}
	}
}

func (p *Publisher) peerFrom(inst mdns.ServiceInstance) (Peer, error) {
	peer := Peer{Instance: inst.Name}
	if len(inst.SrvRRs) == 0 && len(inst.TxtRRs) == 0 {
		peer.Lost = true
		return peer, nil
	}
	for _, rr := range inst.TxtRRs {
		text, err := joinText(rr.Txt)
		if err != nil {
			continue
		}
		rec, err := p.opts.Codec.DecodeText(text)
		if err != nil {
			return Peer{}, err
		}
		peer.Record = rec
		return peer, nil
	}
	return Peer{}, errNoRecordText
}

func (p *Publisher) fail(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failLocked(err)
}

func (p *Publisher) failLocked(err error) error {
	p.status.LastError = err.Error()
	p.status.Updated = time.Now()
	return err
}
