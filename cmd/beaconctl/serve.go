package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/beacon/internal/config"
	"github.com/danmuck/beacon/internal/inspect"
	"github.com/danmuck/beacon/internal/observability"
	"github.com/danmuck/beacon/internal/transport"
	"github.com/danmuck/beacon/internal/transport/bluez"
	"github.com/danmuck/beacon/internal/transport/mdnssd"
)

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "", "config path (toml)")
	addr := fs.String("addr", "", "inspector listen address override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadServeConfig(*path, *addr)
	if err != nil {
		return err
	}
	observability.InitLogger("beaconctl")
	return serve(ctx, cfg)
}

// serve runs the inspector and every enabled transport until ctx ends or one
// of them fails.
func serve(ctx context.Context, cfg config.Config) error {
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	registry := transport.NewRegistry()

	var advertiser *bluez.Advertiser
	bleCfg, lanCfg := cfg.BLE, cfg.LAN
	if bleCfg.Enabled {
		id, err := bleCfg.UUID()
		if err != nil {
			return err
		}
		advertiser, err = bluez.Open(bleCfg.Adapter, bleCfg.LocalName, id)
		if err != nil {
			return err
		}
		registry.Register(advertiser)
	}

	var publisher *mdnssd.Publisher
	if lanCfg.Enabled {
		publisher, err = mdnssd.Open(mdnssd.Options{
			Host:     lanCfg.Host,
			Service:  lanCfg.Service,
			Port:     uint16(lanCfg.Port),
			Loopback: lanCfg.Loopback,
			Codec:    codec,
		})
		if err != nil {
			return err
		}
		registry.Register(publisher)
	}

	g, ctx := errgroup.WithContext(ctx)
	server := inspect.New(cfg.Name, cfg.Inspect.Addr, cfg.Inspect.CorsOrigins, codec, registry)
	g.Go(func() error {
		return server.Serve(ctx)
	})

	if advertiser != nil {
		g.Go(func() error {
			ad, err := bleCfg.Advertisement()
			if err != nil {
				return err
			}
			if err := transport.Announce(advertiser, ad); err != nil {
				return err
			}
			<-ctx.Done()
			if err := advertiser.StopAdvertising(); err != nil && !errors.Is(err, bluez.ErrNotStarted) {
				return fmt.Errorf("stop advertising: %w", err)
			}
			return nil
		})
	}

	if publisher != nil {
		g.Go(func() error {
			record, err := lanCfg.Record()
			if err != nil {
				return err
			}
			if err := transport.Publish(publisher, codec, record); err != nil {
				return err
			}
			<-ctx.Done()
			return publisher.Close()
		})
		g.Go(func() error {
			err := publisher.Watch(ctx, func(p mdnssd.Peer) {
				if p.Lost {
					log.Info().Str("instance", p.Instance).Msg("peer lost")
					return
				}
				log.Info().
					Str("instance", p.Instance).
					Str("endpoint_id", p.Record.EndpointID()).
					Str("pcp", p.Record.PCP().String()).
					Bool("webrtc", p.Record.WebRTCConnectable()).
					Msg("peer seen")
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	log.Info().
		Str("name", cfg.Name).
		Bool("ble", advertiser != nil).
		Bool("lan", publisher != nil).
		Msg("beacon serving")
	return g.Wait()
}
