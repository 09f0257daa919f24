package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/beacon/internal/protocol/bleadv"
	"github.com/danmuck/beacon/internal/protocol/lanrecord"
)

func runBLE(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "encode":
		return bleEncode(args[1:], stdout, stderr)
	case "decode":
		return bleDecode(args[1:], stdout, stderr)
	default:
		return fmt.Errorf("%w: unknown ble command %q", errUsage, args[0])
	}
}

func bleEncode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ble encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fast := fs.Bool("fast", false, "encode the fast profile")
	version := fs.Int("version", int(bleadv.VersionV2), "advertisement version")
	socketVersion := fs.Int("socket-version", int(bleadv.SocketVersionV2), "socket version")
	hash := fs.String("hash", "", "service id hash (hex, full profile)")
	data := fs.String("data", "", "endpoint data as text")
	dataHex := fs.String("data-hex", "", "endpoint data as hex")
	token := fs.String("token", "", "device token (hex)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload := []byte(*data)
	if *dataHex != "" {
		b, err := hex.DecodeString(*dataHex)
		if err != nil {
			return fmt.Errorf("data-hex: %w", err)
		}
		payload = b
	}
	tokenBytes, err := hex.DecodeString(*token)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	v, err := bleadv.ParseVersion(*version)
	if err != nil {
		return err
	}
	sv, err := bleadv.ParseSocketVersion(*socketVersion)
	if err != nil {
		return err
	}

	var adv *bleadv.Advertisement
	if *fast {
		adv, err = bleadv.NewFast(v, sv, payload, tokenBytes)
	} else {
		hashBytes, herr := hex.DecodeString(*hash)
		if herr != nil {
			return fmt.Errorf("hash: %w", herr)
		}
		adv, err = bleadv.New(v, sv, hashBytes, payload, tokenBytes)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hex.EncodeToString(adv.Bytes()))
	return nil
}

func bleDecode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ble decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fast := fs.Bool("fast", false, "decode the fast profile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: ble decode takes one hex payload", errUsage)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(fs.Arg(0)))
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	profile := bleadv.ProfileFull
	if *fast {
		profile = bleadv.ProfileFast
	}
	adv, err := bleadv.ParseProfile(raw, profile)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "profile=%s version=%d socket_version=%d\n", adv.Profile(), adv.Version(), adv.SocketVersion())
	if !adv.IsFast() {
		fmt.Fprintf(stdout, "service_id_hash=%x\n", adv.ServiceIDHash())
	}
	fmt.Fprintf(stdout, "data=%q\n", adv.Data())
	if token := adv.DeviceToken(); token != nil {
		fmt.Fprintf(stdout, "device_token=%x\n", token)
	}
	return nil
}

func runLAN(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "encode":
		return lanEncode(args[1:], stdout, stderr)
	case "decode":
		return lanDecode(args[1:], stdout, stderr)
	default:
		return fmt.Errorf("%w: unknown lan command %q", errUsage, args[0])
	}
}

func lanEncode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lan encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pcpName := fs.String("pcp", lanrecord.PCPStar.String(), "connection profile: star|cluster|point_to_point")
	endpoint := fs.String("endpoint", "", "4-byte endpoint id")
	hash := fs.String("hash", "", "service id hash (hex)")
	info := fs.String("info", "", "endpoint info as text")
	uwb := fs.String("uwb", "", "uwb address (hex)")
	webRTC := fs.Bool("webrtc", false, "advertise webrtc connectable")
	envelope := fs.String("envelope", lanrecord.EnvelopeRawURL, "text envelope: rawurl|url|std|rawstd")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pcp, err := lanrecord.ParsePCP(*pcpName)
	if err != nil {
		return err
	}
	hashBytes, err := hex.DecodeString(*hash)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	uwbBytes, err := hex.DecodeString(*uwb)
	if err != nil {
		return fmt.Errorf("uwb: %w", err)
	}
	env, err := lanrecord.EnvelopeByName(*envelope)
	if err != nil {
		return err
	}
	state := lanrecord.WebRTCUnconnectable
	if *webRTC {
		state = lanrecord.WebRTCConnectable
	}
	rec, err := lanrecord.New(lanrecord.VersionV1, pcp, *endpoint, hashBytes, []byte(*info), uwbBytes, state)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, lanrecord.NewCodec(env).EncodeText(rec))
	return nil
}

func lanDecode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lan decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envelope := fs.String("envelope", lanrecord.EnvelopeRawURL, "text envelope: rawurl|url|std|rawstd")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: lan decode takes one text record", errUsage)
	}
	env, err := lanrecord.EnvelopeByName(*envelope)
	if err != nil {
		return err
	}
	rec, err := lanrecord.NewCodec(env).DecodeText(strings.TrimSpace(fs.Arg(0)))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "version=%d pcp=%s endpoint_id=%s\n", rec.Version(), rec.PCP(), rec.EndpointID())
	fmt.Fprintf(stdout, "service_id_hash=%x\n", rec.ServiceIDHash())
	if uwb := rec.UWBAddress(); uwb != nil {
		fmt.Fprintf(stdout, "uwb_address=%x\n", uwb)
	}
	fmt.Fprintf(stdout, "webrtc_connectable=%t\n", rec.WebRTCConnectable())
	fmt.Fprintf(stdout, "endpoint_info=%q\n", rec.EndpointInfo())
	return nil
}
