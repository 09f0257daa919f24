package lanrecord

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/danmuck/beacon/internal/protocol"
	"github.com/danmuck/beacon/internal/testutil/testlog"
)

func TestTextRoundTrip(t *testing.T) {
	testlog.Start(t)
	r := mustNew(t, PCPStar, endpointInfo, uwbAddress, WebRTCConnectable)
	text := EncodeText(r)
	if text != base64.RawURLEncoding.EncodeToString(r.Bytes()) {
		t.Fatalf("expected raw url base64 by default, got %q", text)
	}
	back, err := DecodeText(text)
	if err != nil {
		t.Fatalf("decode text: %v", err)
	}
	if !back.Equal(r) {
		t.Fatalf("expected %s, got %s", r, back)
	}
}

func TestTextEnvelopes(t *testing.T) {
	testlog.Start(t)
	r := mustNew(t, PCPCluster, []byte("x"), nil, WebRTCUnconnectable)
	for _, name := range []string{"", EnvelopeRawURL, EnvelopeURL, EnvelopeStd, EnvelopeRawStd, " STD "} {
		env, err := EnvelopeByName(name)
		if err != nil {
			t.Fatalf("envelope %q: %v", name, err)
		}
		codec := NewCodec(env)
		back, err := codec.DecodeText(codec.EncodeText(r))
		if err != nil || !back.Equal(r) {
			t.Fatalf("envelope %q: round trip failed: %v", name, err)
		}
	}
	if _, err := EnvelopeByName("hex"); err == nil {
		t.Fatalf("expected unknown envelope error")
	}
}

func TestZeroCodecUsesDefault(t *testing.T) {
	testlog.Start(t)
	r := mustNew(t, PCPStar, nil, nil, WebRTCUnconnectable)
	var c Codec
	if c.EncodeText(r) != EncodeText(r) {
		t.Fatalf("expected zero codec to match default")
	}
}

func TestDecodeTextFailures(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name   string
		text   string
		target error
	}{
		{"not base64", "%%%not-base64%%%", protocol.ErrTextDecode},
		{"empty", "", protocol.ErrTextDecode},
		{"too short", base64.RawURLEncoding.EncodeToString([]byte{0x21, 0x00}), protocol.ErrBufferTooShort},
	}
	for _, tc := range cases {
		r, err := DecodeText(tc.text)
		if !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.target, err)
		}
		if r != nil {
			t.Fatalf("%s: expected nil record on error", tc.name)
		}
	}
}
