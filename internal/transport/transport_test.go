package transport

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/beacon/internal/protocol/bleadv"
	"github.com/danmuck/beacon/internal/protocol/lanrecord"
	"github.com/danmuck/beacon/internal/testutil/testlog"
)

type fakeCarrier struct {
	name    string
	err     error
	payload []byte
	text    string
	stopped bool
}

func (f *fakeCarrier) Name() string { return f.name }

func (f *fakeCarrier) Status() Status {
	return Status{Active: !f.stopped && (f.payload != nil || f.text != ""), Updated: time.Unix(0, 0)}
}

func (f *fakeCarrier) StartAdvertising(payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.payload = payload
	return nil
}

func (f *fakeCarrier) StopAdvertising() error { f.stopped = true; return nil }

func (f *fakeCarrier) Publish(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func (f *fakeCarrier) Unpublish() error { f.stopped = true; return nil }

func TestAnnounceHandsOffEncodedBytes(t *testing.T) {
	testlog.Start(t)
	adv, err := bleadv.NewFast(bleadv.VersionV2, bleadv.SocketVersionV2, []byte("hi"), nil)
	if err != nil {
		t.Fatalf("new fast: %v", err)
	}
	carrier := &fakeCarrier{name: "fake-ble"}
	if err := Announce(carrier, adv); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if !bytes.Equal(carrier.payload, adv.Bytes()) {
		t.Fatalf("expected %x, got %x", adv.Bytes(), carrier.payload)
	}
}

func TestAnnounceSurfacesCarrierError(t *testing.T) {
	testlog.Start(t)
	adv, err := bleadv.NewFast(bleadv.VersionV2, bleadv.SocketVersionV2, nil, nil)
	if err != nil {
		t.Fatalf("new fast: %v", err)
	}
	boom := errors.New("adapter busy")
	err = Announce(&fakeCarrier{name: "fake-ble", err: boom}, adv)
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "fake-ble") {
		t.Fatalf("expected wrapped carrier error, got %v", err)
	}
	if err := Announce(&fakeCarrier{name: "fake-ble"}, nil); err == nil {
		t.Fatalf("expected nil advertisement error")
	}
}

func TestPublishUsesCodec(t *testing.T) {
	testlog.Start(t)
	rec, err := lanrecord.New(lanrecord.VersionV1, lanrecord.PCPCluster, "AB1D", []byte{1, 2, 3}, []byte("info"), nil, lanrecord.WebRTCConnectable)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	carrier := &fakeCarrier{name: "fake-lan"}
	if err := Publish(carrier, lanrecord.DefaultCodec, rec); err != nil {
		t.Fatalf("publish: %v", err)
	}
	back, err := lanrecord.DecodeText(carrier.text)
	if err != nil {
		t.Fatalf("decode published text: %v", err)
	}
	if !back.Equal(rec) {
		t.Fatalf("expected %s, got %s", rec, back)
	}
}

func TestRegistryStatusesSorted(t *testing.T) {
	testlog.Start(t)
	reg := NewRegistry()
	reg.Register(&fakeCarrier{name: "mdns", text: "x"})
	reg.Register(&fakeCarrier{name: "bluez"})
	if _, ok := reg.Get("mdns"); !ok {
		t.Fatalf("expected mdns registered")
	}
	if _, ok := reg.Get("wifi"); ok {
		t.Fatalf("unexpected wifi carrier")
	}
	list := reg.Statuses()
	if len(list) != 2 || list[0].Name != "bluez" || list[1].Name != "mdns" {
		t.Fatalf("unexpected statuses %+v", list)
	}
	if list[0].Active || !list[1].Active {
		t.Fatalf("unexpected active flags %+v", list)
	}
}
