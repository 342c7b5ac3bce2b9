package ethernet

import (
	"bytes"
	"testing"

	"github.com/nettap/ether4"
)

func TestMarshalParseRoundtrip(t *testing.T) {
	want := Frame{
		Header: Header{
			Dst:  ether4.EthernetAddress{1, 2, 3, 4, 5, 6},
			Src:  ether4.EthernetAddress{6, 5, 4, 3, 2, 1},
			Type: TypeIPv4,
		},
		Payload: []byte("payload bytes"),
	}
	buf := Marshal(want)
	got, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Header != want.Header {
		t.Fatalf("header mismatch: got %+v want %+v", got.Header, want.Header)
	}
	if !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("payload mismatch: got %q want %q", got.Payload, want.Payload)
	}
}

func TestParseShortBuffer(t *testing.T) {
	_, err := Parse(make([]byte, 13))
	if err == nil {
		t.Fatal("want error for buffer shorter than 14-byte header")
	}
}

func TestBroadcastAddr(t *testing.T) {
	b := BroadcastAddr()
	if !b.IsBroadcast() {
		b2 := b
		t.Fatalf("BroadcastAddr() = %v, not broadcast", b2)
	}
}
