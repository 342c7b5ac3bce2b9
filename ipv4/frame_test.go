package ipv4

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nettap/ether4"
)

func testDatagram() Datagram {
	return Datagram{
		Header: Header{
			Src:      ether4.IPAddressFrom4([4]byte{10, 0, 0, 1}),
			Dst:      ether4.IPAddressFrom4([4]byte{10, 0, 0, 2}),
			TTL:      64,
			ID:       0x1234,
			Protocol: ether4.IPProtoUDP,
		},
		Payload: []byte("hello datagram"),
	}
}

func TestMarshalParseRoundtrip(t *testing.T) {
	want := testDatagram()
	buf := Marshal(want)

	got, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Header.Src != want.Header.Src || got.Header.Dst != want.Header.Dst {
		t.Fatalf("src/dst mismatch: got %+v want %+v", got.Header, want.Header)
	}
	if got.Header.TTL != want.Header.TTL {
		t.Fatalf("ttl mismatch: got %d want %d", got.Header.TTL, want.Header.TTL)
	}
	if !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("payload mismatch: got %q want %q", got.Payload, want.Payload)
	}
}

func TestParseRejectsBadChecksum(t *testing.T) {
	d := testDatagram()
	buf := Marshal(d)
	buf[11] ^= 0xff // corrupt checksum low byte

	_, err := Parse(buf)
	if !errors.Is(err, ether4.ErrBadChecksum) {
		t.Fatalf("want ErrBadChecksum, got %v", err)
	}
}

func TestParseRejectsShortBuffer(t *testing.T) {
	_, err := Parse(make([]byte, 10))
	if !errors.Is(err, ether4.ErrShortBuffer) {
		t.Fatalf("want ErrShortBuffer, got %v", err)
	}
}

func TestDecrementTTLRecomputesChecksumOnMarshal(t *testing.T) {
	d := testDatagram()
	d.Header.TTL = 1

	ok := d.DecrementTTL()
	if ok {
		t.Fatalf("DecrementTTL from 1 should report false (datagram must be dropped, not forwarded)")
	}
	if d.Header.TTL != 0 {
		t.Fatalf("TTL should still decrement to 0, got %d", d.Header.TTL)
	}

	d2 := testDatagram()
	d2.Header.TTL = 5
	if ok := d2.DecrementTTL(); !ok {
		t.Fatalf("DecrementTTL from 5 should report true")
	}
	if d2.Header.TTL != 4 {
		t.Fatalf("ttl = %d, want 4", d2.Header.TTL)
	}

	buf := Marshal(d2)
	reparsed, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse after DecrementTTL+Marshal: %v (checksum not recomputed correctly)", err)
	}
	if reparsed.Header.TTL != 4 {
		t.Fatalf("reparsed ttl = %d, want 4", reparsed.Header.TTL)
	}
}

func TestDecrementTTLFromZeroStaysFalse(t *testing.T) {
	d := testDatagram()
	d.Header.TTL = 0
	if ok := d.DecrementTTL(); ok {
		t.Fatalf("DecrementTTL from 0 must report false")
	}
}
