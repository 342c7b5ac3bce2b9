package arp

import (
	"testing"

	"github.com/nettap/ether4"
)

func TestMessageMarshalParseRoundtrip(t *testing.T) {
	want := Message{
		Opcode:    OpRequest,
		SenderEth: ether4.EthernetAddress{1, 2, 3, 4, 5, 6},
		SenderIP:  ether4.IPAddressFrom4([4]byte{10, 0, 0, 1}),
		TargetEth: ether4.EthernetAddress{},
		TargetIP:  ether4.IPAddressFrom4([4]byte{10, 0, 0, 2}),
	}
	got, err := Parse(Marshal(want))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseRejectsUnsupportedShape(t *testing.T) {
	buf := Marshal(Message{Opcode: OpReply})
	buf[1] = 0x08 // low byte of hwtype: 1 (Ethernet) -> 8 (unsupported)
	if _, err := Parse(buf); err == nil {
		t.Fatal("want error for unsupported hardware type")
	}
}

func TestTableResolveUnknown(t *testing.T) {
	tab := NewTable[int]()
	if _, ok := tab.Resolve(ether4.IPAddress(1)); ok {
		t.Fatal("resolve on empty table must fail")
	}
	if !tab.NeedsRequest(ether4.IPAddress(1)) {
		t.Fatal("unknown IP should need a request")
	}
}

func TestTableLearnAndFlush(t *testing.T) {
	tab := NewTable[string]()
	target := ether4.IPAddress(42)
	tab.Enqueue(target, "a")
	tab.Enqueue(target, "b")
	tab.MarkRequested(target)
	if tab.NeedsRequest(target) {
		t.Fatal("a fresh pending entry must suppress further requests")
	}

	flushed := tab.Learn(target, ether4.EthernetAddress{9, 9, 9, 9, 9, 9})
	if len(flushed) != 2 || flushed[0] != "a" || flushed[1] != "b" {
		t.Fatalf("flushed = %v, want [a b] in FIFO order", flushed)
	}
	eth, ok := tab.Resolve(target)
	if !ok || eth != (ether4.EthernetAddress{9, 9, 9, 9, 9, 9}) {
		t.Fatalf("Resolve after Learn = (%v, %v)", eth, ok)
	}
}

func TestTablePendingExpiryDropsWholeQueue(t *testing.T) {
	tab := NewTable[int]()
	ip := ether4.IPAddress(7)
	tab.MarkRequested(ip)
	tab.Enqueue(ip, 1)
	tab.Enqueue(ip, 2)

	tab.Tick(5001)
	if !tab.NeedsRequest(ip) {
		t.Fatal("pending entry should have expired after 5001ms")
	}
	flushed := tab.Learn(ip, ether4.EthernetAddress{1, 1, 1, 1, 1, 1})
	if len(flushed) != 0 {
		t.Fatalf("waiting queue should have been dropped on pending expiry, got %v", flushed)
	}
}

func TestTableResolvedExpiryAt30Seconds(t *testing.T) {
	tab := NewTable[int]()
	ip := ether4.IPAddress(99)
	tab.Learn(ip, ether4.EthernetAddress{2, 2, 2, 2, 2, 2})

	tab.Tick(30_000)
	if _, ok := tab.Resolve(ip); !ok {
		t.Fatal("entry should still be valid at exactly 30000ms")
	}
	tab.Tick(1)
	if _, ok := tab.Resolve(ip); ok {
		t.Fatal("entry should have expired past 30000ms")
	}
}
