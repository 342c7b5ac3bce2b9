// Package router implements Router, the longest-prefix-match IPv4
// forwarder of spec.md §4.2: it owns an ordered list of interfaces and
// an unordered route table, drains each interface's received datagrams
// once per Route call, and forwards them via TTL decrement + checksum
// recompute + next-hop send.
package router

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nettap/ether4"
	"github.com/nettap/ether4/ipv4"
	"github.com/nettap/ether4/netiface"
)

var errBadPrefixLength = errors.New("router: prefix_length must be in [0, 32]")

// RouteEntry is a single forwarding-table row, per spec.md §3. NextHop is
// nil for a directly attached route, meaning the datagram's own
// destination address is used as the next hop.
type RouteEntry struct {
	Prefix         ether4.IPAddress
	PrefixLength   uint8
	NextHop        *ether4.IPAddress
	InterfaceIndex int
}

// mask returns the 32-bit netmask for a prefix length in [0, 32], per
// spec.md §4.2.2: mask(0) = 0, mask(32) = all ones.
func mask(prefixLength uint8) uint32 {
	if prefixLength == 0 {
		return 0
	}
	if prefixLength >= 32 {
		return 0xFFFFFFFF
	}
	return 0xFFFFFFFF << (32 - prefixLength)
}

// Router owns an ordered list of NetworkInterfaces and an unordered
// route table. Insertion order of routes never affects correctness;
// insertion order of interfaces fixes their index.
type Router struct {
	interfaces []*netiface.NetworkInterface
	routes     []RouteEntry
	log        *slog.Logger
}

// New returns a Router. A nil logger defaults to a discard logger.
func New(log *slog.Logger) *Router {
	if log == nil {
		log = discardLogger()
	}
	return &Router{log: log}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// AddInterface appends ni to the router's ordered interface list and
// returns its interface_index.
func (r *Router) AddInterface(ni *netiface.NetworkInterface) int {
	r.interfaces = append(r.interfaces, ni)
	return len(r.interfaces) - 1
}

// Interface returns the i'th interface, for use by the harness driving
// RecvFrame/MaybeSend directly on it, per spec.md §6's interface(i).
func (r *Router) Interface(i int) *netiface.NetworkInterface {
	return r.interfaces[i]
}

// AddRoute appends a RouteEntry. No uniqueness check is performed, per
// spec.md §4.2.1; a route can shadow or duplicate an existing one.
func (r *Router) AddRoute(prefix ether4.IPAddress, prefixLength uint8, nextHop *ether4.IPAddress, interfaceIndex int) error {
	if prefixLength > 32 {
		return fmt.Errorf("%w: got %d", errBadPrefixLength, prefixLength)
	}
	r.routes = append(r.routes, RouteEntry{
		Prefix:         prefix,
		PrefixLength:   prefixLength,
		NextHop:        nextHop,
		InterfaceIndex: interfaceIndex,
	})
	return nil
}

// lookup performs longest-prefix-match over the route table, breaking
// ties between equal-length matches by keeping the first one inserted
// (grounded on the original C++ source's router.cc, which only replaces
// its current best match on a strictly longer prefix).
func (r *Router) lookup(dst ether4.IPAddress) (RouteEntry, bool) {
	var best RouteEntry
	found := false
	for _, route := range r.routes {
		m := mask(route.PrefixLength)
		if uint32(dst)&m != uint32(route.Prefix)&m {
			continue
		}
		if !found || route.PrefixLength > best.PrefixLength {
			best = route
			found = true
		}
	}
	return best, found
}

// Route implements spec.md §4.2.2: drains every interface's received
// datagrams once, forwarding each via longest-prefix-match.
func (r *Router) Route() {
	for _, iface := range r.interfaces {
		for {
			dgram, ok := iface.MaybeReceive()
			if !ok {
				break
			}
			r.forward(dgram)
		}
	}
}

// forward looks up dgram's route, applies the TTL-decrement-and-drop
// rule, recomputes the checksum and sends it out the matched interface.
func (r *Router) forward(dgram ipv4.Datagram) {
	entry, ok := r.lookup(dgram.Header.Dst)
	if !ok {
		r.log.Debug("router: no route", "dst", dgram.Header.Dst)
		return
	}
	if !dgram.DecrementTTL() {
		r.log.Debug("router: ttl expired", "dst", dgram.Header.Dst)
		return
	}

	nextHop := dgram.Header.Dst
	if entry.NextHop != nil {
		nextHop = *entry.NextHop
	}
	r.interfaces[entry.InterfaceIndex].SendDatagram(dgram, nextHop)
}
