package netiface

import (
	"log/slog"

	"github.com/nettap/ether4"
	"github.com/nettap/ether4/arp"
	"github.com/nettap/ether4/ethernet"
	"github.com/nettap/ether4/ipv4"
)

// NetworkInterface is the single-link state machine of spec.md §4.1: it
// resolves next-hop IPs to Ethernet addresses via ARP, queues datagrams
// behind unresolved IPs, and exposes a FIFO of frames ready to send plus
// a FIFO of IPv4 datagrams received from the wire.
type NetworkInterface struct {
	ownEth ether4.EthernetAddress
	ownIP  ether4.IPAddress
	log    *slog.Logger

	arp *arp.Table[ipv4.Datagram]

	outbound []ethernet.Frame
	ingress  []ipv4.Datagram
}

// New returns a ready-to-use NetworkInterface, or an error if cfg is invalid.
func New(cfg Config) (*NetworkInterface, error) {
	ni := &NetworkInterface{}
	if err := ni.Reset(cfg); err != nil {
		return nil, err
	}
	return ni, nil
}

// Reset validates cfg and reinitializes ni's state, discarding any queued
// frames, datagrams and ARP state.
func (ni *NetworkInterface) Reset(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}
	*ni = NetworkInterface{
		ownEth: cfg.OwnEthernetAddr,
		ownIP:  cfg.OwnIPAddr,
		log:    log,
		arp:    arp.NewTable[ipv4.Datagram](),
	}
	return nil
}

// OwnEthernetAddr returns the interface's own hardware address.
func (ni *NetworkInterface) OwnEthernetAddr() ether4.EthernetAddress { return ni.ownEth }

// OwnIPAddr returns the interface's own IPv4 address.
func (ni *NetworkInterface) OwnIPAddr() ether4.IPAddress { return ni.ownIP }

// SendDatagram implements spec.md §4.1.1: it sends dgram immediately if
// nextHop is already resolved, or queues it behind ARP resolution and
// broadcasts at most one outstanding request for nextHop.
func (ni *NetworkInterface) SendDatagram(dgram ipv4.Datagram, nextHop ether4.IPAddress) {
	if eth, ok := ni.arp.Resolve(nextHop); ok {
		ni.enqueueIPv4Frame(eth, dgram)
		return
	}

	ni.arp.Enqueue(nextHop, dgram)
	if !ni.arp.NeedsRequest(nextHop) {
		return // valid pending entry already in flight; just joined its queue.
	}
	ni.arp.MarkRequested(nextHop)
	req := arp.Message{
		Opcode:    arp.OpRequest,
		SenderEth: ni.ownEth,
		SenderIP:  ni.ownIP,
		TargetEth: ether4.EthernetAddress{},
		TargetIP:  nextHop,
	}
	ni.enqueueARPFrame(ether4.Broadcast, req)
	ni.log.Debug("netiface: arp request sent", "target_ip", nextHop)
}

// RecvFrame implements spec.md §4.1.2. It filters on destination address,
// dispatches ARP (learn + optional reply, never surfaced upward) and
// IPv4 (parsed and handed to the upper layer). The successfully parsed
// IPv4 datagram, if any, is both returned directly and pushed onto the
// upper-layer ingress queue drained by MaybeReceive — spec.md §6 permits
// either path to be used by callers.
func (ni *NetworkInterface) RecvFrame(frame ethernet.Frame) (ipv4.Datagram, bool) {
	if frame.Header.Dst != ni.ownEth && !frame.Header.Dst.IsBroadcast() {
		return ipv4.Datagram{}, false
	}

	switch frame.Header.Type {
	case ethernet.TypeIPv4:
		dgram, err := ipv4.Parse(frame.Payload)
		if err != nil {
			ni.log.Debug("netiface: dropped unparseable ipv4 datagram", "err", err)
			return ipv4.Datagram{}, false
		}
		ni.ingress = append(ni.ingress, dgram)
		return dgram, true

	case ethernet.TypeARP:
		ni.recvARP(frame)
		return ipv4.Datagram{}, false

	default:
		return ipv4.Datagram{}, false
	}
}

func (ni *NetworkInterface) recvARP(frame ethernet.Frame) {
	msg, err := arp.Parse(frame.Payload)
	if err != nil {
		return // unsupported or malformed; ignore per spec.md §4.1.2.
	}

	flushed := ni.arp.Learn(msg.SenderIP, msg.SenderEth)
	ni.log.Debug("netiface: learned arp mapping", "ip", msg.SenderIP, "eth", msg.SenderEth)

	if msg.Opcode == arp.OpRequest && msg.TargetIP == ni.ownIP {
		reply := arp.Message{
			Opcode:    arp.OpReply,
			SenderEth: ni.ownEth,
			SenderIP:  ni.ownIP,
			TargetEth: frame.Header.Src,
			TargetIP:  msg.SenderIP,
		}
		ni.enqueueARPFrame(frame.Header.Src, reply)
	}

	for _, dgram := range flushed {
		ni.enqueueIPv4Frame(msg.SenderEth, dgram)
	}
}

// Tick implements spec.md §4.1.3: advances the interface's clock and
// ages its ARP table.
func (ni *NetworkInterface) Tick(ms int64) {
	ni.arp.Tick(ms)
}

// MaybeSend implements spec.md §4.1.4: pops the head of the outbound
// frame queue, if any.
func (ni *NetworkInterface) MaybeSend() (ethernet.Frame, bool) {
	if len(ni.outbound) == 0 {
		return ethernet.Frame{}, false
	}
	f := ni.outbound[0]
	ni.outbound = ni.outbound[1:]
	return f, true
}

// MaybeReceive pops the head of the upper-layer ingress queue of
// successfully received IPv4 datagrams, per spec.md §6. The Router
// drains this to obtain datagrams for forwarding.
func (ni *NetworkInterface) MaybeReceive() (ipv4.Datagram, bool) {
	if len(ni.ingress) == 0 {
		return ipv4.Datagram{}, false
	}
	d := ni.ingress[0]
	ni.ingress = ni.ingress[1:]
	return d, true
}

func (ni *NetworkInterface) enqueueIPv4Frame(dstEth ether4.EthernetAddress, dgram ipv4.Datagram) {
	ni.outbound = append(ni.outbound, ethernet.Frame{
		Header: ethernet.Header{
			Dst:  dstEth,
			Src:  ni.ownEth,
			Type: ethernet.TypeIPv4,
		},
		Payload: ipv4.Marshal(dgram),
	})
}

func (ni *NetworkInterface) enqueueARPFrame(dstEth ether4.EthernetAddress, msg arp.Message) {
	ni.outbound = append(ni.outbound, ethernet.Frame{
		Header: ethernet.Header{
			Dst:  dstEth,
			Src:  ni.ownEth,
			Type: ethernet.TypeARP,
		},
		Payload: arp.Marshal(msg),
	})
}
