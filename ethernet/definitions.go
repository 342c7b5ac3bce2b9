// Package ethernet implements the Ethernet II wire format used to carry
// ARP and IPv4 payloads, per spec.md §6. VLAN tagging is out of scope
// (spec.md non-goals) and is not represented here.
package ethernet

import "github.com/nettap/ether4"

// Type is the EtherType field identifying the payload carried by a frame.
type Type uint16

const (
	TypeIPv4 Type = 0x0800 // IPv4
	TypeARP  Type = 0x0806 // ARP
)

func (t Type) String() string {
	switch t {
	case TypeIPv4:
		return "IPv4"
	case TypeARP:
		return "ARP"
	default:
		return "unknown"
	}
}

// BroadcastAddr returns the all-ones Ethernet broadcast address.
func BroadcastAddr() ether4.EthernetAddress { return ether4.Broadcast }

const sizeHeader = 14
