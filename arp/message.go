package arp

import (
	"encoding/binary"
	"fmt"

	"github.com/nettap/ether4"
	"github.com/nettap/ether4/ethernet"
)

// Message is the decoded form of an ARP packet restricted to the
// IPv4-over-Ethernet shape spec.md §6 defines. SenderEth/SenderIP and
// TargetEth/TargetIP mirror the wire "sender"/"target" address pairs.
type Message struct {
	Opcode    Operation
	SenderEth ether4.EthernetAddress
	SenderIP  ether4.IPAddress
	TargetEth ether4.EthernetAddress
	TargetIP  ether4.IPAddress
}

// rawMessage is a zero-copy byte-accessor view used only during
// marshal/parse, mirroring the teacher's Frame-over-buf idiom.
type rawMessage struct {
	buf []byte
}

func (m rawMessage) hwType() uint16        { return binary.BigEndian.Uint16(m.buf[0:2]) }
func (m rawMessage) protoType() ethernet.Type {
	return ethernet.Type(binary.BigEndian.Uint16(m.buf[2:4]))
}
func (m rawMessage) hwLen() uint8    { return m.buf[4] }
func (m rawMessage) protoLen() uint8 { return m.buf[5] }
func (m rawMessage) opcode() Operation {
	return Operation(binary.BigEndian.Uint16(m.buf[6:8]))
}

// supported reports whether the message matches the only shape this
// package handles: Ethernet hardware addresses and IPv4 protocol
// addresses, per spec.md §4.1.2 ("Ignore if unsupported").
func (m rawMessage) supported() bool {
	return m.hwType() == hwTypeEthernet && m.hwLen() == 6 &&
		m.protoType() == ethernet.TypeIPv4 && m.protoLen() == 4
}

// ValidateSize checks buf's length against the fixed IPv4-over-Ethernet
// ARP message size, accumulating the error onto v rather than returning
// immediately, matching the teacher's ValidateSize convention.
func (m rawMessage) ValidateSize(v *ether4.Validator) {
	if len(m.buf) < sizeIPv4 {
		v.AddError(errShort)
	}
}

// Marshal serializes msg into a newly allocated IPv4-over-Ethernet ARP
// wire message.
func Marshal(msg Message) []byte {
	buf := make([]byte, sizeIPv4)
	binary.BigEndian.PutUint16(buf[0:2], hwTypeEthernet)
	binary.BigEndian.PutUint16(buf[2:4], uint16(ethernet.TypeIPv4))
	buf[4] = 6
	buf[5] = 4
	binary.BigEndian.PutUint16(buf[6:8], uint16(msg.Opcode))
	senderIP := msg.SenderIP.Bytes()
	targetIP := msg.TargetIP.Bytes()
	copy(buf[8:14], msg.SenderEth[:])
	copy(buf[14:18], senderIP[:])
	copy(buf[18:24], msg.TargetEth[:])
	copy(buf[24:28], targetIP[:])
	return buf
}

// Parse decodes buf into a Message. ErrUnsupported (wrapped) is returned
// for any ARP message that isn't IPv4-over-Ethernet; spec.md §4.1.2
// requires these to be ignored rather than treated as a parse failure.
func Parse(buf []byte) (Message, error) {
	raw := rawMessage{buf: buf}
	var v ether4.Validator
	raw.ValidateSize(&v)
	if v.HasError() {
		return Message{}, fmt.Errorf("%w: %w", ether4.ErrShortBuffer, v.ErrPop())
	}
	if !raw.supported() {
		return Message{}, fmt.Errorf("%w: %w", ether4.ErrUnsupported, errUnsupported)
	}
	return Message{
		Opcode:    raw.opcode(),
		SenderEth: ether4.EthernetAddress(raw.buf[8:14]),
		SenderIP:  ether4.IPAddressFrom4([4]byte(raw.buf[14:18])),
		TargetEth: ether4.EthernetAddress(raw.buf[18:24]),
		TargetIP:  ether4.IPAddressFrom4([4]byte(raw.buf[24:28])),
	}, nil
}

func (m Message) String() string {
	return fmt.Sprintf("ARP %s sender=(%s,%s) target=(%s,%s)", m.Opcode, m.SenderEth, m.SenderIP, m.TargetEth, m.TargetIP)
}
