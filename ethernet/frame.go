package ethernet

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nettap/ether4"
)

var errShort = errors.New("ethernet: buffer shorter than 14-byte header")

// Header is the decoded form of an Ethernet II header: destination,
// source and EtherType. It is carried by Frame below, the value type that
// NetworkInterface queues; rawFrame is the wire (byte-accessor) view used
// to marshal/parse a Header plus its payload.
type Header struct {
	Dst  ether4.EthernetAddress
	Src  ether4.EthernetAddress
	Type Type
}

// Frame is an EthernetFrame as described by spec.md §3: a Header plus an
// opaque serialized payload.
type Frame struct {
	Header  Header
	Payload []byte
}

// NewFrame returns a byte-accessor rawFrame view over buf. An error is
// returned if buf is shorter than the 14-byte Ethernet II header.
func NewFrame(buf []byte) (rawFrame, error) {
	if len(buf) < sizeHeader {
		return rawFrame{}, errShort
	}
	return rawFrame{buf: buf}, nil
}

// rawFrame is a zero-copy byte-accessor view of an Ethernet II frame used
// only during marshal/unmarshal; NetworkInterface and Router operate on
// the value type Frame above.
type rawFrame struct {
	buf []byte
}

func (efrm rawFrame) DestinationHardwareAddr() *ether4.EthernetAddress {
	return (*ether4.EthernetAddress)(efrm.buf[0:6])
}

func (efrm rawFrame) SourceHardwareAddr() *ether4.EthernetAddress {
	return (*ether4.EthernetAddress)(efrm.buf[6:12])
}

func (efrm rawFrame) EtherType() Type {
	return Type(binary.BigEndian.Uint16(efrm.buf[12:14]))
}

func (efrm rawFrame) SetEtherType(t Type) {
	binary.BigEndian.PutUint16(efrm.buf[12:14], uint16(t))
}

func (efrm rawFrame) Payload() []byte { return efrm.buf[sizeHeader:] }

// ValidateSize checks buf against the 14-byte header requirement,
// accumulating any error onto v rather than stopping at the first one,
// matching the teacher's ValidateSize convention.
func (efrm rawFrame) ValidateSize(v *ether4.Validator) {
	if len(efrm.buf) < sizeHeader {
		v.AddError(errShort)
	}
}

// Marshal serializes f (header + payload) into a newly allocated buffer.
func Marshal(f Frame) []byte {
	buf := make([]byte, sizeHeader+len(f.Payload))
	efrm, _ := NewFrame(buf)
	*efrm.DestinationHardwareAddr() = f.Header.Dst
	*efrm.SourceHardwareAddr() = f.Header.Src
	efrm.SetEtherType(f.Header.Type)
	copy(efrm.Payload(), f.Payload)
	return buf
}

// Parse decodes buf into a Frame. The returned Frame's Payload aliases buf.
func Parse(buf []byte) (Frame, error) {
	var v ether4.Validator
	rawFrame{buf: buf}.ValidateSize(&v)
	if v.HasError() {
		return Frame{}, v.ErrPop()
	}
	efrm, _ := NewFrame(buf)
	return Frame{
		Header: Header{
			Dst:  *efrm.DestinationHardwareAddr(),
			Src:  *efrm.SourceHardwareAddr(),
			Type: efrm.EtherType(),
		},
		Payload: efrm.Payload(),
	}, nil
}

func (f Frame) String() string {
	return fmt.Sprintf("ethernet src=%s dst=%s type=%s len=%d", f.Header.Src, f.Header.Dst, f.Header.Type, len(f.Payload))
}
