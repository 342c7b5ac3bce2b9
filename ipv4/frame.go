package ipv4

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nettap/ether4"
)

var (
	errShort     = errors.New("ipv4: buffer shorter than header's declared length")
	errBadIHL    = errors.New("ipv4: IHL field < 5")
	errBadLength = errors.New("ipv4: total length exceeds buffer")
)

// Header is the decoded form of an IPv4 header. Checksum is the value
// read off the wire by Parse; Marshal always recomputes it from the
// other fields rather than trusting a caller-supplied value, so that
// decrementing TTL and re-serializing (spec.md §3's "a mutator that
// decrements TTL must invalidate and recompute the checksum") falls out
// for free instead of requiring callers to remember to call anything.
type Header struct {
	Src, Dst ether4.IPAddress
	TTL      uint8
	ID       uint16
	Protocol ether4.IPProto
	ToS      ToS
	Flags    Flags
	Checksum uint16
}

// Datagram is the InternetDatagram of spec.md §3: an IPv4 header plus an
// opaque payload.
type Datagram struct {
	Header  Header
	Payload []byte
}

// DecrementTTL decrements the datagram's TTL by one, unless it is already
// zero, and reports whether the result is still >= 1. A TTL of 1 is
// decremented to 0 and reported as false; the router drops such a
// datagram instead of forwarding it. It does not touch Checksum; Marshal
// recomputes the checksum unconditionally.
func (d *Datagram) DecrementTTL() (ok bool) {
	if d.Header.TTL == 0 {
		return false
	}
	d.Header.TTL--
	return d.Header.TTL >= 1
}

// rawFrame is a zero-copy byte-accessor view of an IPv4 header+payload
// buffer, used only by Marshal/Parse.
type rawFrame struct{ buf []byte }

func (f rawFrame) ihl() uint8        { return f.buf[0] & 0xf }
func (f rawFrame) totalLength() int  { return int(binary.BigEndian.Uint16(f.buf[2:4])) }
func (f rawFrame) headerLength() int { return int(f.ihl()) * 4 }

// ValidateSize checks the header/total-length fields against the actual
// buffer, accumulating errors onto v rather than stopping at the first
// one, matching the teacher's ValidateSize convention.
func (f rawFrame) ValidateSize(v *ether4.Validator) {
	if len(f.buf) < sizeHeader {
		v.AddError(errShort)
		return
	}
	if f.ihl() < 5 {
		v.AddError(errBadIHL)
	}
	tl := f.totalLength()
	if tl < f.headerLength() || tl > len(f.buf) {
		v.AddError(errBadLength)
	}
}

// Marshal serializes d into a newly allocated 20-byte-header IPv4
// datagram (no options), computing a fresh header checksum.
func Marshal(d Datagram) []byte {
	totalLen := sizeHeader + len(d.Payload)
	buf := make([]byte, totalLen)

	buf[0] = 4<<4 | 5 // version=4, IHL=5 (20-byte header, no options)
	buf[1] = byte(d.Header.ToS)
	binary.BigEndian.PutUint16(buf[2:4], uint16(totalLen))
	binary.BigEndian.PutUint16(buf[4:6], d.Header.ID)
	binary.BigEndian.PutUint16(buf[6:8], uint16(d.Header.Flags))
	buf[8] = d.Header.TTL
	buf[9] = byte(d.Header.Protocol)
	// buf[10:12] checksum left zero for the calculation below.
	src := d.Header.Src.Bytes()
	dst := d.Header.Dst.Bytes()
	copy(buf[12:16], src[:])
	copy(buf[16:20], dst[:])

	var crc ether4.CRC791
	crc.WriteEven(buf[0:20])
	binary.BigEndian.PutUint16(buf[10:12], crc.Sum16())

	copy(buf[sizeHeader:], d.Payload)
	return buf
}

// Parse decodes buf into a Datagram. It validates the declared header and
// total lengths against the buffer and the header checksum; any failure
// is reported so callers can silently drop the frame per spec.md §7.
// The returned Datagram's Payload aliases buf.
func Parse(buf []byte) (Datagram, error) {
	var v ether4.Validator
	f := rawFrame{buf: buf}
	f.ValidateSize(&v)
	if v.HasError() {
		return Datagram{}, fmt.Errorf("%w: %w", ether4.ErrShortBuffer, v.ErrPop())
	}
	hlen := f.headerLength()
	totalLen := f.totalLength()

	var crc ether4.CRC791
	crc.WriteEven(buf[0:hlen])
	if crc.Sum16() != 0 {
		return Datagram{}, fmt.Errorf("%w", ether4.ErrBadChecksum)
	}

	return Datagram{
		Header: Header{
			Src:      ether4.IPAddressFrom4([4]byte(buf[12:16])),
			Dst:      ether4.IPAddressFrom4([4]byte(buf[16:20])),
			TTL:      buf[8],
			ID:       binary.BigEndian.Uint16(buf[4:6]),
			Protocol: ether4.IPProto(buf[9]),
			ToS:      ToS(buf[1]),
			Flags:    Flags(binary.BigEndian.Uint16(buf[6:8])),
			Checksum: binary.BigEndian.Uint16(buf[10:12]),
		},
		Payload: buf[hlen:totalLen],
	}, nil
}

func (d Datagram) String() string {
	return fmt.Sprintf("IPv4 src=%s dst=%s ttl=%d proto=%d len=%d", d.Header.Src, d.Header.Dst, d.Header.TTL, d.Header.Protocol, sizeHeader+len(d.Payload))
}
