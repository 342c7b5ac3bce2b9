package ether4

import "errors"

// Sentinel errors shared by the ethernet/arp/ipv4 wire codecs. Call sites
// wrap these with fmt.Errorf("%w: ...") to add context without losing
// errors.Is matching.
var (
	ErrShortBuffer = errors.New("ether4: buffer too short for frame")
	ErrBadChecksum = errors.New("ether4: invalid checksum")
	ErrUnsupported = errors.New("ether4: unsupported frame fields")
	ErrNotForUs    = errors.New("ether4: frame not addressed to this interface")
)
