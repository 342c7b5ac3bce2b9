// Package netiface implements NetworkInterface, the single-link ARP
// resolution and Ethernet send/receive pipeline of spec.md §4.1. It owns
// one interface's ARP table, outbound frame queue and upper-layer
// ingress queue, and advances entirely through explicit Tick calls: no
// goroutines, no timers, no blocking I/O.
package netiface

import (
	"errors"
	"log/slog"

	"github.com/nettap/ether4"
)

var (
	errZeroEth = errors.New("netiface: own hardware address must be non-zero")
	errZeroIP  = errors.New("netiface: own IP address must be non-zero")
)

// Config configures a NetworkInterface. Mirrors the teacher's
// Reset(Config)/Configure(Config) convention: validated up front, never
// partially applied.
type Config struct {
	// OwnEthernetAddr is this interface's hardware address.
	OwnEthernetAddr ether4.EthernetAddress
	// OwnIPAddr is this interface's IPv4 address.
	OwnIPAddr ether4.IPAddress
	// Logger receives Debug-level ARP learn/drop diagnostics. A discard
	// logger is used if nil.
	Logger *slog.Logger
}

func (cfg Config) validate() error {
	if cfg.OwnEthernetAddr.IsZero() {
		return errZeroEth
	}
	if cfg.OwnIPAddr == 0 {
		return errZeroIP
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
