package arp

import "github.com/nettap/ether4"

// resolvedEntry is an ip -> (eth, learned_at_ms) mapping, per spec.md §3.
type resolvedEntry struct {
	eth       ether4.EthernetAddress
	learnedAt int64
}

// Table is the ARP resolver state machine of spec.md §4.1.5: it tracks,
// per next-hop IP, whether the mapping is UNKNOWN, PENDING (a request was
// sent and a reply is awaited) or RESOLVED (a mapping was learned), ages
// both tables on Tick, and holds the waiting queue of datagrams held up
// behind an unresolved IP.
//
// D is the type of the queued payload (typically an IPv4 datagram); the
// table itself never inspects D's contents, it only orders and counts
// them, so it is generic rather than importing the ipv4 package directly.
type Table[D any] struct {
	now int64

	resolved map[ether4.IPAddress]resolvedEntry
	pending  map[ether4.IPAddress]int64 // ip -> last_request_sent_at_ms
	waiting  map[ether4.IPAddress][]D
}

// NewTable returns a ready-to-use Table with its clock at zero.
func NewTable[D any]() *Table[D] {
	return &Table[D]{
		resolved: make(map[ether4.IPAddress]resolvedEntry),
		pending:  make(map[ether4.IPAddress]int64),
		waiting:  make(map[ether4.IPAddress][]D),
	}
}

// Now returns the table's current clock value in milliseconds.
func (t *Table[D]) Now() int64 { return t.now }

// Resolve looks up a valid resolved mapping for ip. ok is false if there
// is no entry, or the entry has aged past the 30s resolved timeout.
func (t *Table[D]) Resolve(ip ether4.IPAddress) (eth ether4.EthernetAddress, ok bool) {
	e, found := t.resolved[ip]
	if !found || t.now-e.learnedAt > resolvedTimeoutMs {
		return ether4.EthernetAddress{}, false
	}
	return e.eth, true
}

// NeedsRequest reports whether a new ARP request should be transmitted
// for ip: true when there is no pending entry, or the existing one has
// aged past the 5s pending timeout. It does not itself record anything;
// callers that decide to send a request must follow up with
// MarkRequested.
func (t *Table[D]) NeedsRequest(ip ether4.IPAddress) bool {
	requestedAt, found := t.pending[ip]
	return !found || t.now-requestedAt > pendingTimeoutMs
}

// MarkRequested records that an ARP request for ip was just sent at the
// table's current time.
func (t *Table[D]) MarkRequested(ip ether4.IPAddress) {
	t.pending[ip] = t.now
}

// Enqueue appends d to the waiting queue for ip, preserving FIFO order.
func (t *Table[D]) Enqueue(ip ether4.IPAddress, d D) {
	t.waiting[ip] = append(t.waiting[ip], d)
}

// Learn records a resolved mapping for ip learned right now, removes any
// pending entry for ip (maintaining the resolved/pending mutual
// exclusion invariant), and returns the datagrams that were waiting on
// that IP, in their original enqueue order. The waiting queue for ip is
// emptied.
func (t *Table[D]) Learn(ip ether4.IPAddress, eth ether4.EthernetAddress) (flushed []D) {
	t.resolved[ip] = resolvedEntry{eth: eth, learnedAt: t.now}
	delete(t.pending, ip)
	flushed = t.waiting[ip]
	delete(t.waiting, ip)
	return flushed
}

// Tick advances the table's clock by ms and ages both tables:
//   - resolved entries older than 30s are dropped;
//   - pending entries older than 5s are dropped, along with the entire
//     waiting queue for that IP (spec.md §9: the original source only
//     dropped one queued datagram per expiry; that is treated as a bug
//     and not reproduced here).
func (t *Table[D]) Tick(ms int64) {
	t.now += ms

	for ip, e := range t.resolved {
		if t.now-e.learnedAt > resolvedTimeoutMs {
			delete(t.resolved, ip)
		}
	}
	for ip, requestedAt := range t.pending {
		if t.now-requestedAt > pendingTimeoutMs {
			delete(t.pending, ip)
			delete(t.waiting, ip)
		}
	}
}
