package block

import (
	"sync"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// Ledger records when each attacker address was last successfully blocked.
// The flood detector consults it on every deauth frame to tell a real
// attacker apart from our own spoofed mitigation traffic, so reads vastly
// outnumber writes.
type Ledger struct {
	cooldown time.Duration

	mu      sync.RWMutex
	records map[string]time.Time
}

// NewLedger builds a ledger with the given cooldown interval. Frames from an
// address blocked less than the cooldown ago are suppressed.
func NewLedger(cooldown time.Duration) *Ledger {
	return &Ledger{
		cooldown: cooldown,
		records:  make(map[string]time.Time),
	}
}

// Record notes a successful mitigation against addr at time t. Timestamps
// only move forward: a stale write (replayed command, confused clock) never
// rewinds an address's cooldown.
func (l *Ledger) Record(addr string, t time.Time) {
	addr = domain.NormalizeMAC(addr)

	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.records[addr]; ok && !t.After(prev) {
		return
	}
	l.records[addr] = t
}

// IsCoolingDown reports whether addr was blocked less than the cooldown ago.
// A record in the future (clock skew) also counts as cooling down.
func (l *Ledger) IsCoolingDown(addr string, now time.Time) bool {
	addr = domain.NormalizeMAC(addr)

	l.mu.RLock()
	rec, ok := l.records[addr]
	l.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(rec) < l.cooldown
}

// LastBlocked returns the recorded mitigation time for addr.
func (l *Ledger) LastBlocked(addr string) (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[domain.NormalizeMAC(addr)]
	return rec, ok
}

// Size reports how many addresses carry a block record.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
