package trust

import (
	"sync"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// Store holds the authoritative trusted-network configuration. Writes come
// from the command context, reads from the beacon loop; the two mappings are
// swapped together under one lock so a reader can never observe personal
// from one update and public from another.
//
// The snapshot's maps are treated as immutable after the swap: ApplyUpdate
// always builds fresh maps and readers only ever look them up.
type Store struct {
	mu   sync.RWMutex
	snap domain.TrustSnapshot
}

// NewStore returns an empty store; every SSID is unrecognized until the
// first trust update arrives.
func NewStore() *Store {
	return &Store{
		snap: domain.TrustSnapshot{
			Personal: map[string][]string{},
			Public:   map[string][]string{},
		},
	}
}

// Snapshot returns the current consistent view of both mappings.
func (s *Store) Snapshot() domain.TrustSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// ApplyUpdate replaces each mapping the command carries, wholesale. A field
// the command omits keeps its previous value; a command carrying neither is
// a no-op. Returns whether anything was replaced, so callers can skip
// persistence on no-ops. Replaying the same command is idempotent.
func (s *Store) ApplyUpdate(cmd domain.TrustUpdateCommand) bool {
	if cmd.Empty() {
		return false
	}

	next := domain.TrustSnapshot{}
	if cmd.Personal != nil {
		next.Personal = domain.IngestPersonal(cmd.Personal)
	}
	if cmd.Public != nil {
		next.Public = domain.IngestPublic(cmd.Public)
	}

	s.mu.Lock()
	if next.Personal == nil {
		next.Personal = s.snap.Personal
	}
	if next.Public == nil {
		next.Public = s.snap.Public
	}
	s.snap = next
	s.mu.Unlock()
	return true
}

// Seed loads an already-normalized snapshot, used at startup to restore
// persisted state before any command traffic arrives. Nil maps are replaced
// with empty ones so lookups never touch a nil map.
func (s *Store) Seed(snap domain.TrustSnapshot) {
	if snap.Personal == nil {
		snap.Personal = map[string][]string{}
	}
	if snap.Public == nil {
		snap.Public = map[string][]string{}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
