package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// TrustView is the read side of the trust store, consumed per beacon.
type TrustView interface {
	// Snapshot returns a consistent view of both mappings. The returned
	// snapshot is immutable; readers may hold it across multiple lookups.
	Snapshot() domain.TrustSnapshot
}

// BlockView is the read side of the mitigation cooldown ledger, consulted by
// the flood detector on every deauth frame.
type BlockView interface {
	// IsCoolingDown reports whether addr was blocked recently enough that
	// frames from it should be treated as residual mitigation traffic.
	IsCoolingDown(addr string, now time.Time) bool
}

// TrustRepository persists the current trust snapshot so a restart does not
// lose configuration. Attack history is deliberately not persisted anywhere.
type TrustRepository interface {
	// SaveSnapshot replaces the stored snapshot wholesale.
	SaveSnapshot(ctx context.Context, snap domain.TrustSnapshot) error

	// LoadSnapshot returns the stored snapshot; an empty snapshot and nil
	// error when nothing has been stored yet.
	LoadSnapshot(ctx context.Context) (domain.TrustSnapshot, error)

	// Close releases the underlying database handle.
	Close() error
}

// CredentialStore holds the single uplink credential pair fed in by the
// configuration API and read by the password assessment.
type CredentialStore interface {
	Save(ctx context.Context, cred domain.Credential) error
	Load(ctx context.Context) (domain.Credential, error)
}

// Scanner captures nearby access points for the protocol assessment.
type Scanner interface {
	// Scan runs a capture on iface for roughly the given duration and
	// returns one record per distinct access point seen.
	Scan(ctx context.Context, iface string, d time.Duration) ([]domain.ScanRecord, error)
}
