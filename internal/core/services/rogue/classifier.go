package rogue

import (
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// pairKey identifies one (ssid, bssid) combination for alert dedup.
type pairKey struct {
	ssid  string
	bssid string
}

// Classifier checks every observed beacon against the trust store and raises
// rogue alerts for impersonated networks. Each (ssid, bssid) pair alerts at
// most once per process lifetime; SSIDs matching neither mapping accumulate
// until the terminal flush.
//
// Single-writer: Observe runs only on the beacon ingest loop, and Flush only
// after that loop has stopped, so no internal locking is needed.
type Classifier struct {
	trust        ports.TrustView
	alerted      map[pairKey]struct{}
	unrecognized map[string]struct{}
	flushed      bool
}

// New builds a classifier reading trust configuration from the given view.
func New(trust ports.TrustView) *Classifier {
	return &Classifier{
		trust:        trust,
		alerted:      make(map[pairKey]struct{}),
		unrecognized: make(map[string]struct{}),
	}
}

// Observe classifies one beacon and returns a rogue alert, or nil. The ssid
// is expected raw; normalization happens here so every comparison sees
// canonical text. Timestamps are accepted for interface symmetry with the
// flood detector; classification itself is time-independent.
func (c *Classifier) Observe(ssid, bssid string, _ time.Time) domain.Alert {
	ssid = domain.NormalizeSSID(ssid)
	bssid = domain.NormalizeMAC(bssid)

	snap := c.trust.Snapshot()

	if allowed, ok := snap.Personal[ssid]; ok {
		if containsString(allowed, bssid) {
			return nil
		}
		if !c.markAlerted(ssid, bssid) {
			return nil
		}
		return domain.NewRoguePersonalAlert(ssid, bssid, allowed)
	}

	if prefixes, ok := snap.Public[ssid]; ok {
		prefix := domain.OUIPrefix(bssid)
		if containsString(prefixes, prefix) {
			return nil
		}
		if !c.markAlerted(ssid, bssid) {
			return nil
		}
		return domain.NewRoguePublicAlert(ssid, bssid, prefix, prefixes)
	}

	if ssid != "" {
		c.unrecognized[ssid] = struct{}{}
	}
	return nil
}

// markAlerted records the pair and reports whether it was new.
func (c *Classifier) markAlerted(ssid, bssid string) bool {
	key := pairKey{ssid: ssid, bssid: bssid}
	if _, seen := c.alerted[key]; seen {
		return false
	}
	c.alerted[key] = struct{}{}
	return true
}

// Flush emits the accumulated unrecognized SSIDs as one batch alert, or nil
// when there is nothing to report. It is a terminal one-shot: repeated calls
// after the first return nil.
func (c *Classifier) Flush() domain.Alert {
	if c.flushed || len(c.unrecognized) == 0 {
		c.flushed = true
		return nil
	}
	c.flushed = true

	ssids := make([]string, 0, len(c.unrecognized))
	for ssid := range c.unrecognized {
		ssids = append(ssids, ssid)
	}
	return domain.NewUnrecognisedAlert(ssids)
}

// UnrecognizedCount reports how many distinct unknown SSIDs are pending
// flush. Exposed for telemetry.
func (c *Classifier) UnrecognizedCount() int {
	return len(c.unrecognized)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
