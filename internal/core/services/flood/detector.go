package flood

import (
	"errors"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// Config tunes the sliding-window flood detector.
type Config struct {
	// Threshold is the frame count inside the window that constitutes an
	// attack against one victim.
	Threshold int

	// Window is the trailing time span counted per victim.
	Window time.Duration

	// AlertDebounce is the minimum interval between successive alerts for
	// the same victim while its count stays at or above Threshold.
	AlertDebounce time.Duration
}

// DefaultConfig returns the tuning the detector ships with: 15 frames in a
// 5 second window, re-alerting at most once per second per victim.
func DefaultConfig() Config {
	return Config{
		Threshold:     15,
		Window:        5 * time.Second,
		AlertDebounce: 1 * time.Second,
	}
}

// Validate performs internal consistency checks on the config.
func (c *Config) Validate() error {
	if c.Threshold <= 0 {
		return errors.New("flood: threshold must be positive")
	}
	if c.Window <= 0 {
		return errors.New("flood: window must be positive")
	}
	if c.AlertDebounce <= 0 {
		return errors.New("flood: alert debounce must be positive")
	}
	return nil
}

// windowEntry is one observed frame inside a victim's trailing window.
type windowEntry struct {
	ts       time.Time
	attacker string
}

// victimState tracks one destination address. Owned exclusively by the
// detector; records live for the whole process (the address space is
// bounded, so no eviction).
type victimState struct {
	window    []windowEntry
	maxCount  int
	lastAlert time.Time // zero = cleared
}

// Detector maintains per-victim sliding windows over deauth frames and
// raises an alert when a victim's window crosses the threshold.
//
// Single-writer: Observe must only be called from the deauth ingest loop.
// The only shared state it touches is the read side of the block ledger.
type Detector struct {
	cfg     Config
	blocks  ports.BlockView
	victims map[string]*victimState
}

// New builds a detector. blocks may be nil when mitigation is disabled;
// every frame then counts.
func New(cfg Config, blocks ports.BlockView) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		cfg:     cfg,
		blocks:  blocks,
		victims: make(map[string]*victimState),
	}, nil
}

// Observe feeds one deauth frame into the victim's window and returns an
// alert when the threshold is crossed, or nil.
//
// Frames from an attacker inside the block cooldown are residual traffic
// from our own mitigation and are ignored entirely. The prune keeps entries
// whose age relative to ts is at most the window span; a negative age (a
// timestamp that went backwards) counts as not-yet-expired, so a confused
// clock can never crash or wipe the window.
func (d *Detector) Observe(destination, attacker string, ts time.Time) *domain.DeauthAlert {
	if d.blocks != nil && d.blocks.IsCoolingDown(attacker, ts) {
		return nil
	}

	vs := d.victims[destination]
	if vs == nil {
		vs = &victimState{}
		d.victims[destination] = vs
	}

	vs.window = append(vs.window, windowEntry{ts: ts, attacker: attacker})
	kept := vs.window[:0]
	for _, e := range vs.window {
		if ts.Sub(e.ts) <= d.cfg.Window {
			kept = append(kept, e)
		}
	}
	vs.window = kept

	count := len(vs.window)
	if count > vs.maxCount {
		vs.maxCount = count
	}

	if count < d.cfg.Threshold {
		// Debounce-per-evaluation: dropping under threshold clears the
		// alert timestamp so the next crossing is never suppressed by a
		// stale cooldown.
		vs.lastAlert = time.Time{}
		return nil
	}

	if !vs.lastAlert.IsZero() && ts.Sub(vs.lastAlert) < d.cfg.AlertDebounce {
		return nil
	}
	vs.lastAlert = ts

	attackerMAC := mostFrequentAttacker(vs.window)
	return domain.NewDeauthAlert(destination, attackerMAC, count, vs.maxCount, d.cfg.Window, ts)
}

// WindowSize reports the live window length for one victim. Zero for
// unknown destinations.
func (d *Detector) WindowSize(destination string) int {
	if vs := d.victims[destination]; vs != nil {
		return len(vs.window)
	}
	return 0
}

// MaxCount reports the running maximum window length seen for one victim.
func (d *Detector) MaxCount(destination string) int {
	if vs := d.victims[destination]; vs != nil {
		return vs.maxCount
	}
	return 0
}

// Victims reports how many destinations have state. Exposed for telemetry.
func (d *Detector) Victims() int {
	return len(d.victims)
}

// mostFrequentAttacker returns the address appearing most often in the
// window. Ties go to the address encountered first, so a burst from one
// spoofed source is always attributed consistently.
func mostFrequentAttacker(window []windowEntry) string {
	counts := make(map[string]int, len(window))
	order := make([]string, 0, 8)
	for _, e := range window {
		if _, seen := counts[e.attacker]; !seen {
			order = append(order, e.attacker)
		}
		counts[e.attacker]++
	}

	best := ""
	bestCount := 0
	for _, addr := range order {
		if counts[addr] > bestCount {
			best = addr
			bestCount = counts[addr]
		}
	}
	return best
}
