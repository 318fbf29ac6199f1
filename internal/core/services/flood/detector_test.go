package flood

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLedger is an inline BlockView for detector tests.
type stubLedger struct {
	blocked map[string]bool
}

func (s *stubLedger) IsCoolingDown(addr string, _ time.Time) bool {
	return s.blocked[addr]
}

func newDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	return d
}

func TestDetector_BurstRaisesSingleAlert(t *testing.T) {
	d := newDetector(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	victim := "ff:ff:ff:ff:ff:ff"
	attacker := "de:ad:be:ef:00:01"

	// 16 frames from the same attacker inside 4 seconds. The 15th crosses
	// the threshold; the 16th lands inside the one-second debounce.
	alerts := 0
	for i := 0; i < 16; i++ {
		ts := base.Add(time.Duration(i) * 250 * time.Millisecond)
		if alert := d.Observe(victim, attacker, ts); alert != nil {
			alerts++
			assert.Equal(t, attacker, alert.MostFrequentAttacker)
			assert.Equal(t, victim, alert.Destination)
			assert.Equal(t, 15, alert.FrameCount)
			assert.Equal(t, 15, alert.MaxFrameCount)
			assert.Equal(t, 5, alert.TimeWindow)
			assert.True(t, alert.Spoofed)
		}
	}

	assert.Equal(t, 1, alerts, "a single burst should produce exactly one alert")
}

func TestDetector_WindowNeverHoldsExpiredEntries(t *testing.T) {
	d := newDetector(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	victim := "aa:aa:aa:aa:aa:01"

	// One frame per second. The window must hold only entries with age <= 5s
	// after every single Observe call.
	for i := 0; i <= 10; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		d.Observe(victim, "bb:bb:bb:bb:bb:01", ts)

		want := i + 1
		if want > 6 {
			want = 6 // ages 0..5 inclusive fit the 5s window
		}
		require.Equal(t, want, d.WindowSize(victim), "window size after frame %d", i)
	}

	// A frame far in the future empties everything except itself.
	d.Observe(victim, "bb:bb:bb:bb:bb:01", base.Add(time.Hour))
	assert.Equal(t, 1, d.WindowSize(victim))
}

func TestDetector_BlockedAttackerIsIgnored(t *testing.T) {
	ledger := &stubLedger{blocked: map[string]bool{"de:ad:be:ef:00:01": true}}
	d, err := New(DefaultConfig(), ledger)
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	victim := "aa:aa:aa:aa:aa:02"

	// A full-strength burst from a blocked attacker must neither count nor
	// alert: it is residual traffic from our own mitigation.
	for i := 0; i < 30; i++ {
		ts := base.Add(time.Duration(i) * 100 * time.Millisecond)
		alert := d.Observe(victim, "de:ad:be:ef:00:01", ts)
		require.Nil(t, alert)
	}
	assert.Equal(t, 0, d.WindowSize(victim), "blocked frames must not enter the window")

	// A different attacker against the same victim still counts.
	for i := 0; i < 15; i++ {
		ts := base.Add(3*time.Second + time.Duration(i)*100*time.Millisecond)
		if alert := d.Observe(victim, "de:ad:be:ef:00:02", ts); alert != nil {
			assert.Equal(t, "de:ad:be:ef:00:02", alert.MostFrequentAttacker)
			return
		}
	}
	t.Fatal("unblocked attacker never triggered an alert")
}

func TestDetector_ReAlertsAfterDebounce(t *testing.T) {
	d := newDetector(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	victim := "aa:aa:aa:aa:aa:03"
	attacker := "de:ad:be:ef:00:03"

	// A sustained flood: one frame every 100ms for 3 seconds.
	var alertTimes []time.Time
	for i := 0; i < 30; i++ {
		ts := base.Add(time.Duration(i) * 100 * time.Millisecond)
		if alert := d.Observe(victim, attacker, ts); alert != nil {
			alertTimes = append(alertTimes, ts)
		}
	}

	require.Len(t, alertTimes, 2, "a 3s sustained flood re-alerts once per second")
	assert.GreaterOrEqual(t, alertTimes[1].Sub(alertTimes[0]), time.Second)
}

func TestDetector_DebounceClearedWhenCountDips(t *testing.T) {
	d := newDetector(t)
	base := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	victim := "aa:aa:aa:aa:aa:04"
	attacker := "de:ad:be:ef:00:04"

	// Cross the threshold once.
	var first time.Time
	for i := 0; i < 15; i++ {
		ts := base.Add(time.Duration(i) * 10 * time.Millisecond)
		if alert := d.Observe(victim, attacker, ts); alert != nil {
			first = ts
		}
	}
	require.False(t, first.IsZero(), "threshold crossing must alert")

	// A lone frame far ahead prunes the window below threshold, which must
	// clear the per-victim alert timestamp.
	d.Observe(victim, attacker, base.Add(10*time.Second))

	// Clock steps backwards: 14 frames stamped only 360ms after the first
	// alert. The earlier pruned-out dip cleared the debounce, so this
	// crossing alerts even though it is inside the nominal one-second gap.
	reAlerted := false
	for i := 0; i < 14; i++ {
		ts := base.Add(500 * time.Millisecond)
		if alert := d.Observe(victim, attacker, ts); alert != nil {
			reAlerted = true
		}
	}
	assert.True(t, reAlerted, "dip below threshold must clear the debounce")
}

func TestDetector_NegativeAgeEntriesSurvivePrune(t *testing.T) {
	d := newDetector(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	victim := "aa:aa:aa:aa:aa:05"

	d.Observe(victim, "bb:bb:bb:bb:bb:05", base.Add(time.Minute))
	// The second frame is stamped a minute earlier. The first entry's age is
	// negative relative to it and must be treated as not-yet-expired.
	d.Observe(victim, "bb:bb:bb:bb:bb:05", base)

	assert.Equal(t, 2, d.WindowSize(victim))
}

func TestDetector_TieBreaksOnFirstEncountered(t *testing.T) {
	d := newDetector(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	victim := "aa:aa:aa:aa:aa:06"
	a := "de:ad:be:ef:00:0a"
	b := "de:ad:be:ef:00:0b"

	// Alternate B,A,B,A… so both end tied; B was seen first.
	mostFrequent := ""
	for i := 0; i < 16; i++ {
		attacker := b
		if i%2 == 1 {
			attacker = a
		}
		ts := base.Add(time.Duration(i) * 100 * time.Millisecond)
		if got := d.Observe(victim, attacker, ts); got != nil && mostFrequent == "" {
			mostFrequent = got.MostFrequentAttacker
		}
	}

	require.NotEmpty(t, mostFrequent)
	assert.Equal(t, b, mostFrequent, "ties must go to the first-encountered attacker")
}

func TestDetector_MaxCountTracksPeak(t *testing.T) {
	d := newDetector(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	victim := "aa:aa:aa:aa:aa:07"
	attacker := "de:ad:be:ef:00:07"

	// Flood to a peak of 25 frames in-window.
	for i := 0; i < 25; i++ {
		d.Observe(victim, attacker, base.Add(time.Duration(i)*100*time.Millisecond))
	}
	require.Equal(t, 25, d.MaxCount(victim))

	// Let the window drain, then flood again to a lower peak: the reported
	// maximum must still be the historical one.
	quiet := base.Add(20 * time.Second)
	frameCount, maxFrameCount := 0, 0
	for i := 0; i < 15; i++ {
		if got := d.Observe(victim, attacker, quiet.Add(time.Duration(i)*100*time.Millisecond)); got != nil {
			frameCount = got.FrameCount
			maxFrameCount = got.MaxFrameCount
		}
	}

	require.NotZero(t, frameCount, "second flood must alert")
	assert.Equal(t, 15, frameCount)
	assert.Equal(t, 25, maxFrameCount)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Threshold = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Window = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.AlertDebounce = -time.Second
	assert.Error(t, bad.Validate())
}
