package sniffer

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// MockSource synthesizes frame traffic for demo runs without wireless
// hardware: steady beacons from a handful of networks, one of them a rogue
// twin, plus periodic deauth flood bursts against a fixed victim.
type MockSource struct {
	deauths chan domain.FrameEvent
	beacons chan domain.FrameEvent
}

var _ ports.FrameSource = (*MockSource)(nil)

// Mock traffic actors.
const (
	mockVictim   = "aa:aa:aa:aa:aa:01"
	mockAttacker = "de:ad:be:ef:00:01"
	mockHomeAP   = "aa:bb:cc:dd:ee:ff"
	mockEvilTwin = "aa:bb:cc:dd:ee:00"
)

// NewMockSource builds the synthetic generator.
func NewMockSource() *MockSource {
	return &MockSource{
		deauths: make(chan domain.FrameEvent, channelSize),
		beacons: make(chan domain.FrameEvent, channelSize),
	}
}

// Start launches the generator loops.
func (m *MockSource) Start(ctx context.Context) error {
	log.Printf("[CAPTURE] mock frame source active")
	go m.generateBeacons(ctx)
	go m.generateDeauths(ctx)
	return nil
}

func (m *MockSource) generateBeacons(ctx context.Context) {
	defer close(m.beacons)

	networks := []struct{ bssid, ssid string }{
		{mockHomeAP, "HomeNet"},
		{mockEvilTwin, "HomeNet"}, // rogue twin
		{"11:22:33:44:55:66", "CafeWifi"},
		{"66:55:44:33:22:11", "DriveByNet"},
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n := networks[rand.Intn(len(networks))]
			select {
			case m.beacons <- domain.NewBeaconEvent(n.bssid, n.ssid, now):
			default:
			}
		}
	}
}

func (m *MockSource) generateDeauths(ctx context.Context) {
	defer close(m.deauths)

	// A 20-frame burst roughly every 15 seconds, enough to cross the
	// default flood threshold each time.
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for i := 0; i < 20; i++ {
				select {
				case <-ctx.Done():
					return
				case m.deauths <- domain.NewDeauthEvent(mockAttacker, mockVictim, time.Now()):
				default:
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// Deauths streams synthetic de-authentication events.
func (m *MockSource) Deauths() <-chan domain.FrameEvent { return m.deauths }

// Beacons streams synthetic beacon events.
func (m *MockSource) Beacons() <-chan domain.FrameEvent { return m.beacons }

// Close is a no-op; the generator stops with its context.
func (m *MockSource) Close() {}
