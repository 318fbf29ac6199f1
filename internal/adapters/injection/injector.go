package injection

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// interFrameGap spaces the frames of one burst so drivers with shallow
// transmit queues do not silently drop the tail.
const interFrameGap = 2 * time.Millisecond

// DeauthInjector is the mitigation primitive: it transmits bursts of spoofed
// broadcast deauthentication frames. One pcap handle is opened lazily per
// interface and reused across bursts.
type DeauthInjector struct {
	open func(iface string) (PacketInjector, error)

	mu         sync.Mutex
	mechanisms map[string]PacketInjector
	seq        uint16
}

var _ ports.Injector = (*DeauthInjector)(nil)

// NewDeauthInjector returns an injector writing through libpcap.
func NewDeauthInjector() *DeauthInjector {
	return &DeauthInjector{
		open:       NewPcapInjector,
		mechanisms: make(map[string]PacketInjector),
		seq:        uint16(rand.Intn(4096)),
	}
}

// NewDeauthInjectorWith builds an injector over a custom mechanism factory.
// Tests use it to swap in the mock.
func NewDeauthInjectorWith(open func(iface string) (PacketInjector, error)) *DeauthInjector {
	return &DeauthInjector{
		open:       open,
		mechanisms: make(map[string]PacketInjector),
	}
}

// Inject writes count broadcast deauth frames purportedly from target on
// iface. The burst is all-or-nothing from the caller's perspective: the
// first write failure aborts and surfaces, and a cancelled context stops
// the burst between frames.
func (d *DeauthInjector) Inject(ctx context.Context, target, iface string, count int) error {
	targetMAC, err := net.ParseMAC(target)
	if err != nil {
		return fmt.Errorf("parse target address %q: %w", target, err)
	}

	mech, err := d.mechanism(iface)
	if err != nil {
		return err
	}

	telemetry.InjectionsTotal.WithLabelValues(iface, "deauth").Inc()
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		frame, err := SerializeDeauthFrame(BroadcastAddr, targetMAC, ReasonClass3FromNonassoc, d.nextSeq())
		if err != nil {
			return err
		}
		if err := mech.Inject(frame); err != nil {
			telemetry.InjectionErrors.WithLabelValues(iface, "deauth").Inc()
			return fmt.Errorf("write deauth frame %d/%d on %s: %w", i+1, count, iface, err)
		}

		if i < count-1 {
			time.Sleep(interFrameGap)
		}
	}

	log.Printf("[INJECT] sent %d broadcast deauth frames from %s on %s", count, target, iface)
	return nil
}

// Close releases every open interface handle.
func (d *DeauthInjector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for iface, mech := range d.mechanisms {
		mech.Close()
		delete(d.mechanisms, iface)
	}
}

func (d *DeauthInjector) mechanism(iface string) (PacketInjector, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if mech, ok := d.mechanisms[iface]; ok {
		return mech, nil
	}
	mech, err := d.open(iface)
	if err != nil {
		return nil, fmt.Errorf("open injection mechanism on %s: %w", iface, err)
	}
	d.mechanisms[iface] = mech
	return mech, nil
}

func (d *DeauthInjector) nextSeq() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq = (d.seq + 1) & 0x0fff
	return d.seq
}
