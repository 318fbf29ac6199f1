package sniffer

import (
	"context"
	"fmt"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// mgmtFilter keeps the kernel from handing us anything but the two frame
// classes the engine consumes.
const mgmtFilter = "type mgt subtype deauth or type mgt subtype beacon"

const (
	snapshotLen = 65536
	channelSize = 256
)

// PcapSource captures 802.11 management frames from a monitor-mode interface
// and classifies them into per-class event channels. Both channels close
// when capture ends, which is what drains the ingest loops at shutdown.
type PcapSource struct {
	iface   string
	handle  *pcap.Handle
	deauths chan domain.FrameEvent
	beacons chan domain.FrameEvent
}

var _ ports.FrameSource = (*PcapSource)(nil)

// NewPcapSource opens the interface and installs the management-frame
// filter. The interface must already be in monitor mode; see EnableMonitor.
func NewPcapSource(iface string) (*PcapSource, error) {
	handle, err := pcap.OpenLive(iface, snapshotLen, true, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("open capture on %s: %w", iface, err)
	}
	if err := handle.SetBPFFilter(mgmtFilter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("set capture filter on %s: %w", iface, err)
	}

	return &PcapSource{
		iface:   iface,
		handle:  handle,
		deauths: make(chan domain.FrameEvent, channelSize),
		beacons: make(chan domain.FrameEvent, channelSize),
	}, nil
}

// Start launches the capture loop. It returns immediately; the loop runs
// until the context is cancelled or the handle closes.
func (s *PcapSource) Start(ctx context.Context) error {
	source := gopacket.NewPacketSource(s.handle, s.handle.LinkType())
	source.NoCopy = true

	go func() {
		defer close(s.deauths)
		defer close(s.beacons)

		log.Printf("[CAPTURE] listening on %s (%s)", s.iface, mgmtFilter)
		for {
			select {
			case <-ctx.Done():
				return
			case pkt, ok := <-source.Packets():
				if !ok {
					log.Printf("[CAPTURE] capture on %s ended", s.iface)
					return
				}
				s.handlePacket(ctx, pkt)
			}
		}
	}()
	return nil
}

// handlePacket classifies and forwards one frame. A decoder panic on a
// malformed frame is recovered so a single hostile packet cannot kill the
// capture loop. A full channel drops the frame; detection is best-effort,
// not an audit log.
func (s *PcapSource) handlePacket(ctx context.Context, pkt gopacket.Packet) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.PanicsRecovered.WithLabelValues("capture").Inc()
			log.Printf("[CAPTURE] recovered decode panic: %v", r)
		}
	}()

	event, ok := Classify(pkt)
	if !ok {
		telemetry.FramesDropped.WithLabelValues("unclassified").Inc()
		return
	}

	var out chan domain.FrameEvent
	switch event.Class {
	case domain.FrameDeauth:
		out = s.deauths
	case domain.FrameBeacon:
		out = s.beacons
	default:
		return
	}

	select {
	case out <- event:
		telemetry.FramesProcessed.WithLabelValues(string(event.Class)).Inc()
	case <-ctx.Done():
	default:
		telemetry.FramesDropped.WithLabelValues("backpressure").Inc()
	}
}

// Deauths streams de-authentication frame events.
func (s *PcapSource) Deauths() <-chan domain.FrameEvent { return s.deauths }

// Beacons streams beacon frame events.
func (s *PcapSource) Beacons() <-chan domain.FrameEvent { return s.beacons }

// Close releases the capture handle, which also ends the capture loop.
func (s *PcapSource) Close() {
	s.handle.Close()
}

// DecodePacket turns raw link-layer bytes into a packet starting at the
// RadioTap header. Kept as a helper so tests and replay tooling classify
// exactly the way the live loop does.
func DecodePacket(raw []byte) gopacket.Packet {
	return gopacket.NewPacket(raw, layers.LayerTypeRadioTap, gopacket.Default)
}
