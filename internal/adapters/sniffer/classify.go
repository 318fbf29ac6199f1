package sniffer

import (
	"time"
	"unicode/utf8"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// Classify maps one captured packet onto the engine's FrameEvent variants.
// The second return is false for anything that is not a deauth or beacon
// management frame; the BPF filter should already exclude those, but drivers
// under load occasionally leak unrelated frames through.
func Classify(pkt gopacket.Packet) (domain.FrameEvent, bool) {
	dot11Layer := pkt.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		return domain.FrameEvent{}, false
	}
	dot11 := dot11Layer.(*layers.Dot11)

	ts := pkt.Metadata().Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	switch dot11.Type {
	case layers.Dot11TypeMgmtDeauthentication:
		// Address2 is the (trivially spoofable) sender, Address1 the victim.
		return domain.NewDeauthEvent(dot11.Address2.String(), dot11.Address1.String(), ts), true

	case layers.Dot11TypeMgmtBeacon:
		return domain.NewBeaconEvent(dot11.Address2.String(), beaconSSID(pkt), ts), true

	default:
		return domain.FrameEvent{}, false
	}
}

// beaconSSID extracts the SSID information element. An absent element, a
// hidden (zero-length) SSID or undecodable bytes all map to the sentinel so
// classification continues instead of dropping the frame.
func beaconSSID(pkt gopacket.Packet) string {
	for _, layer := range pkt.Layers() {
		ie, ok := layer.(*layers.Dot11InformationElement)
		if !ok || ie.ID != layers.Dot11InformationElementIDSSID {
			continue
		}
		if len(ie.Info) == 0 || !utf8.Valid(ie.Info) {
			return domain.SSIDUnknown
		}
		return string(ie.Info)
	}
	return domain.SSIDUnknown
}
