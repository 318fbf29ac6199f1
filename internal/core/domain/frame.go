package domain

import (
	"fmt"
	"time"
)

// SSIDUnknown is the sentinel used when beacon SSID bytes cannot be decoded.
// It still participates in classification so a mangled-but-repeated rogue
// network shows up in the unrecognised flush instead of vanishing.
const SSIDUnknown = "<unknown>"

// FrameClass discriminates the closed set of management frame variants the
// engine consumes. Anything else is dropped at the capture boundary.
type FrameClass string

const (
	FrameDeauth FrameClass = "deauth"
	FrameBeacon FrameClass = "beacon"
)

// FrameEvent is one classified 802.11 management frame. Which fields are
// meaningful depends on Class: Deauth carries Source/Destination, Beacon
// carries BSSID/SSID. Events are immutable and ephemeral; nothing persists
// them.
type FrameEvent struct {
	Class     FrameClass
	Timestamp time.Time

	// Deauth: Source is the (likely spoofed) sender, Destination the victim.
	Source      string
	Destination string

	// Beacon: BSSID is the transmitter address, SSID the advertised network
	// name after normalization.
	BSSID string
	SSID  string
}

// NewDeauthEvent builds a deauth frame event with normalized addresses.
func NewDeauthEvent(source, destination string, ts time.Time) FrameEvent {
	return FrameEvent{
		Class:       FrameDeauth,
		Timestamp:   ts,
		Source:      NormalizeMAC(source),
		Destination: NormalizeMAC(destination),
	}
}

// NewBeaconEvent builds a beacon frame event. The SSID is normalized here so
// downstream consumers never compare raw capture bytes.
func NewBeaconEvent(bssid, ssid string, ts time.Time) FrameEvent {
	return FrameEvent{
		Class:     FrameBeacon,
		Timestamp: ts,
		BSSID:     NormalizeMAC(bssid),
		SSID:      NormalizeSSID(ssid),
	}
}

func (e FrameEvent) String() string {
	switch e.Class {
	case FrameDeauth:
		return fmt.Sprintf("deauth %s -> %s", e.Source, e.Destination)
	case FrameBeacon:
		return fmt.Sprintf("beacon %q from %s", e.SSID, e.BSSID)
	default:
		return string(e.Class)
	}
}
