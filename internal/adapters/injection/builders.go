package injection

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// BroadcastAddr is the destination of every mitigation burst: the point of
// the block is to disconnect whoever associated with the rogue transmitter,
// so the spoofed deauth goes to all stations.
var BroadcastAddr = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ReasonClass3FromNonassoc is the 802.11 reason code carried in mitigation
// frames (class 3 frame received from nonassociated station).
const ReasonClass3FromNonassoc uint16 = 7

// SerializeDeauthFrame builds one RadioTap-wrapped deauthentication frame
// addressed to target, purportedly sent by sender (which is also the BSSID).
func SerializeDeauthFrame(target, sender net.HardwareAddr, reason uint16, seq uint16) ([]byte, error) {
	radiotap := &layers.RadioTap{
		Present: layers.RadioTapPresentRate | layers.RadioTapPresentFlags,
		Rate:    5,
		Flags:   0x0008, // No ACK
	}

	dot11 := &layers.Dot11{
		Type:           layers.Dot11TypeMgmtDeauthentication,
		Address1:       target,
		Address2:       sender,
		Address3:       sender,
		SequenceNumber: seq,
	}

	payload := &layers.Dot11MgmtDeauthentication{Reason: layers.Dot11Reason(reason)}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	if err := gopacket.SerializeLayers(buf, opts, radiotap, dot11, payload); err != nil {
		return nil, fmt.Errorf("serialize deauth frame: %w", err)
	}
	return buf.Bytes(), nil
}
