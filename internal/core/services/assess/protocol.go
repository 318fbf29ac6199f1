package assess

import (
	"strings"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// Verdict strings for the protocol assessment. Open, WEP and WPA+TKIP
// networks are flagged insecure; any other WPA family counts as secure.
const (
	VerdictOpen    = "Insecure, open (no encryption)"
	VerdictWEP     = "Insecure, uses WEP"
	VerdictTKIP    = "Insecure, uses WPA with TKIP"
	VerdictSecure  = "Secure (WPA2/WPA3)"
	VerdictUnknown = "Unknown encryption"
)

// ClassifyNetwork maps one network's encryption settings to a verdict.
func ClassifyNetwork(privacy, cipher string) string {
	p := strings.ToUpper(strings.TrimSpace(privacy))
	c := strings.ToUpper(strings.TrimSpace(cipher))

	switch {
	case p == "OPN":
		return VerdictOpen
	case p == "WEP":
		return VerdictWEP
	case strings.HasPrefix(p, "WPA"):
		if strings.Contains(c, "TKIP") {
			return VerdictTKIP
		}
		return VerdictSecure
	default:
		return VerdictUnknown
	}
}

// SummarizeScan reduces scan records to the flat essid → verdict map the
// protocol assessment publishes. The first record per ESSID wins; records
// with an empty ESSID are skipped. Extra whitespace inside an ESSID is
// collapsed so the summary keys stay readable.
func SummarizeScan(records []domain.ScanRecord) domain.ProtocolAssessmentAlert {
	summary := domain.ProtocolAssessmentAlert{}
	for _, rec := range records {
		essid := strings.Join(strings.Fields(rec.ESSID), " ")
		if essid == "" {
			continue
		}
		if _, seen := summary[essid]; seen {
			continue
		}
		summary[essid] = ClassifyNetwork(rec.Privacy, rec.Cipher)
	}
	return summary
}
