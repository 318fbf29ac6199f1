package domain

import (
	"sort"
	"time"
)

// Bus topics for outbound alerts. The rogue_ap topic also carries the
// terminal unrecognised_aps flush; consumers dispatch on alert_type.
const (
	TopicAlertDeauth             = "alerts/deauth"
	TopicAlertRogueAP            = "alerts/rogue_ap"
	TopicAlertProtocolAssessment = "alerts/protocol_assessment"
	TopicAlertPasswordAssessment = "alerts/password_assessment"
)

// AlertTimeLayout is the wire format for alert timestamps: ISO-8601, UTC,
// second precision, literal Z suffix.
const AlertTimeLayout = "2006-01-02T15:04:05Z"

// FormatAlertTime renders a timestamp in the wire format.
func FormatAlertTime(t time.Time) string {
	return t.UTC().Format(AlertTimeLayout)
}

// Alert is the closed set of outbound alert payloads. Each variant knows the
// topic it publishes on; the bus adapter marshals it as a single JSON object.
type Alert interface {
	Topic() string
}

// DeauthAlert reports a de-authentication flood against one victim.
type DeauthAlert struct {
	AlertType            string `json:"alert_type"`
	Destination          string `json:"destination"`
	FrameCount           int    `json:"frame_count"`
	MaxFrameCount        int    `json:"max_frame_count"`
	MostFrequentAttacker string `json:"most_frequent_attacker"`
	Spoofed              bool   `json:"spoofed"`
	TimeWindow           int    `json:"time_window"`
	Timestamp            string `json:"timestamp"`
}

// NewDeauthAlert builds the flood alert payload. The attacker address is the
// most frequent sender in the live window; spoofed is always true because
// deauth sources are trivially forged.
func NewDeauthAlert(destination, attacker string, frameCount, maxCount int, window time.Duration, ts time.Time) *DeauthAlert {
	return &DeauthAlert{
		AlertType:            "deauth_attack",
		Destination:          destination,
		FrameCount:           frameCount,
		MaxFrameCount:        maxCount,
		MostFrequentAttacker: attacker,
		Spoofed:              true,
		TimeWindow:           int(window.Seconds()),
		Timestamp:            FormatAlertTime(ts),
	}
}

func (*DeauthAlert) Topic() string { return TopicAlertDeauth }

// RoguePersonalAlert reports a beacon for a personally-trusted SSID from an
// address outside its allowed set.
type RoguePersonalAlert struct {
	AlertType     string   `json:"alert_type"`
	NetworkType   string   `json:"network_type"`
	SSID          string   `json:"ssid"`
	DetectedBSSID string   `json:"detected_bssid"`
	Expected      []string `json:"expected"`
}

func NewRoguePersonalAlert(ssid, bssid string, expected []string) *RoguePersonalAlert {
	return &RoguePersonalAlert{
		AlertType:     "rogue_ap",
		NetworkType:   "personal",
		SSID:          ssid,
		DetectedBSSID: bssid,
		Expected:      expected,
	}
}

func (*RoguePersonalAlert) Topic() string { return TopicAlertRogueAP }

// RoguePublicAlert reports a beacon for a public-trusted SSID whose address
// prefix is outside the allowed prefix set.
type RoguePublicAlert struct {
	AlertType        string   `json:"alert_type"`
	NetworkType      string   `json:"network_type"`
	SSID             string   `json:"ssid"`
	DetectedBSSID    string   `json:"detected_bssid"`
	DetectedPrefix   string   `json:"detected_prefix"`
	ExpectedPrefixes []string `json:"expected_prefixes"`
}

func NewRoguePublicAlert(ssid, bssid, prefix string, expectedPrefixes []string) *RoguePublicAlert {
	return &RoguePublicAlert{
		AlertType:        "rogue_ap",
		NetworkType:      "public",
		SSID:             ssid,
		DetectedBSSID:    bssid,
		DetectedPrefix:   prefix,
		ExpectedPrefixes: expectedPrefixes,
	}
}

func (*RoguePublicAlert) Topic() string { return TopicAlertRogueAP }

// UnrecognisedAlert is the one-shot shutdown flush of SSIDs that matched
// neither trust mapping during the process lifetime.
type UnrecognisedAlert struct {
	AlertType string   `json:"alert_type"`
	SSIDs     []string `json:"ssids"`
}

// NewUnrecognisedAlert sorts the SSIDs so the batch payload is stable across
// runs regardless of observation order.
func NewUnrecognisedAlert(ssids []string) *UnrecognisedAlert {
	sorted := make([]string, len(ssids))
	copy(sorted, ssids)
	sort.Strings(sorted)
	return &UnrecognisedAlert{AlertType: "unrecognised_aps", SSIDs: sorted}
}

func (*UnrecognisedAlert) Topic() string { return TopicAlertRogueAP }

// ProtocolAssessmentAlert is the flat essid → verdict summary produced by an
// on-demand protocol assessment.
type ProtocolAssessmentAlert map[string]string

func (ProtocolAssessmentAlert) Topic() string { return TopicAlertProtocolAssessment }

// PasswordAssessmentAlert reports the configured network's PSK strength.
type PasswordAssessmentAlert struct {
	SSID            string   `json:"ssid"`
	Strength        string   `json:"strength"`
	Recommendations []string `json:"recommendations"`
	Timestamp       string   `json:"timestamp"`
}

func (*PasswordAssessmentAlert) Topic() string { return TopicAlertPasswordAssessment }
