package domain

// ScanRecord is one access point row parsed from a capture scan. Fields are
// kept as the scanner reported them; classification normalizes case itself.
type ScanRecord struct {
	BSSID   string
	Channel string
	Privacy string
	Cipher  string
	Auth    string
	ESSID   string
}

// Credential is the uplink network credential pair fed in through the
// configuration API and consumed by the password assessment.
type Credential struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}
