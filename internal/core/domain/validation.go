package domain

import (
	"regexp"
	"strings"
)

// Validation and Normalization Helpers

var (
	macRegex       = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// IsValidMAC checks if the string is a valid MAC address
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _)
func IsValidInterface(iface string) bool {
	// Length check (Linux interfaces are usually short, IFNAMSIZ is 16)
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}

// NormalizeMAC lower-cases a hardware address so map lookups and equality
// checks never depend on capture-source casing.
func NormalizeMAC(mac string) string {
	return strings.ToLower(strings.TrimSpace(mac))
}

// OUIPrefix returns the first three colon-delimited octets of an address,
// lower-cased. Addresses with fewer than three groups are returned whole;
// public trust matching degrades to full-address comparison for them.
func OUIPrefix(mac string) string {
	parts := strings.Split(mac, ":")
	if len(parts) >= 3 {
		return strings.ToLower(strings.Join(parts[:3], ":"))
	}
	return strings.ToLower(mac)
}

// ssidReplacer homogenizes the apostrophe encodings seen in the wild: the
// UTF-8 right single quote and its latin-1 mojibake form both become a plain
// ASCII apostrophe. Embedded NULs (zero-padded SSID elements) are dropped.
var ssidReplacer = strings.NewReplacer(
	"â€™", "'",
	"’", "'",
	"\x00", "",
)

// NormalizeSSID canonicalizes an SSID before any trust comparison so the
// same logical network name always compares equal regardless of how the
// capture source encoded it.
func NormalizeSSID(ssid string) string {
	return strings.TrimSpace(ssidReplacer.Replace(ssid))
}
