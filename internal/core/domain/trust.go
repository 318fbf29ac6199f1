package domain

// TrustSnapshot is an immutable view of the trusted-network configuration.
// Personal maps SSID → full allowed addresses; Public maps SSID → allowed
// 3-octet prefixes. Values are normalized at ingestion time so classification
// reads need no further transformation. Snapshot maps are never mutated after
// construction; a configuration change swaps in a whole new snapshot.
type TrustSnapshot struct {
	Personal map[string][]string
	Public   map[string][]string
}

// Empty reports whether the snapshot carries no trust entries at all.
func (s TrustSnapshot) Empty() bool {
	return len(s.Personal) == 0 && len(s.Public) == 0
}

// IngestPersonal copies a raw personal mapping, lower-casing every address.
// SSID keys are kept verbatim; matching normalizes the observed side instead.
func IngestPersonal(raw map[string][]string) map[string][]string {
	out := make(map[string][]string, len(raw))
	for ssid, addrs := range raw {
		allowed := make([]string, 0, len(addrs))
		for _, a := range addrs {
			allowed = append(allowed, NormalizeMAC(a))
		}
		out[ssid] = allowed
	}
	return out
}

// IngestPublic copies a raw public mapping, reducing every address to its
// 3-octet prefix. Reduction happens here, not at lookup time.
func IngestPublic(raw map[string][]string) map[string][]string {
	out := make(map[string][]string, len(raw))
	for ssid, addrs := range raw {
		prefixes := make([]string, 0, len(addrs))
		for _, a := range addrs {
			prefixes = append(prefixes, OUIPrefix(NormalizeMAC(a)))
		}
		out[ssid] = prefixes
	}
	return out
}
