package domain

import "testing"

func TestIsValidMAC(t *testing.T) {
	tests := []struct {
		mac   string
		valid bool
	}{
		{"AA:BB:CC:DD:EE:FF", true},
		{"aa:bb:cc:dd:ee:ff", true},
		{"00:11:22:33:44:55", true},
		{"invalid", false},
		{"AA:BB:CC:DD:EE", false},
		{"AA:BB:CC:DD:EE:FF:GG", false},
		{"", false},
	}

	for _, tt := range tests {
		if IsValidMAC(tt.mac) != tt.valid {
			t.Errorf("IsValidMAC(%s) = %v; want %v", tt.mac, IsValidMAC(tt.mac), tt.valid)
		}
	}
}

func TestIsValidInterface(t *testing.T) {
	tests := []struct {
		iface string
		valid bool
	}{
		{"wlan0", true},
		{"mon0", true},
		{"wlp3s0", true},
		{"eth0.100", false}, // we only allowed alphanumeric + - _
		{"very_long_interface_name_that_should_fail", false}, // > 16 chars
		{"; rm -rf /", false},
		{"", false},
	}

	for _, tt := range tests {
		if IsValidInterface(tt.iface) != tt.valid {
			t.Errorf("IsValidInterface(%s) = %v; want %v", tt.iface, IsValidInterface(tt.iface), tt.valid)
		}
	}
}

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AA:BB:CC:DD:EE:FF", "aa:bb:cc:dd:ee:ff"},
		{"  aa:bb:cc:dd:ee:ff ", "aa:bb:cc:dd:ee:ff"},
		{"aa:bb:cc:dd:ee:ff", "aa:bb:cc:dd:ee:ff"},
	}

	for _, tt := range tests {
		if got := NormalizeMAC(tt.in); got != tt.want {
			t.Errorf("NormalizeMAC(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestOUIPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AA:BB:CC:DD:EE:FF", "aa:bb:cc"},
		{"11:22:33:99:99:99", "11:22:33"},
		{"aa:bb:cc", "aa:bb:cc"},
		// Degenerate inputs fall back to the whole (lower-cased) string.
		{"AA:BB", "aa:bb"},
		{"garbage", "garbage"},
	}

	for _, tt := range tests {
		if got := OUIPrefix(tt.in); got != tt.want {
			t.Errorf("OUIPrefix(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSSID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "HomeNet", "HomeNet"},
		{"whitespace", "  CafeWifi  ", "CafeWifi"},
		{"curly apostrophe", "Ismail’s Phone", "Ismail's Phone"},
		{"mojibake apostrophe", "Ismailâ€™s Phone", "Ismail's Phone"},
		{"embedded nulls", "Home\x00Net\x00", "HomeNet"},
		{"nulls only", "\x00\x00", ""},
		{"already clean", "Guest-WiFi", "Guest-WiFi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSSID(tt.in); got != tt.want {
				t.Errorf("NormalizeSSID(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}
