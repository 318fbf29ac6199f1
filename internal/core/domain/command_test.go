package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBlockCommandDefaultsAndValidate(t *testing.T) {
	cmd := BlockCommand{TargetBSSID: "aa:bb:cc:dd:ee:ff"}
	cmd.ApplyDefaults()

	if cmd.Interface != DefaultBlockInterface {
		t.Errorf("Interface = %s; want %s", cmd.Interface, DefaultBlockInterface)
	}
	if cmd.Count != DefaultBlockCount {
		t.Errorf("Count = %d; want %d", cmd.Count, DefaultBlockCount)
	}
	if err := cmd.Validate(); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}

	// Explicit values survive ApplyDefaults untouched.
	cmd = BlockCommand{TargetBSSID: "aa:bb:cc:dd:ee:ff", Interface: "mon0", Count: 3}
	cmd.ApplyDefaults()
	if cmd.Interface != "mon0" || cmd.Count != 3 {
		t.Errorf("defaults overwrote explicit values: %+v", cmd)
	}
}

func TestBlockCommandValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		cmd     BlockCommand
		wantErr error
	}{
		{"missing target", BlockCommand{Interface: "wlan1", Count: 10}, ErrMissingTarget},
		{"bad target", BlockCommand{TargetBSSID: "not-a-mac", Interface: "wlan1", Count: 10}, ErrInvalidTarget},
		{"bad interface", BlockCommand{TargetBSSID: "aa:bb:cc:dd:ee:ff", Interface: "; rm -rf /", Count: 10}, ErrInvalidIface},
		{"bad count", BlockCommand{TargetBSSID: "aa:bb:cc:dd:ee:ff", Interface: "wlan1", Count: -1}, ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrustUpdateCommandEmpty(t *testing.T) {
	// Absent keys decode to nil maps; a present-but-empty object must not
	// count as absent, because it legitimately wipes a mapping.
	var absent TrustUpdateCommand
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !absent.Empty() {
		t.Error("command with no keys should be Empty")
	}

	var wipe TrustUpdateCommand
	if err := json.Unmarshal([]byte(`{"personal":{}}`), &wipe); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wipe.Empty() {
		t.Error("present-but-empty personal map should not be Empty")
	}
	if wipe.Personal == nil {
		t.Error("present personal key should decode to a non-nil map")
	}
}

func TestAssessmentCommandValidate(t *testing.T) {
	tests := []struct {
		in      string
		want    AssessmentKind
		wantErr error
	}{
		{"protocol", AssessmentProtocol, nil},
		{"password", AssessmentPassword, nil},
		{"Protocol", AssessmentProtocol, nil},
		{" PASSWORD ", AssessmentPassword, nil},
		{"", "", ErrEmptyAssessment},
		{"handshake", "", ErrUnknownAssessment},
	}

	for _, tt := range tests {
		cmd := AssessmentCommand{Type: AssessmentKind(tt.in)}
		err := cmd.Validate()
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Validate(%q) = %v; want %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && cmd.Type != tt.want {
			t.Errorf("Validate(%q) normalized to %q; want %q", tt.in, cmd.Type, tt.want)
		}
	}
}
