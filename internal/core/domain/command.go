package domain

import (
	"errors"
	"strings"
)

// Bus topics for inbound commands.
const (
	TopicCmdUpdateTrusted = "commands/update_trusted"
	TopicCmdBlock         = "commands/block"
	TopicCmdRunAssessment = "commands/run_assessment"
)

// Defaults applied to block commands that omit optional fields.
const (
	DefaultBlockInterface = "wlan1"
	DefaultBlockCount     = 10
)

// Domain Errors for Command Handling
var (
	ErrMissingTarget     = errors.New("block command missing target_bssid")
	ErrInvalidTarget     = errors.New("block command target_bssid is not a MAC address")
	ErrInvalidIface      = errors.New("block command interface name is invalid")
	ErrInvalidCount      = errors.New("block command count must be positive")
	ErrUnknownAssessment = errors.New("unknown assessment type")
	ErrEmptyAssessment   = errors.New("run_assessment command missing assessment_type")
)

// BlockCommand requests a spoofed-deauth burst against a rogue transmitter.
type BlockCommand struct {
	TargetBSSID string `json:"target_bssid"`
	Interface   string `json:"interface,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// ApplyDefaults fills the optional fields the way the command plane
// documents them: wlan1 and 10 frames.
func (c *BlockCommand) ApplyDefaults() {
	if c.Interface == "" {
		c.Interface = DefaultBlockInterface
	}
	if c.Count == 0 {
		c.Count = DefaultBlockCount
	}
}

// Validate performs internal consistency checks on the command. Callers are
// expected to ApplyDefaults first.
func (c *BlockCommand) Validate() error {
	if strings.TrimSpace(c.TargetBSSID) == "" {
		return ErrMissingTarget
	}
	if !IsValidMAC(c.TargetBSSID) {
		return ErrInvalidTarget
	}
	if !IsValidInterface(c.Interface) {
		return ErrInvalidIface
	}
	if c.Count <= 0 {
		return ErrInvalidCount
	}
	return nil
}

// TrustUpdateCommand replaces the trusted-network configuration. A nil map
// means the field was absent and the corresponding mapping is untouched; a
// present-but-empty map wipes it.
type TrustUpdateCommand struct {
	Personal map[string][]string `json:"personal,omitempty"`
	Public   map[string][]string `json:"public,omitempty"`
}

// Empty reports whether the command carries neither mapping, which the
// engine treats as a no-op rather than an error.
func (c *TrustUpdateCommand) Empty() bool {
	return c.Personal == nil && c.Public == nil
}

// AssessmentKind enumerates the on-demand assessments.
type AssessmentKind string

const (
	AssessmentProtocol AssessmentKind = "protocol"
	AssessmentPassword AssessmentKind = "password"
)

// AssessmentCommand triggers one on-demand assessment run.
type AssessmentCommand struct {
	Type AssessmentKind `json:"assessment_type"`
}

// Validate lower-cases and checks the assessment kind; the wire value is
// case-insensitive.
func (c *AssessmentCommand) Validate() error {
	kind := AssessmentKind(strings.ToLower(strings.TrimSpace(string(c.Type))))
	if kind == "" {
		return ErrEmptyAssessment
	}
	switch kind {
	case AssessmentProtocol, AssessmentPassword:
		c.Type = kind
		return nil
	default:
		return ErrUnknownAssessment
	}
}
