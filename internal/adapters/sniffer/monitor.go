package sniffer

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// execCommand allows mocking in tests
var execCommand = exec.Command

// EnableMonitor puts an interface into monitor mode via ip/iw. The sequence
// mirrors the manual procedure: interface down, mode change, interface up.
func EnableMonitor(iface string) error {
	steps := [][]string{
		{"ip", "link", "set", iface, "down"},
		{"iw", "dev", iface, "set", "type", "monitor"},
		{"ip", "link", "set", iface, "up"},
	}
	for _, step := range steps {
		if out, err := execCommand(step[0], step[1:]...).CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w (%s)", strings.Join(step, " "), err, strings.TrimSpace(string(out)))
		}
	}
	log.Printf("[CAPTURE] %s switched to monitor mode", iface)
	return nil
}

// RestoreManaged returns an interface to managed mode. Used on shutdown so
// the system's network manager can reclaim the card; failures are reported
// but not fatal at that point.
func RestoreManaged(iface string) error {
	steps := [][]string{
		{"ip", "link", "set", iface, "down"},
		{"iw", "dev", iface, "set", "type", "managed"},
		{"ip", "link", "set", iface, "up"},
	}
	for _, step := range steps {
		if out, err := execCommand(step[0], step[1:]...).CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w (%s)", strings.Join(step, " "), err, strings.TrimSpace(string(out)))
		}
	}
	log.Printf("[CAPTURE] %s restored to managed mode", iface)
	return nil
}
