package provision

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// execCommandContext allows mocking in tests
var execCommandContext = exec.CommandContext

// NMCLIProvisioner connects the uplink interface to a network through
// NetworkManager: nmcli connect, poll for an IPv4 address, then stop the
// onboarding access point a few seconds later so the client finishes its
// HTTP exchange first.
type NMCLIProvisioner struct {
	// Interface is the uplink (managed) interface, typically wlan0.
	Interface string

	// APService is the systemd unit running the onboarding AP; empty
	// disables the teardown step.
	APService string

	// PollTimeout bounds how long to wait for an address after connecting.
	PollTimeout time.Duration
	// PollInterval spaces the address checks.
	PollInterval time.Duration
	// TeardownDelay is how long after a successful provision the AP stays
	// up.
	TeardownDelay time.Duration
}

var _ ports.Provisioner = (*NMCLIProvisioner)(nil)

// NewNMCLI returns a provisioner with the deployment defaults: wlan0 uplink,
// 30 second address wait, AP torn down five seconds after success.
func NewNMCLI(iface, apService string) *NMCLIProvisioner {
	return &NMCLIProvisioner{
		Interface:     iface,
		APService:     apService,
		PollTimeout:   30 * time.Second,
		PollInterval:  2 * time.Second,
		TeardownDelay: 5 * time.Second,
	}
}

// Provision connects the uplink to the credential's network and returns the
// IPv4 address it obtained. The onboarding AP teardown is scheduled in the
// background; its failure only logs, since by then the credential intake has
// already succeeded.
func (p *NMCLIProvisioner) Provision(ctx context.Context, cred domain.Credential) (string, error) {
	out, err := execCommandContext(ctx, "nmcli", "dev", "wifi", "connect", cred.SSID,
		"password", cred.Password, "ifname", p.Interface).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("connect %s to %q: %w (%s)", p.Interface, cred.SSID, err, strings.TrimSpace(string(out)))
	}

	ip, err := p.waitForAddress(ctx)
	if err != nil {
		return "", err
	}

	if p.APService != "" {
		go p.teardownAP()
	}
	return ip, nil
}

func (p *NMCLIProvisioner) waitForAddress(ctx context.Context) (string, error) {
	deadline := time.Now().Add(p.PollTimeout)
	for {
		out, err := execCommandContext(ctx, "nmcli", "-g", "IP4.ADDRESS", "dev", "show", p.Interface).Output()
		if err == nil {
			if ip := strings.TrimSpace(string(out)); ip != "" {
				return ip, nil
			}
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%s did not receive an address within %s", p.Interface, p.PollTimeout)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.PollInterval):
		}
	}
}

func (p *NMCLIProvisioner) teardownAP() {
	time.Sleep(p.TeardownDelay)
	if out, err := execCommandContext(context.Background(), "systemctl", "stop", p.APService).CombinedOutput(); err != nil {
		log.Printf("[INTAKE] stopping %s failed: %v (%s)", p.APService, err, strings.TrimSpace(string(out)))
		return
	}
	log.Printf("[INTAKE] onboarding AP %s stopped", p.APService)
}
