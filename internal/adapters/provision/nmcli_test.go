package provision

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// fakeExec routes each command to a canned reply.
func fakeExec(t *testing.T, replies map[string]string, calls *[]string) func(context.Context, string, ...string) *exec.Cmd {
	t.Helper()
	return func(_ context.Context, name string, args ...string) *exec.Cmd {
		full := name + " " + strings.Join(args, " ")
		if calls != nil {
			*calls = append(*calls, full)
		}
		for prefix, out := range replies {
			if strings.HasPrefix(full, prefix) {
				if out == "FAIL" {
					return exec.Command("false")
				}
				return exec.Command("echo", out)
			}
		}
		return exec.Command("true")
	}
}

func testProvisioner() *NMCLIProvisioner {
	p := NewNMCLI("wlan0", "")
	p.PollTimeout = 100 * time.Millisecond
	p.PollInterval = 10 * time.Millisecond
	return p
}

func TestProvision_ConnectsAndReturnsAddress(t *testing.T) {
	var calls []string
	orig := execCommandContext
	execCommandContext = fakeExec(t, map[string]string{
		"nmcli dev wifi connect": "Device 'wlan0' successfully activated",
		"nmcli -g IP4.ADDRESS":   "192.168.1.50/24",
	}, &calls)
	defer func() { execCommandContext = orig }()

	ip, err := testProvisioner().Provision(context.Background(), domain.Credential{SSID: "HomeNet", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.50/24", ip)
	assert.Contains(t, calls[0], "nmcli dev wifi connect HomeNet password hunter2 ifname wlan0")
}

func TestProvision_ConnectFailure(t *testing.T) {
	orig := execCommandContext
	execCommandContext = fakeExec(t, map[string]string{
		"nmcli dev wifi connect": "FAIL",
	}, nil)
	defer func() { execCommandContext = orig }()

	_, err := testProvisioner().Provision(context.Background(), domain.Credential{SSID: "HomeNet", Password: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HomeNet")
}

func TestProvision_AddressTimeout(t *testing.T) {
	orig := execCommandContext
	execCommandContext = fakeExec(t, map[string]string{
		"nmcli dev wifi connect": "ok",
		"nmcli -g IP4.ADDRESS":   "", // never an address
	}, nil)
	defer func() { execCommandContext = orig }()

	_, err := testProvisioner().Provision(context.Background(), domain.Credential{SSID: "HomeNet", Password: "x"})
	assert.Error(t, err)
}
