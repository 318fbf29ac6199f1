package injection

import (
	"fmt"
	"sync"

	"github.com/google/gopacket/pcap"
)

// PacketInjector defines the interface for writing raw frames to a wireless
// interface.
type PacketInjector interface {
	Inject(packet []byte) error
	Close()
}

// PcapInjector writes frames through a libpcap handle.
type PcapInjector struct {
	handle *pcap.Handle
}

func NewPcapInjector(iface string) (PacketInjector, error) {
	handle, err := pcap.OpenLive(iface, 1024, false, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("pcap open %s: %w", iface, err)
	}
	return &PcapInjector{handle: handle}, nil
}

func (p *PcapInjector) Inject(packet []byte) error {
	return p.handle.WritePacketData(packet)
}

func (p *PcapInjector) Close() {
	p.handle.Close()
}

// MockInjector implements PacketInjector for tests: it captures frames in
// memory instead of touching an interface.
type MockInjector struct {
	mu      sync.Mutex
	packets [][]byte
	failErr error
	Closed  bool
}

func NewMockInjector() *MockInjector {
	return &MockInjector{}
}

// FailWith makes every subsequent Inject return err.
func (m *MockInjector) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MockInjector) Inject(packet []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	p := make([]byte, len(packet))
	copy(p, packet)
	m.packets = append(m.packets, p)
	return nil
}

func (m *MockInjector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// Packets returns a copy of the captured frames.
func (m *MockInjector) Packets() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.packets))
	for i, p := range m.packets {
		out[i] = append([]byte(nil), p...)
	}
	return out
}
