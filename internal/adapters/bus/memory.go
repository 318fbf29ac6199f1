package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// Message is one payload captured by the in-memory bus, already marshaled
// the way the MQTT adapter would send it.
type Message struct {
	Topic   string
	Payload []byte
}

// MemoryBus is an in-process ports.Bus used by tests and mock mode. It keeps
// every published message for inspection and delivers to subscribers
// synchronously so tests stay deterministic.
type MemoryBus struct {
	mu        sync.Mutex
	published []Message
	handlers  map[string][]ports.MessageHandler
	closed    bool
}

var _ ports.Bus = (*MemoryBus)(nil)

// NewMemory returns an empty in-memory bus.
func NewMemory() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]ports.MessageHandler)}
}

// Publish marshals the payload, records it, and delivers it to any local
// subscribers of the topic in registration order.
func (b *MemoryBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus is closed")
	}
	b.published = append(b.published, Message{Topic: topic, Payload: data})
	handlers := append([]ports.MessageHandler(nil), b.handlers[topic]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, topic, data)
	}
	return nil
}

// Subscribe registers a handler for a topic.
func (b *MemoryBus) Subscribe(topic string, handler ports.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

// Close marks the bus closed; later publishes fail.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Deliver injects a raw inbound message, simulating broker delivery to the
// topic's subscribers. Tests use it to replay command payloads.
func (b *MemoryBus) Deliver(ctx context.Context, topic string, payload []byte) {
	b.mu.Lock()
	handlers := append([]ports.MessageHandler(nil), b.handlers[topic]...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(ctx, topic, payload)
	}
}

// Published returns a copy of everything published so far.
func (b *MemoryBus) Published() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.published))
	copy(out, b.published)
	return out
}

// PublishedOn filters the captured messages by topic.
func (b *MemoryBus) PublishedOn(topic string) []Message {
	var out []Message
	for _, m := range b.Published() {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}
