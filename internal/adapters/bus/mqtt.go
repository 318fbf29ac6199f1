package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

const (
	connectTimeout = 10 * time.Second
	qosAtLeastOnce = 1
)

// MQTTBus implements ports.Bus over an MQTT broker using the Paho client.
// Publishes use QoS 1 and never block on broker acknowledgment; completion
// is observed asynchronously on the token and only logged. Subscriptions
// are replayed on every reconnect because the broker may have dropped the
// session while we were away.
type MQTTBus struct {
	client mqtt.Client

	mu       sync.Mutex
	handlers map[string]ports.MessageHandler
}

var _ ports.Bus = (*MQTTBus)(nil)

// Config carries the broker connection settings.
type Config struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
}

// NewMQTT connects to the broker and returns the bus. The connection is
// kept alive by the client itself (auto-reconnect); a lost connection is
// logged, not surfaced, since the engine keeps detecting regardless.
func NewMQTT(cfg Config) (*MQTTBus, error) {
	b := &MQTTBus{handlers: make(map[string]ports.MessageHandler)}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("[MQTT] connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Printf("[MQTT] connected to %s", cfg.BrokerURL)
			b.resubscribe(c)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	b.client = mqtt.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout after %s", cfg.BrokerURL, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.BrokerURL, err)
	}
	return b, nil
}

// Publish marshals the payload and hands it to the client. It returns as
// soon as the message is queued; delivery failure is the broker session's
// problem and is only logged when the token completes.
func (b *MQTTBus) Publish(_ context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}

	token := b.client.Publish(topic, qosAtLeastOnce, false, data)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("[MQTT] publish on %s failed: %v", topic, err)
		}
	}()
	return nil
}

// Subscribe registers a handler and subscribes on the live connection.
// Handlers run on the Paho delivery goroutine.
func (b *MQTTBus) Subscribe(topic string, handler ports.MessageHandler) error {
	b.mu.Lock()
	b.handlers[topic] = handler
	b.mu.Unlock()

	token := b.client.Subscribe(topic, qosAtLeastOnce, b.dispatch(handler))
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker, allowing a short drain for in-flight
// messages.
func (b *MQTTBus) Close() error {
	b.client.Disconnect(250)
	return nil
}

// dispatch adapts a ports.MessageHandler to the Paho callback signature and
// shields the client's delivery goroutine from handler panics.
func (b *MQTTBus) dispatch(handler ports.MessageHandler) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				telemetry.PanicsRecovered.WithLabelValues("bus").Inc()
				log.Printf("[MQTT] recovered handler panic on %s: %v", msg.Topic(), r)
			}
		}()
		handler(context.Background(), msg.Topic(), msg.Payload())
	}
}

// resubscribe replays every registered subscription after a (re)connect.
func (b *MQTTBus) resubscribe(c mqtt.Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, handler := range b.handlers {
		if token := c.Subscribe(topic, qosAtLeastOnce, b.dispatch(handler)); token.Wait() && token.Error() != nil {
			log.Printf("[MQTT] resubscribe %s failed: %v", topic, token.Error())
		}
	}
}
