package ports

import (
	"context"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// MessageHandler consumes one raw message delivered on a subscribed topic.
// Handlers must tolerate duplicate delivery; the bus is at-least-once.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Bus is the abstract alert/command channel the engine talks through.
type Bus interface {
	// Publish sends one JSON-encodable payload on a topic. It must return
	// without waiting for broker acknowledgment; delivery failures are the
	// transport's concern, not the caller's.
	Publish(ctx context.Context, topic string, payload interface{}) error

	// Subscribe registers a handler for a topic. Handlers run on the bus
	// adapter's delivery context, never on the frame-ingestion loops.
	Subscribe(topic string, handler MessageHandler) error

	// Close disconnects from the underlying transport.
	Close() error
}

// FrameSource yields classified management frame events, one channel per
// frame class so each detector consumes a logically single-threaded stream.
type FrameSource interface {
	// Start begins capture. Non-blocking; the source stops and closes both
	// channels when the context is cancelled or the underlying capture ends.
	Start(ctx context.Context) error

	// Deauths streams de-authentication frame events.
	Deauths() <-chan domain.FrameEvent

	// Beacons streams beacon frame events.
	Beacons() <-chan domain.FrameEvent

	// Close releases capture resources (handles, sockets).
	Close()
}

// Injector is the mitigation primitive: it transmits count spoofed broadcast
// deauthentication frames purportedly from target on the given interface.
// A bounded-duration blocking call; callers dispatch it off the ingest path.
type Injector interface {
	Inject(ctx context.Context, target, iface string, count int) error
}

// Provisioner connects the uplink interface to a network using credentials
// received through the configuration API, returning the address it obtained.
type Provisioner interface {
	Provision(ctx context.Context, cred domain.Credential) (ip string, err error)
}
