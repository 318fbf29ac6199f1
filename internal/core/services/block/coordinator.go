package block

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// ErrQueueFull is returned when the block worker cannot keep up; the command
// is rejected rather than stalling the caller.
var ErrQueueFull = errors.New("block queue is full")

// Coordinator executes block commands against the injection primitive on a
// dedicated worker, off the frame-ingestion path, and records successful
// mitigations in the cooldown ledger.
type Coordinator struct {
	injector ports.Injector
	ledger   *Ledger
	queue    chan domain.BlockCommand
	wg       sync.WaitGroup
}

// NewCoordinator builds a coordinator over the given injector and ledger.
// queueSize bounds how many block commands may wait for the worker.
func NewCoordinator(injector ports.Injector, ledger *Ledger, queueSize int) *Coordinator {
	if queueSize <= 0 {
		queueSize = 8
	}
	return &Coordinator{
		injector: injector,
		ledger:   ledger,
		queue:    make(chan domain.BlockCommand, queueSize),
	}
}

// Ledger exposes the cooldown ledger so the flood detector can consult it.
func (c *Coordinator) Ledger() *Ledger {
	return c.ledger
}

// Start launches the block worker. The worker exits when ctx is cancelled;
// Wait joins it.
func (c *Coordinator) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-c.queue:
				if err := c.Block(ctx, cmd); err != nil {
					log.Printf("[BLOCK] mitigation failed for %s: %v", cmd.TargetBSSID, err)
				}
			}
		}
	}()
}

// Wait blocks until the worker has exited. Call after cancelling the context
// passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Enqueue hands a block command to the worker without blocking. A full queue
// rejects the command: a slow injection primitive must never back up into
// command handling.
func (c *Coordinator) Enqueue(cmd domain.BlockCommand) error {
	select {
	case c.queue <- cmd:
		return nil
	default:
		telemetry.BlockOperations.WithLabelValues("rejected").Inc()
		return ErrQueueFull
	}
}

// Block synchronously runs one mitigation: a spoofed broadcast deauth burst
// from the target address. Only a fully successful injection records the
// cooldown; a failed one leaves the ledger untouched so the detector keeps
// treating the address as hostile.
func (c *Coordinator) Block(ctx context.Context, cmd domain.BlockCommand) error {
	ctx, span := otel.Tracer("block-coordinator").Start(ctx, "Block")
	defer span.End()

	opID := uuid.New().String()
	span.SetAttributes(
		attribute.String("block.op_id", opID),
		attribute.String("block.target", cmd.TargetBSSID),
		attribute.String("block.interface", cmd.Interface),
		attribute.Int("block.count", cmd.Count),
	)

	log.Printf("[BLOCK] op=%s sending %d deauth frames to block %s on %s",
		opID, cmd.Count, cmd.TargetBSSID, cmd.Interface)

	if err := c.injector.Inject(ctx, cmd.TargetBSSID, cmd.Interface, cmd.Count); err != nil {
		telemetry.BlockOperations.WithLabelValues("failure").Inc()
		return fmt.Errorf("inject deauth burst at %s: %w", cmd.TargetBSSID, err)
	}

	c.ledger.Record(cmd.TargetBSSID, time.Now())
	telemetry.BlockOperations.WithLabelValues("success").Inc()
	log.Printf("[BLOCK] op=%s blocked %s, cooldown active", opID, cmd.TargetBSSID)
	return nil
}
