package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// Handlers is the closed set of typed command handlers the router dispatches
// to. Payloads are decoded and validated at the boundary; handlers never see
// raw JSON. Every handler must tolerate duplicate delivery.
type Handlers struct {
	TrustUpdate   func(ctx context.Context, cmd domain.TrustUpdateCommand) error
	Block         func(ctx context.Context, cmd domain.BlockCommand) error
	RunAssessment func(ctx context.Context, cmd domain.AssessmentCommand) error
}

// Router owns the static topic → handler table for the command plane. The
// table is validated at construction so a missing handler fails at startup
// instead of silently dropping a topic at runtime.
type Router struct {
	handlers Handlers
	table    map[string]ports.MessageHandler
}

// NewRouter validates the handler set and builds the dispatch table.
func NewRouter(h Handlers) (*Router, error) {
	if h.TrustUpdate == nil {
		return nil, errors.New("commands: nil trust-update handler")
	}
	if h.Block == nil {
		return nil, errors.New("commands: nil block handler")
	}
	if h.RunAssessment == nil {
		return nil, errors.New("commands: nil run-assessment handler")
	}

	r := &Router{handlers: h}
	r.table = map[string]ports.MessageHandler{
		domain.TopicCmdUpdateTrusted: r.handleTrustUpdate,
		domain.TopicCmdBlock:         r.handleBlock,
		domain.TopicCmdRunAssessment: r.handleRunAssessment,
	}
	return r, nil
}

// Bind subscribes every table entry on the bus.
func (r *Router) Bind(bus ports.Bus) error {
	for topic, handler := range r.table {
		if err := bus.Subscribe(topic, handler); err != nil {
			return fmt.Errorf("bind command topic %s: %w", topic, err)
		}
	}
	return nil
}

// Topics lists the subscribed command topics, in no particular order.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.table))
	for t := range r.table {
		topics = append(topics, t)
	}
	return topics
}

func (r *Router) handleTrustUpdate(ctx context.Context, topic string, payload []byte) {
	ctx, span := otel.Tracer("command-router").Start(ctx, "TrustUpdate")
	defer span.End()

	var cmd domain.TrustUpdateCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		r.reject(topic, fmt.Errorf("decode trust update: %w", err))
		return
	}
	if cmd.Empty() {
		// Neither mapping present: documented no-op, not an error.
		telemetry.CommandsHandled.WithLabelValues(topic, "noop").Inc()
		return
	}

	if err := r.handlers.TrustUpdate(ctx, cmd); err != nil {
		r.reject(topic, err)
		return
	}
	telemetry.CommandsHandled.WithLabelValues(topic, "ok").Inc()
	log.Printf("[CMD] trust update applied (personal=%d public=%d ssids)", len(cmd.Personal), len(cmd.Public))
}

func (r *Router) handleBlock(ctx context.Context, topic string, payload []byte) {
	ctx, span := otel.Tracer("command-router").Start(ctx, "Block")
	defer span.End()

	var cmd domain.BlockCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		r.reject(topic, fmt.Errorf("decode block command: %w", err))
		return
	}
	cmd.ApplyDefaults()
	if err := cmd.Validate(); err != nil {
		r.reject(topic, err)
		return
	}
	span.SetAttributes(attribute.String("block.target", cmd.TargetBSSID))

	if err := r.handlers.Block(ctx, cmd); err != nil {
		r.reject(topic, err)
		return
	}
	telemetry.CommandsHandled.WithLabelValues(topic, "ok").Inc()
}

func (r *Router) handleRunAssessment(ctx context.Context, topic string, payload []byte) {
	ctx, span := otel.Tracer("command-router").Start(ctx, "RunAssessment")
	defer span.End()

	var cmd domain.AssessmentCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		r.reject(topic, fmt.Errorf("decode run_assessment: %w", err))
		return
	}
	if err := cmd.Validate(); err != nil {
		r.reject(topic, err)
		return
	}
	span.SetAttributes(attribute.String("assessment.type", string(cmd.Type)))

	if err := r.handlers.RunAssessment(ctx, cmd); err != nil {
		r.reject(topic, err)
		return
	}
	telemetry.CommandsHandled.WithLabelValues(topic, "ok").Inc()
}

// reject logs and counts a command that could not be handled. Per-command
// failures never propagate; the bus keeps delivering.
func (r *Router) reject(topic string, err error) {
	telemetry.CommandsHandled.WithLabelValues(topic, "rejected").Inc()
	log.Printf("[CMD] rejected command on %s: %v", topic, err)
}
