package assess

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// ErrNoCredential is returned by a password assessment when the intake API
// has not supplied a credential pair yet.
var ErrNoCredential = errors.New("assess: no credential configured")

// Config tunes the assessment runs.
type Config struct {
	// ScanInterface is the monitor-mode interface the protocol scan uses.
	ScanInterface string

	// ScanDuration bounds how long the protocol scan captures.
	ScanDuration time.Duration
}

// Service executes on-demand assessments and publishes their results. Runs
// are dispatched to their own goroutine so a long scan never stalls the
// command plane; results surface on the bus whenever they complete.
type Service struct {
	cfg     Config
	scanner ports.Scanner
	creds   ports.CredentialStore
	bus     ports.Bus
	now     func() time.Time
}

// New builds an assessment service. scanner or creds may be nil when the
// corresponding assessment is not deployed; triggering it then fails fast.
func New(cfg Config, scanner ports.Scanner, creds ports.CredentialStore, bus ports.Bus) *Service {
	if cfg.ScanDuration <= 0 {
		cfg.ScanDuration = 3 * time.Minute
	}
	return &Service{cfg: cfg, scanner: scanner, creds: creds, bus: bus, now: time.Now}
}

// Run dispatches one assessment in the background. The error return only
// covers request validation; run failures are logged and counted when the
// goroutine finishes.
func (s *Service) Run(ctx context.Context, cmd domain.AssessmentCommand) error {
	switch cmd.Type {
	case domain.AssessmentProtocol:
		if s.scanner == nil {
			return errors.New("assess: protocol assessment unavailable, no scanner configured")
		}
	case domain.AssessmentPassword:
		if s.creds == nil {
			return errors.New("assess: password assessment unavailable, no credential store configured")
		}
	default:
		return domain.ErrUnknownAssessment
	}

	runID := uuid.New().String()
	log.Printf("[ASSESS] run=%s starting %s assessment", runID, cmd.Type)

	go func() {
		ctx, span := otel.Tracer("assess").Start(ctx, "AssessmentRun")
		defer span.End()
		span.SetAttributes(
			attribute.String("assessment.run_id", runID),
			attribute.String("assessment.type", string(cmd.Type)),
		)

		var err error
		if cmd.Type == domain.AssessmentProtocol {
			err = s.runProtocol(ctx)
		} else {
			err = s.runPassword(ctx)
		}
		if err != nil {
			telemetry.CommandsHandled.WithLabelValues(domain.TopicCmdRunAssessment, "run_failed").Inc()
			log.Printf("[ASSESS] run=%s %s assessment failed: %v", runID, cmd.Type, err)
			return
		}
		log.Printf("[ASSESS] run=%s %s assessment published", runID, cmd.Type)
	}()
	return nil
}

func (s *Service) runProtocol(ctx context.Context) error {
	records, err := s.scanner.Scan(ctx, s.cfg.ScanInterface, s.cfg.ScanDuration)
	if err != nil {
		return fmt.Errorf("protocol scan on %s: %w", s.cfg.ScanInterface, err)
	}

	summary := SummarizeScan(records)
	if len(summary) == 0 {
		return errors.New("protocol scan found no networks")
	}

	if err := s.bus.Publish(ctx, summary.Topic(), summary); err != nil {
		return fmt.Errorf("publish protocol assessment: %w", err)
	}
	telemetry.AlertsPublished.WithLabelValues("protocol_assessment").Inc()
	return nil
}

func (s *Service) runPassword(ctx context.Context) error {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if cred.SSID == "" || cred.Password == "" {
		return ErrNoCredential
	}

	alert := newPasswordAlert(cred.SSID, ScorePassword(cred.Password), s.now())
	if err := s.bus.Publish(ctx, alert.Topic(), alert); err != nil {
		return fmt.Errorf("publish password assessment: %w", err)
	}
	telemetry.AlertsPublished.WithLabelValues("password_assessment").Inc()
	return nil
}
