package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"

	"github.com/lcalzada-xor/wguard/internal/adapters/bus"
	"github.com/lcalzada-xor/wguard/internal/adapters/injection"
	"github.com/lcalzada-xor/wguard/internal/adapters/provision"
	"github.com/lcalzada-xor/wguard/internal/adapters/scan"
	"github.com/lcalzada-xor/wguard/internal/adapters/sniffer"
	"github.com/lcalzada-xor/wguard/internal/adapters/storage"
	"github.com/lcalzada-xor/wguard/internal/adapters/web"
	"github.com/lcalzada-xor/wguard/internal/config"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/core/services/assess"
	"github.com/lcalzada-xor/wguard/internal/core/services/block"
	"github.com/lcalzada-xor/wguard/internal/core/services/commands"
	"github.com/lcalzada-xor/wguard/internal/core/services/flood"
	"github.com/lcalzada-xor/wguard/internal/core/services/rogue"
	"github.com/lcalzada-xor/wguard/internal/core/services/trust"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// Application is the facade owning construction order, the ingest loops and
// graceful shutdown of the detection engine.
type Application struct {
	Config *config.Config

	Bus         ports.Bus
	TrustStore  *trust.Store
	TrustRepo   ports.TrustRepository
	Detector    *flood.Detector
	Classifier  *rogue.Classifier
	Coordinator *block.Coordinator
	Assessments *assess.Service
	Intake      *web.Server
	Source      ports.FrameSource

	injector *injection.DeauthInjector
	router   *commands.Router

	wg sync.WaitGroup
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}
	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence, leaves first.
func (app *Application) bootstrap() error {
	cfg := app.Config
	telemetry.InitMetrics()

	// Trust configuration: persisted snapshot first, optional seed file on
	// top. Writes flow command → store → repository.
	app.TrustStore = trust.NewStore()
	if cfg.DBPath != "" {
		repo, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return err
		}
		app.TrustRepo = repo

		snap, err := repo.LoadSnapshot(context.Background())
		if err != nil {
			return err
		}
		if !snap.Empty() {
			app.TrustStore.Seed(snap)
			slog.Info("trust store restored", "personal", len(snap.Personal), "public", len(snap.Public))
		}
	}
	if cfg.TrustFile != "" {
		snap, err := trust.LoadSeedFile(cfg.TrustFile)
		if err != nil {
			return err
		}
		app.TrustStore.Seed(snap)
		slog.Info("trust store seeded from file", "path", cfg.TrustFile)
	}

	// Mitigation: ledger shared with the detector, injection on a worker.
	ledger := block.NewLedger(cfg.BlockCooldown)
	if cfg.MockMode {
		app.injector = injection.NewDeauthInjectorWith(func(string) (injection.PacketInjector, error) {
			return injection.NewMockInjector(), nil
		})
	} else {
		app.injector = injection.NewDeauthInjector()
	}
	app.Coordinator = block.NewCoordinator(app.injector, ledger, cfg.BlockQueueSize)

	// Detection core.
	detector, err := flood.New(flood.Config{
		Threshold:     cfg.FloodThreshold,
		Window:        cfg.FloodWindow,
		AlertDebounce: cfg.AlertDebounce,
	}, ledger)
	if err != nil {
		return err
	}
	app.Detector = detector
	app.Classifier = rogue.New(app.TrustStore)

	// Bus transport.
	if cfg.MockMode {
		app.Bus = bus.NewMemory()
	} else {
		mqttBus, err := bus.NewMQTT(bus.Config{
			BrokerURL: cfg.BrokerURL,
			ClientID:  cfg.ClientID,
			Username:  cfg.BrokerUser,
			Password:  cfg.BrokerPass,
		})
		if err != nil {
			return err
		}
		app.Bus = mqttBus
	}

	// Assessments and their collaborators.
	var credStore ports.CredentialStore
	if sqlStore, ok := app.TrustRepo.(*storage.SQLiteStore); ok {
		credStore = sqlStore
	}
	app.Assessments = assess.New(assess.Config{
		ScanInterface: cfg.MonitorInterface,
		ScanDuration:  cfg.ScanDuration,
	}, scan.NewAirodumpScanner(), credStore, app.Bus)

	// Command plane.
	app.router, err = commands.NewRouter(commands.Handlers{
		TrustUpdate:   app.handleTrustUpdate,
		Block:         app.handleBlock,
		RunAssessment: app.handleRunAssessment,
	})
	if err != nil {
		return err
	}
	if err := app.router.Bind(app.Bus); err != nil {
		return err
	}

	// Credential intake endpoint.
	if credStore != nil {
		provisioner := provision.NewNMCLI(cfg.UplinkInterface, cfg.APService)
		app.Intake = web.NewServer(cfg.Addr, credStore, provisioner)
		app.Intake.TLSCert = cfg.TLSCert
		app.Intake.TLSKey = cfg.TLSKey
		app.Intake.TokenHash = cfg.TokenHash
	} else {
		slog.Warn("no database configured; credential intake and password assessment disabled")
	}

	// Frame source last: everything it feeds already exists.
	if cfg.MockMode {
		app.Source = sniffer.NewMockSource()
		return nil
	}
	if cfg.SetupMonitor {
		if err := sniffer.EnableMonitor(cfg.MonitorInterface); err != nil {
			return err
		}
	}
	source, err := sniffer.NewPcapSource(cfg.MonitorInterface)
	if err != nil {
		return err
	}
	app.Source = source
	return nil
}

// Run starts every component and blocks until the context is cancelled and
// the frame sources have drained. The unrecognized-SSID flush happens after
// the beacon loop ends and before the bus disconnects.
func (app *Application) Run(ctx context.Context) error {
	app.Coordinator.Start(ctx)

	if app.Intake != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			if err := app.Intake.Run(ctx); err != nil {
				slog.Error("intake server failed", "error", err)
			}
		}()
	}

	if err := app.Source.Start(ctx); err != nil {
		return fmt.Errorf("start frame source: %w", err)
	}

	app.wg.Add(2)
	go app.runDeauthLoop(ctx)
	go app.runBeaconLoop(ctx)

	slog.Info("wguard engine running",
		"interface", app.Config.MonitorInterface,
		"mock", app.Config.MockMode,
	)

	<-ctx.Done()
	app.Source.Close()
	app.wg.Wait()
	app.Coordinator.Wait()
	return nil
}

// Shutdown releases resources once Run has returned.
func (app *Application) Shutdown() {
	if app.Bus != nil {
		if err := app.Bus.Close(); err != nil {
			log.Printf("[APP] closing bus: %v", err)
		}
	}
	if app.injector != nil {
		app.injector.Close()
	}
	if app.TrustRepo != nil {
		if err := app.TrustRepo.Close(); err != nil {
			log.Printf("[APP] closing storage: %v", err)
		}
	}
	if app.Config.SetupMonitor && !app.Config.MockMode {
		if err := sniffer.RestoreManaged(app.Config.MonitorInterface); err != nil {
			log.Printf("[APP] restoring %s: %v", app.Config.MonitorInterface, err)
		}
	}
}

// runDeauthLoop feeds every deauth frame to the flood detector and publishes
// the alerts it raises. Exclusive owner of the detector's state.
func (app *Application) runDeauthLoop(ctx context.Context) {
	defer app.wg.Done()
	for event := range app.Source.Deauths() {
		alert := app.Detector.Observe(event.Destination, event.Source, event.Timestamp)
		if alert == nil {
			continue
		}
		slog.Warn("deauth flood detected",
			"destination", alert.Destination,
			"attacker", alert.MostFrequentAttacker,
			"frames", alert.FrameCount,
		)
		app.publish(ctx, alert, "deauth_attack")
	}
}

// runBeaconLoop classifies beacons against the trust store. When the beacon
// stream closes it flushes the unrecognized set as one terminal batch alert.
func (app *Application) runBeaconLoop(ctx context.Context) {
	defer app.wg.Done()
	for event := range app.Source.Beacons() {
		alert := app.Classifier.Observe(event.SSID, event.BSSID, event.Timestamp)
		if alert == nil {
			continue
		}
		slog.Warn("rogue access point detected", "ssid", event.SSID, "bssid", event.BSSID)
		app.publish(ctx, alert, "rogue_ap")
	}

	if flush := app.Classifier.Flush(); flush != nil {
		// The run context is already cancelled by now; the flush still has
		// to reach the bus.
		app.publish(context.Background(), flush, "unrecognised_aps")
	}
}

func (app *Application) publish(ctx context.Context, alert domain.Alert, kind string) {
	if err := app.Bus.Publish(ctx, alert.Topic(), alert); err != nil {
		log.Printf("[APP] publish %s alert: %v", kind, err)
		return
	}
	telemetry.AlertsPublished.WithLabelValues(kind).Inc()
}

// handleTrustUpdate applies the replace and persists the resulting snapshot
// off the command path.
func (app *Application) handleTrustUpdate(ctx context.Context, cmd domain.TrustUpdateCommand) error {
	if !app.TrustStore.ApplyUpdate(cmd) {
		return nil
	}
	if app.TrustRepo == nil {
		return nil
	}

	snap := app.TrustStore.Snapshot()
	go func() {
		if err := app.TrustRepo.SaveSnapshot(context.Background(), snap); err != nil {
			log.Printf("[APP] persisting trust snapshot: %v", err)
		}
	}()
	return nil
}

func (app *Application) handleBlock(_ context.Context, cmd domain.BlockCommand) error {
	return app.Coordinator.Enqueue(cmd)
}

func (app *Application) handleRunAssessment(ctx context.Context, cmd domain.AssessmentCommand) error {
	return app.Assessments.Run(ctx, cmd)
}
