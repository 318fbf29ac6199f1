package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FramesProcessed counts classified management frames fed to the engine
	FramesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "frames_processed_total",
			Help:      "Total number of classified management frames processed",
		},
		[]string{"class"},
	)

	// FramesDropped counts frames discarded before classification
	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped before classification",
		},
		[]string{"reason"},
	)

	// AlertsPublished counts alerts handed to the bus, by alert type
	AlertsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "alerts_published_total",
			Help:      "Total number of alerts published on the bus",
		},
		[]string{"type"},
	)

	// CommandsHandled counts inbound bus commands, by topic and outcome
	CommandsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "commands_handled_total",
			Help:      "Total number of bus commands dispatched to handlers",
		},
		[]string{"topic", "status"},
	)

	// BlockOperations counts mitigation attempts, by result
	BlockOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "block_operations_total",
			Help:      "Total number of block (deauth burst) operations",
		},
		[]string{"result"},
	)

	// InjectionsTotal counts total injection attempts
	InjectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "injection_total",
			Help:      "Total number of packet injection attempts",
		},
		[]string{"interface", "type"},
	)

	// InjectionErrors counts failed injection attempts
	InjectionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "injection_errors_total",
			Help:      "Total number of failed packet injection attempts",
		},
		[]string{"interface", "type"},
	)

	// PanicsRecovered counts panics recovered in per-frame handlers
	PanicsRecovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wguard",
			Name:      "panics_recovered_total",
			Help:      "Total number of panics recovered in packet handling paths",
		},
		[]string{"component"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(FramesProcessed)
		prometheus.DefaultRegisterer.Register(FramesDropped)
		prometheus.DefaultRegisterer.Register(AlertsPublished)
		prometheus.DefaultRegisterer.Register(CommandsHandled)
		prometheus.DefaultRegisterer.Register(BlockOperations)
		prometheus.DefaultRegisterer.Register(InjectionsTotal)
		prometheus.DefaultRegisterer.Register(InjectionErrors)
		prometheus.DefaultRegisterer.Register(PanicsRecovered)
	})
}
