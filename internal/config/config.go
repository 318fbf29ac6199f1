package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// MonitorInterface is the capture/injection interface (monitor mode).
	MonitorInterface string
	// UplinkInterface is the managed interface the intake API provisions.
	UplinkInterface string
	// SetupMonitor switches MonitorInterface into monitor mode at startup.
	SetupMonitor bool

	// BrokerURL is the MQTT broker, e.g. tcp://localhost:1883.
	BrokerURL  string
	ClientID   string
	BrokerUser string
	BrokerPass string

	// Addr is the intake/metrics HTTP listen address.
	Addr string
	// TLSCert / TLSKey enable HTTPS on the intake endpoint when both set.
	TLSCert string
	TLSKey  string
	// TokenHash is the bcrypt hash of the intake bearer token; empty
	// disables intake auth.
	TokenHash string

	// DBPath locates the trust/credential SQLite database; empty disables
	// persistence.
	DBPath string
	// TrustFile optionally seeds the trust store from YAML at startup.
	TrustFile string

	// Detection tuning.
	FloodThreshold int
	FloodWindow    time.Duration
	AlertDebounce  time.Duration
	BlockCooldown  time.Duration
	BlockQueueSize int

	// ScanDuration bounds the protocol assessment capture.
	ScanDuration time.Duration
	// APService is the systemd unit of the onboarding AP torn down after a
	// successful provision; empty disables teardown.
	APService string

	MockMode bool
	Debug    bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.MonitorInterface = getEnv("WGUARD_MONITOR_IFACE", "wlan1")
	cfg.UplinkInterface = getEnv("WGUARD_UPLINK_IFACE", "wlan0")
	cfg.BrokerURL = getEnv("WGUARD_BROKER", "tcp://localhost:1883")
	cfg.ClientID = getEnv("WGUARD_CLIENT_ID", "wguard")
	cfg.BrokerUser = getEnv("WGUARD_BROKER_USER", "")
	cfg.BrokerPass = getEnv("WGUARD_BROKER_PASS", "")
	cfg.Addr = getEnv("WGUARD_ADDR", ":8443")
	cfg.TLSCert = getEnv("WGUARD_TLS_CERT", "")
	cfg.TLSKey = getEnv("WGUARD_TLS_KEY", "")
	cfg.TokenHash = getEnv("WGUARD_TOKEN_HASH", "")
	cfg.DBPath = getEnv("WGUARD_DB", getDefaultDBPath())
	cfg.TrustFile = getEnv("WGUARD_TRUST_FILE", "")
	cfg.MockMode = getEnvBool("WGUARD_MOCK", false)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.MonitorInterface, "i", cfg.MonitorInterface, "Monitor-mode capture/injection interface")
	flag.StringVar(&cfg.UplinkInterface, "uplink", cfg.UplinkInterface, "Managed uplink interface for the intake API")
	flag.BoolVar(&cfg.SetupMonitor, "setup-monitor", false, "Switch the capture interface into monitor mode at startup")
	flag.StringVar(&cfg.BrokerURL, "broker", cfg.BrokerURL, "MQTT broker URL")
	flag.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "MQTT client ID")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Intake/metrics HTTP address")
	flag.StringVar(&cfg.TLSCert, "tls-cert", cfg.TLSCert, "TLS certificate for the intake endpoint")
	flag.StringVar(&cfg.TLSKey, "tls-key", cfg.TLSKey, "TLS key for the intake endpoint")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database (empty disables persistence)")
	flag.StringVar(&cfg.TrustFile, "trust-file", cfg.TrustFile, "YAML trust seed file (optional)")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run with a synthetic frame source (no hardware)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flag.IntVar(&cfg.FloodThreshold, "flood-threshold", 15, "Deauth frames per window that constitute a flood")
	flag.DurationVar(&cfg.FloodWindow, "flood-window", 5*time.Second, "Sliding window for deauth counting")
	flag.DurationVar(&cfg.AlertDebounce, "alert-debounce", 1*time.Second, "Minimum interval between flood alerts per victim")
	flag.DurationVar(&cfg.BlockCooldown, "block-cooldown", 30*time.Second, "How long a blocked address is exempt from flood counting")
	flag.IntVar(&cfg.BlockQueueSize, "block-queue", 8, "Pending block commands before rejection")
	flag.DurationVar(&cfg.ScanDuration, "scan-duration", 3*time.Minute, "Protocol assessment capture length")
	flag.StringVar(&cfg.APService, "ap-service", "", "Onboarding AP systemd unit stopped after provisioning")

	flag.Parse()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "wguard.db"
	}

	wguardDir := filepath.Join(home, ".wguard")
	if err := os.MkdirAll(wguardDir, 0755); err != nil {
		log.Printf("Warning: Could not create .wguard directory, using current dir: %v", err)
		return "wguard.db"
	}

	return filepath.Join(wguardDir, "wguard.db")
}
