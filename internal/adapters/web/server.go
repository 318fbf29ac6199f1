package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// Server is the credential-intake and operations endpoint: one POST route
// feeding the assessment config, plus health and metrics.
type Server struct {
	Addr    string
	TLSCert string
	TLSKey  string

	// TokenHash is the bcrypt hash of the intake bearer token; empty
	// disables authentication.
	TokenHash string

	Creds       ports.CredentialStore
	Provisioner ports.Provisioner

	srv *http.Server
}

// NewServer wires the intake server.
func NewServer(addr string, creds ports.CredentialStore, provisioner ports.Provisioner) *Server {
	return &Server{
		Addr:        addr,
		Creds:       creds,
		Provisioner: provisioner,
	}
}

// Routes builds the router. Exposed so tests drive the handler directly.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Handle("/configure_wifi", s.requireToken(http.HandlerFunc(s.handleConfigureWiFi))).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Run serves until the context is cancelled. TLS is used when both cert and
// key are configured; otherwise plain HTTP, loudly, since credentials cross
// this endpoint.
func (s *Server) Run(ctx context.Context) error {
	handler := otelhttp.NewHandler(s.Routes(), "wguard-intake")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("[INTAKE] server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[INTAKE] shutdown error: %v", err)
		}
	}()

	var err error
	if s.TLSCert != "" && s.TLSKey != "" {
		log.Printf("[INTAKE] listening on %s (TLS)", s.Addr)
		err = s.srv.ListenAndServeTLS(s.TLSCert, s.TLSKey)
	} else {
		log.Printf("[INTAKE] WARNING: listening on %s WITHOUT TLS; credentials travel in the clear", s.Addr)
		err = s.srv.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[INTAKE] write response: %v", err)
	}
}
