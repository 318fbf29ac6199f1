package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// configureResponse is the intake reply shape.
type configureResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	IP      string `json:"wlan0_ip,omitempty"`
}

// handleConfigureWiFi accepts a credential pair, persists it for the
// password assessment, and provisions the uplink interface with it.
func (s *Server) handleConfigureWiFi(w http.ResponseWriter, r *http.Request) {
	var cred domain.Credential
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		writeJSON(w, http.StatusBadRequest, configureResponse{
			Status:  "error",
			Message: "Malformed request body.",
		})
		return
	}

	cred.SSID = domain.NormalizeSSID(cred.SSID)
	if cred.SSID == "" || cred.Password == "" {
		writeJSON(w, http.StatusBadRequest, configureResponse{
			Status:  "error",
			Message: "Both SSID and password are required.",
		})
		return
	}

	if err := s.Creds.Save(r.Context(), cred); err != nil {
		log.Printf("[INTAKE] persist credential: %v", err)
		writeJSON(w, http.StatusInternalServerError, configureResponse{
			Status:  "error",
			Message: "Failed to save configuration.",
		})
		return
	}

	ip, err := s.Provisioner.Provision(r.Context(), cred)
	if err != nil {
		log.Printf("[INTAKE] provision uplink for %q: %v", cred.SSID, err)
		writeJSON(w, http.StatusInternalServerError, configureResponse{
			Status:  "error",
			Message: "Failed to connect uplink to '" + cred.SSID + "'.",
		})
		return
	}

	log.Printf("[INTAKE] uplink connected to %q (%s)", cred.SSID, ip)
	writeJSON(w, http.StatusOK, configureResponse{
		Status:  "success",
		Message: "Connected uplink to '" + cred.SSID + "'.",
		IP:      ip,
	})
}
