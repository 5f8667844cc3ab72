package handlers

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// maxCaptureSize limits uploaded captures to 64MB
const maxCaptureSize = 64 << 20

// AdapterHandler lists adapters and discovers target networks
type AdapterHandler struct {
	Service ports.DiscoveryService
}

// NewAdapterHandler creates a new AdapterHandler
func NewAdapterHandler(service ports.DiscoveryService) *AdapterHandler {
	return &AdapterHandler{Service: service}
}

// HandleList returns the adapters available for attacks
func (h *AdapterHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	adapters, err := h.Service.ListAdapters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"adapters": adapters})
}

// HandleScan scans from one adapter and returns the visible networks
func (h *AdapterHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !domain.IsValidInterface(id) {
		http.Error(w, "Invalid interface name", http.StatusBadRequest)
		return
	}

	networks, err := h.Service.Scan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"networks": networks})
}

// HandleImport reads target networks from an uploaded pcap/pcapng file ("file" form field)
func (h *AdapterHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCaptureSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing capture file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "wbrute-capture-*.pcap")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		http.Error(w, "Failed to read capture", http.StatusBadRequest)
		return
	}

	networks, err := h.Service.ImportCapture(r.Context(), tmp.Name())
	if err != nil {
		log.Printf("[WEB] capture import failed: %v", err)
		http.Error(w, "Invalid capture: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"networks": networks})
}
