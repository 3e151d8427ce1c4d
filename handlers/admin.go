package handlers

import (
	"encoding/json"
	"net/http"

	"snake-arena/auth"
	"snake-arena/server"
)

// AdminHandler exposes the read-only monitoring surface. The tick rate
// and capacity are fixed, so unlike a lobby server there is nothing to
// hot-tune here.
type AdminHandler struct {
	srv *server.Server
}

func NewAdminHandler(srv *server.Server) *AdminHandler {
	return &AdminHandler{srv: srv}
}

// Mount registers the monitoring routes on mux. /admin/state carries
// gameplay detail and requires an admin bearer token.
func (h *AdminHandler) Mount(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/metrics", h.handleMetrics)
	mux.HandleFunc("/admin/state", auth.RequireAdmin(h.handleState))
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// GET /metrics — runtime counters as JSON.
func (h *AdminHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.srv.Metrics().Snapshot())
}

// GET /admin/state — latest broadcast snapshot plus session metadata.
func (h *AdminHandler) handleState(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"sessions": h.srv.Sessions(),
	}
	if data := h.srv.LastState(); data != nil {
		payload["state"] = json.RawMessage(data)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
