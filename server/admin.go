package server

import (
	"encoding/json"
	"io"
	"net/http"

	"tailscale.com/tsweb"
)

// AttachAdminRoutes registers a read-only debug endpoint exposing the
// server's live Stats, plus a POST endpoint to trigger a manual
// goodbye-bundle shutdown, under mux's tsweb debug index. Grounded on
// the teacher's internal/serialmux.AttachAdminRoutes pattern of wiring
// tsweb.Debugger onto a caller-owned *http.ServeMux.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	debug.HandleFunc("tuio-stats", "live cursor/object/blob counts and frame sequence", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Stats()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	debug.HandleSilentFunc("tuio-shutdown", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Shutdown()
		io.WriteString(w, "sent goodbye bundles and cleared all entities\n")
	})
}
