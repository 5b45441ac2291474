package httpapi

import (
	"encoding/json"
	"net/http"
)

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Actions == nil || len(r.deps.Actions.Names()) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": "no actions registered"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleHeartbeat(w http.ResponseWriter, req *http.Request) {
	if r.deps.Heartbeat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "heartbeat is disabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, r.deps.Heartbeat.Snapshot(r.deps.HeartbeatStaleAfter))
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "action-server",
		"environment": r.deps.Config.Environment,
		"model":       r.deps.Model,
	})
}

func (r *router) handleActions(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	items := []map[string]string{}
	if r.deps.Actions != nil {
		for _, name := range r.deps.Actions.Names() {
			items = append(items, map[string]string{"name": name})
		}
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
