package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dwizi/action-server/internal/actions"
)

// Trackers carry the whole event history, so the default is generous.
const defaultMaxWebhookBodyBytes = 64 << 20

type webhookRequest struct {
	NextAction string          `json:"next_action"`
	SenderID   string          `json:"sender_id"`
	Tracker    actions.Tracker `json:"tracker"`
	Domain     actions.Domain  `json:"domain"`
	Version    string          `json:"version"`
}

type webhookResponse struct {
	Events    []actions.Event   `json:"events"`
	Responses []actions.Message `json:"responses"`
}

func (r *router) handleWebhook(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Actions == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no actions registered"})
		return
	}

	limit := r.deps.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxWebhookBodyBytes
	}
	var payload webhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, limit)).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			r.deps.Logger.Warn("webhook payload too large", "limit_bytes", tooLarge.Limit)
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error":       fmt.Sprintf("payload exceeds %d bytes; raise ACTION_SERVER_WEBHOOK_MAX_BODY_BYTES", tooLarge.Limit),
				"limit_bytes": tooLarge.Limit,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	actionName := strings.TrimSpace(payload.NextAction)
	if actionName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "next_action is required"})
		return
	}
	if strings.TrimSpace(payload.Tracker.SenderID) == "" {
		payload.Tracker.SenderID = strings.TrimSpace(payload.SenderID)
	}

	logger := r.deps.Logger.With(
		"invocation_id", uuid.NewString(),
		"action", actionName,
		"sender_id", payload.Tracker.SenderID,
	)
	started := time.Now()

	dispatcher := actions.NewCollectingDispatcher()
	events, err := r.deps.Actions.Run(req.Context(), actionName, dispatcher, payload.Tracker, payload.Domain)
	if err != nil {
		if errors.Is(err, actions.ErrActionNotFound) {
			logger.Warn("action not registered")
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":       fmt.Sprintf("No registered action found for name '%s'.", actionName),
				"action_name": actionName,
			})
			return
		}
		logger.Error("action failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":       err.Error(),
			"action_name": actionName,
		})
		return
	}
	if events == nil {
		events = []actions.Event{}
	}

	responses := dispatcher.Messages()
	logger.Info("action executed", "responses", len(responses), "events", len(events), "duration_ms", time.Since(started).Milliseconds())
	writeJSON(w, http.StatusOK, webhookResponse{
		Events:    events,
		Responses: responses,
	})
}
