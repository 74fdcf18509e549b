package httpapi

import (
	"net/http"
	"time"

	"autoapply-engine/internal/events"
)

type HealthHandler struct {
	Hub     *events.Hub
	Started time.Time
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339),
	}
	if !h.Started.IsZero() {
		body["uptime_s"] = int64(time.Since(h.Started).Seconds())
	}
	if h.Hub != nil {
		body["subscribers"] = h.Hub.Subscribers()
		body["dropped_events"] = h.Hub.Dropped()
	}
	WriteJSON(w, http.StatusOK, body)
}
