package httpapi

import (
	"net/http"

	"autoapply-engine/internal/events"
	"autoapply-engine/internal/scheduler"
	"autoapply-engine/internal/workflow"
)

type RunHandler struct {
	Passes Passes
	Runner LastPass
	Hub    *events.Hub
}

type StatusResponse struct {
	Scheduler scheduler.Status `json:"scheduler"`
	LastPass  *workflow.Result `json:"lastPass,omitempty"`
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Scheduler: h.Passes.Status()}
	if h.Runner != nil {
		resp.LastPass = h.Runner.Last()
	}
	writeJSON(w, resp)
}

func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.Passes.Trigger() {
		WriteError(w, r, http.StatusConflict, CodeAlreadyRunning, "a pass is already running")
		return
	}
	h.Hub.Publish(events.Encode(RequestIDFrom(r.Context()), events.PassRequested, nil))
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
