package httpapi

import (
	"net/http"

	"autoapply-engine/internal/events"
	"autoapply-engine/internal/ledger"
)

type LedgerHandler struct {
	Ledger ledger.Ledger
	Hub    *events.Hub
}

func (h LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Ledger.List(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeLedgerRead, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, map[string]any{"count": len(ids), "ids": ids})
}

type importReq struct {
	IDs []string `json:"ids"`
}

// Import marks listings as already applied to, e.g. ones submitted by hand.
func (h LedgerHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importReq
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, err.Error())
		return
	}
	added, err := ledger.Import(r.Context(), h.Ledger, req.IDs)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeLedgerWrite, err.Error())
		return
	}
	h.Hub.Publish(events.Encode(RequestIDFrom(r.Context()), events.LedgerImported, map[string]any{"added": added}))
	writeJSON(w, map[string]any{"ok": true, "added": added})
}
