package httpapi

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"autoapply-engine/internal/store"
)

// MaintenanceHandler exposes local-only housekeeping on the history database.
type MaintenanceHandler struct {
	DB  *sql.DB
	Now func() time.Time
}

func (h MaintenanceHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if _, err := h.DB.ExecContext(r.Context(), `PRAGMA wal_checkpoint(FULL);`); err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeDB, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cleanup drops attempt history past the retention window.
func (h MaintenanceHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	n, err := store.CleanupOldAttempts(r.Context(), h.DB, now())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeDB, err.Error())
		return
	}
	log.Printf("[store] cleanup removed %d attempts", n)
	writeJSON(w, map[string]any{"deleted": n})
}
