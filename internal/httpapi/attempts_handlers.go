package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"autoapply-engine/internal/store"
)

type AttemptsHandler struct {
	DB *sql.DB
}

func (h AttemptsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListAttemptsOpts{
		ListingID: q.Get("listing"),
		Outcome:   q.Get("outcome"),
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, CodeInvalidLimit, "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}

	rows, err := store.ListAttempts(r.Context(), h.DB, opts)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeDB, err.Error())
		return
	}
	if rows == nil {
		rows = []store.Attempt{}
	}
	writeJSON(w, rows)
}
