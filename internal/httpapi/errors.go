package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error codes returned in APIError.Error.Code.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeInvalidConfig    = "invalid_config"
	CodeInvalidLimit     = "invalid_limit"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeAlreadyRunning   = "already_running"
	CodeForbidden        = "forbidden"
	CodeDB               = "db_error"
	CodeLedgerRead       = "ledger_unreadable"
	CodeLedgerWrite      = "ledger_write_failed"
	CodeUnknownSecret    = "unknown_secret"
	CodeSecretStore      = "secret_store_failed"
	CodeStreamingAbsent  = "stream_unsupported"
	CodeInternal         = "internal_error"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
	Details any `json:"details,omitempty"`
}

const maxBody = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSON(w http.ResponseWriter, v any) { WriteJSON(w, http.StatusOK, v) }

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeErrorDetails(w, r, status, code, message, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Details = details
	WriteJSON(w, status, e)
}

// decodeStrict reads exactly one JSON value with no unknown fields.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data")
	}
	return nil
}
