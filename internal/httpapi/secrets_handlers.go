package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"autoapply-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSecretReq struct {
	Value string `json:"value"`
}

// List reports which secrets are stored, never their values.
func (h SecretsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, secrets.Stored())
}

// SetByPath stores /api/secrets/{name} in the OS keychain. It takes effect
// on the next config reload.
func (h SecretsHandler) SetByPath(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/secrets/")

	var req setSecretReq
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, err.Error())
		return
	}
	if err := secrets.Set(name, req.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	log.Printf("[secrets] stored %s", name)
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/secrets/")
	if err := secrets.Delete(name); err != nil {
		h.fail(w, r, err)
		return
	}
	log.Printf("[secrets] deleted %s", name)
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, secrets.ErrUnknown) {
		WriteError(w, r, http.StatusNotFound, CodeUnknownSecret, err.Error())
		return
	}
	WriteError(w, r, http.StatusBadRequest, CodeSecretStore, err.Error())
}
