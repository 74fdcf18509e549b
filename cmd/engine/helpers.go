package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"

	"autoapply-engine/internal/httpapi"
)

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownHandler cancels the engine context after a local, token-bearing POST.
func shutdownHandler(token string, cancel context.CancelFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if !httpapi.IsLoopback(r) {
			httpapi.WriteError(w, r, http.StatusForbidden, httpapi.CodeForbidden, "local requests only")
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			httpapi.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "missing or wrong shutdown token")
			return
		}

		log.Printf("[http] shutdown requested request_id=%s", httpapi.RequestIDFrom(r.Context()))
		httpapi.WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
		cancel()
	}
}
