package httpapi

import (
	"net/http"
	"time"
)

// NewMux returns the raw mux so main can attach /shutdown, which needs the
// engine cancel func and token.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Hub: d.Hub, Started: time.Now()}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Passes
	rh := RunHandler{Passes: d.Passes, Runner: d.Runner, Hub: d.Hub}
	mux.HandleFunc("/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))
	mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Run,
	}))

	// History
	ah := AttemptsHandler{DB: d.DB}
	mux.HandleFunc("/attempts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.List,
	}))

	lh := LedgerHandler{Ledger: d.Ledger, Hub: d.Hub}
	mux.HandleFunc("/ledger", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  lh.List,
		http.MethodPost: lh.Import,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	sh := SecretsHandler{}
	mux.HandleFunc("/api/secrets", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.List,
	}))
	mux.HandleFunc("/api/secrets/", methodMux(map[string]http.HandlerFunc{
		http.MethodPut:    sh.SetByPath,
		http.MethodDelete: sh.DeleteByPath,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Maintenance
	mh := MaintenanceHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: LocalOnly(mh.Checkpoint),
	}))
	mux.HandleFunc("/db/cleanup", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: LocalOnly(mh.Cleanup),
	}))

	return mux
}

func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		WriteError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, r.Method+" not allowed")
	}
}

// Handler wraps the mux in the standard middleware chain.
func Handler(mux http.Handler) http.Handler {
	return Chain(mux, RequestID, Recover, AccessLog, Cors)
}
