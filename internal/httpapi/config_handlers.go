package httpapi

import (
	"log"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"

	"autoapply-engine/internal/config"
)

// ConfigHandler edits the YAML config. Saved changes apply from the next pass.
type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}

func (h ConfigHandler) current() config.Config {
	return h.CfgVal.Load().(config.Config)
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.current())
}

func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := decodeStrict(r, &incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, err.Error())
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		writeErrorDetails(w, r, http.StatusBadRequest, CodeInvalidConfig, strings.Join(vr.Errors, "; "), vr)
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, "saved but reload failed: "+err.Error())
		return
	}
	if changed := changedSections(h.current(), saved); len(changed) > 0 {
		log.Printf("[config] saved %s, changed: %s", h.UserCfgPath, strings.Join(changed, ","))
	}
	h.CfgVal.Store(saved)
	writeJSON(w, saved)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.current())
	writeJSON(w, vr)
}

// changedSections names the top-level YAML sections that differ.
func changedSections(a, b config.Config) []string {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	t := va.Type()
	var out []string
	for i := 0; i < t.NumField(); i++ {
		if !reflect.DeepEqual(va.Field(i).Interface(), vb.Field(i).Interface()) {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
			out = append(out, name)
		}
	}
	return out
}
