// config/overlay.go
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// OverlayEnv applies environment overrides on top of the file config.
// A .env file in the working directory is loaded first when present.
func OverlayEnv(cfg *Config) {
	// Missing .env should not kill startup
	_ = godotenv.Load()

	if v := os.Getenv("AUTOAPPLY_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v, ok := envBool("AUTO_SUBMIT"); ok {
		cfg.Apply.AutoSubmit = v
	}
	if v, ok := envBool("HEADLESS_MODE"); ok {
		cfg.Browser.Headless = v
	}
	if v := os.Getenv("RESUME_PATH"); v != "" {
		cfg.Tailoring.BaseDocument = v
	}
	if v := os.Getenv("CANDIDATE_NAME"); v != "" {
		cfg.Tailoring.CandidateName = v
	}
	if v := os.Getenv("SEARCH_URL"); v != "" {
		cfg.Browser.SearchURL = v
	}

	cfg.Notify.WebhookURL = getenv("DISCORD_WEBHOOK_URL", cfg.Notify.WebhookURL)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Notify.KafkaBrokers = splitList(v)
	}

	cfg.LLM.GeminiAPIKey = getenv("GEMINI_API_KEY", cfg.LLM.GeminiAPIKey)
	cfg.LLM.OllamaHost = getenv("OLLAMA_HOST", cfg.LLM.OllamaHost)
	cfg.LLM.Provider = getenv("LLM_PROVIDER", cfg.LLM.Provider)

	cfg.Ledger.Backend = getenv("LEDGER_BACKEND", cfg.Ledger.Backend)
	cfg.Ledger.RedisAddr = getenv("REDIS_ADDR", cfg.Ledger.RedisAddr)
	cfg.Ledger.RedisPassword = getenv("REDIS_PASS", cfg.Ledger.RedisPassword)

	cfg.Diag.S3Bucket = getenv("S3_BUCKET", cfg.Diag.S3Bucket)
	cfg.Diag.S3Region = getenv("AWS_REGION", cfg.Diag.S3Region)
}

// ResolvePaths anchors every relative path in cfg at App.DataDir.
func ResolvePaths(cfg *Config) {
	dir := cfg.App.DataDir
	if dir == "" {
		dir = "."
	}
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.App.LogFile = abs(cfg.App.LogFile)
	cfg.Browser.ProfileDir = abs(cfg.Browser.ProfileDir)
	cfg.Tailoring.BaseDocument = abs(cfg.Tailoring.BaseDocument)
	cfg.Tailoring.StagingDir = abs(cfg.Tailoring.StagingDir)
	cfg.Ledger.Path = abs(cfg.Ledger.Path)
	cfg.Diag.Dir = abs(cfg.Diag.Dir)
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func envBool(k string) (bool, bool) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
