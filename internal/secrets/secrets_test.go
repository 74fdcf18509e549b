package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"autoapply-engine/internal/config"
)

func TestFillPrefersExistingValues(t *testing.T) {
	keyring.MockInit()
	if err := Set(WebhookURL, "https://discord.example/hook"); err != nil {
		t.Fatal(err)
	}
	if err := Set(GeminiAPIKey, "from-keyring"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.LLM.GeminiAPIKey = "from-env"
	Fill(&cfg)

	if cfg.Notify.WebhookURL != "https://discord.example/hook" {
		t.Fatalf("webhook = %q", cfg.Notify.WebhookURL)
	}
	if cfg.LLM.GeminiAPIKey != "from-env" {
		t.Fatalf("env value overwritten: %q", cfg.LLM.GeminiAPIKey)
	}
	if cfg.Ledger.RedisPassword != "" {
		t.Fatalf("redis password = %q", cfg.Ledger.RedisPassword)
	}
}

func TestSetRejectsUnknownAndEmpty(t *testing.T) {
	keyring.MockInit()
	if err := Set("imap", "x"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("unknown name: %v", err)
	}
	if err := Set(WebhookURL, "  "); err == nil {
		t.Fatal("empty value accepted")
	}
	if err := Delete("imap"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("unknown name: %v", err)
	}
}

func TestStored(t *testing.T) {
	keyring.MockInit()
	if err := Set(GeminiAPIKey, "k"); err != nil {
		t.Fatal(err)
	}
	got := Stored()
	if !got[GeminiAPIKey] || got[WebhookURL] || len(got) != len(Names) {
		t.Fatalf("stored = %v", got)
	}
}
