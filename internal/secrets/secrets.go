// Package secrets keeps credentials in the OS keychain. Environment
// variables always win over stored values.
package secrets

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/zalando/go-keyring"

	"autoapply-engine/internal/config"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "autoapply"

	WebhookURL    = "discord-webhook-url"
	GeminiAPIKey  = "gemini-api-key"
	RedisPassword = "redis-password"
)

// ErrUnknown is returned for names outside Names.
var ErrUnknown = errors.New("unknown secret")

// Names lists the accounts Set and Delete accept.
var Names = []string{WebhookURL, GeminiAPIKey, RedisPassword}

func known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

func Get(name string) (string, error) {
	v, err := keyring.Get(KeyringService, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func Set(name, value string) error {
	if !known(name) {
		return fmt.Errorf("%w %q", ErrUnknown, name)
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

// Stored reports which known secrets have a keychain entry.
func Stored() map[string]bool {
	out := make(map[string]bool, len(Names))
	for _, n := range Names {
		v, err := Get(n)
		out[n] = err == nil && v != ""
	}
	return out
}

func Delete(name string) error {
	if !known(name) {
		return fmt.Errorf("%w %q", ErrUnknown, name)
	}
	return keyring.Delete(KeyringService, name)
}

// Fill copies stored secrets into cfg fields that are still empty.
// A missing keychain entry is normal; other keychain errors are logged.
func Fill(cfg *config.Config) {
	fill := func(dst *string, name string) {
		if *dst != "" {
			return
		}
		v, err := Get(name)
		switch {
		case err == nil:
			*dst = v
		case errors.Is(err, keyring.ErrNotFound):
		default:
			log.Printf("[secrets] keyring %s: %v", name, err)
		}
	}
	fill(&cfg.Notify.WebhookURL, WebhookURL)
	fill(&cfg.LLM.GeminiAPIKey, GeminiAPIKey)
	fill(&cfg.Ledger.RedisPassword, RedisPassword)
}
