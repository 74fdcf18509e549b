package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureUserConfig returns dataDir/config.yml, creating it on first run from
// the bundled file at bundledPath, or from Default() when there is none.
// The bundled file goes through Load and SaveAtomic, so keys it omits are
// written out with their defaults and an invalid bundle is rejected.
func EnsureUserConfig(dataDir string, bundledPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	if _, err := os.Stat(userPath); err == nil {
		return userPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	cfg := Default()
	if bundledPath != "" {
		loaded, err := Load(bundledPath)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist):
		default:
			return "", fmt.Errorf("bundled config %s: %w", bundledPath, err)
		}
	}
	if err := SaveAtomic(userPath, cfg); err != nil {
		return "", err
	}
	return userPath, nil
}
