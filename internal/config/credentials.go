package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultCredentialsPath returns $HOME/.config/credible/credentials,
// restoring the original CLI's --credentials-file default.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "credible", "credentials")
}

// LoadCredentials reads a `KEY=value`-per-line file at path and sets each
// pair as a process environment variable, so store-driver SDKs (AWS's
// credential chain, go-redis's REDIS_* conventions) pick them up before
// any store driver is constructed. A missing file is silently skipped,
// mirroring the identity loader's treatment of missing paths.
func LoadCredentials(path string) error {
	if path == "" {
		return nil
	}
	path = ExpandPath(path)

	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("credentials file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("reading credentials file %q: %w", path, err)
	}

	for k, v := range env {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("setting env %q from credentials file: %w", k, err)
		}
	}
	return nil
}
