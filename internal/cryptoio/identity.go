package cryptoio

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"filippo.io/age"
	"filippo.io/age/agessh"
)

// LoadIdentities loads decryption identities from a list of file paths.
// Paths that do not exist are silently dropped — the defaults
// ($HOME/.ssh/id_rsa, $HOME/.ssh/id_ed25519) are typically passed whether
// or not they happen to exist. A path that exists but fails to parse under
// either the age or ssh encoding fails with ErrReadKey.
func LoadIdentities(paths []string) ([]age.Identity, error) {
	var identities []age.Identity

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("identity file not found, skipping", "path", path)
				continue
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrReadKey, path, err)
		}

		ids, err := parseIdentityFile(path, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadKey, path, err)
		}
		identities = append(identities, ids...)
	}

	return identities, nil
}

// parseIdentityFile tries the age identity-file encoding first, then falls
// back to a raw ssh private key.
func parseIdentityFile(path string, data []byte) ([]age.Identity, error) {
	ids, ageErr := age.ParseIdentities(bytes.NewReader(data))
	if ageErr == nil {
		return ids, nil
	}

	sshID, sshErr := agessh.ParseIdentity(data)
	if sshErr == nil {
		return []age.Identity{sshID}, nil
	}

	return nil, fmt.Errorf("not a valid age or ssh identity (age: %v; ssh: %v)", ageErr, sshErr)
}

// DefaultIdentityPaths returns the conventional identity file locations:
// $HOME/.ssh/id_rsa and $HOME/.ssh/id_ed25519.
func DefaultIdentityPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		home + "/.ssh/id_rsa",
		home + "/.ssh/id_ed25519",
	}
}
