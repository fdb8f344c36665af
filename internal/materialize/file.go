package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"filippo.io/age"

	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store"
)

const defaultFileMode = 0o400

// FileMaterializer writes decrypted secret plaintext into files under a
// target root directory, optionally symlinking a vanity path to each.
type FileMaterializer struct {
	Store      store.Store
	Identities []age.Identity
}

// Materialize writes one file per secret referenced in files, rooted at
// root (either the run-command tmpdir or a mount generation directory).
// Each secret's ciphertext is fetched and decrypted exactly once even if it
// has multiple File specs.
func (m *FileMaterializer) Materialize(ctx context.Context, root string, secrets secret.Set, files map[string][]exposure.File) error {
	for name, specs := range files {
		s, ok := secrets[name]
		if !ok {
			return &exposure.UnknownSecretError{SecretName: name}
		}

		plaintext, err := fetchAndDecrypt(ctx, m.Store, m.Identities, s)
		if err != nil {
			return err
		}

		writeErr := m.writeSecret(root, s, plaintext, specs)
		scrub(plaintext)
		if writeErr != nil {
			return writeErr
		}
	}
	return nil
}

func (m *FileMaterializer) writeSecret(root string, s secret.Secret, plaintext []byte, specs []exposure.File) error {
	dest := filepath.Join(root, s.Name)

	if err := createFile(dest, plaintext, defaultFileMode); err != nil {
		return fmt.Errorf("creating file for secret %q: %w", s.Name, err)
	}

	for _, spec := range specs {
		mode := os.FileMode(defaultFileMode)
		if spec.Mode != 0 {
			mode = os.FileMode(spec.Mode)
		}
		if err := os.Chmod(dest, mode); err != nil {
			return fmt.Errorf("setting mode for secret %q: %w", s.Name, err)
		}

		owner, group := spec.Owner, spec.Group
		if owner == "" {
			owner = s.OwnerUser
		}
		if group == "" {
			group = s.OwnerGroup
		}
		if owner != "" || group != "" {
			uid, gid, err := resolveOwner(owner, group)
			if err != nil {
				return fmt.Errorf("secret %q: %w", s.Name, err)
			}
			if err := os.Chown(dest, uid, gid); err != nil {
				return fmt.Errorf("chown %q: %w", dest, err)
			}
		}

		if spec.VanityPath != "" {
			if err := createVanitySymlink(spec.VanityPath, dest); err != nil {
				return fmt.Errorf("secret %q: %w", s.Name, err)
			}
		}
	}

	return nil
}

func createFile(dest string, content []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer f.Close()

	if err := f.Chmod(mode); err != nil {
		return fmt.Errorf("setting mode: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	return nil
}

// createVanitySymlink unlinks any existing symlink at path and points a
// fresh one at target.
func createVanitySymlink(path, target string) error {
	if fi, err := os.Lstat(path); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing existing symlink %q: %w", path, err)
			}
		} else {
			return fmt.Errorf("%q exists and is not a symlink, refusing to overwrite", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("statting %q: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory for %q: %w", path, err)
	}

	if err := os.Symlink(target, path); err != nil {
		return fmt.Errorf("creating symlink %q -> %q: %w", path, target, err)
	}
	return nil
}

// RemoveVanitySymlink best-effort unlinks path if it is a symlink. Errors
// are intentionally swallowed by callers (logged, not propagated) per the
// child runner's teardown semantics: the tmpdir target is already gone by
// the time this runs.
func RemoveVanitySymlink(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(path)
}
