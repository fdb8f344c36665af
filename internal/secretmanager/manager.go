// Package secretmanager is the top-level façade: create, edit, upload,
// run-command, mount, unmount. It wires the crypto pipeline, the store
// driver, the materializers, the child runner, and the mount controller
// together and surfaces every failure through a single Error type.
package secretmanager

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/google/uuid"

	"github.com/kclejeune/credible/internal/cryptoio"
	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/mount"
	"github.com/kclejeune/credible/internal/runner"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store"
)

// Manager owns the store driver and decryption identities shared by every
// operation, plus the configured secret set addressed by name.
type Manager struct {
	Store      store.Store
	Identities []age.Identity
	Secrets    secret.Set
}

func (m *Manager) lookup(name string) (secret.Secret, error) {
	s, ok := m.Secrets[name]
	if !ok {
		return secret.Secret{}, &NoSuchSecretError{SecretName: name}
	}
	return s, nil
}

// Create encrypts the contents of sourcePath (or stdin, if sourcePath is
// empty) to the secret's configured recipients and writes the ciphertext to
// the store under its key. It is identical to Upload; both exist because
// the CLI distinguishes "first write" from "overwrite" at the UX level
// only.
func (m *Manager) Create(ctx context.Context, secretName, sourcePath string) error {
	return wrap("create", m.encryptAndStore(ctx, secretName, sourcePath))
}

// Upload encrypts sourcePath's contents and replaces the secret's stored
// ciphertext.
func (m *Manager) Upload(ctx context.Context, secretName, sourcePath string) error {
	return wrap("upload", m.encryptAndStore(ctx, secretName, sourcePath))
}

func (m *Manager) encryptAndStore(ctx context.Context, secretName, sourcePath string) error {
	s, err := m.lookup(secretName)
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if sourcePath != "" {
		f, err := os.Open(sourcePath)
		if err != nil {
			return fmt.Errorf("opening source %q: %w", sourcePath, err)
		}
		defer f.Close()
		src = f
	}

	recipients, err := cryptoio.ParseRecipients(s.Recipients)
	if err != nil {
		return err
	}

	ciphertext, handle, err := cryptoio.Encrypt(src, recipients)
	if err != nil {
		return err
	}

	if err := m.Store.Write(ctx, s.Key, ciphertext); err != nil {
		return err
	}

	return handle.Wait()
}

// Edit fetches and decrypts secretName's current value to a private temp
// file, spawns editor on it, and on a clean exit re-encrypts and writes the
// edited contents back. A non-zero editor exit leaves the store untouched.
func (m *Manager) Edit(ctx context.Context, secretName string, editor []string) error {
	if err := m.edit(ctx, secretName, editor); err != nil {
		return wrap("edit", err)
	}
	return nil
}

func (m *Manager) edit(ctx context.Context, secretName string, editor []string) error {
	if len(editor) == 0 {
		return fmt.Errorf("no editor configured")
	}

	s, err := m.lookup(secretName)
	if err != nil {
		return err
	}

	ciphertext, err := m.Store.Read(ctx, s.Key)
	if err != nil {
		return fmt.Errorf("fetching secret %q: %w", s.Name, err)
	}
	plainReader, err := cryptoio.Decrypt(ciphertext, m.Identities)
	if err != nil {
		ciphertext.Close()
		return fmt.Errorf("decrypting secret %q: %w", s.Name, err)
	}
	plaintext, err := io.ReadAll(plainReader)
	ciphertext.Close()
	if err != nil {
		return fmt.Errorf("reading decrypted secret %q: %w", s.Name, err)
	}
	defer clear(plaintext)

	// The temp file's name is unique per invocation so concurrent edits of
	// different secrets never collide; its filesystem is whatever os.TempDir
	// provides, which is not guaranteed RAM-backed (spec §9).
	tmpPath := filepath.Join(os.TempDir(), "credible-edit-"+uuid.NewString())
	if err := os.WriteFile(tmpPath, plaintext, 0o600); err != nil {
		return fmt.Errorf("writing editor temp file: %w", err)
	}
	defer func() {
		if err := scrubFile(tmpPath); err != nil {
			os.Remove(tmpPath)
		}
	}()

	cmd := exec.Command(editor[0], append(editor[1:], tmpPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &EditorBadExitError{Editor: strings.Join(editor, " "), ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("running editor: %w", err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("reading edited file: %w", err)
	}
	defer clear(edited)

	recipients, err := cryptoio.ParseRecipients(s.Recipients)
	if err != nil {
		return err
	}

	cipherOut, handle, err := cryptoio.Encrypt(strings.NewReader(string(edited)), recipients)
	if err != nil {
		return err
	}
	if err := m.Store.Write(ctx, s.Key, cipherOut); err != nil {
		return err
	}
	return handle.Wait()
}

// scrubFile best-effort overwrites a temp file with zeroes before removing
// it, narrowing the window plaintext spends resident on disk.
func scrubFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	zeros := make([]byte, info.Size())
	if err := os.WriteFile(path, zeros, 0o600); err != nil {
		return err
	}
	return os.Remove(path)
}

// RunCommand spawns argv with the given exposures materialized, forwarding
// signals until it exits, and returns its exit code.
func (m *Manager) RunCommand(ctx context.Context, argv []string, exposures *exposure.Exposures) (int, error) {
	r := &runner.Runner{Store: m.Store, Identities: m.Identities}
	code, err := r.Run(ctx, argv, m.Secrets, exposures)
	if err != nil {
		return code, wrap("run-command", err)
	}
	return code, nil
}

// Mount creates a new generation of the persistent mount and swaps the
// stable symlink to point at it.
func (m *Manager) Mount(ctx context.Context, base, stableDir string, fileExposures map[string][]exposure.File) error {
	ctl := &mount.Controller{Store: m.Store, Identities: m.Identities}
	return wrap("mount", ctl.Mount(ctx, base, stableDir, m.Secrets, fileExposures))
}

// Unmount tears down every generation under base and removes the stable
// symlink.
func (m *Manager) Unmount(base, stableDir string) error {
	ctl := &mount.Controller{Store: m.Store, Identities: m.Identities}
	return wrap("unmount", ctl.Unmount(base, stableDir, ""))
}
