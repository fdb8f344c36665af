// Package runner spawns a child process with decrypted secrets exposed as
// environment variables and files under a private temp directory,
// forwards signals to it, and guarantees plaintext teardown on every exit
// path.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"filippo.io/age"
	"golang.org/x/sys/unix"

	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/materialize"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store"
)

// Runner spawns and supervises one child process per Run call.
type Runner struct {
	Store      store.Store
	Identities []age.Identity
}

// Run spawns argv with the configured exposures materialized into its
// environment and a private file directory, forwards signals until it
// exits, and returns its exit status.
//
// Ordering: env vars are set before files are written; files are written
// before the child is spawned; signal handlers are armed before any
// plaintext is written, so a signal arriving mid-setup cannot leak
// plaintext that was never created.
func (r *Runner) Run(ctx context.Context, argv []string, secrets secret.Set, exposures *exposure.Exposures) (int, error) {
	if len(argv) == 0 {
		return 0, ErrEmptyCommand
	}

	for name := range exposures.Files {
		if _, ok := secrets[name]; !ok {
			return 0, &NoSuchSecretError{SecretName: name}
		}
	}
	for name := range exposures.Envs {
		if _, ok := secrets[name]; !ok {
			return 0, &NoSuchSecretError{SecretName: name}
		}
	}

	tmpDir, err := os.MkdirTemp("", "credible-run-*")
	if err != nil {
		return 0, fmt.Errorf("create-tmpdir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Error("removing run tmpdir", "path", tmpDir, "error", err)
		}
	}()
	if err := os.Chmod(tmpDir, 0o700); err != nil {
		return 0, fmt.Errorf("chmod-tmpdir: %w", err)
	}

	sigCh := make(chan os.Signal, 16)
	signal.Notify(sigCh, catchableSignals()...)
	defer signal.Stop(sigCh)

	vanityPaths := collectVanityPaths(exposures)
	defer func() {
		for _, path := range vanityPaths {
			if err := materialize.RemoveVanitySymlink(path); err != nil {
				slog.Warn("unlinking vanity symlink", "path", path, "error", err)
			}
		}
	}()

	envMat := &materialize.EnvMaterializer{Store: r.Store, Identities: r.Identities}
	extraEnv, err := envMat.Materialize(ctx, secrets, exposures.Envs)
	if err != nil {
		return 0, err
	}

	fileMat := &materialize.FileMaterializer{Store: r.Store, Identities: r.Identities}
	if err := fileMat.Materialize(ctx, tmpDir, secrets, exposures.Files); err != nil {
		return 0, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "SECRETS_FILE_DIR="+tmpDir)
	for k, v := range extraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Start(); err != nil {
		return 0, &SpawnError{Argv: argv, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	for {
		select {
		case err := <-done:
			return exitCodeOf(err), nil
		case sig := <-sigCh:
			if s, ok := sig.(syscall.Signal); ok {
				if err := unix.Kill(cmd.Process.Pid, unix.Signal(s)); err != nil {
					slog.Error("forwarding signal", "signal", sig, "pid", cmd.Process.Pid, "error", err)
				}
			}
		}
	}
}

func collectVanityPaths(exposures *exposure.Exposures) []string {
	var paths []string
	for _, specs := range exposures.Files {
		for _, f := range specs {
			if f.VanityPath != "" {
				paths = append(paths, f.VanityPath)
			}
		}
	}
	return paths
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
