// Package mount implements the generation-based persistent secret mount:
// atomic replacement of a stable secret directory backed by a fresh
// in-RAM filesystem per generation, with cleanup of prior generations.
package mount

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"filippo.io/age"
	"golang.org/x/sys/unix"

	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/fsutil"
	"github.com/kclejeune/credible/internal/materialize"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store"
)

// DefaultBase and DefaultStableDir are the conventional persistent mount
// paths (see spec's external interfaces section).
const (
	DefaultBase      = "/run/credible.d"
	DefaultStableDir = "/run/credible"
)

// Controller owns the generation lifecycle for a mount base/stable-dir
// pair.
type Controller struct {
	Store      store.Store
	Identities []age.Identity
}

// Mount creates a new generation directory, mounts a fresh in-RAM
// filesystem there, materializes every configured secret into it (plus any
// additional vanity symlinks from fileExposures), atomically swaps the
// stable symlink to point at it, and purges every prior generation under
// base.
func (c *Controller) Mount(ctx context.Context, base, stableDir string, secrets secret.Set, fileExposures map[string][]exposure.File) error {
	generation := generationName()
	genDir := filepath.Join(base, generation)

	mounted, err := isMountPoint(genDir)
	if err != nil {
		return fmt.Errorf("mount-check: %w", err)
	}
	if mounted {
		return &AlreadyMountedError{Path: genDir}
	}

	if err := os.MkdirAll(genDir, 0o751); err != nil {
		return fmt.Errorf("create generation directory: %w", err)
	}

	if err := mountRAMFS(genDir); err != nil {
		return &MountError{Path: genDir, Err: err}
	}
	slog.Info("mounted generation", "path", genDir)

	fm := &materialize.FileMaterializer{Store: c.Store, Identities: c.Identities}
	if err := fm.Materialize(ctx, genDir, secrets, withDefaultFileExposures(secrets, fileExposures)); err != nil {
		return fmt.Errorf("materializing generation %s: %w", generation, err)
	}

	if err := swapStableSymlink(stableDir, genDir); err != nil {
		return fmt.Errorf("symlink: %w", err)
	}
	slog.Info("swapped stable symlink", "stable", stableDir, "generation", genDir)

	if err := purgeOtherGenerations(base, generation); err != nil {
		return err
	}
	fsutil.CleanEmptyDirs(base)

	return nil
}

// Unmount purges every generation under base except skip (pass "" to purge
// all of them) and removes stableDir if it is a symlink.
func (c *Controller) Unmount(base, stableDir, skip string) error {
	if err := purgeOtherGenerations(base, skip); err != nil {
		return err
	}
	fsutil.CleanEmptyDirs(base)

	if fi, err := os.Lstat(stableDir); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			if err := os.Remove(stableDir); err != nil {
				return fmt.Errorf("removing stable symlink: %w", err)
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("statting stable dir: %w", err)
	}

	return nil
}

// withDefaultFileExposures ensures every secret in secrets is materialized:
// a secret already covered by an explicit File exposure is left alone;
// anything else gets a default exposure at root/<name>, with its
// secret.MountPath (if set) as an additional vanity symlink. Mount is
// unconditional over the whole configured secret set — fileExposures only
// adds vanity paths on top of that, it never narrows which secrets appear.
func withDefaultFileExposures(secrets secret.Set, fileExposures map[string][]exposure.File) map[string][]exposure.File {
	merged := make(map[string][]exposure.File, len(secrets))
	for name, specs := range fileExposures {
		merged[name] = specs
	}
	for name, s := range secrets {
		if _, ok := merged[name]; ok {
			continue
		}
		merged[name] = []exposure.File{{SecretName: name, VanityPath: s.MountPath}}
	}
	return merged
}

func swapStableSymlink(stableDir, genDir string) error {
	if _, err := os.Lstat(stableDir); err == nil {
		if err := os.Remove(stableDir); err != nil {
			return fmt.Errorf("removing existing stable dir: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("statting stable dir: %w", err)
	}

	if err := os.Symlink(genDir, stableDir); err != nil {
		return fmt.Errorf("creating stable symlink: %w", err)
	}
	return nil
}

// purgeOtherGenerations enumerates base and unmounts+removes every child
// whose name is not skip. Errors from one child do not prevent attempting
// the rest; the first error encountered is returned after the sweep
// completes.
func purgeOtherGenerations(base, skip string) error {
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list-old: %w", err)
	}

	var firstErr error
	for _, entry := range entries {
		if entry.Name() == skip {
			continue
		}
		childPath := filepath.Join(base, entry.Name())

		mounted, err := isMountPoint(childPath)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("mount-check %s: %w", childPath, err)
			}
			continue
		}
		if mounted {
			if err := unmountRAMFS(childPath); err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("delete-old %s: %w", childPath, err)
				}
				continue
			}
		}

		if err := os.Remove(childPath); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("delete-old %s: %w", childPath, err)
			}
		}
	}

	return firstErr
}

// generationName returns the monotonic milliseconds since boot as a
// decimal string, naming a new generation directory uniquely without a
// global lock.
func generationName() string {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Extremely unlikely; fall back to a wall-clock millisecond
		// reading rather than failing the mount outright.
		return strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	ms := int64(ts.Sec)*1000 + int64(ts.Nsec)/1_000_000
	return strconv.FormatInt(ms, 10)
}
