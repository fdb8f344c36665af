//go:build linux

package mount

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// mountRAMFS mounts a fresh ramfs at path, matching the effect of
// `mount -t ramfs none path -o nodev,nosuid,mode=0751`.
func mountRAMFS(path string) error {
	if err := os.MkdirAll(path, 0o751); err != nil {
		return fmt.Errorf("creating generation directory: %w", err)
	}
	flags := uintptr(unix.MS_NODEV | unix.MS_NOSUID)
	if err := unix.Mount("none", path, "ramfs", flags, "mode=0751"); err != nil {
		return fmt.Errorf("mounting ramfs: %w", err)
	}
	return nil
}

// unmountRAMFS unmounts path (Linux: umount).
func unmountRAMFS(path string) error {
	if err := unix.Unmount(path, 0); err != nil {
		return fmt.Errorf("unmounting ramfs: %w", err)
	}
	return nil
}

// isMountPoint reports whether path is a filesystem boundary relative to
// its parent directory — the device id differs.
func isMountPoint(path string) (bool, error) {
	parent := path + "/.."

	var pathStat, parentStat syscall.Stat_t
	if err := syscall.Stat(path, &pathStat); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %q: %w", path, err)
	}
	if err := syscall.Stat(parent, &parentStat); err != nil {
		return false, fmt.Errorf("stat %q: %w", parent, err)
	}

	return pathStat.Dev != parentStat.Dev, nil
}
