//go:build darwin

package mount

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// mountRAMFS creates a RAM disk and mounts an HFS+ filesystem at path,
// matching `hdiutil attach -nomount ram://…`, `newfs_hfs -v credible`,
// `mount -t hfs -o nobrowse,nodev,nosuid,-m=0751`.
func mountRAMFS(path string) error {
	if err := os.MkdirAll(path, 0o751); err != nil {
		return fmt.Errorf("creating generation directory: %w", err)
	}

	// 8192 sectors * 512 bytes = 4MB RAM disk.
	out, err := exec.Command("hdiutil", "attach", "-nomount", "ram://8192").Output()
	if err != nil {
		return fmt.Errorf("hdiutil attach: %w", err)
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) == 0 {
		return fmt.Errorf("hdiutil attach: unexpected empty output")
	}
	device := fields[0]

	if err := exec.Command("newfs_hfs", "-v", "credible", device).Run(); err != nil {
		_ = exec.Command("hdiutil", "detach", device).Run()
		return fmt.Errorf("newfs_hfs: %w", err)
	}

	if err := exec.Command("mount", "-t", "hfs", "-o", "nobrowse,nodev,nosuid,-m=0751", device, path).Run(); err != nil {
		_ = exec.Command("hdiutil", "detach", device).Run()
		return fmt.Errorf("mount: %w", err)
	}

	return nil
}

// unmountRAMFS resolves the RAM device backing path via `diskutil info
// -plist`, unmounts the filesystem, then detaches the device.
func unmountRAMFS(path string) error {
	device, err := deviceNodeFor(path)
	if err != nil {
		return fmt.Errorf("resolving device for %q: %w", path, err)
	}

	if err := exec.Command("umount", path).Run(); err != nil {
		return fmt.Errorf("umount %q: %w", path, err)
	}

	if device != "" {
		if err := exec.Command("hdiutil", "detach", device, "-force").Run(); err != nil {
			return fmt.Errorf("hdiutil detach %q: %w", device, err)
		}
	}

	return nil
}

// deviceNodeFor shells out to `diskutil info -plist path` and extracts the
// DeviceNode key via plutil, avoiding a full plist-parsing dependency for
// one string field.
func deviceNodeFor(path string) (string, error) {
	out, err := exec.Command("diskutil", "info", "-plist", path).Output()
	if err != nil {
		return "", fmt.Errorf("diskutil info: %w", err)
	}

	extract := exec.Command("plutil", "-extract", "DeviceNode", "raw", "-o", "-", "-")
	extract.Stdin = strings.NewReader(string(out))
	devOut, err := extract.Output()
	if err != nil {
		return "", fmt.Errorf("plutil extract DeviceNode: %w", err)
	}

	return strings.TrimSpace(string(devOut)), nil
}

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
