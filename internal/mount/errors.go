package mount

import "fmt"

// AlreadyMountedError reports that the computed generation directory is
// already a mount point — a clock anomaly or adversarial prep. We refuse
// to mount over it.
type AlreadyMountedError struct {
	Path string
}

func (e *AlreadyMountedError) Error() string {
	return fmt.Sprintf("generation directory already mounted: %s", e.Path)
}

// MountError wraps a failure to mount the in-RAM filesystem at a
// generation directory.
type MountError struct {
	Path string
	Err  error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("mounting %s: %v", e.Path, e.Err)
}

func (e *MountError) Unwrap() error { return e.Err }
