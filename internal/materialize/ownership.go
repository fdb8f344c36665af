package materialize

import (
	"fmt"
	"os/user"
	"strconv"
)

// resolveOwner resolves an owner/group string pair to numeric uid/gid,
// accepting either a bare numeric id or a name looked up via os/user. An
// empty string means "unchanged" and is reported as -1, matching the chown
// syscall convention of leaving a -1 component untouched.
func resolveOwner(owner, group string) (uid, gid int, err error) {
	uid, err = resolveUID(owner)
	if err != nil {
		return 0, 0, err
	}
	gid, err = resolveGID(group)
	if err != nil {
		return 0, 0, err
	}
	return uid, gid, nil
}

func resolveUID(owner string) (int, error) {
	if owner == "" {
		return -1, nil
	}
	if n, err := strconv.Atoi(owner); err == nil {
		return n, nil
	}
	u, err := user.Lookup(owner)
	if err != nil {
		return 0, fmt.Errorf("resolving owner %q: %w", owner, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, fmt.Errorf("owner %q: unparseable uid %q: %w", owner, u.Uid, err)
	}
	return uid, nil
}

func resolveGID(group string) (int, error) {
	if group == "" {
		return -1, nil
	}
	if n, err := strconv.Atoi(group); err == nil {
		return n, nil
	}
	g, err := user.LookupGroup(group)
	if err != nil {
		return 0, fmt.Errorf("resolving group %q: %w", group, err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, fmt.Errorf("group %q: unparseable gid %q: %w", group, g.Gid, err)
	}
	return gid, nil
}
