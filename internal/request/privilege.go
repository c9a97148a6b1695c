package request

import (
	"os/user"
	"strconv"

	"github.com/sailfish-community/dsme-go/types"
)

// PrivilegeChecker decides whether a Sender may issue TELINIT,
// SHUTDOWN_REQ, REBOOT_REQ or POWERUP_REQ (SPEC_FULL.md §4.5). The
// spec explicitly scopes the privilege-check mechanism itself out of
// the core (spec.md §1); this interface is the injection point, the
// same shape as the teacher's I2CBusFactory/PinFactory in
// services/hal/registry.go.
type PrivilegeChecker interface {
	IsPrivileged(sender types.Sender, cfg types.RuntimeConfig) bool
}

// UnixPrivilegeChecker is the production implementation: root, or
// membership of "wheel" (when configured) or any of
// cfg.PrivilegedGroups.
type UnixPrivilegeChecker struct{}

func (UnixPrivilegeChecker) IsPrivileged(sender types.Sender, cfg types.RuntimeConfig) bool {
	if sender.UID == 0 {
		return true
	}

	want := map[string]bool{}
	for _, name := range cfg.PrivilegedGroups {
		want[name] = true
	}
	if cfg.WheelGroupPrivileged {
		want["wheel"] = true
	}
	if len(want) == 0 {
		return false
	}

	privileged := map[int]bool{}
	for name := range want {
		g, err := user.LookupGroup(name)
		if err != nil {
			continue
		}
		gid, err := strconv.Atoi(g.Gid)
		if err != nil {
			continue
		}
		privileged[gid] = true
	}

	for _, gid := range sender.Gids {
		if privileged[gid] {
			return true
		}
	}
	return false
}
