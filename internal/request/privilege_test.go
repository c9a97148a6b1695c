package request

import (
	"os/user"
	"strconv"
	"testing"

	"github.com/sailfish-community/dsme-go/types"
)

func TestUnixPrivilegeChecker_Root_AlwaysPrivileged(t *testing.T) {
	p := UnixPrivilegeChecker{}
	sender := types.Sender{UID: 0}
	if !p.IsPrivileged(sender, types.RuntimeConfig{}) {
		t.Fatal("expected uid 0 to always be privileged")
	}
}

func TestUnixPrivilegeChecker_NoGroupsConfigured_Unprivileged(t *testing.T) {
	p := UnixPrivilegeChecker{}
	sender := types.Sender{UID: 1000, Gids: []int{1000}}
	cfg := types.RuntimeConfig{WheelGroupPrivileged: false, PrivilegedGroups: nil}
	if p.IsPrivileged(sender, cfg) {
		t.Fatal("expected an unprivileged uid with no configured groups to be denied")
	}
}

func TestUnixPrivilegeChecker_ConfiguredGroup_PrivilegedWhenMember(t *testing.T) {
	g, err := user.LookupGroup("root")
	if err != nil {
		t.Skipf("no 'root' group resolvable in this environment: %v", err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		t.Skipf("could not parse root group gid %q: %v", g.Gid, err)
	}

	p := UnixPrivilegeChecker{}
	sender := types.Sender{UID: 1000, Gids: []int{gid}}
	cfg := types.RuntimeConfig{WheelGroupPrivileged: false, PrivilegedGroups: []string{"root"}}
	if !p.IsPrivileged(sender, cfg) {
		t.Fatal("expected membership in a configured privileged group to grant privilege")
	}
}

func TestUnixPrivilegeChecker_UnknownGroup_NotFoundSkipped(t *testing.T) {
	p := UnixPrivilegeChecker{}
	sender := types.Sender{UID: 1000, Gids: []int{9999}}
	cfg := types.RuntimeConfig{PrivilegedGroups: []string{"definitely-not-a-real-group-xyz"}}
	if p.IsPrivileged(sender, cfg) {
		t.Fatal("expected an unresolvable configured group name to never grant privilege")
	}
}
