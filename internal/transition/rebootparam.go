package transition

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sailfish-community/dsme-go/errcode"
	"github.com/sailfish-community/dsme-go/types"
)

// lookupRebootParam reads /etc/dsme/reboot-to-<target>-<with|without-charger>.param
// (SPEC_FULL.md §6) and returns its first line. Any error (missing
// file, permission denied, empty file) is treated as "no such config",
// per SPEC_FULL.md §7's "transient system call failure -> documented
// default" rule — the caller falls back to plain Shutdown.
func (c *Controller) lookupRebootParam(target string) (string, bool) {
	suffix := "without-charger"
	if c.model.Charger() == types.ChargerConnected {
		suffix = "with-charger"
	}
	dir := c.cfg.RebootParamDir
	if dir == "" {
		dir = "/etc/dsme"
	}
	path := filepath.Join(dir, fmt.Sprintf("reboot-to-%s-%s.param", target, suffix))

	f, err := os.Open(path)
	if err != nil {
		c.log.Warn().
			Err(&errcode.E{C: errcode.RebootParamMissing, Op: "lookupRebootParam", Err: err}).
			Str("path", path).Msg("no reboot-param config for target")
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return "", false
	}
	line := sc.Text()
	if line == "" {
		return "", false
	}
	return line, true
}

// writeRebootParam is the single writer of /run/systemd/reboot-param
// (SPEC_FULL.md §5: writer-exclusive to this process).
func (c *Controller) writeRebootParam(param string) error {
	out := c.cfg.RebootParamOut
	if out == "" {
		out = "/run/systemd/reboot-param"
	}
	return os.WriteFile(out, []byte(param+"\n"), 0o644)
}

// removeStaleRebootParam deletes a leftover reboot-param file when no
// per-target config exists for this transition, so a later plain boot
// doesn't pick up a parameter intended for a different target.
func (c *Controller) removeStaleRebootParam() {
	out := c.cfg.RebootParamOut
	if out == "" {
		out = "/run/systemd/reboot-param"
	}
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		c.log.Warn().
			Err(&errcode.E{C: errcode.RebootParamMissing, Op: "removeStaleRebootParam", Err: err}).
			Str("path", out).Msg("failed to remove stale reboot-param")
	}
}
