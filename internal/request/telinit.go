package request

import (
	"strings"

	"github.com/sailfish-community/dsme-go/types"
)

// handleTelinit implements SPEC_FULL.md §4.5's TELINIT dispatch: a
// case-insensitive runlevel string maps to the corresponding per-state
// handler. Only the four runlevels the engine itself arbitrates are
// recognized here (shutdown/reboot/actdead/user); test/local only ever
// happen at bootstrap (see bootstrap.go) and have no TELINIT path,
// matching the teacher's narrow Config-over-bus-topic dispatch table
// in services/bridge/bridge.go — unknown strings log and are dropped
// rather than falling through to a default transition.
func (s *Surface) handleTelinit(p types.Telinit) {
	if !s.checkPrivilege(p.Sender, "telinit") {
		return
	}

	switch strings.ToLower(strings.TrimSpace(p.Runlevel)) {
	case "user":
		s.powerup()

	case "shutdown":
		s.usbGated(types.Shutdown, func() {
			s.model.SetShutdownRequested(true)
			s.model.SetActdeadRequested(false)
		})

	case "reboot":
		s.usbGated(types.Reboot, func() {
			s.model.SetRebootRequested(true)
			s.model.SetActdeadRequested(false)
		})

	case "actdead":
		s.model.SetActdeadRequested(true)
		s.controller.ChangeStateIfNecessary()

	default:
		s.log.Warn().Str("runlevel", p.Runlevel).Msg("telinit: unrecognized runlevel string")
	}
}
