package request

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/internal/model"
	"github.com/sailfish-community/dsme-go/types"
	"github.com/sailfish-community/dsme-go/x/strx"
)

// EnterMalfNotifier is the one Sink method Bootstrap calls directly.
type EnterMalfNotifier interface {
	EnterMalf(reason, component, details string)
}

// bootPrefixes are checked in order against the upper-cased BOOTSTATE
// value; none overlap, so order doesn't matter beyond readability.
var bootPrefixes = []string{"SHUTDOWN", "ACT_DEAD", "BOOT", "LOCAL", "TEST", "FLASH", "MALF", "USER"}

// Bootstrap implements module_init (SPEC_FULL.md §4.5): parses the
// BOOTSTATE environment string (default "USER") into Input Model state
// and, when residual text follows the recognized prefix, an ENTER_MALF
// broadcast — suppressed entirely in R&D mode. Called once, before the
// engine's dispatch loop starts; the final ChangeStateIfNecessary call
// is the same re-evaluation every other mutation in this package
// triggers.
func Bootstrap(log zerolog.Logger, m *model.Model, controller Controller, notifier EnterMalfNotifier, cfg types.RuntimeConfig, bootstate string) {
	log = log.With().Str("component", "request_surface").Str("op", "bootstrap").Logger()

	bootstate = strx.Coalesce(strings.TrimSpace(bootstate), "USER")

	prefix, rest := splitBootPrefix(bootstate)

	switch prefix {
	case "SHUTDOWN":
		m.SetCharger(types.ChargerDisconnected)
		m.SetShutdownRequested(true)

	case "USER":
		// Nothing beyond the possible residual MALF info handled below.

	case "ACT_DEAD":
		m.SetShutdownRequested(true)

	case "BOOT":
		m.SetRebootRequested(true)

	case "LOCAL", "TEST", "FLASH":
		m.SetTestmodeRequested(true)

	case "MALF":
		if rest == "" {
			rest = "SOFTWARE bootloader unspecified malf reason"
		}

	default:
		log.Warn().Str("bootstate", bootstate).Msg("unrecognized BOOTSTATE, forcing MALF")
		rest = "SOFTWARE bootloader unknown bootreason"
	}

	if rest != "" && !cfg.RDMode {
		reason, component, details := splitMalfInfo(rest)
		notifier.EnterMalf(reason, component, details)
	}

	controller.ChangeStateIfNecessary()
}

func splitBootPrefix(bootstate string) (prefix, rest string) {
	upper := strings.ToUpper(bootstate)
	for _, p := range bootPrefixes {
		if strings.HasPrefix(upper, p) {
			return p, strings.TrimSpace(bootstate[len(p):])
		}
	}
	return "", bootstate
}

// splitMalfInfo parses "REASON COMPONENT DETAILS" (space-split, DETAILS
// takes the remainder) out of the BOOTSTATE residual text.
func splitMalfInfo(rest string) (reason, component, details string) {
	fields := strings.SplitN(rest, " ", 3)
	switch len(fields) {
	case 0:
		return "", "", ""
	case 1:
		return fields[0], "", ""
	case 2:
		return fields[0], fields[1], ""
	default:
		return fields[0], fields[1], fields[2]
	}
}
