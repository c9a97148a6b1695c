// Package policy implements the Policy Evaluator (SPEC_FULL.md §4.3): a
// pure function from a snapshot of the Input Model to a target
// DeviceState. It has no collaborators and no side effects, by design —
// grounded on the teacher's preference for small allocation-free pure
// helpers (x/mathx, x/strx) scaled up to the one function that actually
// carries product-level decision logic in this engine.
package policy

import "github.com/sailfish-community/dsme-go/types"

// Inputs is the subset of the Input Model the evaluator reads, plus the
// one external fact (home_is_encrypted) the spec delegates to a
// memoized probe.
type Inputs struct {
	EmergencyCallOngoing bool
	DeviceOverheated     bool
	BatteryEmpty         bool
	ShutdownBlocked      bool
	TestmodeRequested    bool
	ActdeadRequested     bool
	ShutdownRequested    bool
	RebootRequested      bool
	Charger              types.ChargerState
	AlarmPending         bool
	CurrentState         types.DeviceState

	// HomeEncrypted is the one-time LUKS probe result, cached for the
	// process lifetime by whoever builds Inputs (see
	// internal/transition).
	HomeEncrypted bool
}

// Select runs the eight rules of SPEC_FULL.md §4.3 in strict order; the
// first matching rule wins. The rule ordering is total: for any given
// Inputs value exactly one rule fires (SPEC_FULL.md §8 property 5).
func Select(in Inputs) types.DeviceState {
	switch {
	case in.EmergencyCallOngoing:
		// Rule 1: no transition while an emergency call is ongoing.
		return in.CurrentState

	case in.DeviceOverheated:
		// Rule 2: latched thermal emergency always wins over battery/
		// request state.
		return types.Shutdown

	case in.BatteryEmpty:
		// Rule 3.
		return types.Shutdown

	case in.ShutdownBlocked:
		// Rule 4: no transition while a block is in effect.
		return in.CurrentState

	case in.TestmodeRequested:
		// Rule 5.
		return types.Test

	case in.ActdeadRequested:
		// Rule 6.
		return types.Actdead

	case in.ShutdownRequested || in.RebootRequested:
		// Rule 7. Shutdown wins only when shutdown_requested is set, the
		// charger is Disconnected, and no alarm is pending or the home
		// is encrypted. Otherwise reboot_requested, if set, yields
		// Reboot — also when shutdown_requested is set alongside it and
		// the charger is connected or unknown. A shutdown request that
		// fails the shutdown clause with no reboot request falls back
		// to Actdead.
		if in.ShutdownRequested && in.Charger == types.ChargerDisconnected &&
			(!in.AlarmPending || in.HomeEncrypted) {
			return types.Shutdown
		}
		if in.RebootRequested {
			return types.Reboot
		}
		return types.Actdead

	default:
		// Rule 8.
		return types.User
	}
}
