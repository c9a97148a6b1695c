package types

// Runlevel is the fixed-integer code exposed on the wire to the init
// module (D-Bus CHANGE_RUNLEVEL/SHUTDOWN messages and the
// runlevel_switch_done signal carry exactly these values).
type Runlevel int32

const (
	RunlevelShutdown Runlevel = 0
	RunlevelMalf     Runlevel = 2
	RunlevelTest     Runlevel = 3
	RunlevelLocal    Runlevel = 3 // shares Test's code; see ToRunlevel.
	RunlevelActdead  Runlevel = 4
	RunlevelUser     Runlevel = 5
	RunlevelReboot   Runlevel = 6
)

// ToRunlevel maps a device state to its runlevel. The mapping is total:
// NotSet, Boot and any state this switch doesn't otherwise recognize
// fall through to Shutdown.
//
// Local shares Test's numeric code (3) in the upstream implementation,
// and the switch there falls through Local into the Actdead case by
// accident of C case-label ordering rather than design. SPEC_FULL.md
// §9 calls this out as a possible bug and asks for it to be reproduced
// literally rather than "fixed": Local maps to RunlevelActdead here,
// not RunlevelLocal/RunlevelTest.
func ToRunlevel(s DeviceState) Runlevel {
	switch s {
	case User:
		return RunlevelUser
	case Actdead:
		return RunlevelActdead
	case Reboot:
		return RunlevelReboot
	case Test:
		return RunlevelTest
	case Local:
		return RunlevelActdead
	case Malf:
		return RunlevelMalf
	case Shutdown:
		return RunlevelShutdown
	default: // NotSet, Boot, anything unrecognized
		return RunlevelShutdown
	}
}
