package model

import "github.com/sailfish-community/dsme-go/types"

// SetCharger implements SET_CHARGER_STATE's "commit" half (the
// charger-disconnect grace timer in the Transition Controller decides
// *when* to call this; this setter only ever records the committed
// value).
func (m *Model) SetCharger(new types.ChargerState) {
	if m.charger == new {
		return
	}
	old := m.charger
	m.charger = new
	m.logChange("charger", old, new, false)
}

func (m *Model) SetAlarmPending(new bool) {
	if m.alarmPending == new {
		return
	}
	old := m.alarmPending
	m.alarmPending = new
	m.logChange("alarm_pending", old, new, false)
}

// SetDeviceOverheated is a one-way latch: setting false after true is a
// no-op at the model level (callers never do this, but the guard keeps
// the invariant true even under a buggy caller).
func (m *Model) SetDeviceOverheated(new bool) {
	if m.deviceOverheated || m.deviceOverheated == new {
		return
	}
	m.deviceOverheated = new
	m.logChange("device_overheated", false, new, true)
}

// SetEmergencyCallOngoing has side effects beyond assignment
// (SPEC_FULL.md §4.2): true aborts in-flight delayed-runlevel timers,
// false re-evaluates policy.
func (m *Model) SetEmergencyCallOngoing(new bool) {
	if m.emergencyCallOngoing == new {
		return
	}
	old := m.emergencyCallOngoing
	m.emergencyCallOngoing = new
	m.logChange("emergency_call_ongoing", old, new, true)

	if m.hooks == nil {
		return
	}
	m.hooks.EmergencyCallState(new)
	if new {
		m.hooks.StopDelayedRunlevelTimers()
	} else {
		m.hooks.ChangeStateIfNecessary()
	}
}

// SetShutdownBlocked implements BLOCK_SHUTDOWN/ALLOW_SHUTDOWN.
// Transitioning to true does NOT abort in-flight timers: a shutdown
// already scheduled proceeds. Transitioning to false clears both sticky
// request bits (the request that prompted the block is discarded) and
// re-evaluates policy.
func (m *Model) SetShutdownBlocked(new bool) {
	if m.shutdownBlocked == new {
		return
	}
	old := m.shutdownBlocked
	m.shutdownBlocked = new
	m.logChange("shutdown_blocked", old, new, false)

	if new {
		return
	}
	m.SetShutdownRequested(false)
	m.SetRebootRequested(false)
	if m.hooks != nil {
		m.hooks.ChangeStateIfNecessary()
	}
}

func (m *Model) SetMountedToPC(new bool) {
	if m.mountedToPC == new {
		return
	}
	old := m.mountedToPC
	m.mountedToPC = new
	m.logChange("mounted_to_pc", old, new, false)
}

// SetBatteryEmpty is a one-way latch.
func (m *Model) SetBatteryEmpty(new bool) {
	if m.batteryEmpty || m.batteryEmpty == new {
		return
	}
	m.batteryEmpty = new
	m.logChange("battery_empty", false, new, true)
}

// SetShutdownRequested is sticky until overridden by a powerup request
// (see request.Surface's Telinit "user" handler).
func (m *Model) SetShutdownRequested(new bool) {
	if m.shutdownRequested == new {
		return
	}
	old := m.shutdownRequested
	m.shutdownRequested = new
	m.logChange("shutdown_requested", old, new, false)
}

func (m *Model) SetActdeadRequested(new bool) {
	if m.actdeadRequested == new {
		return
	}
	old := m.actdeadRequested
	m.actdeadRequested = new
	m.logChange("actdead_requested", old, new, false)
}

func (m *Model) SetRebootRequested(new bool) {
	if m.rebootRequested == new {
		return
	}
	old := m.rebootRequested
	m.rebootRequested = new
	m.logChange("reboot_requested", old, new, false)
}

// SetTestmodeRequested is set only at startup (SPEC_FULL.md §3).
func (m *Model) SetTestmodeRequested(new bool) {
	if m.testmodeRequested == new {
		return
	}
	old := m.testmodeRequested
	m.testmodeRequested = new
	m.logChange("testmode_requested", old, new, false)
}

// SetActdeadSwitchDone is written by the runlevel_switch_done D-Bus
// handshake (Actdead case) in the Transition Controller.
func (m *Model) SetActdeadSwitchDone(new bool) {
	if m.actdeadSwitchDone == new {
		return
	}
	old := m.actdeadSwitchDone
	m.actdeadSwitchDone = new
	m.logChange("actdead_switch_done", old, new, false)
}

// SetUserSwitchDone is written by the runlevel_switch_done D-Bus
// handshake (User case) in the Transition Controller.
func (m *Model) SetUserSwitchDone(new bool) {
	if m.userSwitchDone == new {
		return
	}
	old := m.userSwitchDone
	m.userSwitchDone = new
	m.logChange("user_switch_done", old, new, false)
}

func (m *Model) SetBatteryLevel(new types.BatteryLevel) {
	if m.batteryLevel == new {
		return
	}
	old := m.batteryLevel
	m.batteryLevel = new
	m.logChange("battery_level", int(old), int(new), false)
}
