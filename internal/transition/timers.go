package transition

import (
	"time"

	"github.com/sailfish-community/dsme-go/errcode"
	"github.com/sailfish-community/dsme-go/types"
)

// startDelayedShutdownTimer arms the shutdown-delay timer unless one is
// already armed — "the first scheduled timer wins" (SPEC_FULL.md §4.4).
// Failure to allocate it is fatal: the process quits with EXIT_FAILURE
// (SPEC_FULL.md §7).
func (c *Controller) startDelayedShutdownTimer() {
	if c.shutdownDelay != nil {
		return
	}
	h, err := c.timers.Schedule(shutdownTimerTimeout, c.fireShutdownTimer)
	if err != nil {
		c.log.Error().Err(err).Msg("fatal: failed to allocate shutdown-delay timer")
		c.exit(1)
		return
	}
	c.shutdownDelay = h
}

func (c *Controller) fireShutdownTimer() bool {
	c.shutdownDelay = nil
	c.sink.Shutdown(types.ToRunlevel(c.model.CurrentState()))
	return false
}

// threeDelayTimersNull reports whether none of the shutdown/actdead/
// user delay timers are currently armed — the precondition
// SPEC_FULL.md §4.4 imposes on every delay starter except
// startDelayedShutdownTimer itself.
func (c *Controller) threeDelayTimersNull() bool {
	return c.shutdownDelay == nil && c.actdeadDelay == nil && c.userDelay == nil
}

func (c *Controller) startUserDelayTimer(d time.Duration) {
	if !c.threeDelayTimersNull() {
		return
	}
	h, err := c.timers.Schedule(d, c.fireUserDelayTimer)
	if err != nil {
		c.log.Error().Err(&errcode.E{C: errcode.TimerAllocFailed, Op: "startUserDelayTimer", Err: err}).
			Msg("user-delay timer allocation failed, firing inline")
		c.fireUserDelayTimer()
		return
	}
	c.userDelay = h
}

func (c *Controller) fireUserDelayTimer() bool {
	c.userDelay = nil
	c.sink.ChangeRunlevel(types.RunlevelUser)
	return false
}

func (c *Controller) startActdeadDelayTimer(d time.Duration) {
	if !c.threeDelayTimersNull() {
		return
	}
	h, err := c.timers.Schedule(d, c.fireActdeadDelayTimer)
	if err != nil {
		c.log.Error().Err(&errcode.E{C: errcode.TimerAllocFailed, Op: "startActdeadDelayTimer", Err: err}).
			Msg("actdead-delay timer allocation failed, firing inline")
		c.fireActdeadDelayTimer()
		return
	}
	c.actdeadDelay = h
}

func (c *Controller) fireActdeadDelayTimer() bool {
	c.actdeadDelay = nil
	c.sink.ChangeRunlevel(types.RunlevelActdead)
	return false
}

// EmergencyCallState forwards the Input Model's emergency_call_ongoing
// bit onto the bus as SET_EMERGENCY_CALL_STATE (SPEC_FULL.md §6),
// mirroring the original emergencycalltracker's status broadcast so any
// subscriber (the D-Bus bridge included) can observe the call state
// independently of STATE_CHANGE_IND.
func (c *Controller) EmergencyCallState(ongoing bool) {
	c.sink.EmergencyCallState(ongoing)
}

// StopDelayedRunlevelTimers cancels the shutdown-delay, actdead-delay
// and user-delay timers together. Called when an emergency call starts
// (model.SetEmergencyCallOngoing's hook) to abort any in-flight
// shutdown/reboot/actdead/user transition.
func (c *Controller) StopDelayedRunlevelTimers() {
	c.timers.Cancel(c.shutdownDelay)
	c.shutdownDelay = nil
	c.timers.Cancel(c.actdeadDelay)
	c.actdeadDelay = nil
	c.timers.Cancel(c.userDelay)
	c.userDelay = nil
}

// HandleRunlevelSwitchDone implements the runlevel_switch_done D-Bus
// handshake (SPEC_FULL.md §4.4): Actdead marks actdead_switch_done and
// fires any pending user-delay timer immediately; User is symmetric.
func (c *Controller) HandleRunlevelSwitchDone(rl types.Runlevel) {
	switch rl {
	case types.RunlevelActdead:
		c.model.SetActdeadSwitchDone(true)
		if c.userDelay != nil {
			h := c.userDelay
			c.userDelay = nil
			c.timers.FireNow(h)
		}
	case types.RunlevelUser:
		c.model.SetUserSwitchDone(true)
		if c.actdeadDelay != nil {
			h := c.actdeadDelay
			c.actdeadDelay = nil
			c.timers.FireNow(h)
		}
	}
}

// HandleThermalStatus implements SET_THERMAL_STATUS. Only Overheated
// arms the latch timer; normalization never unlatches (SPEC_FULL.md
// §4.4) and is a no-op here.
func (c *Controller) HandleThermalStatus(status types.ThermalStatus) {
	if status != types.ThermalOverheated {
		return
	}
	if c.overheatTimer != nil {
		return
	}
	h, err := c.timers.Schedule(thermalShutdownTimeout, c.fireOverheatTimer)
	if err != nil {
		c.log.Error().Err(&errcode.E{C: errcode.TimerAllocFailed, Op: "HandleThermalStatus", Err: err}).
			Msg("overheat timer allocation failed, firing inline")
		c.fireOverheatTimer()
		return
	}
	c.overheatTimer = h
}

func (c *Controller) fireOverheatTimer() bool {
	c.overheatTimer = nil
	c.model.SetDeviceOverheated(true)
	c.ChangeStateIfNecessary()
	return false
}

// HandleBatteryState implements SET_BATTERY_STATE.
func (c *Controller) HandleBatteryState(empty bool) {
	if empty {
		c.sink.BatteryEmptyInd()
		if c.batteryEmptyTimer != nil {
			return
		}
		h, err := c.timers.Schedule(batteryEmptyTimeout, c.fireBatteryEmptyTimer)
		if err != nil {
			c.log.Error().Err(&errcode.E{C: errcode.TimerAllocFailed, Op: "HandleBatteryState", Err: err}).
				Msg("battery-empty timer allocation failed, firing inline")
			c.fireBatteryEmptyTimer()
			return
		}
		c.batteryEmptyTimer = h
		return
	}

	// empty: false cancels the timer if the latch has not yet engaged.
	if c.model.BatteryEmpty() {
		return
	}
	c.timers.Cancel(c.batteryEmptyTimer)
	c.batteryEmptyTimer = nil
}

func (c *Controller) fireBatteryEmptyTimer() bool {
	c.batteryEmptyTimer = nil
	c.model.SetBatteryEmpty(true)
	c.ChangeStateIfNecessary()
	return false
}

// HandleChargerState implements SET_CHARGER_STATE.
func (c *Controller) HandleChargerState(connected bool) {
	c.timers.Cancel(c.chargerGrace)
	c.chargerGrace = nil

	new := types.ChargerDisconnected
	if connected {
		new = types.ChargerConnected
	}

	if c.model.CurrentState() == types.Actdead && new == types.ChargerDisconnected {
		timeout := chargerDisconnectTimeout
		if c.model.Charger() == types.ChargerUnknown {
			timeout = chargerDiscoveryTimeout
		}
		h, err := c.timers.Schedule(timeout, c.fireChargerGraceTimer)
		if err != nil {
			c.log.Error().Err(&errcode.E{C: errcode.TimerAllocFailed, Op: "HandleChargerState", Err: err}).
				Msg("charger grace timer allocation failed, firing inline")
			c.fireChargerGraceTimer()
			return
		}
		c.chargerGrace = h
		return
	}

	c.model.SetCharger(new)
	c.ChangeStateIfNecessary()
}

func (c *Controller) fireChargerGraceTimer() bool {
	c.chargerGrace = nil
	c.model.SetCharger(types.ChargerDisconnected)
	c.ChangeStateIfNecessary()
	return false
}

// Dispatch routes a fired timer.Service notification to the right
// callback. The engine's dispatch loop calls this on every
// types.TopicTimerFire message.
func (c *Controller) Dispatch(timerID uint64) {
	c.timers.Dispatch(timerID)
}
