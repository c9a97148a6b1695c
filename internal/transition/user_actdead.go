package transition

import (
	"github.com/sailfish-community/dsme-go/errcode"
	"github.com/sailfish-community/dsme-go/types"
)

// tryToChangeToUser implements the User half of SPEC_FULL.md §4.4's
// User/Actdead dispatch.
func (c *Controller) tryToChangeToUser(current types.DeviceState) {
	switch current {
	case types.NotSet:
		// Bootstrap: direct, no timer.
		c.changeState(types.User)

	case types.Actdead:
		if c.model.BatteryLevel().Below(minimumBatteryToUser) {
			c.log.Warn().Int("battery_level", int(c.model.BatteryLevel())).
				Msg("rejecting Actdead->User powerup: battery below minimum")
			c.model.SetShutdownRequested(true)
			return
		}
		c.model.SetUserSwitchDone(false)

		if !c.cfg.DirectTransitions {
			// Indirect mode: treat the request as a reboot; the
			// bootloader re-evaluates BOOTSTATE and boots directly
			// into User.
			c.changeState(types.Reboot)
			c.startDelayedShutdownTimer()
			return
		}

		// Direct mode.
		timeout := userTimerMaxTimeout
		if c.model.ActdeadSwitchDone() {
			timeout = userTimerMinTimeout
		}
		c.startUserDelayTimer(timeout)
		c.changeState(types.User)

	default:
		// No-op for any other (current_state -> User) pair.
	}
}

// tryToChangeToActdead implements the Actdead half.
func (c *Controller) tryToChangeToActdead(current types.DeviceState) {
	switch current {
	case types.NotSet:
		c.changeState(types.Actdead)

	case types.User:
		c.model.SetActdeadSwitchDone(false)

		if !c.cfg.DirectTransitions {
			c.indirectUserToActdead()
			return
		}

		timeout := actdeadTimerMaxTimeout
		if c.model.UserSwitchDone() {
			timeout = actdeadTimerMinTimeout
		}
		c.startActdeadDelayTimer(timeout)
		c.changeState(types.Actdead)

	default:
		// No-op for any other (current_state -> Actdead) pair.
	}
}

// indirectUserToActdead implements indirect mode's User->Actdead path:
// consult the per-target reboot-param config, write /run/systemd/
// reboot-param and reboot if present and readable, else plain shutdown.
func (c *Controller) indirectUserToActdead() {
	param, ok := c.lookupRebootParam("actdead")
	if !ok {
		c.removeStaleRebootParam()
		c.changeState(types.Shutdown)
		c.startDelayedShutdownTimer()
		return
	}
	if err := c.writeRebootParam(param); err != nil {
		c.log.Warn().
			Err(&errcode.E{C: errcode.RebootParamMissing, Op: "indirectUserToActdead", Err: err}).
			Msg("failed to write reboot-param, falling back to shutdown")
		c.changeState(types.Shutdown)
		c.startDelayedShutdownTimer()
		return
	}
	c.changeState(types.Reboot)
	c.startDelayedShutdownTimer()
}
