// Package transition implements the Transition Controller
// (SPEC_FULL.md §4.4), the largest component of the engine: it accepts
// a target state, validates it, runs the gating timers that serialize
// transitions, emits outbound messages through a Sink, and manages the
// Actdead<->User init handshake.
//
// Grounded on services/bridge/bridge.go's shape: a Service holding
// "one live thing at a time" (there, one mutex-guarded transport
// connection; here, one live set of delayed-runlevel timers, touched
// only from the engine's dispatch goroutine and so not locked).
package transition

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/internal/model"
	"github.com/sailfish-community/dsme-go/internal/policy"
	"github.com/sailfish-community/dsme-go/internal/timer"
	"github.com/sailfish-community/dsme-go/types"
)

// HomeEncryptedProbe reports whether the home partition is LUKS
// encrypted. It is called at most once per process lifetime (the
// result is cached); production wiring shells out to cryptsetup,
// tests supply a constant.
type HomeEncryptedProbe func() bool

// Controller is the Transition Controller.
type Controller struct {
	log    zerolog.Logger
	model  *model.Model
	timers *timer.Service
	sink   Sink
	cfg    types.RuntimeConfig

	homeEncryptedProbe HomeEncryptedProbe
	homeEncryptedKnown bool
	homeEncrypted      bool

	shutdownDelay     *timer.Handle
	actdeadDelay      *timer.Handle
	userDelay         *timer.Handle
	overheatTimer     *timer.Handle
	batteryEmptyTimer *timer.Handle
	chargerGrace      *timer.Handle

	// exit is called with 1 when the shutdown-delay timer cannot be
	// allocated, the fatal error of SPEC_FULL.md §7 that lies inside the
	// core. New sets it to os.Exit.
	exit func(code int)
}

// New builds a Controller. m must not yet have its Hooks installed;
// callers do SetHooks(controller) after construction (the Input Model
// and Transition Controller are mutually referential, per
// SPEC_FULL.md §4.2).
func New(log zerolog.Logger, m *model.Model, timers *timer.Service, sink Sink, cfg types.RuntimeConfig, homeEncryptedProbe HomeEncryptedProbe) *Controller {
	return &Controller{
		log:                log.With().Str("component", "transition_controller").Logger(),
		model:              m,
		timers:             timers,
		sink:               sink,
		cfg:                cfg,
		homeEncryptedProbe: homeEncryptedProbe,
		exit:               os.Exit,
	}
}

func (c *Controller) isHomeEncrypted() bool {
	if !c.homeEncryptedKnown {
		c.homeEncryptedKnown = true
		if c.homeEncryptedProbe != nil {
			c.homeEncrypted = c.homeEncryptedProbe()
		}
	}
	return c.homeEncrypted
}

func (c *Controller) buildInputs() policy.Inputs {
	in := c.model.Snapshot()
	in.HomeEncrypted = c.isHomeEncrypted()
	return in
}

// ChangeStateIfNecessary computes the policy target and, if it differs
// from current_state, attempts the transition. This is the engine's
// single re-evaluation entry point (SPEC_FULL.md §4.4); every input
// mutation that can change the outcome ends by calling this.
func (c *Controller) ChangeStateIfNecessary() {
	next := policy.Select(c.buildInputs())
	current := c.model.CurrentState()
	if next == current {
		return
	}
	c.tryToChangeState(next)
}

// changeState is the only place current_state is written. It never
// rearms timers itself (SPEC_FULL.md §4.4).
func (c *Controller) changeState(next types.DeviceState) {
	if next == types.Shutdown || next == types.Reboot {
		c.sink.SaveDataInd()
	}
	c.sink.StateChangeInd(next)
	c.model.SetCurrentState(next)
}

// tryToChangeState is the heart of the engine: SPEC_FULL.md §4.4's
// dispatch on next and (for User/Actdead) on current_state.
func (c *Controller) tryToChangeState(next types.DeviceState) {
	current := c.model.CurrentState()

	switch next {
	case types.Shutdown, types.Reboot:
		c.changeState(next)
		c.startDelayedShutdownTimer()

	case types.User:
		c.tryToChangeToUser(current)

	case types.Actdead:
		c.tryToChangeToActdead(current)

	case types.Test, types.Local:
		if current == types.NotSet {
			c.changeState(next)
			return
		}
		c.log.Warn().Str("target", next.String()).Str("current", current.String()).
			Msg("test/local transition permitted only from bootstrap")

	default:
		c.log.Warn().Str("target", next.String()).Msg("no handler for transition target")
	}
}
