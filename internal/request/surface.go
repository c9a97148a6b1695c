// Package request implements the Request Surface (SPEC_FULL.md §4.5):
// it classifies every inbound bus message into an Input Model mutation
// or a direct Transition Controller call, applying the privilege and
// USB-mount gates described there before anything reaches the model.
//
// Grounded on services/bridge/bridge.go's Config-over-bus-topic
// dispatch pattern for the TELINIT-string table, and on the
// I2CBusFactory/PinFactory injection style in services/hal/registry.go
// for PrivilegeChecker.
package request

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/bus"
	"github.com/sailfish-community/dsme-go/errcode"
	"github.com/sailfish-community/dsme-go/internal/model"
	"github.com/sailfish-community/dsme-go/types"
)

// Controller is the subset of *transition.Controller the Request
// Surface drives. A narrow interface, not the concrete type, so the
// Request Surface stays unit-testable with a recording fake — the same
// reasoning behind transition.Sink.
type Controller interface {
	ChangeStateIfNecessary()
	HandleThermalStatus(types.ThermalStatus)
	HandleBatteryState(empty bool)
	HandleChargerState(connected bool)
	HandleRunlevelSwitchDone(types.Runlevel)
	Dispatch(timerID uint64)
}

// Denier is the one transition.Sink method the Request Surface calls
// directly, for the mass-storage gate's STATE_REQ_DENIED_IND.
type Denier interface {
	StateReqDeniedInd(state types.DeviceState, reason string)
}

// Surface is the Request Surface.
type Surface struct {
	log        zerolog.Logger
	conn       *bus.Connection
	model      *model.Model
	controller Controller
	deny       Denier
	cfg        types.RuntimeConfig
	priv       PrivilegeChecker
}

// NewSurface builds a Surface. A nil priv defaults to
// UnixPrivilegeChecker.
func NewSurface(log zerolog.Logger, conn *bus.Connection, m *model.Model, controller Controller, deny Denier, cfg types.RuntimeConfig, priv PrivilegeChecker) *Surface {
	if priv == nil {
		priv = UnixPrivilegeChecker{}
	}
	return &Surface{
		log:        log.With().Str("component", "request_surface").Logger(),
		conn:       conn,
		model:      m,
		controller: controller,
		deny:       deny,
		cfg:        cfg,
		priv:       priv,
	}
}

// Dispatch routes one inbound bus message to its handler. The engine's
// single dispatch loop (SPEC_FULL.md §5) calls this for every message
// read off the req/dbus/_timer subscriptions; Dispatch never blocks
// and never spawns a goroutine.
func (s *Surface) Dispatch(msg *bus.Message) {
	switch p := msg.Payload.(type) {
	case types.Telinit:
		s.handleTelinit(p)

	case types.ShutdownReq:
		if !s.checkPrivilege(p.Sender, "shutdown_req") {
			return
		}
		s.usbGated(types.Shutdown, func() {
			s.model.SetShutdownRequested(true)
			s.model.SetActdeadRequested(false)
		})

	case types.RebootReq:
		if !s.checkPrivilege(p.Sender, "reboot_req") {
			return
		}
		s.usbGated(types.Reboot, func() {
			s.model.SetRebootRequested(true)
			s.model.SetActdeadRequested(false)
		})

	case types.PowerupReq:
		if !s.checkPrivilege(p.Sender, "powerup_req") {
			return
		}
		s.powerup()

	case types.StateQuery:
		s.conn.Reply(msg, s.model.CurrentState(), false)

	case types.SetAlarmState:
		s.model.SetAlarmPending(p.AlarmSet)
		s.controller.ChangeStateIfNecessary()

	case types.SetUSBState:
		s.model.SetMountedToPC(p.MountedToPC)
		s.controller.ChangeStateIfNecessary()

	case types.SetChargerState:
		s.controller.HandleChargerState(p.Connected)

	case types.SetThermalStatus:
		s.controller.HandleThermalStatus(p.Status)

	case types.SetEmergencyCallState:
		s.model.SetEmergencyCallOngoing(p.Ongoing)

	case types.SetBatteryState:
		s.controller.HandleBatteryState(p.Empty)

	case types.SetBatteryLevel:
		s.model.SetBatteryLevel(types.BatteryLevel(p.Level))
		s.controller.ChangeStateIfNecessary()

	case types.BlockShutdown:
		if !p.Sender.FromDBusProxy {
			s.log.Warn().Msg("dropping BLOCK_SHUTDOWN: sender is not the D-Bus proxy")
			return
		}
		s.model.SetShutdownBlocked(true)

	case types.AllowShutdown:
		if !p.Sender.FromDBusProxy {
			s.log.Warn().Msg("dropping ALLOW_SHUTDOWN: sender is not the D-Bus proxy")
			return
		}
		s.model.SetShutdownBlocked(false)

	case types.RunlevelSwitchDone:
		s.controller.HandleRunlevelSwitchDone(p.Runlevel)

	case types.CallStateInd:
		s.model.SetEmergencyCallOngoing(strings.EqualFold(p.State, "emergency"))

	case types.DBusConnected, types.DBusDisconnect:
		s.log.Debug().Interface("payload", p).Msg("dbus bridge connection event")

	case uint64:
		// TopicTimerFire carries the fired handle's id as a bare uint64.
		s.controller.Dispatch(p)

	default:
		s.log.Warn().Interface("topic", msg.Topic).Msg("unhandled message payload")
	}
}

func (s *Surface) checkPrivilege(sender types.Sender, op string) bool {
	if s.priv.IsPrivileged(sender, s.cfg) {
		return true
	}
	s.log.Warn().Str("op", op).Int("uid", sender.UID).Msg("dropping unprivileged request")
	return false
}

// usbGated implements the mass-storage gate shared by SHUTDOWN_REQ/
// REBOOT_REQ and their TELINIT-dispatched equivalents: deny while
// mounted_to_pc, else run the mutation and re-evaluate.
func (s *Surface) usbGated(state types.DeviceState, mutate func()) {
	if s.model.MountedToPC() {
		s.deny.StateReqDeniedInd(state, string(errcode.USBMounted))
		return
	}
	mutate()
	s.controller.ChangeStateIfNecessary()
}

// powerup clears both sticky shutdown and actdead requests — the
// POWERUP_REQ / TELINIT "user" handler.
func (s *Surface) powerup() {
	s.model.SetShutdownRequested(false)
	s.model.SetActdeadRequested(false)
	s.controller.ChangeStateIfNecessary()
}
