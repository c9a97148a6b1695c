// Package model implements the Input Model (SPEC_FULL.md §3/§4.2): the
// single process-wide record of every asynchronous bit the Policy
// Evaluator reads, mutated only through typed setters that log every
// observed change. It is built to be owned by exactly one goroutine —
// the engine's dispatch loop (SPEC_FULL.md §5) — and therefore carries
// no internal locking.
package model

import (
	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/internal/policy"
	"github.com/sailfish-community/dsme-go/types"
)

// Hooks lets three setters reach into the Transition Controller, closing
// the loop described in SPEC_FULL.md §4.2:
//   - update_emergency_call_ongoing(true) aborts in-flight timers and
//     broadcasts SET_EMERGENCY_CALL_STATE.
//   - update_emergency_call_ongoing(false) broadcasts
//     SET_EMERGENCY_CALL_STATE and re-runs the Policy Evaluator.
//   - update_shutdown_blocked(false) re-runs the Policy Evaluator.
//
// Hooks is set once during wiring, after both the Model and the
// Transition Controller exist (see cmd/dsmed).
type Hooks interface {
	StopDelayedRunlevelTimers()
	ChangeStateIfNecessary()
	EmergencyCallState(ongoing bool)
}

// Model is the Input Model. current_state is written only by the
// Transition Controller, via SetCurrentState; every other field funnels
// through a setter on this type.
type Model struct {
	log   zerolog.Logger
	hooks Hooks

	charger              types.ChargerState
	alarmPending         bool
	deviceOverheated     bool
	emergencyCallOngoing bool
	shutdownBlocked      bool
	mountedToPC          bool
	batteryEmpty         bool
	shutdownRequested    bool
	actdeadRequested     bool
	rebootRequested      bool
	testmodeRequested    bool
	actdeadSwitchDone    bool
	userSwitchDone       bool
	batteryLevel         types.BatteryLevel
	currentState         types.DeviceState
}

// New builds an Input Model in its startup state: current_state NotSet,
// charger Unknown, battery level Unknown, every bool false.
func New(log zerolog.Logger) *Model {
	return &Model{
		log:          log.With().Str("component", "input_model").Logger(),
		charger:      types.ChargerUnknown,
		batteryLevel: types.BatteryLevelUnknown,
		currentState: types.NotSet,
	}
}

// SetHooks installs the Transition Controller callbacks. Must be called
// once, before any setter that can trigger them.
func (m *Model) SetHooks(h Hooks) { m.hooks = h }

func (m *Model) logChange(field string, old, new any, warn bool) {
	ev := m.log.Info()
	if warn {
		ev = m.log.Warn()
	}
	ev.Str("field", field).Interface("old", old).Interface("new", new).Msg("input changed")
}

// Snapshot returns the subset of fields the Policy Evaluator needs, as
// a value type, so Select stays a pure function with no access back
// into the Model.
func (m *Model) Snapshot() policy.Inputs {
	return policy.Inputs{
		EmergencyCallOngoing: m.emergencyCallOngoing,
		DeviceOverheated:     m.deviceOverheated,
		BatteryEmpty:         m.batteryEmpty,
		ShutdownBlocked:      m.shutdownBlocked,
		TestmodeRequested:    m.testmodeRequested,
		ActdeadRequested:     m.actdeadRequested,
		ShutdownRequested:    m.shutdownRequested,
		RebootRequested:      m.rebootRequested,
		Charger:              m.charger,
		AlarmPending:         m.alarmPending,
		CurrentState:         m.currentState,
	}
}

// CurrentState returns the last state broadcast by the Transition
// Controller.
func (m *Model) CurrentState() types.DeviceState { return m.currentState }

// SetCurrentState is called exclusively by the Transition Controller's
// change_state (SPEC_FULL.md §3 invariant (a)); it does not log through
// logChange (change_state's STATE_CHANGE_IND broadcast is the record of
// this transition) and never triggers hooks.
func (m *Model) SetCurrentState(s types.DeviceState) { m.currentState = s }

func (m *Model) Charger() types.ChargerState      { return m.charger }
func (m *Model) AlarmPending() bool               { return m.alarmPending }
func (m *Model) DeviceOverheated() bool           { return m.deviceOverheated }
func (m *Model) EmergencyCallOngoing() bool       { return m.emergencyCallOngoing }
func (m *Model) ShutdownBlocked() bool            { return m.shutdownBlocked }
func (m *Model) MountedToPC() bool                { return m.mountedToPC }
func (m *Model) BatteryEmpty() bool               { return m.batteryEmpty }
func (m *Model) ShutdownRequested() bool          { return m.shutdownRequested }
func (m *Model) ActdeadRequested() bool           { return m.actdeadRequested }
func (m *Model) RebootRequested() bool            { return m.rebootRequested }
func (m *Model) TestmodeRequested() bool          { return m.testmodeRequested }
func (m *Model) ActdeadSwitchDone() bool          { return m.actdeadSwitchDone }
func (m *Model) UserSwitchDone() bool             { return m.userSwitchDone }
func (m *Model) BatteryLevel() types.BatteryLevel { return m.batteryLevel }
