package request

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/bus"
	"github.com/sailfish-community/dsme-go/internal/model"
	"github.com/sailfish-community/dsme-go/types"
)

// fakeController is a recording Controller + Denier + EnterMalfNotifier
// fake, so Request Surface tests never need a real transition.Controller.
type fakeController struct {
	recalcCalls   int
	thermal       []types.ThermalStatus
	batteryState  []bool
	charger       []bool
	runlevelDone  []types.Runlevel
	timerDispatch []uint64
	denied        []types.StateReqDeniedInd
	malf          []string
}

func (f *fakeController) ChangeStateIfNecessary()             { f.recalcCalls++ }
func (f *fakeController) HandleThermalStatus(s types.ThermalStatus) { f.thermal = append(f.thermal, s) }
func (f *fakeController) HandleBatteryState(empty bool)        { f.batteryState = append(f.batteryState, empty) }
func (f *fakeController) HandleChargerState(connected bool)    { f.charger = append(f.charger, connected) }
func (f *fakeController) HandleRunlevelSwitchDone(rl types.Runlevel) {
	f.runlevelDone = append(f.runlevelDone, rl)
}
func (f *fakeController) Dispatch(id uint64) { f.timerDispatch = append(f.timerDispatch, id) }
func (f *fakeController) StateReqDeniedInd(state types.DeviceState, reason string) {
	f.denied = append(f.denied, types.StateReqDeniedInd{State: state, Reason: reason})
}
func (f *fakeController) EnterMalf(reason, component, details string) {
	f.malf = append(f.malf, reason+"|"+component+"|"+details)
}

// StopDelayedRunlevelTimers and EmergencyCallState complete model.Hooks,
// so a test can install the fake as the Input Model's hooks and observe
// the re-evaluation a setter triggers.
func (f *fakeController) StopDelayedRunlevelTimers()      {}
func (f *fakeController) EmergencyCallState(ongoing bool) {}

// fixedPrivilege is a PrivilegeChecker fake that always gives the same
// answer, so surface tests don't depend on the real OS group lookups
// UnixPrivilegeChecker does.
type fixedPrivilege bool

func (p fixedPrivilege) IsPrivileged(types.Sender, types.RuntimeConfig) bool { return bool(p) }

func newTestSurface(t *testing.T, priv PrivilegeChecker) (*Surface, *model.Model, *fakeController) {
	t.Helper()
	log := zerolog.Nop()
	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	m := model.New(log)
	fc := &fakeController{}
	s := NewSurface(log, conn, m, fc, fc, types.DefaultRuntimeConfig(), priv)
	return s, m, fc
}

func TestDispatch_ShutdownReq_Unprivileged_Dropped(t *testing.T) {
	s, m, fc := newTestSurface(t, fixedPrivilege(false))
	s.Dispatch(&bus.Message{Payload: types.ShutdownReq{Sender: types.Sender{UID: 1000}}})

	if m.ShutdownRequested() {
		t.Fatal("expected shutdown_requested to stay false")
	}
	if fc.recalcCalls != 0 {
		t.Fatalf("recalcCalls = %d, want 0", fc.recalcCalls)
	}
}

func TestDispatch_ShutdownReq_Privileged_SetsRequested(t *testing.T) {
	s, m, fc := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: types.ShutdownReq{Sender: types.Sender{UID: 1000}}})

	if !m.ShutdownRequested() {
		t.Fatal("expected shutdown_requested set")
	}
	if fc.recalcCalls != 1 {
		t.Fatalf("recalcCalls = %d, want 1", fc.recalcCalls)
	}
}

func TestDispatch_ShutdownReq_UsbMounted_Denied(t *testing.T) {
	s, m, fc := newTestSurface(t, fixedPrivilege(true))
	m.SetMountedToPC(true)

	s.Dispatch(&bus.Message{Payload: types.ShutdownReq{Sender: types.Sender{UID: 0}}})

	if m.ShutdownRequested() {
		t.Fatal("expected shutdown_requested to stay false while mounted_to_pc")
	}
	if len(fc.denied) != 1 || fc.denied[0].State != types.Shutdown {
		t.Fatalf("denied = %+v, want one Shutdown denial", fc.denied)
	}
	if fc.recalcCalls != 0 {
		t.Fatalf("recalcCalls = %d, want 0 (denied before recalc)", fc.recalcCalls)
	}
}

func TestDispatch_RebootReq_UsbMounted_Denied(t *testing.T) {
	s, m, fc := newTestSurface(t, fixedPrivilege(true))
	m.SetMountedToPC(true)

	s.Dispatch(&bus.Message{Payload: types.RebootReq{Sender: types.Sender{UID: 0}}})

	if m.RebootRequested() {
		t.Fatal("expected reboot_requested to stay false while mounted_to_pc")
	}
	if len(fc.denied) != 1 || fc.denied[0].State != types.Reboot {
		t.Fatalf("denied = %+v, want one Reboot denial", fc.denied)
	}
}

func TestDispatch_PowerupReq_ClearsStickyBits(t *testing.T) {
	s, m, fc := newTestSurface(t, fixedPrivilege(true))
	m.SetShutdownRequested(true)
	m.SetActdeadRequested(true)

	s.Dispatch(&bus.Message{Payload: types.PowerupReq{Sender: types.Sender{UID: 0}}})

	if m.ShutdownRequested() || m.ActdeadRequested() {
		t.Fatal("expected both sticky bits cleared")
	}
	if fc.recalcCalls != 1 {
		t.Fatalf("recalcCalls = %d, want 1", fc.recalcCalls)
	}
}

func TestDispatch_StateQuery_RepliesWithCurrentState(t *testing.T) {
	log := zerolog.Nop()
	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	m := model.New(log)
	m.SetCurrentState(types.User)
	fc := &fakeController{}
	s := NewSurface(log, conn, m, fc, fc, types.DefaultRuntimeConfig(), fixedPrivilege(true))

	replyTopic := bus.T("reply", "1")
	sub := conn.Subscribe(replyTopic)
	s.Dispatch(&bus.Message{Payload: types.StateQuery{}, ReplyTo: replyTopic})

	select {
	case msg := <-sub.Channel():
		st, ok := msg.Payload.(types.DeviceState)
		if !ok || st != types.User {
			t.Fatalf("reply payload = %#v, want types.User", msg.Payload)
		}
	default:
		t.Fatal("expected a synchronous reply on the ReplyTo topic")
	}
}

func TestDispatch_SetChargerState_DelegatesToController(t *testing.T) {
	s, _, fc := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: types.SetChargerState{Connected: true}})
	if len(fc.charger) != 1 || !fc.charger[0] {
		t.Fatalf("charger calls = %v, want [true]", fc.charger)
	}
}

func TestDispatch_SetThermalStatus_DelegatesToController(t *testing.T) {
	s, _, fc := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: types.SetThermalStatus{Status: types.ThermalOverheated}})
	if len(fc.thermal) != 1 || fc.thermal[0] != types.ThermalOverheated {
		t.Fatalf("thermal calls = %v, want [Overheated]", fc.thermal)
	}
}

func TestDispatch_SetBatteryLevel_SetsModelAndRecalcs(t *testing.T) {
	s, m, fc := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: types.SetBatteryLevel{Level: 42}})
	if m.BatteryLevel() != 42 {
		t.Fatalf("BatteryLevel = %v, want 42", m.BatteryLevel())
	}
	if fc.recalcCalls != 1 {
		t.Fatalf("recalcCalls = %d, want 1", fc.recalcCalls)
	}
}

func TestDispatch_BlockShutdown_IgnoresNonDBusProxySender(t *testing.T) {
	s, m, _ := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: types.BlockShutdown{Sender: types.Sender{FromDBusProxy: false}}})
	if m.ShutdownBlocked() {
		t.Fatal("expected shutdown_blocked to stay false for a non-D-Bus-proxy sender")
	}
}

func TestDispatch_BlockShutdown_AcceptsDBusProxySender(t *testing.T) {
	s, m, _ := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: types.BlockShutdown{Sender: types.Sender{FromDBusProxy: true}}})
	if !m.ShutdownBlocked() {
		t.Fatal("expected shutdown_blocked set")
	}
}

func TestDispatch_AllowShutdown_ClearsBlock(t *testing.T) {
	s, m, fc := newTestSurface(t, fixedPrivilege(true))
	m.SetHooks(fc)
	m.SetShutdownBlocked(true)
	fc.recalcCalls = 0

	s.Dispatch(&bus.Message{Payload: types.AllowShutdown{Sender: types.Sender{FromDBusProxy: true}}})

	if m.ShutdownBlocked() {
		t.Fatal("expected shutdown_blocked cleared")
	}
	if fc.recalcCalls != 1 {
		t.Fatalf("recalcCalls = %d, want 1 (SetShutdownBlocked(false) recalcs)", fc.recalcCalls)
	}
}

func TestDispatch_CallStateInd_EmergencySetsOngoing(t *testing.T) {
	s, m, _ := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: types.CallStateInd{State: "EMERGENCY"}})
	if !m.EmergencyCallOngoing() {
		t.Fatal("expected emergency_call_ongoing set (case-insensitive match)")
	}
}

func TestDispatch_CallStateInd_NonEmergencyClearsOngoing(t *testing.T) {
	s, m, _ := newTestSurface(t, fixedPrivilege(true))
	m.SetEmergencyCallOngoing(true)
	s.Dispatch(&bus.Message{Payload: types.CallStateInd{State: "active"}})
	if m.EmergencyCallOngoing() {
		t.Fatal("expected emergency_call_ongoing cleared")
	}
}

func TestDispatch_TimerFireID_DelegatesToControllerDispatch(t *testing.T) {
	s, _, fc := newTestSurface(t, fixedPrivilege(true))
	s.Dispatch(&bus.Message{Payload: uint64(7)})
	if len(fc.timerDispatch) != 1 || fc.timerDispatch[0] != 7 {
		t.Fatalf("timerDispatch = %v, want [7]", fc.timerDispatch)
	}
}
