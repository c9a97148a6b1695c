package transition

import (
	"github.com/sailfish-community/dsme-go/bus"
	"github.com/sailfish-community/dsme-go/types"
)

// Sink is the Transition Controller's only side-effecting boundary: a
// narrow interface over every outbound broadcast named in SPEC_FULL.md
// §6, grounded on the DbusConn/DbusObject interface-wrapping idiom used
// to make systemd D-Bus calls mockable (SPEC_FULL.md §4.4). Production
// wiring implements it over the bus (busSink, below); tests implement
// it with a recording fake.
type Sink interface {
	SaveDataInd()
	StateChangeInd(types.DeviceState)
	StateReqDeniedInd(state types.DeviceState, reason string)
	BatteryEmptyInd()
	ChangeRunlevel(types.Runlevel)
	Shutdown(types.Runlevel)
	EmergencyCallState(ongoing bool)
	EnterMalf(reason, component, details string)
}

// busSink publishes every Transition Controller broadcast onto the
// engine bus, for the D-Bus bridge and any other subscriber to pick up.
type busSink struct {
	conn *bus.Connection
}

// NewBusSink builds the production Sink.
func NewBusSink(conn *bus.Connection) Sink { return &busSink{conn: conn} }

func (s *busSink) publish(topic bus.Topic, payload any) {
	s.conn.Publish(s.conn.NewMessage(topic, payload, false))
}

func (s *busSink) SaveDataInd() {
	s.publish(types.TopicSaveDataInd, types.SaveDataInd{})
}

func (s *busSink) StateChangeInd(state types.DeviceState) {
	s.publish(types.TopicStateChangeInd, types.StateChangeInd{State: state})
}

func (s *busSink) StateReqDeniedInd(state types.DeviceState, reason string) {
	s.publish(types.TopicStateReqDeniedInd, types.StateReqDeniedInd{State: state, Reason: reason})
}

func (s *busSink) BatteryEmptyInd() {
	s.publish(types.TopicBatteryEmptyInd, types.BatteryEmptyInd{})
}

func (s *busSink) ChangeRunlevel(rl types.Runlevel) {
	s.publish(types.TopicChangeRunlevel, types.ChangeRunlevel{Runlevel: rl})
}

func (s *busSink) Shutdown(rl types.Runlevel) {
	s.publish(types.TopicShutdown, types.ShutdownOut{Runlevel: rl})
}

func (s *busSink) EmergencyCallState(ongoing bool) {
	s.publish(types.TopicEmergencyCallState, types.EmergencyCallStateOut{Ongoing: ongoing})
}

func (s *busSink) EnterMalf(reason, component, details string) {
	s.publish(types.TopicEnterMalf, types.EnterMalf{Reason: reason, Component: component, Details: details})
}
