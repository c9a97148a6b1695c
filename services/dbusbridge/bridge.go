// Package dbusbridge owns the system D-Bus connection (SPEC_FULL.md
// §2/§6): it turns the two inbound signals the engine cares about into
// bus messages, and exports req_inhibit_shutdown as an inbound method
// call from dsmetool, translating it into BLOCK_SHUTDOWN/ALLOW_SHUTDOWN
// tagged with Sender.FromDBusProxy so the Request Surface's identity
// gate (SPEC_FULL.md §4.5) can tell it apart from an external socket
// client.
//
// Grounded on the DbusConn/DbusObject interface-wrapping idiom used to
// make systemd D-Bus calls mockable (pkg/system/systemd.go in the
// awslabs mountpoint-s3-csi-driver pack entry): the *dbus.Conn
// dependency is narrowed to the handful of methods this bridge
// actually calls, so it can be exercised with a fake in tests.
package dbusbridge

import (
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/bus"
	"github.com/sailfish-community/dsme-go/types"
)

const (
	dsmeBusName = "com.nokia.dsme"
	dsmeObjPath = dbus.ObjectPath("/com/nokia/dsme/request")
	dsmeIface   = "com.nokia.dsme.request"

	startupIface   = "com.nokia.startup.signal"
	mceIface       = "com.nokia.mce.signal"
	runlevelMember = "runlevel_switch_done"
	callMember     = "sig_call_state_ind"
)

// Conn is the subset of *dbus.Conn the bridge depends on.
type Conn interface {
	Signal(ch chan<- *dbus.Signal)
	AddMatchSignal(options ...dbus.MatchOption) error
	Export(v any, path dbus.ObjectPath, iface string) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	Close() error
}

// Bridge is the D-Bus Bridge collaborator.
type Bridge struct {
	log  zerolog.Logger
	conn Conn
	bus  *bus.Connection
}

// Connect dials the real system bus and builds a Bridge over it.
func Connect(log zerolog.Logger, busConn *bus.Connection) (*Bridge, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	return New(log, conn, busConn)
}

// New builds a Bridge over an already-connected Conn — the injection
// point tests use to supply a fake.
func New(log zerolog.Logger, conn Conn, busConn *bus.Connection) (*Bridge, error) {
	b := &Bridge{
		log:  log.With().Str("component", "dbus_bridge").Logger(),
		conn: conn,
		bus:  busConn,
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(startupIface),
		dbus.WithMatchMember(runlevelMember),
	); err != nil {
		return nil, err
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(mceIface),
		dbus.WithMatchMember(callMember),
	); err != nil {
		return nil, err
	}

	if err := conn.Export(&requestHandler{b}, dsmeObjPath, dsmeIface); err != nil {
		return nil, err
	}
	if _, err := conn.RequestName(dsmeBusName, dbus.NameFlagDoNotQueue); err != nil {
		return nil, err
	}

	return b, nil
}

// Run forwards signals onto the engine bus until the underlying D-Bus
// connection's signal channel is closed (Close was called, or the bus
// connection itself dropped). Intended to run on its own goroutine;
// every publish crosses onto the engine's single dispatch loop exactly
// like every other collaborator (SPEC_FULL.md §5).
func (b *Bridge) Run() {
	signals := make(chan *dbus.Signal, 64)
	b.conn.Signal(signals)

	b.publish(types.TopicDBusConnected, types.DBusConnected{})
	for sig := range signals {
		b.dispatch(sig)
	}
	b.publish(types.TopicDBusDisconnect, types.DBusDisconnect{})
}

func (b *Bridge) dispatch(sig *dbus.Signal) {
	switch sig.Name {
	case startupIface + "." + runlevelMember:
		if len(sig.Body) != 1 {
			b.log.Warn().Interface("body", sig.Body).Msg("runlevel_switch_done: unexpected signal body")
			return
		}
		n, ok := sig.Body[0].(int32)
		if !ok {
			b.log.Warn().Interface("body", sig.Body).Msg("runlevel_switch_done: body not int32")
			return
		}
		b.publish(types.TopicRunlevelSwitchDone, types.RunlevelSwitchDone{Runlevel: types.Runlevel(n)})

	case mceIface + "." + callMember:
		if len(sig.Body) != 1 {
			b.log.Warn().Interface("body", sig.Body).Msg("sig_call_state_ind: unexpected signal body")
			return
		}
		s, ok := sig.Body[0].(string)
		if !ok {
			b.log.Warn().Interface("body", sig.Body).Msg("sig_call_state_ind: body not string")
			return
		}
		b.publish(types.TopicCallStateInd, types.CallStateInd{State: s})
	}
}

func (b *Bridge) publish(topic bus.Topic, payload any) {
	b.bus.Publish(b.bus.NewMessage(topic, payload, false))
}

// Close releases the underlying D-Bus connection; Run's signal loop
// observes the resulting channel close and returns.
func (b *Bridge) Close() error {
	return b.conn.Close()
}

// requestHandler is exported on the system bus as
// com.nokia.dsme.request; its one method corresponds to dsmetool's
// req_inhibit_shutdown(bool) call (SPEC_FULL.md §6). Every caller of an
// exported D-Bus method is, by construction, the in-process proxy
// endpoint rather than an external socket client, so the resulting
// BLOCK_SHUTDOWN/ALLOW_SHUTDOWN message is always tagged
// Sender.FromDBusProxy = true.
type requestHandler struct{ b *Bridge }

func (h *requestHandler) ReqInhibitShutdown(inhibit bool) *dbus.Error {
	sender := types.Sender{FromDBusProxy: true}
	if inhibit {
		h.b.publish(types.TopicBlockShutdown, types.BlockShutdown{Sender: sender})
	} else {
		h.b.publish(types.TopicAllowShutdown, types.AllowShutdown{Sender: sender})
	}
	return nil
}
