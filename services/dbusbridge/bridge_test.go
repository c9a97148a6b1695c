package dbusbridge

import (
	"testing"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/bus"
	"github.com/sailfish-community/dsme-go/types"
)

type fakeConn struct {
	sigCh    chan<- *godbus.Signal
	feed     chan *godbus.Signal // test-side source copied into the registered channel
	exported any
	closed   bool
}

// Signal records the channel the bridge registers and, when a feed is
// set, forwards every fed signal into it, closing it once the feed is
// closed (as a real connection does on Close).
func (f *fakeConn) Signal(ch chan<- *godbus.Signal) {
	f.sigCh = ch
	if f.feed != nil {
		go func() {
			for s := range f.feed {
				ch <- s
			}
			close(ch)
		}()
	}
}
func (f *fakeConn) AddMatchSignal(...godbus.MatchOption) error { return nil }
func (f *fakeConn) Export(v any, _ godbus.ObjectPath, _ string) error {
	f.exported = v
	return nil
}
func (f *fakeConn) RequestName(string, godbus.RequestNameFlags) (godbus.RequestNameReply, error) {
	return godbus.RequestNameReplyPrimaryOwner, nil
}
func (f *fakeConn) Close() error { f.closed = true; return nil }

func waitFor(t *testing.T, sub *bus.Subscription) *bus.Message {
	t.Helper()
	select {
	case m := <-sub.Channel():
		return m
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bus message")
		return nil
	}
}

func TestBridge_RunlevelSwitchDone_Forwarded(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("engine")
	sub := conn.Subscribe(types.TopicRunlevelSwitchDone)

	fc := &fakeConn{}
	br, err := New(zerolog.Nop(), fc, conn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	signals := make(chan *godbus.Signal, 1)
	fc.feed = signals
	go br.Run()

	signals <- &godbus.Signal{Name: startupIface + "." + runlevelMember, Body: []any{int32(5)}}
	close(signals)

	msg := waitFor(t, sub)
	got, ok := msg.Payload.(types.RunlevelSwitchDone)
	if !ok {
		t.Fatalf("payload type = %T, want types.RunlevelSwitchDone", msg.Payload)
	}
	if got.Runlevel != types.RunlevelUser {
		t.Fatalf("Runlevel = %v, want RunlevelUser", got.Runlevel)
	}
}

func TestBridge_CallStateInd_Forwarded(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("engine")
	sub := conn.Subscribe(types.TopicCallStateInd)

	fc := &fakeConn{}
	br, err := New(zerolog.Nop(), fc, conn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	signals := make(chan *godbus.Signal, 1)
	fc.feed = signals
	go br.Run()

	signals <- &godbus.Signal{Name: mceIface + "." + callMember, Body: []any{"emergency"}}
	close(signals)

	msg := waitFor(t, sub)
	got, ok := msg.Payload.(types.CallStateInd)
	if !ok {
		t.Fatalf("payload type = %T, want types.CallStateInd", msg.Payload)
	}
	if got.State != "emergency" {
		t.Fatalf("State = %q, want \"emergency\"", got.State)
	}
}

func TestRequestHandler_ReqInhibitShutdown_TagsDBusProxySender(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("engine")
	subBlock := conn.Subscribe(types.TopicBlockShutdown)
	subAllow := conn.Subscribe(types.TopicAllowShutdown)

	fc := &fakeConn{}
	br, err := New(zerolog.Nop(), fc, conn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	handler, ok := fc.exported.(*requestHandler)
	if !ok {
		t.Fatalf("exported type = %T, want *requestHandler", fc.exported)
	}
	if handler.b != br {
		t.Fatal("exported handler does not reference this bridge")
	}

	if derr := handler.ReqInhibitShutdown(true); derr != nil {
		t.Fatalf("ReqInhibitShutdown(true): %v", derr)
	}
	block := waitFor(t, subBlock).Payload.(types.BlockShutdown)
	if !block.Sender.FromDBusProxy {
		t.Fatal("expected BlockShutdown.Sender.FromDBusProxy = true")
	}

	if derr := handler.ReqInhibitShutdown(false); derr != nil {
		t.Fatalf("ReqInhibitShutdown(false): %v", derr)
	}
	allow := waitFor(t, subAllow).Payload.(types.AllowShutdown)
	if !allow.Sender.FromDBusProxy {
		t.Fatal("expected AllowShutdown.Sender.FromDBusProxy = true")
	}
}
