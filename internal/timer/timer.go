// Package timer implements the Timer Service contract of SPEC_FULL.md
// §4.1: one-shot, second-resolution callbacks, scheduled and cancelled
// by opaque Handle, with idempotent cancellation (SPEC_FULL.md §5).
//
// Creation is injected through a NewTimerFunc, grounded on the
// teacher's I2CBusFactory/PinFactory injection style in
// services/hal/registry.go — the real factory wraps time.AfterFunc and
// cannot fail, but the Transition Controller's fallback behavior on
// "timer allocation failure" (SPEC_FULL.md §7) needs an injectable
// point to exercise in tests.
//
// Callbacks never run on the goroutine that fired them: firing
// publishes the handle's id on the bus, and the engine's single
// dispatch loop calls Dispatch for that id, satisfying the "callbacks
// run on the same logical thread as message handlers" rule in §5.
package timer

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/bus"
	"github.com/sailfish-community/dsme-go/types"
)

// Callback is invoked once, inline on the engine's dispatch loop, when
// a timer fires or is force-fired via FireNow. The boolean return is
// kept for parity with the "keep-alive" signal SPEC_FULL.md §4.1
// documents for the underlying scheduler; the core only ever uses
// one-shots and ignores it.
type Callback func() (keepAlive bool)

// RealTimer is the subset of *time.Timer the Service depends on.
type RealTimer interface {
	Stop() bool
}

// NewTimerFunc creates the underlying platform timer. Creation MAY
// fail (SPEC_FULL.md §4.1); the default implementation never does.
type NewTimerFunc func(d time.Duration, fire func()) (RealTimer, error)

// ErrTimerAllocFailed is returned by a NewTimerFunc that simulates
// resource exhaustion, for exercising §7's fallback paths in tests.
var ErrTimerAllocFailed = errors.New("timer: allocation failed")

func defaultNewTimer(d time.Duration, fire func()) (RealTimer, error) {
	return time.AfterFunc(d, fire), nil
}

// Handle refers to a scheduled callback. A nil *Handle is the
// documented "no timer armed" state; Cancel and FireNow both treat it,
// and an already-fired or already-cancelled Handle, as a no-op.
type Handle struct {
	id   uint64
	mu   sync.Mutex
	live bool
	t    RealTimer
}

// Service is the Transition Controller's exclusive timer facility.
type Service struct {
	log       zerolog.Logger
	conn      *bus.Connection
	newTimer  NewTimerFunc
	idCtr     atomic.Uint64
	mu        sync.Mutex
	callbacks map[uint64]Callback
}

// NewService builds a Service that publishes fired-timer notifications
// on conn. Pass a nil newTimer to use the real time.AfterFunc-backed
// factory.
func NewService(log zerolog.Logger, conn *bus.Connection, newTimer NewTimerFunc) *Service {
	if newTimer == nil {
		newTimer = defaultNewTimer
	}
	return &Service{
		log:       log.With().Str("component", "timer_service").Logger(),
		conn:      conn,
		newTimer:  newTimer,
		callbacks: map[uint64]Callback{},
	}
}

// Schedule arms a one-shot callback after the given duration. On
// success it returns a live Handle; on failure it returns a non-nil
// error and a nil Handle, per SPEC_FULL.md §4.1/§7.
func (s *Service) Schedule(after time.Duration, cb Callback) (*Handle, error) {
	id := s.idCtr.Add(1)

	s.mu.Lock()
	s.callbacks[id] = cb
	s.mu.Unlock()

	h := &Handle{id: id, live: true}
	t, err := s.newTimer(after, func() {
		s.conn.Publish(s.conn.NewMessage(types.TopicTimerFire, id, false))
	})
	if err != nil {
		s.mu.Lock()
		delete(s.callbacks, id)
		s.mu.Unlock()
		return nil, err
	}
	h.t = t
	return h, nil
}

// Cancel disarms a handle. Idempotent and synchronous: once it
// returns, the callback is guaranteed not to run (SPEC_FULL.md §5).
func (s *Service) Cancel(h *Handle) {
	s.disarm(h, false)
}

// FireNow cancels the underlying timer (if still pending) and invokes
// the callback immediately, inline on the caller's goroutine. Used by
// the runlevel_switch_done handshake (SPEC_FULL.md §4.4) to collapse a
// pending user/actdead-delay timer as soon as the init scripts report
// completion.
func (s *Service) FireNow(h *Handle) {
	cb := s.disarm(h, true)
	if cb != nil {
		cb()
	}
}

// disarm marks h dead, stops its underlying timer, and — if wantCB is
// true and the handle was still live — returns the registered
// callback for the caller to invoke. Safe to call more than once.
func (s *Service) disarm(h *Handle, wantCB bool) Callback {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	if !h.live {
		h.mu.Unlock()
		return nil
	}
	h.live = false
	if h.t != nil {
		h.t.Stop()
	}
	h.mu.Unlock()

	s.mu.Lock()
	cb, ok := s.callbacks[h.id]
	delete(s.callbacks, h.id)
	s.mu.Unlock()

	if !ok || !wantCB {
		return nil
	}
	return cb
}

// Dispatch runs the callback registered for id, if it hasn't already
// fired or been cancelled. Called by the engine's dispatch loop on
// receipt of a types.TopicTimerFire message.
func (s *Service) Dispatch(id uint64) {
	s.mu.Lock()
	cb, ok := s.callbacks[id]
	if ok {
		delete(s.callbacks, id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	cb()
}
