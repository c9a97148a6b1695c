// Command dsmed is the Device State Manager daemon (SPEC_FULL.md §2):
// it wires the bus, Input Model, Timer Service, Transition Controller,
// Request Surface and D-Bus Bridge together and runs the engine's
// single dispatch loop until the process is asked to stop.
package main

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"

	"github.com/sailfish-community/dsme-go/bus"
	"github.com/sailfish-community/dsme-go/errcode"
	"github.com/sailfish-community/dsme-go/internal/config"
	"github.com/sailfish-community/dsme-go/internal/model"
	"github.com/sailfish-community/dsme-go/internal/request"
	"github.com/sailfish-community/dsme-go/internal/timer"
	"github.com/sailfish-community/dsme-go/internal/transition"
	"github.com/sailfish-community/dsme-go/services/dbusbridge"
	"github.com/sailfish-community/dsme-go/types"
)

const homeDevice = "/dev/sailfish/home"

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().Timestamp().Str("service", "dsmed").Logger()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load runtime config")
	}

	engineBus := bus.NewBus(64)
	engineConn := engineBus.NewConnection("engine")

	m := model.New(log)
	timers := timer.NewService(log, engineConn, nil)
	sink := transition.NewBusSink(engineConn)
	controller := transition.New(log, m, timers, sink, cfg, probeHomeEncrypted(log))
	m.SetHooks(controller)

	surface := request.NewSurface(log, engineConn, m, controller, sink, cfg, nil)

	bridge, err := dbusbridge.Connect(log, engineBus.NewConnection("dbus_bridge"))
	if err != nil {
		log.Warn().Err(err).Msg("D-Bus bridge unavailable, continuing without it")
	} else {
		go bridge.Run()
		defer bridge.Close()
	}

	request.Bootstrap(log, m, controller, sink, cfg, os.Getenv("BOOTSTATE"))

	// Subscribe only to the inbound families the Request Surface
	// consumes. Subscribing to "dsme/#" would also redeliver the
	// engine's own outbound "dsme/ind/*" broadcasts, which Dispatch has
	// no handler for.
	reqSub := engineConn.Subscribe(bus.T("dsme", "req", "#"))
	dbusSub := engineConn.Subscribe(bus.T("dsme", "dbus", "#"))
	timerSub := engineConn.Subscribe(types.TopicTimerFire)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug().Err(err).Msg("sd_notify READY failed (not running under systemd?)")
	}
	log.Info().Msg("dsmed ready")

	for {
		select {
		case msg, ok := <-reqSub.Channel():
			if !ok {
				return
			}
			surface.Dispatch(msg)
		case msg, ok := <-dbusSub.Channel():
			if !ok {
				return
			}
			surface.Dispatch(msg)
		case msg, ok := <-timerSub.Channel():
			if !ok {
				return
			}
			surface.Dispatch(msg)
		case <-stop:
			log.Info().Msg("dsmed stopping")
			return
		}
	}
}

// probeHomeEncrypted shells out to cryptsetup isLuks, the LUKS probe
// SPEC_FULL.md §4.3/§6 scopes out of the core. A missing cryptsetup
// binary or any other failure is treated as "not encrypted" per §7's
// "transient system call failure -> documented default" rule.
func probeHomeEncrypted(log zerolog.Logger) transition.HomeEncryptedProbe {
	return func() bool {
		if _, err := os.Stat(homeDevice); err != nil {
			log.Debug().
				Err(&errcode.E{C: errcode.LUKSProbeFailed, Op: "probeHomeEncrypted", Err: err}).
				Msg("home device not present, assuming not encrypted")
			return false
		}
		if err := exec.Command("cryptsetup", "isLuks", homeDevice).Run(); err != nil {
			log.Warn().
				Err(&errcode.E{C: errcode.LUKSProbeFailed, Op: "probeHomeEncrypted", Err: err}).
				Msg("cryptsetup isLuks probe failed, assuming not encrypted")
			return false
		}
		return true
	}
}
