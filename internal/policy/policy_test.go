package policy

import (
	"testing"

	"github.com/sailfish-community/dsme-go/types"
)

func TestSelect_EmergencyCallOngoing_HoldsCurrentState(t *testing.T) {
	got := Select(Inputs{EmergencyCallOngoing: true, CurrentState: types.User})
	if got != types.User {
		t.Fatalf("Select = %v, want User (no transition)", got)
	}
}

func TestSelect_DeviceOverheated_Shutdown(t *testing.T) {
	got := Select(Inputs{DeviceOverheated: true, TestmodeRequested: true})
	if got != types.Shutdown {
		t.Fatalf("Select = %v, want Shutdown (rule 2 beats rule 5)", got)
	}
}

func TestSelect_BatteryEmpty_Shutdown(t *testing.T) {
	got := Select(Inputs{BatteryEmpty: true, ActdeadRequested: true})
	if got != types.Shutdown {
		t.Fatalf("Select = %v, want Shutdown (rule 3 beats rule 6)", got)
	}
}

func TestSelect_ShutdownBlocked_HoldsCurrentState(t *testing.T) {
	got := Select(Inputs{ShutdownBlocked: true, ShutdownRequested: true, CurrentState: types.Actdead})
	if got != types.Actdead {
		t.Fatalf("Select = %v, want Actdead (no transition)", got)
	}
}

func TestSelect_TestmodeRequested(t *testing.T) {
	got := Select(Inputs{TestmodeRequested: true, ActdeadRequested: true})
	if got != types.Test {
		t.Fatalf("Select = %v, want Test", got)
	}
}

func TestSelect_ActdeadRequested(t *testing.T) {
	got := Select(Inputs{ActdeadRequested: true, ShutdownRequested: true})
	if got != types.Actdead {
		t.Fatalf("Select = %v, want Actdead (rule 6 beats rule 7)", got)
	}
}

func TestSelect_ShutdownRequested_DisconnectedNoAlarm(t *testing.T) {
	got := Select(Inputs{ShutdownRequested: true, Charger: types.ChargerDisconnected})
	if got != types.Shutdown {
		t.Fatalf("Select = %v, want Shutdown", got)
	}
}

func TestSelect_ShutdownRequested_DisconnectedAlarmPendingEncryptedHome(t *testing.T) {
	got := Select(Inputs{
		ShutdownRequested: true,
		Charger:           types.ChargerDisconnected,
		AlarmPending:      true,
		HomeEncrypted:     true,
	})
	if got != types.Shutdown {
		t.Fatalf("Select = %v, want Shutdown (encrypted home waives the alarm guard)", got)
	}
}

func TestSelect_ShutdownRequested_DisconnectedAlarmPendingUnencryptedHome_FallsBackToActdead(t *testing.T) {
	got := Select(Inputs{
		ShutdownRequested: true,
		Charger:           types.ChargerDisconnected,
		AlarmPending:      true,
		HomeEncrypted:     false,
	})
	if got != types.Actdead {
		t.Fatalf("Select = %v, want Actdead (alarm guard blocks shutdown, no reboot_requested)", got)
	}
}

// TestSelect_RebootRequested_ChargerConnected documents the literal,
// unfixed tie-break: shutdown_requested and reboot_requested both set,
// charger connected disqualifies the shutdown clause, so reboot wins.
func TestSelect_RebootRequested_ChargerConnected(t *testing.T) {
	got := Select(Inputs{
		ShutdownRequested: true,
		RebootRequested:   true,
		Charger:           types.ChargerConnected,
	})
	if got != types.Reboot {
		t.Fatalf("Select = %v, want Reboot", got)
	}
}

// TestSelect_RebootRequested_ChargerUnknown exercises rule 7's second
// clause: once the shutdown clause fails to match (charger not
// Disconnected), reboot_requested wins outright.
func TestSelect_RebootRequested_ChargerUnknown(t *testing.T) {
	got := Select(Inputs{
		ShutdownRequested: true,
		RebootRequested:   true,
		Charger:           types.ChargerUnknown,
	})
	if got != types.Reboot {
		t.Fatalf("Select = %v, want Reboot", got)
	}
}

func TestSelect_RebootOnly(t *testing.T) {
	got := Select(Inputs{RebootRequested: true})
	if got != types.Reboot {
		t.Fatalf("Select = %v, want Reboot", got)
	}
}

func TestSelect_ShutdownRequested_ChargerConnected_FallsBackToActdead(t *testing.T) {
	got := Select(Inputs{ShutdownRequested: true, Charger: types.ChargerConnected})
	if got != types.Actdead {
		t.Fatalf("Select = %v, want Actdead", got)
	}
}

func TestSelect_Default_User(t *testing.T) {
	got := Select(Inputs{})
	if got != types.User {
		t.Fatalf("Select = %v, want User", got)
	}
}
