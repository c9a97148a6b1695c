package types

import "github.com/sailfish-community/dsme-go/bus"

// Topics addressed on the engine's bus. Inbound request/event topics are
// "dsme/req/<name>"; outbound broadcasts are "dsme/ind/<name>"; D-Bus
// signals the bridge turns into bus traffic live under "dsme/dbus/<name>".
var (
	TopicTelinit               = bus.T("dsme", "req", "telinit")
	TopicShutdownReq           = bus.T("dsme", "req", "shutdown")
	TopicRebootReq             = bus.T("dsme", "req", "reboot")
	TopicPowerupReq            = bus.T("dsme", "req", "powerup")
	TopicStateQuery            = bus.T("dsme", "req", "state_query")
	TopicSetAlarmState         = bus.T("dsme", "req", "set_alarm_state")
	TopicSetUSBState           = bus.T("dsme", "req", "set_usb_state")
	TopicSetChargerState       = bus.T("dsme", "req", "set_charger_state")
	TopicSetThermalStatus      = bus.T("dsme", "req", "set_thermal_status")
	TopicSetEmergencyCallState = bus.T("dsme", "req", "set_emergency_call_state")
	TopicSetBatteryState       = bus.T("dsme", "req", "set_battery_state")
	TopicSetBatteryLevel       = bus.T("dsme", "req", "set_battery_level")
	TopicBlockShutdown         = bus.T("dsme", "req", "block_shutdown")
	TopicAllowShutdown         = bus.T("dsme", "req", "allow_shutdown")

	TopicDBusConnected    = bus.T("dsme", "dbus", "connected")
	TopicDBusDisconnect   = bus.T("dsme", "dbus", "disconnect")
	TopicRunlevelSwitchDone = bus.T("dsme", "dbus", "runlevel_switch_done")
	TopicCallStateInd     = bus.T("dsme", "dbus", "call_state_ind")

	TopicSaveDataInd         = bus.T("dsme", "ind", "save_data")
	TopicStateChangeInd      = bus.T("dsme", "ind", "state_change")
	TopicStateReqDeniedInd   = bus.T("dsme", "ind", "state_req_denied")
	TopicBatteryEmptyInd     = bus.T("dsme", "ind", "battery_empty")
	TopicChangeRunlevel      = bus.T("dsme", "ind", "change_runlevel")
	TopicShutdown            = bus.T("dsme", "ind", "shutdown")
	TopicEmergencyCallState  = bus.T("dsme", "ind", "emergency_call_state")
	TopicEnterMalf           = bus.T("dsme", "ind", "enter_malf")

	// TopicTimerFire is the internal topic timer.Service uses to hand a
	// fired callback back to the engine's single dispatch loop.
	TopicTimerFire = bus.T("dsme", "_timer")
)
