package transition

import "time"

// Timer durations named in SPEC_FULL.md §4.1/§4.4.
const (
	shutdownTimerTimeout = 2 * time.Second // SHUTDOWN_TIMER_TIMEOUT

	userTimerMinTimeout = 2 * time.Second  // USER_TIMER_MIN_TIMEOUT
	userTimerMaxTimeout = 45 * time.Second // USER_TIMER_MAX_TIMEOUT

	actdeadTimerMinTimeout = 2 * time.Second  // ACTDEAD_TIMER_MIN_TIMEOUT
	actdeadTimerMaxTimeout = 45 * time.Second // ACTDEAD_TIMER_MAX_TIMEOUT

	thermalShutdownTimeout = 8 * time.Second // DSME_THERMAL_SHUTDOWN_TIMER
	batteryEmptyTimeout    = 8 * time.Second // DSME_BATTERY_EMPTY_SHUTDOWN_TIMER

	chargerDiscoveryTimeout  = 5 * time.Second  // CHARGER_DISCOVERY_TIMEOUT
	chargerDisconnectTimeout = 15 * time.Second // CHARGER_DISCONNECT_TIMEOUT
)

// minimumBatteryToUser is DSME_MINIMUM_BATTERY_TO_USER: a percentage
// below this (Unknown included) rejects Actdead->User powerup.
const minimumBatteryToUser = 3
