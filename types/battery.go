package types

// BatteryLevelUnknown is the sentinel for "never reported", distinct
// from the valid 0 (empty battery).
const BatteryLevelUnknown = -1

// BatteryLevel is a 0-100 percentage, or BatteryLevelUnknown.
type BatteryLevel int

// Known reports whether a level has ever been reported.
func (b BatteryLevel) Known() bool { return b != BatteryLevelUnknown }

// Below reports whether the level is strictly below min.
// An unknown level counts as below any minimum (DSME_MINIMUM_BATTERY_TO_USER
// treats Unknown the same as "not enough").
func (b BatteryLevel) Below(min int) bool {
	return !b.Known() || int(b) < min
}
