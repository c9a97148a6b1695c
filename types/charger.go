package types

// ChargerState is a tri-state: the engine must distinguish "never told
// us" from either definite value, because several rules (policy rule 7,
// the charger-disconnect grace timer) behave differently before the
// first report arrives.
type ChargerState int

const (
	ChargerUnknown ChargerState = iota
	ChargerConnected
	ChargerDisconnected
)

func (c ChargerState) String() string {
	switch c {
	case ChargerConnected:
		return "CONNECTED"
	case ChargerDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}
