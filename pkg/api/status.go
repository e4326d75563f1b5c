package api

import "strings"

// State is the normalized lifecycle state of a user or node.
type State string

const (
	StateActive     State = "active"
	StateDisabled   State = "disabled"
	StateLimited    State = "limited"
	StateExpired    State = "expired"
	StateOnHold     State = "on_hold"
	StateConnected  State = "connected"
	StateConnecting State = "connecting"
	StateHealthy    State = "healthy"
	StateUnhealthy  State = "unhealthy"
	StateError      State = "error"
	StateUnknown    State = "unknown"
)

// Status pairs the backend's original status value with its normalized
// state. Raw is kept verbatim so that no backend distinction is lost.
type Status struct {
	State State  `json:"state"`
	Raw   string `json:"raw"`
}

// Enabled reports whether the status describes a usable resource. It is a
// convenience only: limited and expired are both "not enabled" but remain
// distinct in State.
func (s Status) Enabled() bool {
	switch s.State {
	case StateActive, StateOnHold, StateConnected, StateHealthy:
		return true
	default:
		return false
	}
}

// String returns the raw backend value.
func (s Status) String() string {
	return s.Raw
}

// stateAliases maps lower-cased backend vocabulary onto normalized states.
var stateAliases = map[string]State{
	"active":       StateActive,
	"enabled":      StateActive,
	"disabled":     StateDisabled,
	"inactive":     StateDisabled,
	"limited":      StateLimited,
	"expired":      StateExpired,
	"on_hold":      StateOnHold,
	"onhold":       StateOnHold,
	"connected":    StateConnected,
	"online":       StateConnected,
	"connecting":   StateConnecting,
	"healthy":      StateHealthy,
	"unhealthy":    StateUnhealthy,
	"error":        StateError,
	"disconnected": StateError,
	"offline":      StateError,
}

// ParseStatus normalizes a backend status string. Unknown values keep their
// raw text with StateUnknown rather than being coerced.
func ParseStatus(raw string) Status {
	if st, ok := stateAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return Status{State: st, Raw: raw}
	}
	return Status{State: StateUnknown, Raw: raw}
}

// FlagStatus builds a Status for backends that report state as a boolean.
// Raw records the flag name and value, e.g. "enabled=false".
func FlagStatus(flag string, value bool, whenTrue, whenFalse State) Status {
	if value {
		return Status{State: whenTrue, Raw: flag + "=true"}
	}
	return Status{State: whenFalse, Raw: flag + "=false"}
}
