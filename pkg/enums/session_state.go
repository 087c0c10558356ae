package enums

import "fmt"

// SessionState is the lifecycle of the native session context.
type SessionState string

const (
	SessionStateUninitialized SessionState = "uninitialized"
	SessionStateActive        SessionState = "active"
	SessionStateInvalidated   SessionState = "invalidated"
)

var validSessionStates = []SessionState{
	SessionStateUninitialized,
	SessionStateActive,
	SessionStateInvalidated,
}

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SessionState.
func (s SessionState) IsValid() bool {
	for _, candidate := range validSessionStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSessionState converts raw input into a SessionState.
func ParseSessionState(value string) (SessionState, error) {
	for _, candidate := range validSessionStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session state %q", value)
}
