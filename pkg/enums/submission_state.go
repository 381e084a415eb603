package enums

import "fmt"

// SubmissionState is the checkout submission state machine:
// idle -> processing -> {success | error | cart-empty}.
type SubmissionState string

const (
	SubmissionStateIdle       SubmissionState = "idle"
	SubmissionStateProcessing SubmissionState = "processing"
	SubmissionStateSuccess    SubmissionState = "success"
	SubmissionStateError      SubmissionState = "error"
	SubmissionStateCartEmpty  SubmissionState = "cart-empty"
)

var validSubmissionStates = []SubmissionState{
	SubmissionStateIdle,
	SubmissionStateProcessing,
	SubmissionStateSuccess,
	SubmissionStateError,
	SubmissionStateCartEmpty,
}

// String implements fmt.Stringer.
func (s SubmissionState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubmissionState.
func (s SubmissionState) IsValid() bool {
	for _, candidate := range validSubmissionStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state ends a submission attempt.
func (s SubmissionState) IsTerminal() bool {
	switch s {
	case SubmissionStateSuccess, SubmissionStateError, SubmissionStateCartEmpty:
		return true
	}
	return false
}

// ParseSubmissionState converts raw input into a SubmissionState.
func ParseSubmissionState(value string) (SubmissionState, error) {
	for _, candidate := range validSubmissionStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid submission state %q", value)
}
