package session

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a session's current bill.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateDone       State = "done"
)

var (
	// ErrInvalidTransition is returned when a command or signal arrives in a
	// state that cannot accept it.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrNotReady is returned for assignment commands before a receipt is loaded.
	ErrNotReady = errors.New("receipt not loaded")
	// ErrPaymentBlocked is returned by RequestPayment while items remain unassigned.
	ErrPaymentBlocked = errors.New("payment request blocked")
	// ErrStaleSubmission is returned for ingestion signals of a receipt that
	// was abandoned or replaced.
	ErrStaleSubmission = errors.New("stale ingestion signal")
)

// Every state may return to idle through StartNewBill.
var allowedTransitions = map[State]map[State]struct{}{
	StateIdle: {
		StateUploading: {},
		StateIdle:      {},
	},
	StateUploading: {
		StateProcessing: {},
		StateIdle:       {},
	},
	StateProcessing: {
		StateDone: {},
		StateIdle: {},
	},
	StateDone: {
		StateIdle: {},
	},
}

// ValidateState rejects unknown states.
func ValidateState(state State) error {
	if _, ok := allowedTransitions[state]; !ok {
		return fmt.Errorf("invalid session state: %q", state)
	}
	return nil
}

// ValidateTransition reports whether from -> to is a legal move.
// Illegal moves wrap ErrInvalidTransition.
func ValidateTransition(from, to State) error {
	if err := ValidateState(from); err != nil {
		return err
	}
	if err := ValidateState(to); err != nil {
		return err
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
