package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOrderCannotBeCanceled = errors.New("order cannot be canceled at this stage")
	ErrOrderCannotBeUpdated  = errors.New("order cannot be updated at this stage")
)

type Status string

const (
	StatusPreliminary   Status = "PRELIMINARY"
	StatusConfirmed     Status = "CONFIRMED"
	StatusInProduction  Status = "IN_PRODUCTION"
	StatusReadyToShip   Status = "READY_TO_SHIPPED"
	StatusShipped       Status = "SHIPPED"
	StatusReceived      Status = "RECEIVED"
	StatusCanceled      Status = "CANCELED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPreliminary, StatusConfirmed, StatusInProduction,
		StatusReadyToShip, StatusShipped, StatusReceived, StatusCanceled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidStatus)
}

// Terminal reports whether no further status or line mutation is permitted.
func (s Status) Terminal() bool {
	return s == StatusReceived || s == StatusCanceled
}

// transitions is the legality table for the fulfillment state machine. Orders
// advance one stage at a time; cancellation is only reachable before
// production starts.
var transitions = map[Status]map[Status]bool{
	StatusPreliminary: {
		StatusConfirmed: true,
		StatusCanceled:  true,
	},
	StatusConfirmed: {
		StatusInProduction: true,
		StatusCanceled:     true,
	},
	StatusInProduction: {
		StatusReadyToShip: true,
	},
	StatusReadyToShip: {
		StatusShipped: true,
	},
	StatusShipped: {
		StatusReceived: true,
	},
}

// ValidateTransition checks the legality table before any side effect runs.
// The cancellation rule is checked first so an illegal cancel is always
// reported as such, not as a generic bad transition.
func ValidateTransition(from, to Status) error {
	if to == StatusCanceled && !transitions[from][StatusCanceled] {
		return fmt.Errorf("%s: %w", from, ErrOrderCannotBeCanceled)
	}
	if !transitions[from][to] {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}

// Cancelable reports whether the direct cancellation path may proceed. Unlike
// the status-transition table it admits READY_TO_SHIPPED and SHIPPED orders,
// and refuses only once production is running or the order is closed.
func (s Status) Cancelable() bool {
	switch s {
	case StatusInProduction, StatusReceived, StatusCanceled:
		return false
	}
	return true
}
