package event

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of an event. Transitions move one step at a
// time; cancelled is reachable from any non-terminal state.
type Status string

const (
	StatusUpcoming    Status = "upcoming"
	StatusRegistering Status = "registering"
	StatusLateReg     Status = "late-reg"
	StatusRunning     Status = "running"
	StatusScoring     Status = "scoring"
	StatusEnded       Status = "ended"
	StatusCancelled   Status = "cancelled"
)

var AllStatuses = map[Status]struct{}{
	StatusUpcoming:    {},
	StatusRegistering: {},
	StatusLateReg:     {},
	StatusRunning:     {},
	StatusScoring:     {},
	StatusEnded:       {},
	StatusCancelled:   {},
}

var (
	ErrInvalidTransition  = errors.New("invalid event status transition")
	ErrEventLocked        = errors.New("event is locked for lineup changes")
	ErrEventFull          = errors.New("event is full")
	ErrAlreadyScored      = errors.New("event already scored")
	ErrNotReadyToScore    = errors.New("event not ready to score")
	ErrNotYetScored       = errors.New("event not yet scored")
	ErrRewardsAlreadyPaid = errors.New("event rewards already paid")
)

// transitions holds the forward edges; cancellation is handled separately.
var transitions = map[Status]map[Status]struct{}{
	StatusUpcoming:    {StatusRegistering: {}},
	StatusRegistering: {StatusLateReg: {}, StatusRunning: {}},
	StatusLateReg:     {StatusRunning: {}},
	StatusRunning:     {StatusScoring: {}, StatusEnded: {}},
	StatusScoring:     {StatusEnded: {}},
}

func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal single
// step.
func (s Status) CanTransition(next Status) bool {
	if next == StatusCancelled {
		return !s.Terminal()
	}
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// Transition validates and returns the next status, or ErrInvalidTransition
// carrying both endpoints.
func (s Status) Transition(next Status) (Status, error) {
	if _, ok := AllStatuses[next]; !ok {
		return s, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, string(next))
	}
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := AllStatuses[s]; !ok {
		return "", fmt.Errorf("unknown event status: %q", raw)
	}
	return s, nil
}
