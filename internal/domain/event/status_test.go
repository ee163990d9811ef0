package event

import (
	"errors"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusUpcoming, StatusRegistering},
		{StatusRegistering, StatusLateReg},
		{StatusRegistering, StatusRunning},
		{StatusLateReg, StatusRunning},
		{StatusRunning, StatusScoring},
		{StatusRunning, StatusEnded},
		{StatusScoring, StatusEnded},
	}
	for _, tc := range allowed {
		next, err := tc.from.Transition(tc.to)
		if err != nil {
			t.Fatalf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
		if next != tc.to {
			t.Fatalf("%s -> %s returned %s", tc.from, tc.to, next)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusUpcoming, StatusRunning},
		{StatusUpcoming, StatusEnded},
		{StatusRegistering, StatusUpcoming},
		{StatusRegistering, StatusEnded},
		{StatusLateReg, StatusRegistering},
		{StatusRunning, StatusRegistering},
		{StatusEnded, StatusRegistering},
		{StatusCancelled, StatusRegistering},
	}
	for _, tc := range forbidden {
		if _, err := tc.from.Transition(tc.to); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s should fail, got %v", tc.from, tc.to, err)
		}
	}
}

func TestStatusCancellation(t *testing.T) {
	for _, from := range []Status{StatusUpcoming, StatusRegistering, StatusLateReg, StatusRunning, StatusScoring} {
		if _, err := from.Transition(StatusCancelled); err != nil {
			t.Fatalf("%s should be cancellable: %v", from, err)
		}
	}
	for _, from := range []Status{StatusEnded, StatusCancelled} {
		if _, err := from.Transition(StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s is terminal and must not be cancellable", from)
		}
	}
}

func TestStatusTransitionUnknownTarget(t *testing.T) {
	if _, err := StatusRegistering.Transition(Status("archived")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unknown target should fail, got %v", err)
	}
}

func TestStatusTerminal(t *testing.T) {
	for status := range AllStatuses {
		terminal := status == StatusEnded || status == StatusCancelled
		if status.Terminal() != terminal {
			t.Fatalf("Terminal() wrong for %s", status)
		}
	}
}

func TestParseStatus(t *testing.T) {
	parsed, err := ParseStatus("late-reg")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != StatusLateReg {
		t.Fatalf("expected late-reg, got %s", parsed)
	}

	if _, err := ParseStatus("paused"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
