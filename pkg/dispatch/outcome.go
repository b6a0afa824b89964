// Package dispatch sends a single user query to the remote answer service and
// collapses every failure into one Unavailable outcome.
package dispatch

import (
	"errors"
	"fmt"
)

// DefaultFallback is shown in place of an answer when the service cannot be used.
const DefaultFallback = "⚠️ Backend not running!"

// Kind is the variant of an Outcome.
type Kind int

const (
	// Answered means the service returned a usable answer.
	Answered Kind = iota
	// Unavailable means the service could not be reached or replied with
	// something unusable. Text then holds the fallback message.
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case Answered:
		return "answered"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one dispatch attempt.
type Outcome struct {
	Kind Kind
	Text string

	// Cause is the internal reason for an Unavailable outcome. It is for
	// logging only and is never shown to the user.
	Cause error
}

// Available reports whether the outcome carries a real answer.
func (o Outcome) Available() bool {
	return o.Kind == Answered
}

// Reason classifies why a dispatch was unavailable.
type Reason string

const (
	ReasonEmptyQuery    Reason = "empty_query"
	ReasonTransport     Reason = "transport"
	ReasonTimeout       Reason = "timeout"
	ReasonStatus        Reason = "status"
	ReasonDecode        Reason = "decode"
	ReasonMissingAnswer Reason = "missing_answer"
)

// Error is the Cause attached to Unavailable outcomes.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dispatch: %s", e.Reason)
	}
	return fmt.Sprintf("dispatch: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the classification from an outcome cause, or "" if the
// cause is not a dispatch Error.
func ReasonOf(err error) Reason {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}
