package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call for the screens.
type Kind string

const (
	// KindNetwork: the backend never answered.
	KindNetwork Kind = "network"
	// KindUnauthorized: 401/403 on a credentialed call; the session has
	// already been invalidated as a side effect.
	KindUnauthorized Kind = "unauthorized"
	// KindValidation: any other 4xx; the server message is surfaced.
	KindValidation Kind = "validation"
	// KindServer: 5xx.
	KindServer Kind = "server"
)

const (
	msgNetwork      = "Cannot reach the finance service. Please check your connection."
	msgUnauthorized = "Your session has expired. Please sign in again."
	msgServer       = "The finance service reported an unexpected error."
)

// Error is the gateway's uniform failure value. Message is safe to show
// on the originating screen.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification of err; unrecognized errors count as
// network failures so screens degrade to the connectivity message.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindNetwork
}

// UserMessage returns the screen-facing message for err.
func UserMessage(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return msgNetwork
}

// IsUnauthorized reports whether err is a session-ending failure.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}
