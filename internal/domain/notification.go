package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultTitle   = "Notification"
	DefaultMessage = "Unknown Message"
	CloseLabel     = "Completed?"
	DefaultTimeout = 15 * time.Second
)

// Outcomes reported by the native facility once a notification is finished.
const (
	OutcomeReplied      = "replied"
	OutcomeAcknowledged = "acknowledged"
	OutcomeActivated    = "activated"
	OutcomeDismissed    = "dismissed"
	OutcomeTimeout      = "timeout"
	OutcomeFailed       = "failed"
)

const (
	SourceHTTP  = "http"
	SourceQueue = "queue"
)

var (
	ErrNativeFailure       = errors.New("native notification failed")
	ErrNotifierUnavailable = fmt.Errorf("%w: notifier unavailable", ErrNativeFailure)
	ErrUnknownBackend      = errors.New("unknown notification backend")
)

func ResolveTitle(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title
}

func ResolveMessage(message string) string {
	if message == "" {
		return DefaultMessage
	}
	return message
}

func IsValidOutcome(value string) bool {
	switch value {
	case OutcomeReplied, OutcomeAcknowledged, OutcomeActivated, OutcomeDismissed, OutcomeTimeout, OutcomeFailed:
		return true
	default:
		return false
	}
}
